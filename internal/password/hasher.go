package password

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ErlanBelekov/healthcover-api/internal/metrics"
	"golang.org/x/crypto/bcrypt"
)

// MaxLength is the longest password bcrypt consumes without truncating.
const MaxLength = 72

var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

// Hasher hashes and verifies passwords with bcrypt. Every call takes a slot
// from a fixed-size pool so bursts of logins cannot saturate all CPUs.
type Hasher struct {
	cost int
	sem  chan struct{}
}

func NewHasher(cost, workers int) (*Hasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	if workers < 1 {
		return nil, fmt.Errorf("hash workers must be >= 1, got %d", workers)
	}
	return &Hasher{cost: cost, sem: make(chan struct{}, workers)}, nil
}

// Hash returns a self-describing bcrypt hash ($2a$<cost>$<salt><digest>).
func (h *Hasher) Hash(ctx context.Context, plaintext string) (string, error) {
	if len(plaintext) > MaxLength {
		return "", ErrPasswordTooLong
	}

	var (
		hash []byte
		err  error
	)
	if slotErr := h.withSlot(ctx, "hash", func() {
		hash, err = bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	}); slotErr != nil {
		return "", slotErr
	}
	if err != nil {
		return "", fmt.Errorf("bcrypt hash: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether plaintext matches hash. A mismatch or an unparseable
// hash yields false with a nil error; only context cancellation is an error.
// Input longer than MaxLength never matches: bcrypt would ignore the excess,
// so such a password cannot be the one that was hashed.
func (h *Hasher) Verify(ctx context.Context, plaintext, hash string) (bool, error) {
	tooLong := len(plaintext) > MaxLength
	if tooLong {
		// Still pay for a comparison so the rejection is not faster than a mismatch.
		plaintext = plaintext[:MaxLength]
	}

	var err error
	if slotErr := h.withSlot(ctx, "verify", func() {
		err = bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	}); slotErr != nil {
		return false, slotErr
	}
	return err == nil && !tooLong, nil
}

// NeedsRehash is true when hash was produced with a lower cost than the
// current setting, or cannot be parsed at all.
func (h *Hasher) NeedsRehash(hash string) bool {
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return true
	}
	return cost < h.cost
}

func (h *Hasher) withSlot(ctx context.Context, op string, fn func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case h.sem <- struct{}{}:
	}
	defer func() { <-h.sem }()

	start := time.Now()
	fn()
	metrics.PasswordHashDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	return nil
}
