package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ErlanBelekov/healthcover-api/internal/domain"
	"github.com/ErlanBelekov/healthcover-api/internal/email"
	"github.com/ErlanBelekov/healthcover-api/internal/metrics"
	"github.com/ErlanBelekov/healthcover-api/internal/password"
	"github.com/ErlanBelekov/healthcover-api/internal/repository"
	"github.com/ErlanBelekov/healthcover-api/internal/token"
)

type passwordHasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	Verify(ctx context.Context, plaintext, hash string) (bool, error)
	NeedsRehash(hash string) bool
}

type tokenIssuer interface {
	Issue(userID int64) (token.Token, error)
	Verify(raw string) (token.Claims, error)
}

type AuthUsecase struct {
	users  repository.UserRepository
	hasher passwordHasher
	tokens tokenIssuer
	email  email.Sender
	logger *slog.Logger

	// dummyHash is compared against when the email is unknown.
	dummyHash string
}

const dummyPassword = "healthcover-dummy-password"

// fallbackDummyHash is bcrypt(dummyPassword) at cost 10, used if hashing
// fails at construction so unknown emails never skip the comparison.
const fallbackDummyHash = "$2a$10$F1lGG3qlVL09Gk9Uts3LzuXXuSomAEjJoQdpeMyM4bjqqZ0zIApg6"

func NewAuthUsecase(users repository.UserRepository, hasher passwordHasher, tokens tokenIssuer, emailSender email.Sender, logger *slog.Logger) *AuthUsecase {
	u := &AuthUsecase{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		email:  emailSender,
		logger: logger.With("component", "auth_usecase"),
	}
	u.dummyHash = u.newDummyHash()
	return u
}

type RegisterInput struct {
	Username string `validate:"required,max=100"`
	Email    string `validate:"required,email,max=254"`
	Password string `validate:"required"`
}

type LoginInput struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	UserID    int64
}

// Register hashes the password, stores the user and returns the public
// identity fields. The returned user never carries the hash.
func (u *AuthUsecase) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = normalizeEmail(input.Email)

	if err := validateInput(input); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}
	if len(input.Password) > password.MaxLength {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("%w: password exceeds %d bytes", domain.ErrValidation, password.MaxLength)
	}

	hash, err := u.hasher.Hash(ctx, input.Password)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return nil, timeoutAware("hash password", err)
	}

	created, err := u.users.Create(ctx, &domain.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			metrics.RegistrationsTotal.WithLabelValues("conflict").Inc()
			return nil, domain.ErrEmailTaken
		}
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return nil, timeoutAware("create user", err)
	}

	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	u.logger.InfoContext(ctx, "user registered", "user_id", created.ID)

	u.sendWelcome(ctx, created)

	return &domain.User{
		ID:        created.ID,
		Username:  created.Username,
		Email:     created.Email,
		CreatedAt: created.CreatedAt,
	}, nil
}

// Login verifies the credentials and issues a session token. Unknown email
// and wrong password are indistinguishable to the caller.
func (u *AuthUsecase) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	input.Email = normalizeEmail(input.Email)

	if err := validateInput(input); err != nil {
		metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	user, err := u.users.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Spend the same bcrypt time as a real comparison.
			_, _ = u.hasher.Verify(ctx, input.Password, u.dummyHash)
			metrics.LoginsTotal.WithLabelValues("rejected").Inc()
			return nil, domain.ErrInvalidCredentials
		}
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, timeoutAware("find user", err)
	}

	ok, err := u.hasher.Verify(ctx, input.Password, user.PasswordHash)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, timeoutAware("verify password", err)
	}
	if !ok {
		metrics.LoginsTotal.WithLabelValues("rejected").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	u.upgradeHash(ctx, user, input.Password)

	tok, err := u.tokens.Issue(user.ID)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("issue token: %w", err)
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return &LoginResult{Token: tok.Value, ExpiresAt: tok.ExpiresAt, UserID: user.ID}, nil
}

// Authenticate resolves a bearer token to the user ID it was issued for.
func (u *AuthUsecase) Authenticate(rawToken string) (int64, error) {
	claims, err := u.tokens.Verify(rawToken)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrUnauthorized, err)
	}
	return claims.UserID, nil
}

// upgradeHash re-hashes at the current cost when the stored hash is weaker.
// Failures only cost the upgrade, never the login.
func (u *AuthUsecase) upgradeHash(ctx context.Context, user *domain.User, plaintext string) {
	if !u.hasher.NeedsRehash(user.PasswordHash) {
		return
	}
	hash, err := u.hasher.Hash(ctx, plaintext)
	if err == nil {
		err = u.users.UpdatePasswordHash(ctx, user.ID, hash)
	}
	if err != nil {
		u.logger.WarnContext(ctx, "upgrade password hash", "user_id", user.ID, "error", err)
	}
}

// newDummyHash hashes at the configured cost so an unknown-email login
// takes as long as a real one.
func (u *AuthUsecase) newDummyHash() string {
	h, err := u.hasher.Hash(context.Background(), dummyPassword)
	if err != nil {
		u.logger.Warn("compute dummy hash, using fallback", "error", err)
		return fallbackDummyHash
	}
	return h
}

func (u *AuthUsecase) sendWelcome(ctx context.Context, user *domain.User) {
	if u.email == nil {
		return
	}
	subject, body, err := email.Welcome(user.Username, user.Email)
	if err != nil {
		u.logger.WarnContext(ctx, "render welcome email", "error", err)
		return
	}
	if err := u.email.Send(ctx, user.Email, subject, body); err != nil {
		u.logger.WarnContext(ctx, "send welcome email", "user_id", user.ID, "error", err)
	}
}
