package token_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ErlanBelekov/healthcover-api/internal/token"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "token-test-secret-at-least-32-chars!"

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newIssuer(clock *fakeClock) *token.Issuer {
	return token.NewIssuer([]byte(testSecret), time.Hour).WithClock(clock.Now)
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	iss := newIssuer(clock)

	for _, id := range []int64{1, 42, 1 << 40} {
		tok, err := iss.Issue(id)
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		if tok.Value == "" {
			t.Fatal("empty token")
		}
		if want := clock.t.Add(time.Hour); !tok.ExpiresAt.Equal(want) {
			t.Errorf("ExpiresAt = %v, want %v", tok.ExpiresAt, want)
		}

		claims, err := iss.Verify(tok.Value)
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if claims.UserID != id {
			t.Errorf("UserID = %d, want %d", claims.UserID, id)
		}
		if !claims.IssuedAt.Equal(clock.t) {
			t.Errorf("IssuedAt = %v, want %v", claims.IssuedAt, clock.t)
		}
	}
}

func TestVerify_ExpiresAfterTTL(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	iss := newIssuer(clock)

	tok, err := iss.Issue(7)
	if err != nil {
		t.Fatal(err)
	}

	clock.t = clock.t.Add(59 * time.Minute)
	if _, err := iss.Verify(tok.Value); err != nil {
		t.Fatalf("token should still be valid: %v", err)
	}

	clock.t = clock.t.Add(2 * time.Minute)
	if _, err := iss.Verify(tok.Value); !errors.Is(err, token.ErrExpired) {
		t.Fatalf("want ErrExpired, got %v", err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	tok, err := newIssuer(clock).Issue(1)
	if err != nil {
		t.Fatal(err)
	}

	other := token.NewIssuer([]byte("another-secret-that-is-32-chars!!"), time.Hour).WithClock(clock.Now)
	if _, err := other.Verify(tok.Value); !errors.Is(err, token.ErrInvalid) {
		t.Fatalf("want ErrInvalid, got %v", err)
	}
}

func TestVerify_Tampered(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	iss := newIssuer(clock)
	tok, err := iss.Issue(1)
	if err != nil {
		t.Fatal(err)
	}

	parts := strings.Split(tok.Value, ".")
	forged, err := iss.Issue(2)
	if err != nil {
		t.Fatal(err)
	}
	// Payload of user 2 with the signature of user 1.
	tampered := parts[0] + "." + strings.Split(forged.Value, ".")[1] + "." + parts[2]

	if _, err := iss.Verify(tampered); !errors.Is(err, token.ErrInvalid) {
		t.Fatalf("want ErrInvalid, got %v", err)
	}
}

func TestVerify_Malformed(t *testing.T) {
	iss := token.NewIssuer([]byte(testSecret), time.Hour)
	for _, raw := range []string{"", "not.a.jwt", "abc"} {
		if _, err := iss.Verify(raw); !errors.Is(err, token.ErrInvalid) {
			t.Errorf("Verify(%q): want ErrInvalid, got %v", raw, err)
		}
	}
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatal(err)
	}

	iss := token.NewIssuer([]byte(testSecret), time.Hour)
	if _, err := iss.Verify(raw); !errors.Is(err, token.ErrInvalid) {
		t.Fatalf("want ErrInvalid for HS512, got %v", err)
	}
}

func TestVerify_RequiresExpiry(t *testing.T) {
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "1"}).
		SignedString([]byte(testSecret))
	if err != nil {
		t.Fatal(err)
	}

	iss := token.NewIssuer([]byte(testSecret), time.Hour)
	if _, err := iss.Verify(raw); !errors.Is(err, token.ErrInvalid) {
		t.Fatalf("want ErrInvalid without exp, got %v", err)
	}
}

func TestVerify_NonNumericSubject(t *testing.T) {
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-abc",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatal(err)
	}

	iss := token.NewIssuer([]byte(testSecret), time.Hour)
	if _, err := iss.Verify(raw); !errors.Is(err, token.ErrInvalid) {
		t.Fatalf("want ErrInvalid, got %v", err)
	}
}

func TestNewIssuer_DefaultTTL(t *testing.T) {
	if got := token.NewIssuer([]byte(testSecret), 0).TTL(); got != token.DefaultTTL {
		t.Errorf("TTL = %v, want %v", got, token.DefaultTTL)
	}
}
