package repository

import (
	"context"

	"github.com/ErlanBelekov/healthcover-api/internal/domain"
)

// UserRepository is the credential store. The usecase depends on this
// interface so tests can pass an in-memory fake.
type UserRepository interface {
	// Create inserts the user and returns it with the store-assigned ID.
	// A duplicate email yields domain.ErrEmailTaken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// FindByEmail returns domain.ErrUserNotFound when no row matches.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	// UpdatePasswordHash replaces the stored hash, e.g. after a cost upgrade.
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
}
