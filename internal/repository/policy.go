package repository

import (
	"context"

	"github.com/ErlanBelekov/healthcover-api/internal/domain"
)

type PolicyRepository interface {
	// Create returns domain.ErrUserNotFound when policy.UserID has no user row.
	Create(ctx context.Context, policy *domain.Policy) (*domain.Policy, error)
	ListByUser(ctx context.Context, userID int64) ([]*domain.Policy, error)
}
