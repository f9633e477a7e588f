package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ErlanBelekov/healthcover-api/internal/domain"
	"github.com/ErlanBelekov/healthcover-api/internal/repository"
)

type PolicyUsecase struct {
	repo repository.PolicyRepository
}

func NewPolicyUsecase(repo repository.PolicyRepository) *PolicyUsecase {
	return &PolicyUsecase{repo: repo}
}

type AddPolicyInput struct {
	UserID        int64     `validate:"gt=0"`
	Provider      string    `validate:"required,max=200"`
	PolicyNumber  string    `validate:"required,max=100"`
	CoverageStart time.Time `validate:"required"`
	CoverageEnd   time.Time `validate:"required"`
}

func (u *PolicyUsecase) AddPolicy(ctx context.Context, input AddPolicyInput) (*domain.Policy, error) {
	input.Provider = strings.TrimSpace(input.Provider)
	input.PolicyNumber = strings.TrimSpace(input.PolicyNumber)

	if err := validateInput(input); err != nil {
		return nil, err
	}

	start, end := dateOnly(input.CoverageStart), dateOnly(input.CoverageEnd)
	if end.Before(start) {
		return nil, fmt.Errorf("%w: coverageEnd is before coverageStart", domain.ErrValidation)
	}

	created, err := u.repo.Create(ctx, &domain.Policy{
		UserID:        input.UserID,
		Provider:      input.Provider,
		PolicyNumber:  input.PolicyNumber,
		CoverageStart: start,
		CoverageEnd:   end,
	})
	if err != nil {
		return nil, timeoutAware("create policy", err)
	}
	return created, nil
}

func (u *PolicyUsecase) ListPolicies(ctx context.Context, userID int64) ([]*domain.Policy, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("%w: userId must be positive", domain.ErrValidation)
	}

	policies, err := u.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, timeoutAware("list policies", err)
	}
	if policies == nil {
		policies = []*domain.Policy{}
	}
	return policies, nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
