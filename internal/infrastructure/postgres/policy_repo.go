package postgres

import (
	"context"

	"github.com/ErlanBelekov/healthcover-api/internal/domain"
)

type PolicyRepository struct {
	db DBTX
}

func NewPolicyRepository(db DBTX) *PolicyRepository {
	return &PolicyRepository{db: db}
}

func (r *PolicyRepository) Create(ctx context.Context, p *domain.Policy) (*domain.Policy, error) {
	query := `
		INSERT INTO insurance (user_id, provider, policy_number, coverage_start, coverage_end)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, provider, policy_number, coverage_start, coverage_end, created_at`

	row := r.db.QueryRow(ctx, query, p.UserID, p.Provider, p.PolicyNumber, p.CoverageStart, p.CoverageEnd)
	created, err := scanPolicy(row)
	if err != nil {
		if pgErrorCode(err) == codeForeignKeyViolation {
			return nil, domain.ErrUserNotFound
		}
		return nil, storeError("insert policy", err)
	}
	return created, nil
}

func (r *PolicyRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.Policy, error) {
	query := `
		SELECT id, user_id, provider, policy_number, coverage_start, coverage_end, created_at
		FROM insurance
		WHERE user_id = $1
		ORDER BY coverage_start ASC, id ASC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, storeError("list policies", err)
	}
	defer rows.Close()

	policies := make([]*domain.Policy, 0)
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, storeError("scan policy", err)
		}
		policies = append(policies, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("list policies", err)
	}
	return policies, nil
}

// pgx.Row and pgx.Rows both implement this.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPolicy(row rowScanner) (*domain.Policy, error) {
	var p domain.Policy
	err := row.Scan(&p.ID, &p.UserID, &p.Provider, &p.PolicyNumber, &p.CoverageStart, &p.CoverageEnd, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
