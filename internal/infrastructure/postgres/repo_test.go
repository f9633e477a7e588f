package postgres_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ErlanBelekov/healthcover-api/internal/domain"
	"github.com/ErlanBelekov/healthcover-api/internal/infrastructure/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ---- fakes ----

type fakeRow struct {
	values []any
	err    error
}

func (r *fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assign(dest, r.values)
}

type fakeRows struct {
	data [][]any
	i    int
	err  error
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return r.data[r.i-1], nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.i >= len(r.data) {
		return false
	}
	r.i++
	return true
}

func (r *fakeRows) Scan(dest ...any) error { return assign(dest, r.data[r.i-1]) }

type fakeDB struct {
	lastSQL  string
	lastArgs []any
	row      *fakeRow
	rows     *fakeRows
	queryErr error
	execTag  pgconn.CommandTag
	execErr  error
}

func (db *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	db.lastSQL, db.lastArgs = sql, args
	return db.execTag, db.execErr
}

func (db *fakeDB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	db.lastSQL, db.lastArgs = sql, args
	if db.queryErr != nil {
		return nil, db.queryErr
	}
	return db.rows, nil
}

func (db *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	db.lastSQL, db.lastArgs = sql, args
	return db.row
}

func assign(dest, values []any) error {
	if len(dest) != len(values) {
		return errors.New("column count mismatch")
	}
	for i, v := range values {
		switch d := dest[i].(type) {
		case *int64:
			*d = v.(int64)
		case *string:
			*d = v.(string)
		case *time.Time:
			*d = v.(time.Time)
		default:
			return errors.New("unsupported scan target")
		}
	}
	return nil
}

var now = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

// ---- users ----

func TestUserCreate_ReturnsStoredUser(t *testing.T) {
	db := &fakeDB{row: &fakeRow{values: []any{int64(1), "alice", "alice@x.com", "$2a$hash", now}}}
	repo := postgres.NewUserRepository(db)

	u, err := repo.Create(context.Background(), &domain.User{Username: "alice", Email: "alice@x.com", PasswordHash: "$2a$hash"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID != 1 || u.Username != "alice" || u.Email != "alice@x.com" {
		t.Errorf("unexpected user: %+v", u)
	}
	if !strings.Contains(db.lastSQL, "INSERT INTO users") {
		t.Errorf("unexpected sql: %s", db.lastSQL)
	}
	if len(db.lastArgs) != 3 || db.lastArgs[2] != "$2a$hash" {
		t.Errorf("unexpected args: %v", db.lastArgs)
	}
}

func TestUserCreate_UniqueViolation_ReturnsEmailTaken(t *testing.T) {
	db := &fakeDB{row: &fakeRow{err: &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}}}

	_, err := postgres.NewUserRepository(db).Create(context.Background(), &domain.User{Email: "a@x.com"})
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Errorf("want ErrEmailTaken, got %v", err)
	}
}

func TestUserCreate_OtherError_ReturnsPersistence(t *testing.T) {
	db := &fakeDB{row: &fakeRow{err: errors.New("connection reset")}}

	_, err := postgres.NewUserRepository(db).Create(context.Background(), &domain.User{Email: "a@x.com"})
	if !errors.Is(err, domain.ErrPersistence) {
		t.Errorf("want ErrPersistence, got %v", err)
	}
}

func TestUserFindByEmail_NotFound(t *testing.T) {
	db := &fakeDB{row: &fakeRow{err: pgx.ErrNoRows}}

	_, err := postgres.NewUserRepository(db).FindByEmail(context.Background(), "nobody@x.com")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("want ErrUserNotFound, got %v", err)
	}
}

func TestUserFindByEmail_Timeout(t *testing.T) {
	db := &fakeDB{row: &fakeRow{err: context.DeadlineExceeded}}

	_, err := postgres.NewUserRepository(db).FindByEmail(context.Background(), "a@x.com")
	if !errors.Is(err, domain.ErrTimeout) {
		t.Errorf("want ErrTimeout, got %v", err)
	}
}

func TestUserFindByID_Found(t *testing.T) {
	db := &fakeDB{row: &fakeRow{values: []any{int64(9), "bob", "bob@x.com", "h", now}}}

	u, err := postgres.NewUserRepository(db).FindByID(context.Background(), 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID != 9 || db.lastArgs[0] != int64(9) {
		t.Errorf("unexpected user %+v / args %v", u, db.lastArgs)
	}
}

// ---- policies ----

func TestUserUpdatePasswordHash(t *testing.T) {
	db := &fakeDB{execTag: pgconn.NewCommandTag("UPDATE 1")}
	if err := postgres.NewUserRepository(db).UpdatePasswordHash(context.Background(), 4, "$2a$12$new"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if db.lastArgs[0] != int64(4) || db.lastArgs[1] != "$2a$12$new" {
		t.Errorf("args = %v", db.lastArgs)
	}
}

func TestUserUpdatePasswordHash_NoRow(t *testing.T) {
	db := &fakeDB{execTag: pgconn.NewCommandTag("UPDATE 0")}
	err := postgres.NewUserRepository(db).UpdatePasswordHash(context.Background(), 4, "h")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("want ErrUserNotFound, got %v", err)
	}
}

func TestUserUpdatePasswordHash_StoreError(t *testing.T) {
	db := &fakeDB{execErr: errors.New("connection reset")}
	err := postgres.NewUserRepository(db).UpdatePasswordHash(context.Background(), 4, "h")
	if !errors.Is(err, domain.ErrPersistence) {
		t.Errorf("want ErrPersistence, got %v", err)
	}
}

func policyRow(id int64) []any {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return []any{id, int64(1), "Acme", "POL-1", start, start.AddDate(1, 0, 0), now}
}

func TestPolicyCreate_ForeignKeyViolation_ReturnsUserNotFound(t *testing.T) {
	db := &fakeDB{row: &fakeRow{err: &pgconn.PgError{Code: "23503"}}}

	_, err := postgres.NewPolicyRepository(db).Create(context.Background(), &domain.Policy{UserID: 404})
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("want ErrUserNotFound, got %v", err)
	}
}

func TestPolicyCreate_Success(t *testing.T) {
	db := &fakeDB{row: &fakeRow{values: policyRow(3)}}

	p, err := postgres.NewPolicyRepository(db).Create(context.Background(), &domain.Policy{UserID: 1, Provider: "Acme"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID != 3 || p.Provider != "Acme" {
		t.Errorf("unexpected policy %+v", p)
	}
}

func TestPolicyListByUser_Empty(t *testing.T) {
	db := &fakeDB{rows: &fakeRows{}}

	got, err := postgres.NewPolicyRepository(db).ListByUser(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("want empty non-nil slice, got %#v", got)
	}
}

func TestPolicyListByUser_Rows(t *testing.T) {
	db := &fakeDB{rows: &fakeRows{data: [][]any{policyRow(1), policyRow(2)}}}

	got, err := postgres.NewPolicyRepository(db).ListByUser(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 2 {
		t.Errorf("unexpected policies %+v", got)
	}
}

func TestPolicyListByUser_QueryError(t *testing.T) {
	db := &fakeDB{queryErr: errors.New("boom")}

	_, err := postgres.NewPolicyRepository(db).ListByUser(context.Background(), 1)
	if !errors.Is(err, domain.ErrPersistence) {
		t.Errorf("want ErrPersistence, got %v", err)
	}
}
