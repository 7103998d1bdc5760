package auth

import (
	"context"
	"database/sql"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// BunStore is a CredentialStore backed by a bun database. The volatile
// MemoryStore is the reference implementation; this one exists for
// deployments that want credentials to survive a restart. Uniqueness is
// enforced by the unique index on the email column, so the check-then-insert
// race is settled by the database.
type BunStore struct {
	db *bun.DB
}

var _ CredentialStore = (*BunStore)(nil)

// NewBunStore wraps a bun.DB as a credential store.
func NewBunStore(db *bun.DB) *BunStore {
	return &BunStore{db: db}
}

// Setup creates the users table when it does not exist yet.
func (s *BunStore) Setup(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*User)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to create users table")
	}
	return nil
}

// Insert stores the record, translating the driver's unique-violation error
// into ErrIdentityExists.
func (s *BunStore) Insert(ctx context.Context, user *User) (*User, error) {
	record := user.Clone()
	record.Email = NormalizeEmail(record.Email)

	if _, err := s.db.NewInsert().Model(record).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrIdentityExists.Clone().WithMetadata(map[string]any{
				"email": user.Email,
			})
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to insert credential record")
	}

	return record, nil
}

// FindByEmail returns the matching record or a not-found error.
func (s *BunStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	record := &User{}

	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", NormalizeEmail(email)).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, identityNotFound(email)
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to look up credential record")
	}

	return record, nil
}

// isUniqueViolation matches the constraint errors sqlite and postgres
// drivers report for a duplicate email.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint") ||
		strings.Contains(msg, "constraint failed")
}
