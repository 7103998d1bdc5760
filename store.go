package auth

import (
	"context"
	"strings"
	"sync"

	"github.com/goliatone/go-errors"
)

// NormalizeEmail is the canonical form used as the store key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func identityNotFound(email string) *errors.Error {
	return errors.New("identity not found", errors.CategoryNotFound).
		WithTextCode(TextCodeIdentityNotFound).
		WithCode(errors.CodeNotFound).
		WithMetadata(map[string]any{
			"email": email,
		})
}

// MemoryStore is the reference CredentialStore. It is volatile: records
// live for the process lifetime only. A single mutex covers the whole map,
// which keeps the duplicate check and the insert atomic per email; the
// store is small enough that one mutual exclusion domain is fine.
type MemoryStore struct {
	mu    sync.Mutex
	users map[string]*User
}

var _ CredentialStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory credential store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[string]*User),
	}
}

// Insert appends a record, failing with ErrIdentityExists when the email is
// already taken. Of N concurrent inserts for one email exactly one wins.
func (s *MemoryStore) Insert(ctx context.Context, user *User) (*User, error) {
	key := NormalizeEmail(user.Email)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[key]; ok {
		return nil, ErrIdentityExists.Clone().WithMetadata(map[string]any{
			"email": user.Email,
		})
	}

	record := user.Clone()
	s.users[key] = record

	return record.Clone(), nil
}

// FindByEmail returns the matching record or a not-found error. Absence is
// a normal outcome, not a fault; callers test it with errors.IsNotFound.
func (s *MemoryStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	key := NormalizeEmail(email)

	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.users[key]
	if !ok {
		return nil, identityNotFound(email)
	}

	return record.Clone(), nil
}

// Len reports the number of live records. Used by tests.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}
