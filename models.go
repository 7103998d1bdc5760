package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is one registered identity. The password digest never leaves the
// process: it is excluded from JSON and only ever compared through the
// password hasher. Records are immutable after creation.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID `bun:"id,pk,type:uuid" json:"id,omitempty"`
	Username      string    `bun:"username,notnull" json:"username,omitempty"`
	Email         string    `bun:"email,notnull,unique" json:"email,omitempty"`
	Phone         string    `bun:"phone_number" json:"phone_number,omitempty"`
	PasswordHash  string    `bun:"password_hash,notnull" json:"-"`
	CreatedAt     time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// Clone returns a copy safe to hand across goroutine boundaries.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
