package auth_test

import (
	"context"
	"database/sql"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	auth "github.com/webstack-labs/authsvc"
)

func newBunStore(t *testing.T) *auth.BunStore {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	assert.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })

	store := auth.NewBunStore(db)
	assert.NoError(t, store.Setup(context.Background()))

	return store
}

func TestBunStore(t *testing.T) {
	ctx := context.Background()

	t.Run("insert and find round trip", func(t *testing.T) {
		store := newBunStore(t)

		inserted, err := store.Insert(ctx, newTestUser("pepe@example.com"))
		assert.NoError(t, err)

		found, err := store.FindByEmail(ctx, "pepe@example.com")
		assert.NoError(t, err)
		assert.Equal(t, inserted.ID, found.ID)
		assert.Equal(t, inserted.PasswordHash, found.PasswordHash)
	})

	t.Run("duplicate email hits the unique index", func(t *testing.T) {
		store := newBunStore(t)

		_, err := store.Insert(ctx, newTestUser("pepe@example.com"))
		assert.NoError(t, err)

		_, err = store.Insert(ctx, newTestUser("PEPE@example.com"))
		assert.Error(t, err)

		var richErr *goerrors.Error
		assert.ErrorAs(t, err, &richErr)
		assert.Equal(t, auth.TextCodeIdentityExists, richErr.TextCode)
	})

	t.Run("absence is a not-found outcome", func(t *testing.T) {
		store := newBunStore(t)

		found, err := store.FindByEmail(ctx, "nobody@example.com")
		assert.Nil(t, found)
		assert.True(t, goerrors.IsNotFound(err))
	})
}
