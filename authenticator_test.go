package auth_test

import (
	"context"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	auth "github.com/webstack-labs/authsvc"
)

type testConfig struct {
	signingKey      string
	tokenExpiration int
	issuer          string
}

func (c testConfig) GetSigningKey() string   { return c.signingKey }
func (c testConfig) GetTokenExpiration() int { return c.tokenExpiration }
func (c testConfig) GetIssuer() string       { return c.issuer }
func (c testConfig) GetContextKey() string   { return "user" }
func (c testConfig) GetTokenLookup() string  { return "header:Authorization" }
func (c testConfig) GetAuthScheme() string   { return "Bearer" }

func newTestAuther() (*auth.Auther, *auth.MemoryStore) {
	store := auth.NewMemoryStore()
	auther := auth.NewAuthenticator(store, testConfig{
		signingKey:      "test-signing-key",
		tokenExpiration: 1,
		issuer:          "test-issuer",
	})
	return auther, store
}

func TestAuther_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("registers a new identity", func(t *testing.T) {
		auther, store := newTestAuther()

		user, err := auther.Register(ctx, auth.RegisterUserMessage{
			Username: "peperone",
			Email:    "pepe@example.com",
			Password: "super-secret-password",
		})

		assert.NoError(t, err)
		assert.NotNil(t, user)
		assert.Equal(t, "peperone", user.Username)
		assert.Equal(t, "pepe@example.com", user.Email)
		assert.NotEmpty(t, user.ID)
		assert.NotEmpty(t, user.PasswordHash)
		assert.NotEqual(t, "super-secret-password", user.PasswordHash)
		assert.Equal(t, 1, store.Len())
	})

	t.Run("fails when a required field is missing", func(t *testing.T) {
		auther, store := newTestAuther()

		_, err := auther.Register(ctx, auth.RegisterUserMessage{
			Username: "peperone",
			Email:    "pepe@example.com",
		})

		assert.ErrorIs(t, err, auth.ErrMissingFields)
		assert.Equal(t, 0, store.Len())
	})

	t.Run("fails when the email is already registered", func(t *testing.T) {
		auther, store := newTestAuther()

		payload := auth.RegisterUserMessage{
			Username: "peperone",
			Email:    "pepe@example.com",
			Password: "super-secret-password",
		}

		_, err := auther.Register(ctx, payload)
		assert.NoError(t, err)

		_, err = auther.Register(ctx, payload)
		assert.Error(t, err)

		var richErr *goerrors.Error
		assert.ErrorAs(t, err, &richErr)
		assert.Equal(t, auth.TextCodeIdentityExists, richErr.TextCode)
		assert.Equal(t, 1, store.Len())
	})

	t.Run("normalizes an optional phone number", func(t *testing.T) {
		auther, _ := newTestAuther()

		user, err := auther.Register(ctx, auth.RegisterUserMessage{
			Username: "peperone",
			Email:    "pepe@example.com",
			Phone:    "(212) 555-0175",
			Password: "super-secret-password",
		})

		assert.NoError(t, err)
		assert.Equal(t, "+12125550175", user.Phone)
	})

	t.Run("rejects an invalid phone number", func(t *testing.T) {
		auther, store := newTestAuther()

		_, err := auther.Register(ctx, auth.RegisterUserMessage{
			Username: "peperone",
			Email:    "pepe@example.com",
			Phone:    "not-a-phone",
			Password: "super-secret-password",
		})

		var richErr *goerrors.Error
		assert.ErrorAs(t, err, &richErr)
		assert.Equal(t, auth.TextCodeInvalidPhone, richErr.TextCode)
		assert.Equal(t, 0, store.Len())
	})
}

func TestAuther_Login(t *testing.T) {
	ctx := context.Background()

	register := func(t *testing.T, auther *auth.Auther) {
		t.Helper()
		_, err := auther.Register(ctx, auth.RegisterUserMessage{
			Username: "peperone",
			Email:    "pepe@example.com",
			Password: "super-secret-password",
		})
		assert.NoError(t, err)
	}

	t.Run("register then login yields a verifiable token", func(t *testing.T) {
		auther, _ := newTestAuther()
		register(t, auther)

		token, err := auther.Login(ctx, "pepe@example.com", "super-secret-password")

		assert.NoError(t, err)
		assert.NotEmpty(t, token)

		claims, err := auther.TokenService().Validate(token)
		assert.NoError(t, err)
		assert.NotEmpty(t, claims.UserID())
	})

	t.Run("wrong password fails with invalid credentials", func(t *testing.T) {
		auther, _ := newTestAuther()
		register(t, auther)

		token, err := auther.Login(ctx, "pepe@example.com", "wrong-password")

		assert.Empty(t, token)
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("unknown email fails with the identical error", func(t *testing.T) {
		auther, _ := newTestAuther()
		register(t, auther)

		_, wrongPassword := auther.Login(ctx, "pepe@example.com", "wrong-password")
		_, unknownEmail := auther.Login(ctx, "nobody@example.com", "super-secret-password")

		assert.ErrorIs(t, wrongPassword, auth.ErrInvalidCredentials)
		assert.ErrorIs(t, unknownEmail, auth.ErrInvalidCredentials)
		// No distinguishing signal between the two failure modes
		assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
	})

	t.Run("missing fields fail before any lookup", func(t *testing.T) {
		auther, _ := newTestAuther()

		_, err := auther.Login(ctx, "", "")
		assert.ErrorIs(t, err, auth.ErrMissingFields)
	})

	t.Run("login does not mutate the store", func(t *testing.T) {
		auther, store := newTestAuther()
		register(t, auther)

		before := store.Len()
		_, _ = auther.Login(ctx, "pepe@example.com", "super-secret-password")
		_, _ = auther.Login(ctx, "pepe@example.com", "wrong-password")

		assert.Equal(t, before, store.Len())
	})
}
