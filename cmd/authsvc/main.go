package main

import (
	"context"
	"database/sql"
	"log"

	"github.com/caarlos0/env/v11"
	"github.com/gofiber/fiber/v2"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	auth "github.com/webstack-labs/authsvc"
)

// Config is the environment-backed service configuration. The signing key
// has no default on purpose: a missing secret is a startup fault, not
// something to paper over with a baked-in value.
type Config struct {
	Addr            string `env:"AUTHSVC_ADDR" envDefault:":3001"`
	SigningKey      string `env:"AUTHSVC_SIGNING_KEY,notEmpty"`
	TokenExpiration int    `env:"AUTHSVC_TOKEN_EXPIRATION" envDefault:"1"`
	Issuer          string `env:"AUTHSVC_ISSUER" envDefault:"authsvc"`
	ContextKey      string `env:"AUTHSVC_CONTEXT_KEY" envDefault:"user"`
	TokenLookup     string `env:"AUTHSVC_TOKEN_LOOKUP" envDefault:"header:Authorization"`
	AuthScheme      string `env:"AUTHSVC_AUTH_SCHEME" envDefault:"Bearer"`
	// DSN selects the durable store; empty means the in-memory reference
	// store, e.g. "file:authsvc.db" for sqlite.
	DSN   string `env:"AUTHSVC_DSN"`
	Debug bool   `env:"AUTHSVC_DEBUG"`
}

func (c Config) GetSigningKey() string   { return c.SigningKey }
func (c Config) GetTokenExpiration() int { return c.TokenExpiration }
func (c Config) GetIssuer() string       { return c.Issuer }
func (c Config) GetContextKey() string   { return c.ContextKey }
func (c Config) GetTokenLookup() string  { return c.TokenLookup }
func (c Config) GetAuthScheme() string   { return c.AuthScheme }

var _ auth.Config = Config{}

func main() {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	store, err := newStore(context.Background(), cfg)
	if err != nil {
		log.Fatalf("store error: %v", err)
	}

	auther := auth.NewAuthenticator(store, cfg)

	app := fiber.New()

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Authentication and Authorization Service",
			"version": "1.0.0",
		})
	})

	gate := auth.ProtectedRoute(cfg, auther.TokenService())
	auth.RegisterAuthRoutes(app, gate, func(ac *auth.AuthController) *auth.AuthController {
		ac.Auther = auther
		ac.Debug = cfg.Debug
		ac.ContextKey = cfg.ContextKey
		return ac
	})

	if err := app.Listen(cfg.Addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// newStore picks the credential store: a DSN selects the bun backed sqlite
// store, otherwise the process keeps credentials in memory.
func newStore(ctx context.Context, cfg Config) (auth.CredentialStore, error) {
	if cfg.DSN == "" {
		return auth.NewMemoryStore(), nil
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DSN)
	if err != nil {
		return nil, err
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	store := auth.NewBunStore(db)
	if err := store.Setup(ctx); err != nil {
		return nil, err
	}

	return store, nil
}
