package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/webstack-labs/authsvc/middleware/jwtware"
)

// GateValidator adapts a TokenService to the middleware's validator
// interface without creating an import cycle.
func GateValidator(ts TokenService) jwtware.TokenValidatorFunc {
	return func(raw string) (jwtware.AuthClaims, error) {
		claims, err := ts.Validate(raw)
		if err != nil {
			return nil, err
		}
		return claims, nil
	}
}

// ContextEnricherAdapter stores verified claims in the standard context so
// protected handlers can read them without touching fiber locals.
func ContextEnricherAdapter(c context.Context, claims jwtware.AuthClaims) context.Context {
	if authClaims, ok := claims.(AuthClaims); ok {
		return WithClaimsContext(c, authClaims)
	}
	return c
}

// ProtectedRoute builds the access-gate middleware for a token service.
// Requests without a token get 401, requests with a token that fails
// verification get 403, everything else proceeds with claims attached.
func ProtectedRoute(cfg Config, ts TokenService) fiber.Handler {
	return jwtware.New(jwtware.Config{
		TokenValidator:  GateValidator(ts),
		ContextKey:      cfg.GetContextKey(),
		TokenLookup:     cfg.GetTokenLookup(),
		AuthScheme:      cfg.GetAuthScheme(),
		ContextEnricher: ContextEnricherAdapter,
	})
}
