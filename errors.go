package auth

import (
	"github.com/goliatone/go-errors"
)

const (
	TextCodeMissingFields       = "auth_missing_fields"
	TextCodeIdentityExists      = "auth_identity_exists"
	TextCodeIdentityNotFound    = "auth_identity_not_found"
	TextCodeInvalidCredentials  = "auth_invalid_credentials"
	TextCodeInvalidPhone        = "auth_invalid_phone"
	TextCodeTokenExpired        = "auth_token_expired"
	TextCodeTokenMalformed      = "auth_token_malformed"
	TextCodeTokenBadSignature   = "auth_token_bad_signature"
	TextCodeMissingToken        = "auth_missing_token"
)

// ErrMissingFields is returned when a required registration or login field is absent.
var ErrMissingFields = errors.New("Please enter all fields", errors.CategoryValidation).
	WithTextCode(TextCodeMissingFields).
	WithCode(errors.CodeBadRequest)

// ErrIdentityExists is returned when registering an email that is already taken.
var ErrIdentityExists = errors.New("User already exists", errors.CategoryConflict).
	WithTextCode(TextCodeIdentityExists).
	WithCode(errors.CodeBadRequest)

// ErrIdentityNotFound is the error we return for non found identities.
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryNotFound).
	WithTextCode(TextCodeIdentityNotFound).
	WithCode(errors.CodeNotFound)

// ErrInvalidCredentials covers both an unknown email and a password mismatch.
// The message is deliberately identical for both so callers cannot probe
// which emails are registered.
var ErrInvalidCredentials = errors.New("Invalid credentials", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(errors.CodeBadRequest)

// ErrInvalidPhone is returned when an optional phone number fails normalization.
var ErrInvalidPhone = errors.New("Invalid phone number", errors.CategoryValidation).
	WithTextCode(TextCodeInvalidPhone).
	WithCode(errors.CodeBadRequest)

// ErrTokenExpired is returned when a token's expiry has passed.
var ErrTokenExpired = errors.New("Token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeForbidden)

// ErrTokenMalformed is returned when a token string cannot be parsed.
var ErrTokenMalformed = errors.New("Token is malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeForbidden)

// ErrTokenBadSignature is returned when the token signature does not verify
// against the configured signing key.
var ErrTokenBadSignature = errors.New("Token signature is invalid", errors.CategoryAuth).
	WithTextCode(TextCodeTokenBadSignature).
	WithCode(errors.CodeForbidden)

// ErrMissingToken is returned when a request carries no bearer token at all.
var ErrMissingToken = errors.New("No token, authorization denied", errors.CategoryAuth).
	WithTextCode(TextCodeMissingToken).
	WithCode(errors.CodeUnauthorized)

// ErrNoEmptyString rejects empty passwords before hashing.
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryValidation).
	WithCode(errors.CodeBadRequest)

// ErrMismatchedHashAndPassword is the internal mismatch signal from the
// password hasher. Flows fold it into ErrInvalidCredentials before it ever
// reaches a client.
var ErrMismatchedHashAndPassword = errors.New("mismatched hash and password", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized)
