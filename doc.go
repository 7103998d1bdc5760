// Package auth implements a minimal credential-issuance and
// request-authorization service: user registration, password verification,
// signed time-limited access tokens, and a bearer-token gate for protected
// routes.
//
// The core is the credential store plus the token lifecycle: bcrypt
// password digests, HS256 JWTs with a one hour default TTL, and a
// middleware that distinguishes an absent token (401) from a presented but
// rejected one (403). Stores, signing key and loggers are injected
// dependencies, never package globals.
package auth
