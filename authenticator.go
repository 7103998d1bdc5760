package auth

import (
	"context"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/nyaruka/phonenumbers"
)

// DefaultPhoneRegion is the region hint for phone numbers submitted
// without a country prefix.
var DefaultPhoneRegion = "US"

// RegisterUserMessage is the registration input. Username, Email and
// Password are required; Phone is optional and normalized to E.164.
type RegisterUserMessage struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone_number"`
	Password string `json:"password"`
}

func (e RegisterUserMessage) Type() string { return "user.register" }

// Auther orchestrates the registration and login flows over an injected
// credential store and token service. It owns no global state: store and
// signing key are explicit dependencies so they can be swapped in tests.
type Auther struct {
	store           CredentialStore
	tokenService    TokenService
	signingKey      []byte
	tokenExpiration int
	issuer          string
	logger          Logger
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(store CredentialStore, opts Config) *Auther {
	tokenService := NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetTokenExpiration(),
		opts.GetIssuer(),
		defLogger{},
	)

	return &Auther{
		store:           store,
		tokenService:    tokenService,
		signingKey:      []byte(opts.GetSigningKey()),
		tokenExpiration: opts.GetTokenExpiration(),
		issuer:          opts.GetIssuer(),
		logger:          defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = logger
	s.tokenService = NewTokenService(
		s.signingKey,
		s.tokenExpiration,
		s.issuer,
		logger,
	)
	return s
}

// WithTokenService sets a custom token service, mostly useful in tests.
func (s *Auther) WithTokenService(ts TokenService) *Auther {
	s.tokenService = ts
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Register validates the payload, hashes the password, and inserts a new
// credential record. The store settles email uniqueness atomically, so two
// concurrent registrations of one email produce exactly one record.
func (s *Auther) Register(ctx context.Context, payload RegisterUserMessage) (*User, error) {
	if payload.Username == "" || payload.Email == "" || payload.Password == "" {
		return nil, ErrMissingFields
	}

	phone, err := normalizePhone(payload.Phone)
	if err != nil {
		return nil, err
	}

	hash, err := HashPassword(payload.Password)
	if err != nil {
		var richErr *errors.Error
		if errors.As(err, &richErr) {
			return nil, richErr
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
	}

	user := &User{
		ID:           newUserID(payload.Email),
		Username:     getUsername(payload.Username, payload.Email),
		Email:        NormalizeEmail(payload.Email),
		Phone:        phone,
		PasswordHash: hash,
	}

	record, err := s.store.Insert(ctx, user)
	if err != nil {
		var richErr *errors.Error
		if errors.As(err, &richErr) {
			return nil, richErr
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to store credential record")
	}

	s.logger.Info("registered new identity %s (%s)", record.ID.String(), record.Email)

	return record, nil
}

// Login verifies the credentials and issues a signed token. An unknown
// email and a password mismatch both surface as ErrInvalidCredentials; the
// caller learns nothing about which one happened.
func (s *Auther) Login(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", ErrMissingFields
	}

	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.IsNotFound(err) {
			return "", ErrInvalidCredentials
		}
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during verification")
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrMismatchedHashAndPassword) {
			return "", ErrInvalidCredentials
		}
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to compare password digest")
	}

	token, err := s.tokenService.Generate(identityFromUser(user))
	if err != nil {
		s.logger.Error("login failed to generate token: %s", err)
		return "", err
	}

	return token, nil
}

type authIdentity struct {
	id       string
	username string
	email    string
}

func (a authIdentity) ID() string       { return a.id }
func (a authIdentity) Username() string { return a.username }
func (a authIdentity) Email() string    { return a.email }

var _ Identity = authIdentity{}

func identityFromUser(user *User) authIdentity {
	return authIdentity{
		id:       user.ID.String(),
		username: user.Username,
		email:    user.Email,
	}
}

// newUserID derives a stable id from the email, falling back to a random
// uuid if the derivation fails.
func newUserID(email string) uuid.UUID {
	if id, err := hashid.NewUUID(NormalizeEmail(email)); err == nil {
		return id
	}
	return uuid.New()
}

func getUsername(username, email string) string {
	if username != "" {
		return username
	}

	if strings.Contains(email, "@") {
		username = strings.Split(email, "@")[0]
	}

	return username
}

// normalizePhone validates an optional phone number and formats it as
// E.164. An empty input is fine; registration does not require a phone.
func normalizePhone(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}

	num, err := phonenumbers.Parse(raw, DefaultPhoneRegion)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", ErrInvalidPhone.Clone().WithMetadata(map[string]any{
			"phone": raw,
		})
	}

	return phonenumbers.Format(num, phonenumbers.E164), nil
}
