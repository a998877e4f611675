//go:generate go run go.uber.org/mock/mockgen -source=service.go -destination=../../mocks/mock_credential_store.go -package=mocks
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iamasit07/dm-chat/internal/domain"
	"github.com/iamasit07/dm-chat/pkg/auth"
	"github.com/rs/zerolog"
)

// CredentialStore keeps password hashes by username.
// CreateUser must return domain.ErrDuplicateUser for a taken name and domain.ErrNotFound
// from GetUserByUsername for an unknown one.
type CredentialStore interface {
	CreateUser(ctx context.Context, username, passwordHash string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
}

// AuthService registers users, issues session tokens and verifies them.
type AuthService struct {
	store      CredentialStore
	secret     []byte
	ttl        time.Duration
	bcryptCost int
	now        func() time.Time
	log        zerolog.Logger
}

type Option func(*AuthService)

// WithClock replaces time.Now for token issue and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *AuthService) { s.now = now }
}

func WithBcryptCost(cost int) Option {
	return func(s *AuthService) { s.bcryptCost = cost }
}

func WithLogger(log zerolog.Logger) Option {
	return func(s *AuthService) { s.log = log }
}

func NewAuthService(store CredentialStore, secret []byte, ttl time.Duration, opts ...Option) *AuthService {
	s := &AuthService{
		store:      store,
		secret:     secret,
		ttl:        ttl,
		bcryptCost: 10,
		now:        time.Now,
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register validates and stores a new user.
func (s *AuthService) Register(ctx context.Context, username, password string) error {
	if err := auth.ValidateCredentials(auth.CredentialsRequest{Username: username, Password: password}); err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidUsername):
			return fmt.Errorf("%w: %v", domain.ErrInvalidUsername, err)
		case errors.Is(err, auth.ErrInvalidPassword):
			return fmt.Errorf("%w: %v", domain.ErrInvalidPassword, err)
		default:
			return fmt.Errorf("%w: %v", domain.ErrBadRequest, err)
		}
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, username, hash)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateUser) {
			return domain.ErrDuplicateUser
		}
		return storeError(err)
	}

	s.log.Info().Str("username", user.Username).Int64("user_id", user.ID).Msg("user registered")
	return nil
}

// Login checks the password and issues a token valid for the configured TTL.
// Unknown users and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrInvalidCredentials
		}
		return "", storeError(err)
	}

	if !auth.CheckPasswordHash(password, user.PasswordHash) {
		return "", domain.ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.Username, s.secret, s.ttl, s.now())
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// Verify returns the username a token was issued to.
func (s *AuthService) Verify(token string) (string, error) {
	claims, err := auth.ValidateToken(token, s.secret, s.now)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return "", domain.ErrTokenExpired
		}
		return "", domain.ErrTokenInvalid
	}
	return claims.Username(), nil
}

func storeError(err error) error {
	if errors.Is(err, domain.ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
}
