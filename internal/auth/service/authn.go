package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/vultlabs/vult/internal/auth/domain"
	"github.com/vultlabs/vult/internal/auth/store"
	"github.com/vultlabs/vult/pkg/cryptox"
	"github.com/vultlabs/vult/pkg/idx"
	"github.com/vultlabs/vult/pkg/slogx"
)

var (
	// ErrInvalidCredentials is the uniform login failure. Unknown
	// username, wrong password and non-active account status all return
	// this and nothing else.
	ErrInvalidCredentials = errors.New("invalid_credentials")

	ErrInvalidRegistration = errors.New("invalid_registration")
	ErrAccountExists       = errors.New("account_exists")
)

// AuthnService authenticates users and registers new accounts.
type AuthnService struct {
	Store  store.Store
	Hasher cryptox.Hasher
	Tokens *TokenService

	// sem bounds concurrent PBKDF2 derivations so a burst of logins
	// cannot starve request handling.
	sem chan struct{}

	// decoyHash is verified against when the username is unknown, so the
	// failure path costs one key derivation either way.
	decoyHash string
}

// NewAuthnService wires an authentication service. maxConcurrentHashes
// caps in-flight PBKDF2 work; values below 1 default to 4.
func NewAuthnService(st store.Store, hasher cryptox.Hasher, tokens *TokenService, maxConcurrentHashes int) (*AuthnService, error) {
	if maxConcurrentHashes < 1 {
		maxConcurrentHashes = 4
	}

	decoyPassword, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}
	decoyHash, err := hasher.Hash(decoyPassword)
	if err != nil {
		return nil, err
	}

	return &AuthnService{
		Store:     st,
		Hasher:    hasher,
		Tokens:    tokens,
		sem:       make(chan struct{}, maxConcurrentHashes),
		decoyHash: decoyHash,
	}, nil
}

// Authenticate checks a username/password pair and, on success, returns
// the user and a freshly issued bearer token.
//
// Every failure is ErrInvalidCredentials. The unknown-username path burns
// a key derivation against a decoy hash so response timing does not
// reveal whether the account exists, and a disabled account's password is
// still verified before the uniform failure is returned.
func (s *AuthnService) Authenticate(ctx context.Context, username, password string) (domain.User, string, error) {
	log := slogx.FromContext(ctx)

	if username == "" || password == "" {
		return domain.User{}, "", ErrInvalidCredentials
	}

	u, lookupErr := s.Store.Users().GetUserByUsername(ctx, username)
	if lookupErr != nil && !errors.Is(lookupErr, store.ErrNotFound) {
		log.Error("user lookup failed", slog.Any("error", lookupErr))
		return domain.User{}, "", lookupErr
	}

	storedHash := s.decoyHash
	if lookupErr == nil {
		storedHash = u.PasswordHash
	}

	match, err := s.verifyBounded(ctx, password, storedHash)
	if err != nil {
		return domain.User{}, "", err
	}

	if lookupErr != nil || !match || !u.CanAuthenticate() {
		if lookupErr == nil {
			if err := s.Store.Users().RecordLoginFailure(ctx, u.ID); err != nil {
				log.Error("failed to record login failure", slog.Any("error", err))
			}
		}
		log.Warn("authentication failed", slog.String("username", username))
		return domain.User{}, "", ErrInvalidCredentials
	}

	if err := s.Store.Users().RecordLoginSuccess(ctx, u.ID); err != nil {
		log.Error("failed to record login success", slog.Any("error", err))
	}

	roles, err := s.Store.Roles().ListForUser(ctx, u.ID)
	if err != nil {
		log.Error("failed to load roles for login", slog.Any("error", err))
		return domain.User{}, "", err
	}

	token, err := s.Tokens.Issue(ctx, u, domain.RoleNames(roles))
	if err != nil {
		return domain.User{}, "", err
	}

	log.Info("user authenticated", slog.String("user_id", u.ID))
	return u, token, nil
}

// verifyBounded runs the PBKDF2 comparison through the semaphore,
// honoring context cancellation while waiting for a slot.
func (s *AuthnService) verifyBounded(ctx context.Context, password, encoded string) (bool, error) {
	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return false, ctx.Err()
	}
	defer func() { <-s.sem }()

	return s.Hasher.Verify(password, encoded), nil
}

// Register creates a new active account with no roles. Duplicate
// username or email surfaces as ErrAccountExists.
func (s *AuthnService) Register(ctx context.Context, username, email, password string) (domain.User, error) {
	log := slogx.FromContext(ctx)

	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return domain.User{}, ErrInvalidRegistration
	}

	hash, err := s.hashBounded(ctx, password)
	if err != nil {
		return domain.User{}, err
	}

	u := domain.User{
		ID:           idx.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Status:       domain.UserActive,
	}

	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			log.Warn("registration conflict", slog.String("username", username))
			return domain.User{}, ErrAccountExists
		}
		log.Error("failed to create user", slog.Any("error", err))
		return domain.User{}, err
	}

	log.Info("user registered", slog.String("user_id", u.ID))
	return u, nil
}

func (s *AuthnService) hashBounded(ctx context.Context, password string) (string, error) {
	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	defer func() { <-s.sem }()

	return s.Hasher.Hash(password)
}
