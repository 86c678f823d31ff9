package service

import (
	"context"
	"errors"
	"time"

	"github.com/vultlabs/vult/internal/auth/domain"
	"github.com/vultlabs/vult/pkg/jwtx"
	"github.com/vultlabs/vult/pkg/slogx"
)

// ErrInvalidToken is the uniform answer for every kind of verification
// failure. Callers never learn whether the signature, issuer, audience or
// lifetime was at fault.
var ErrInvalidToken = errors.New("invalid_token")

// TokenService issues and verifies the bearer tokens that carry a user's
// identity and role set.
type TokenService struct {
	Signer   *jwtx.HS256Signer
	Verifier jwtx.Verifier

	Issuer   string
	Audience []string
	TTL      time.Duration
}

// Issue signs a bearer token for the given user carrying their flattened
// role names. The token's lifetime is the service TTL.
func (s *TokenService) Issue(ctx context.Context, user domain.User, roleNames []string) (string, error) {
	log := slogx.FromContext(ctx)

	ttl := s.TTL
	if ttl <= 0 {
		ttl = jwtx.DefaultTokenTTL
	}

	claims := jwtx.NewIdentityClaims(
		user.ID, user.Username, user.Email,
		roleNames, ttl, s.Issuer, s.Audience, time.Now().UTC(),
	)

	token, err := s.Signer.Sign(claims)
	if err != nil {
		log.Error("failed to sign bearer token", "user_id", user.ID, "err", err)
		return "", err
	}
	return token, nil
}

// Verify validates a bearer token and returns its claims. Any failure
// collapses into ErrInvalidToken.
func (s *TokenService) Verify(ctx context.Context, token string) (jwtx.Claims, error) {
	claims, err := s.Verifier.Verify(token)
	if err != nil {
		slogx.FromContext(ctx).Debug("token verification failed", "err", err)
		return jwtx.Claims{}, ErrInvalidToken
	}
	return claims, nil
}

// ExtractSubject pulls the subject out of a token WITHOUT verifying its
// signature. Only safe for non-authoritative uses such as log correlation
// on requests that already failed verification.
func (s *TokenService) ExtractSubject(token string) (string, bool) {
	return jwtx.ExtractSubject(token)
}
