package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the default bearer token lifetime. Tokens are
// stateless, so role or status changes are not reflected until reissue;
// keep this short enough that stale grants age out quickly.
const DefaultTokenTTL = 8 * time.Hour

// Claims are the identity claims embedded in a bearer token: who the
// subject is and which roles they held at issuance time.
type Claims struct {
	jwt.RegisteredClaims

	// Username for the authenticated user.
	Username string `json:"username,omitempty"`

	// Email address of the authenticated user.
	Email string `json:"email,omitempty"`

	// Roles holds the flattened role names at issuance time.
	Roles []string `json:"roles,omitempty"`
}

// NewIdentityClaims builds minimally-correct claims for a bearer token.
func NewIdentityClaims(
	subject, username, email string,
	roles []string,
	ttl time.Duration,
	issuer string,
	audience []string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings(audience),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Username: username,
		Email:    email,
		Roles:    roles,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateIssuer checks if the issuer matches the expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}

	if c.Issuer != expected {
		return ErrIssuer
	}

	return nil
}

// ValidateAudience checks if at least one expected audience is present.
func (c *Claims) ValidateAudience(expected []string) error {
	if len(expected) == 0 {
		return nil // nothing to enforce
	}

	for _, want := range expected {
		if slices.Contains(c.Audience, want) {
			return nil
		}
	}

	return ErrAudience
}

// ValidateExpiry ensures now is inside [nbf, exp) with zero clock-skew
// tolerance.
func (c *Claims) ValidateExpiry() error {
	now := time.Now().UTC()

	if c.ExpiresAt != nil && !now.Before(c.ExpiresAt.Time) {
		return ErrExpired
	}

	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}

	return nil
}
