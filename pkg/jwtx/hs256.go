package jwtx

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the minimum HMAC secret length in bytes (256 bits).
const MinSecretLength = 32

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")
	ErrIssuer      = errors.New("jwtx: issuer mismatch")
	ErrAudience    = errors.New("jwtx: audience mismatch")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
	ErrWeakSecret  = errors.New("jwtx: signing secret shorter than 256 bits")
)

// Verifier validates a token string and gives back the claims if it's legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// HS256Signer signs identity claims with HMAC-SHA-256 over a shared secret.
type HS256Signer struct {
	secret []byte
}

// NewSignerHS256 creates an HS256 signer. Secrets shorter than 256 bits
// are rejected so a weak or placeholder secret can never sign tokens.
func NewSignerHS256(secret []byte) (*HS256Signer, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}
	return &HS256Signer{secret: secret}, nil
}

// Sign takes claims and turns them into a signed compact JWT string.
func (s *HS256Signer) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// HS256Verifier validates tokens signed with the shared HMAC secret and
// enforces issuer, audience and lifetime claims.
type HS256Verifier struct {
	secret []byte
	issuer string
	aud    []string
}

// NewVerifierHS256 creates a verifier bound to the shared secret and the
// expected issuer/audience values.
func NewVerifierHS256(secret []byte, issuer string, aud []string) (*HS256Verifier, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}
	return &HS256Verifier{secret: secret, issuer: issuer, aud: aud}, nil
}

// Verify validates the token string and returns its parsed Claims.
func (v *HS256Verifier) Verify(tokenStr string) (Claims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Claims{}, ErrInvalidSig
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, ErrExpired
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return Claims{}, ErrNotYetValid
		case errors.Is(err, jwt.ErrTokenMalformed):
			return Claims{}, ErrMalformed
		}
		return Claims{}, fmt.Errorf("jwtx: parse or verify: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Claims{}, ErrMalformed
	}

	if err := claims.ValidateIssuer(v.issuer); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateAudience(v.aud); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateExpiry(); err != nil {
		return Claims{}, err
	}

	return *claims, nil
}
