package jwtx

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestNewIdentityClaims(t *testing.T) {
	now := time.Now().UTC()
	c := NewIdentityClaims(
		"subject-id", "bob", "bob@example.com",
		[]string{"viewer"},
		time.Hour,
		"vult-auth", []string{"vult-app"},
		now,
	)

	require.Equal(t, "subject-id", c.Subject)
	require.Equal(t, "bob", c.Username)
	require.Equal(t, "bob@example.com", c.Email)
	require.Equal(t, []string{"viewer"}, c.Roles)
	require.Equal(t, "vult-auth", c.Issuer)
	require.Equal(t, jwt.ClaimStrings{"vult-app"}, c.Audience)
	require.Equal(t, now.Unix(), c.IssuedAt.Unix())
	require.Equal(t, now.Unix(), c.NotBefore.Unix())
	require.Equal(t, now.Add(time.Hour).Unix(), c.ExpiresAt.Unix())
	require.NotEmpty(t, c.ID, "jti should be set")
}

func TestNewJTI_Unique(t *testing.T) {
	seen := make(map[string]struct{}, 100)
	for range 100 {
		jti := NewJTI()
		require.NotContains(t, seen, jti)
		seen[jti] = struct{}{}
	}
}

func TestValidateIssuer(t *testing.T) {
	c := Claims{RegisteredClaims: jwt.RegisteredClaims{Issuer: "vult-auth"}}

	require.NoError(t, c.ValidateIssuer("vult-auth"))
	require.NoError(t, c.ValidateIssuer(""), "empty expectation enforces nothing")
	require.ErrorIs(t, c.ValidateIssuer("other"), ErrIssuer)
}

func TestValidateAudience(t *testing.T) {
	c := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Audience: jwt.ClaimStrings{"vult-app", "vult-cli"},
	}}

	require.NoError(t, c.ValidateAudience([]string{"vult-cli"}))
	require.NoError(t, c.ValidateAudience(nil), "empty expectation enforces nothing")
	require.ErrorIs(t, c.ValidateAudience([]string{"unknown"}), ErrAudience)
}

func TestValidateExpiry_ZeroSkew(t *testing.T) {
	now := time.Now().UTC()

	valid := Claims{RegisteredClaims: jwt.RegisteredClaims{
		NotBefore: jwt.NewNumericDate(now.Add(-time.Minute)),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
	}}
	require.NoError(t, valid.ValidateExpiry())

	expired := Claims{RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(-time.Second)),
	}}
	require.ErrorIs(t, expired.ValidateExpiry(), ErrExpired)

	future := Claims{RegisteredClaims: jwt.RegisteredClaims{
		NotBefore: jwt.NewNumericDate(now.Add(time.Minute)),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}}
	require.ErrorIs(t, future.ValidateExpiry(), ErrNotYetValid)
}
