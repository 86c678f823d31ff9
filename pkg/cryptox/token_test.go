package cryptox

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken_Length(t *testing.T) {
	token, err := GenerateToken(TokenSize256)
	require.NoError(t, err)
	require.Len(t, token, 43, "32 bytes base64url without padding is 43 chars")

	token, err = GenerateToken(TokenSize128)
	require.NoError(t, err)
	require.Len(t, token, 22)
}

func TestGenerateToken_URLSafe(t *testing.T) {
	for range 100 {
		token, err := GenerateToken(TokenSize256)
		require.NoError(t, err)

		require.NotContains(t, token, "+")
		require.NotContains(t, token, "/")
		require.NotContains(t, token, "=")

		_, err = base64.RawURLEncoding.DecodeString(token)
		require.NoError(t, err)
	}
}

func TestGenerateToken_InvalidSize(t *testing.T) {
	_, err := GenerateToken(0)
	require.Error(t, err)

	_, err = GenerateToken(-1)
	require.Error(t, err)
}

func TestGenerateToken_Uniqueness(t *testing.T) {
	const count = 10_000
	seen := make(map[string]struct{}, count)

	for range count {
		token, err := GenerateToken(TokenSize256)
		require.NoError(t, err)
		require.NotContains(t, seen, token, "duplicate token generated")
		seen[token] = struct{}{}
	}
}

func TestMustGenerateToken(t *testing.T) {
	require.NotEmpty(t, MustGenerateToken(TokenSize256))
	require.Panics(t, func() { MustGenerateToken(-1) })
}
