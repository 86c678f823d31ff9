package cryptox

import (
	"crypto/sha256"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/pbkdf2"
)

func TestHash_Format(t *testing.T) {
	h := NewHasher(BaselineIterations)

	tests := []struct {
		name     string
		password string
	}{
		{"simple password", "password123"},
		{"complex password", "P@ssw0rd!#$%^&*()"},
		{"long password", strings.Repeat("a", 100)},
		{"empty password", ""},
		{"unicode password", "пароль🔒密码"},
		{"whitespace password", "   spaces   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blob, err := h.Hash(tt.password)
			require.NoError(t, err)
			require.NotEmpty(t, blob)

			raw, err := base64.StdEncoding.DecodeString(blob)
			require.NoError(t, err)
			require.Len(t, raw, 48, "blob should be 16-byte salt plus 32-byte key")
		})
	}
}

func TestHash_UniqueSalts(t *testing.T) {
	h := NewHasher(BaselineIterations)
	password := "samepassword"

	blob1, err := h.Hash(password)
	require.NoError(t, err)
	blob2, err := h.Hash(password)
	require.NoError(t, err)

	require.NotEqual(t, blob1, blob2, "blobs should differ due to unique salts")

	require.True(t, h.Verify(password, blob1))
	require.True(t, h.Verify(password, blob2))
}

func TestVerify_RoundTrip(t *testing.T) {
	h := NewHasher(BaselineIterations)

	tests := []struct {
		name     string
		password string
	}{
		{"simple password", "password123"},
		{"complex password", "P@ssw0rd!#$%^&*()"},
		{"empty password", ""},
		{"unicode password", "пароль🔒密码"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blob, err := h.Hash(tt.password)
			require.NoError(t, err)
			require.True(t, h.Verify(tt.password, blob))
		})
	}
}

func TestVerify_WrongPassword(t *testing.T) {
	h := NewHasher(BaselineIterations)

	blob, err := h.Hash("correct-password")
	require.NoError(t, err)

	tests := []struct {
		name          string
		wrongPassword string
	}{
		{"completely wrong", "wrong-password"},
		{"case difference", "Correct-Password"},
		{"extra space", "correct-password "},
		{"empty password", ""},
		{"truncated", "correct-passwor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.False(t, h.Verify(tt.wrongPassword, blob))
		})
	}
}

func TestVerify_FailsClosedOnMalformedBlob(t *testing.T) {
	h := NewHasher(BaselineIterations)

	tests := []struct {
		name string
		blob string
	}{
		{"empty blob", ""},
		{"not base64", "!!!not-base64!!!"},
		{"too short", base64.StdEncoding.EncodeToString([]byte("short"))},
		{"too long", base64.StdEncoding.EncodeToString(make([]byte, 64))},
		{"url-safe alphabet", "-_-_" + strings.Repeat("A", 60)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.False(t, h.Verify("any-password", tt.blob))
		})
	}
}

func TestVerify_LegacyIterationFallback(t *testing.T) {
	// A blob written at the baseline count must still verify after the
	// deployment raises its configured count.
	old := NewHasher(BaselineIterations)
	blob, err := old.Hash("migrating-password")
	require.NoError(t, err)

	raised := NewHasher(50_000)
	require.True(t, raised.Verify("migrating-password", blob))
	require.False(t, raised.Verify("wrong-password", blob))
}

func TestNewHasher_ClampsLowCounts(t *testing.T) {
	require.Equal(t, BaselineIterations, NewHasher(1).Iterations())
	require.Equal(t, BaselineIterations, NewHasher(0).Iterations())
	require.Equal(t, 20_000, NewHasher(20_000).Iterations())
}

func TestHash_MatchesReferenceDerivation(t *testing.T) {
	// The blob layout is salt||key; re-deriving from the embedded salt
	// must reproduce the embedded key exactly.
	h := NewHasher(BaselineIterations)
	blob, err := h.Hash("reference")
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(blob)
	require.NoError(t, err)

	derived := pbkdf2.Key([]byte("reference"), raw[:16], BaselineIterations, 32, sha256.New)
	require.Equal(t, raw[16:], derived)
}
