package jwtx

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func testClaims(ttl time.Duration) Claims {
	return NewIdentityClaims(
		"01HZXK3V9W3N2T4Q8R5J6M7P8A",
		"alice",
		"alice@example.com",
		[]string{"admin", "operator"},
		ttl,
		"vult-auth",
		[]string{"vult-app"},
		time.Now().UTC(),
	)
}

func TestHS256_SignVerifyRoundTrip(t *testing.T) {
	signer, err := NewSignerHS256(testSecret)
	require.NoError(t, err)
	verifier, err := NewVerifierHS256(testSecret, "vult-auth", []string{"vult-app"})
	require.NoError(t, err)

	token, err := signer.Sign(testClaims(time.Hour))
	require.NoError(t, err)
	require.Equal(t, 3, len(strings.Split(token, ".")), "compact JWT has three segments")

	claims, err := verifier.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "01HZXK3V9W3N2T4Q8R5J6M7P8A", claims.Subject)
	require.Equal(t, "alice", claims.Username)
	require.Equal(t, "alice@example.com", claims.Email)
	require.Equal(t, []string{"admin", "operator"}, claims.Roles)
}

func TestHS256_RejectsWeakSecret(t *testing.T) {
	_, err := NewSignerHS256([]byte("too-short"))
	require.ErrorIs(t, err, ErrWeakSecret)

	_, err = NewVerifierHS256([]byte("too-short"), "iss", nil)
	require.ErrorIs(t, err, ErrWeakSecret)
}

func TestHS256_TamperedSignature(t *testing.T) {
	signer, err := NewSignerHS256(testSecret)
	require.NoError(t, err)
	verifier, err := NewVerifierHS256(testSecret, "vult-auth", []string{"vult-app"})
	require.NoError(t, err)

	token, err := signer.Sign(testClaims(time.Hour))
	require.NoError(t, err)

	// Flip one byte in the signature segment.
	last := token[len(token)-1]
	flipped := byte('A')
	if last == 'A' {
		flipped = 'B'
	}
	tampered := token[:len(token)-1] + string(flipped)

	_, err = verifier.Verify(tampered)
	require.ErrorIs(t, err, ErrInvalidSig)
}

func TestHS256_WrongSecret(t *testing.T) {
	signer, err := NewSignerHS256(testSecret)
	require.NoError(t, err)
	verifier, err := NewVerifierHS256([]byte("ffffffffffffffffffffffffffffffff"), "vult-auth", nil)
	require.NoError(t, err)

	token, err := signer.Sign(testClaims(time.Hour))
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, ErrInvalidSig)
}

func TestHS256_Expired(t *testing.T) {
	signer, err := NewSignerHS256(testSecret)
	require.NoError(t, err)
	verifier, err := NewVerifierHS256(testSecret, "vult-auth", nil)
	require.NoError(t, err)

	token, err := signer.Sign(testClaims(-time.Minute))
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, ErrExpired)
}

func TestHS256_IssuerMismatch(t *testing.T) {
	signer, err := NewSignerHS256(testSecret)
	require.NoError(t, err)
	verifier, err := NewVerifierHS256(testSecret, "some-other-issuer", nil)
	require.NoError(t, err)

	token, err := signer.Sign(testClaims(time.Hour))
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, ErrIssuer)
}

func TestHS256_AudienceMismatch(t *testing.T) {
	signer, err := NewSignerHS256(testSecret)
	require.NoError(t, err)
	verifier, err := NewVerifierHS256(testSecret, "vult-auth", []string{"another-app"})
	require.NoError(t, err)

	token, err := signer.Sign(testClaims(time.Hour))
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, ErrAudience)
}

func TestHS256_RejectsUnsignedAlg(t *testing.T) {
	// An attacker stripping the signature with alg=none must be rejected.
	claims := testClaims(time.Hour)
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	verifier, err := NewVerifierHS256(testSecret, "vult-auth", nil)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.Error(t, err)
}

func TestHS256_Garbage(t *testing.T) {
	verifier, err := NewVerifierHS256(testSecret, "vult-auth", nil)
	require.NoError(t, err)

	for _, token := range []string{"", "not-a-jwt", "a.b", "a.b.c.d", "🔒.🔒.🔒"} {
		_, err := verifier.Verify(token)
		require.Error(t, err, "token %q should be rejected", token)
	}
}

func TestExtractSubject(t *testing.T) {
	signer, err := NewSignerHS256(testSecret)
	require.NoError(t, err)

	token, err := signer.Sign(testClaims(time.Hour))
	require.NoError(t, err)

	sub, ok := ExtractSubject(token)
	require.True(t, ok)
	require.Equal(t, "01HZXK3V9W3N2T4Q8R5J6M7P8A", sub)
}

func TestExtractSubject_NameidAliasTakesPriority(t *testing.T) {
	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"nameid": "legacy-subject",
		"sub":    "standard-subject",
		"exp":    time.Now().Add(time.Hour).Unix(),
	})
	token, err := raw.SignedString(testSecret)
	require.NoError(t, err)

	sub, ok := ExtractSubject(token)
	require.True(t, ok)
	require.Equal(t, "legacy-subject", sub)
}

func TestExtractSubject_WSNameIdentifierAlias(t *testing.T) {
	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"http://schemas.xmlsoap.org/ws/2005/05/identity/claims/nameidentifier": "ws-subject",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	token, err := raw.SignedString(testSecret)
	require.NoError(t, err)

	sub, ok := ExtractSubject(token)
	require.True(t, ok)
	require.Equal(t, "ws-subject", sub)
}

func TestExtractSubject_DoesNotRequireValidSignature(t *testing.T) {
	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "whoever",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	token, err := raw.SignedString([]byte("a completely different secret!!!"))
	require.NoError(t, err)

	sub, ok := ExtractSubject(token)
	require.True(t, ok)
	require.Equal(t, "whoever", sub)
}

func TestExtractSubject_Garbage(t *testing.T) {
	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		_, ok := ExtractSubject(token)
		require.False(t, ok)
	}
}
