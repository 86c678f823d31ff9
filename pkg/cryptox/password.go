package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2-HMAC-SHA256 parameters. The stored blob is base64(salt || key),
// 48 bytes raw. The iteration count is not embedded in the blob, so it is
// treated as a versioned deployment parameter: a Hasher verifies against
// its configured count first and falls back to BaselineIterations for
// blobs written before the count was raised.
const (
	saltLength = 16
	keyLength  = 32

	// BaselineIterations is the minimum count ever used to write a blob.
	// Raising a deployment's count must never drop below this.
	BaselineIterations = 10_000
)

// Hasher derives and verifies password hashes with a fixed iteration count.
// The zero value is not usable; construct with NewHasher.
type Hasher struct {
	iterations int
}

// NewHasher returns a Hasher with the given PBKDF2 iteration count.
// Counts below BaselineIterations are clamped up to it.
func NewHasher(iterations int) Hasher {
	if iterations < BaselineIterations {
		iterations = BaselineIterations
	}
	return Hasher{iterations: iterations}
}

// Iterations reports the configured iteration count.
func (h Hasher) Iterations() int { return h.iterations }

// Hash derives a storable blob from a plaintext password: a fresh 16-byte
// random salt, a 32-byte PBKDF2-HMAC-SHA256 key, concatenated and
// base64-encoded. Two calls with the same password produce different blobs.
func (h Hasher) Hash(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	key := pbkdf2.Key([]byte(password), salt, h.iterations, keyLength, sha256.New)

	blob := make([]byte, 0, saltLength+keyLength)
	blob = append(blob, salt...)
	blob = append(blob, key...)

	return base64.StdEncoding.EncodeToString(blob), nil
}

// Verify reports whether password matches the stored blob. It fails closed:
// malformed input of any kind yields false, never an error or panic. The
// comparison is constant-time with respect to the derived key.
func (h Hasher) Verify(password, encoded string) bool {
	blob, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || len(blob) != saltLength+keyLength {
		return false
	}

	salt := blob[:saltLength]
	stored := blob[saltLength:]

	key := pbkdf2.Key([]byte(password), salt, h.iterations, keyLength, sha256.New)
	if subtle.ConstantTimeCompare(key, stored) == 1 {
		return true
	}

	// Blobs written before the iteration count was raised.
	if h.iterations != BaselineIterations {
		legacy := pbkdf2.Key([]byte(password), salt, BaselineIterations, keyLength, sha256.New)
		return subtle.ConstantTimeCompare(legacy, stored) == 1
	}

	return false
}
