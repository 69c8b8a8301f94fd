// Package password implements one-way salted password hashing with
// constant-time verification. Records are self-describing
// ("salt$base64digest") so verification needs no side lookup.
package password

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// DefaultIterations is the PBKDF2 iteration count. Deliberately
	// expensive to keep brute forcing slow.
	DefaultIterations = 100_000

	saltBytes = 16
	keyBytes  = 32
)

// Hasher derives password digests with PBKDF2-HMAC-SHA256.
type Hasher struct {
	iterations int
}

// NewHasher returns a Hasher using the given iteration count.
// Counts below DefaultIterations are raised to it.
func NewHasher(iterations int) *Hasher {
	if iterations < DefaultIterations {
		iterations = DefaultIterations
	}
	return &Hasher{iterations: iterations}
}

// Hash derives a digest from plaintext under a fresh random salt and
// returns the combined record "salt$base64digest".
func (h *Hasher) Hash(plaintext string) (string, error) {
	raw := make([]byte, saltBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	salt := hex.EncodeToString(raw)

	digest := pbkdf2.Key([]byte(plaintext), []byte(salt), h.iterations, keyBytes, sha256.New)
	return salt + "$" + base64.StdEncoding.EncodeToString(digest), nil
}

// Verify recomputes the digest with the salt stored in record and compares
// in constant time. Malformed records (missing delimiter) verify as false.
func (h *Hasher) Verify(record, plaintext string) bool {
	salt, encoded, ok := strings.Cut(record, "$")
	if !ok {
		return false
	}
	stored, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return false
	}

	digest := pbkdf2.Key([]byte(plaintext), []byte(salt), h.iterations, keyBytes, sha256.New)
	return subtle.ConstantTimeCompare(stored, digest) == 1
}
