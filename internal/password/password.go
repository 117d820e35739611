// Package password hashes and verifies secrets with Argon2id. Hashes are
// stored as self-describing "argon2id$time$memory$threads$salt$hash" strings,
// so parameters can be tuned without invalidating existing records.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	hashTime    = 1
	hashMemory  = 64 * 1024
	hashThreads = 4
	keyLength   = 32
	saltLength  = 16
)

// Hash derives an Argon2id hash of plain with a fresh random salt.
func Hash(plain string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	key := argon2.IDKey([]byte(plain), salt, hashTime, hashMemory, hashThreads, keyLength)
	return fmt.Sprintf("argon2id$%d$%d$%d$%s$%s",
		hashTime, hashMemory, hashThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether plain matches the encoded hash. The comparison is
// constant time in the derived key.
func Verify(plain, encoded string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "argon2id" {
		return false, fmt.Errorf("malformed password hash")
	}
	t, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return false, fmt.Errorf("malformed time parameter: %w", err)
	}
	m, err := strconv.ParseUint(parts[2], 10, 32)
	if err != nil {
		return false, fmt.Errorf("malformed memory parameter: %w", err)
	}
	p, err := strconv.ParseUint(parts[3], 10, 8)
	if err != nil || p == 0 {
		return false, fmt.Errorf("malformed thread parameter")
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, fmt.Errorf("decode salt: %w", err)
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, fmt.Errorf("decode hash: %w", err)
	}

	got := argon2.IDKey([]byte(plain), salt, uint32(t), uint32(m), uint8(p), uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}
