package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
)

const (
	SchemeArgon2id = "argon2id"
	SchemePBKDF2   = "pbkdf2-sha256"

	saltLength = 16
	keyLength  = 32

	argonTime    = 3
	argonMemory  = 64 * 1024
	argonThreads = 2

	pbkdf2Iterations = 290000
)

// Hasher produces one-way salted password hashes. The primary scheme is
// argon2id; pbkdf2-sha256 is the portable fallback. Verification accepts
// either format regardless of the configured scheme, so stored hashes
// survive a scheme change.
type Hasher struct {
	scheme string
}

func NewHasher(scheme string) *Hasher {
	if scheme != SchemePBKDF2 {
		scheme = SchemeArgon2id
	}
	return &Hasher{scheme: scheme}
}

func (h *Hasher) Hash(plaintext string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	b64 := base64.RawStdEncoding
	switch h.scheme {
	case SchemePBKDF2:
		key := pbkdf2.Key([]byte(plaintext), salt, pbkdf2Iterations, keyLength, sha256.New)
		return fmt.Sprintf("$pbkdf2-sha256$i=%d$%s$%s",
			pbkdf2Iterations, b64.EncodeToString(salt), b64.EncodeToString(key)), nil
	default:
		key := argon2.IDKey([]byte(plaintext), salt, argonTime, argonMemory, argonThreads, keyLength)
		return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
			argon2.Version, argonMemory, argonTime, argonThreads,
			b64.EncodeToString(salt), b64.EncodeToString(key)), nil
	}
}

// VerifyPassword recomputes the hash from the parameters embedded in the
// encoded string and compares in constant time. Malformed input returns
// false, never an error.
func VerifyPassword(plaintext, encoded string) bool {
	parts := strings.Split(encoded, "$")
	if len(parts) < 2 {
		return false
	}

	switch parts[1] {
	case "argon2id":
		return verifyArgon2id(plaintext, parts)
	case "pbkdf2-sha256":
		return verifyPBKDF2(plaintext, parts)
	}
	return false
}

func verifyArgon2id(plaintext string, parts []string) bool {
	// $argon2id$v=19$m=...,t=...,p=...$salt$hash
	if len(parts) != 6 {
		return false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false
	}

	var memory, iterations uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return false
	}
	if memory == 0 || iterations == 0 || threads == 0 {
		return false
	}

	b64 := base64.RawStdEncoding
	salt, err := b64.DecodeString(parts[4])
	if err != nil {
		return false
	}
	want, err := b64.DecodeString(parts[5])
	if err != nil || len(want) == 0 {
		return false
	}

	got := argon2.IDKey([]byte(plaintext), salt, iterations, memory, threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1
}

func verifyPBKDF2(plaintext string, parts []string) bool {
	// $pbkdf2-sha256$i=...$salt$hash
	if len(parts) != 5 {
		return false
	}

	if !strings.HasPrefix(parts[2], "i=") {
		return false
	}
	iterations, err := strconv.Atoi(strings.TrimPrefix(parts[2], "i="))
	if err != nil || iterations <= 0 {
		return false
	}

	b64 := base64.RawStdEncoding
	salt, err := b64.DecodeString(parts[3])
	if err != nil {
		return false
	}
	want, err := b64.DecodeString(parts[4])
	if err != nil || len(want) == 0 {
		return false
	}

	got := pbkdf2.Key([]byte(plaintext), salt, iterations, len(want), sha256.New)
	return subtle.ConstantTimeCompare(got, want) == 1
}
