// Package cryptox implements password hashing for the user store.
// Passwords are never persisted: only an argon2id-derived key and the
// random per-user salt are stored.
package cryptox

import (
	"crypto/subtle"

	"github.com/dmitrijs2005/filekeeper/internal/common"
	"golang.org/x/crypto/argon2"
)

// argon2id parameters: 1 pass, 64 MiB memory, 4 lanes, 32-byte key.
// Memory-hard on purpose so offline brute force stays expensive.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
)

const saltLen = 32

// NewSalt returns a fresh random salt for a new user record.
func NewSalt() []byte {
	return common.GenerateRandByteArray(saltLen)
}

// HashPassword derives the stored hash from a plaintext password and salt.
func HashPassword(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

// VerifyPassword re-derives the hash from the candidate password and
// compares it to the stored hash in constant time.
func VerifyPassword(password, salt, storedHash []byte) bool {
	candidate := HashPassword(password, salt)
	return subtle.ConstantTimeCompare(candidate, storedHash) == 1
}
