// Package cryptox holds the password primitives: an argon2id-based verifier
// for the client's offline credential mirror and bcrypt hashing for the server.
package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"

	"github.com/dmitrijs2005/taskly/internal/common"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// SaltSize is the length of the random salt stored next to a local verifier.
const SaltSize = 16

var ErrPasswordMismatch = errors.New("password mismatch")

// DeriveKey stretches password with argon2id (t=1, m=64MiB, p=4, 32 bytes).
func DeriveKey(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

// MakeVerifier hashes a derived key so the key itself is never persisted.
func MakeVerifier(key []byte) []byte {
	hash := sha256.Sum256(key)
	return hash[:]
}

// NewVerifier generates a fresh salt and returns it with the verifier for password.
func NewVerifier(password string) (salt, verifier []byte) {
	salt = common.GenerateRandByteArray(SaltSize)
	key := DeriveKey([]byte(password), salt)
	defer common.WipeByteArray(key)
	return salt, MakeVerifier(key)
}

// CheckVerifier reports whether password matches the stored salt/verifier pair.
func CheckVerifier(password string, salt, verifier []byte) bool {
	if len(salt) == 0 || len(verifier) == 0 {
		return false
	}
	key := DeriveKey([]byte(password), salt)
	defer common.WipeByteArray(key)
	return subtle.ConstantTimeCompare(MakeVerifier(key), verifier) == 1
}

// HashPassword returns a bcrypt hash suitable for server-side storage.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// CheckPassword compares password against a bcrypt hash.
func CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrPasswordMismatch
		}
		return err
	}
	return nil
}
