package common

import (
	"crypto/rand"
	"regexp"
	"strings"
)

// emailPattern accepts local@domain.tld with no whitespace and a single @.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// GenerateRandByteArray returns n cryptographically random bytes. It panics
// if the system random source fails.
func GenerateRandByteArray(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

// WipeByteArray zeroes b in place.
func WipeByteArray(b []byte) {
	clear(b)
}

// NormalizeEmail trims and lower-cases an email address. Emails identify a
// user and compare case-insensitively on both client and server.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsValidEmail reports whether email, once normalized, looks like
// local@domain.tld.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(NormalizeEmail(email))
}
