// Package id generates the random tokens and passwords handed to requesters.
package id

import (
	"crypto/rand"
	"fmt"
)

const (
	alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// DefaultLength is used when Generate is given a non-positive length.
	DefaultLength = 12

	VerificationTokenLength = 15
	PasswordLength          = 16
)

// maxByte is the largest multiple of len(alphabet) that fits in a byte.
// Bytes at or above it are redrawn so every symbol is equally likely.
const maxByte = 256 - 256%len(alphabet)

// Generate returns a random base62 string of the given length.
func Generate(length int) (string, error) {
	if length <= 0 {
		length = DefaultLength
	}

	out := make([]byte, 0, length)
	buf := make([]byte, length+length/4)
	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= maxByte {
				continue
			}
			out = append(out, alphabet[int(b)%len(alphabet)])
			if len(out) == length {
				break
			}
		}
	}
	return string(out), nil
}

// NewVerificationToken generates the single-use token proving control of an email address.
func NewVerificationToken() (string, error) {
	return Generate(VerificationTokenLength)
}

// NewPassword generates an account password for a provisioning node.
func NewPassword() (string, error) {
	return Generate(PasswordLength)
}

// IsAlphanumeric reports whether s consists only of characters from the base62 alphabet.
func IsAlphanumeric(s string) bool {
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9', c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z':
		default:
			return false
		}
	}
	return true
}
