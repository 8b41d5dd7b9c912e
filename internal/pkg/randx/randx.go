/*
Package randx provides functions for generating cryptographically secure random values and unique identifiers.

It is used to generate guest display names for anonymous chat connections and UUID request IDs
for correlating outbound calls in logs.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

const (
	// Digits is the character set of the numeric part of a guest name.
	Digits = "0123456789"

	// GuestNamePrefix is prepended to every generated guest name.
	GuestNamePrefix = "Guest"

	// GuestNameDigits is the fixed number of digits after the prefix.
	GuestNameDigits = 4
)

// randomString draws length characters from charset using crypto/rand.
func randomString(charset string, length int) (string, error) {
	result := make([]byte, length)
	max := big.NewInt(int64(len(charset)))

	for i := 0; i < length; i++ {
		num, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate random number: %v", err)
		}
		result[i] = charset[num.Int64()]
	}

	return string(result), nil
}

// GuestNickname generates an anonymous chat display name: GuestNamePrefix followed by
// GuestNameDigits zero-padded digits, e.g. "Guest0420".
func GuestNickname() (string, error) {
	digits, err := randomString(Digits, GuestNameDigits)
	if err != nil {
		return "", fmt.Errorf("failed to generate guest nickname: %w", err)
	}
	return GuestNamePrefix + digits, nil
}

// IsGuestNickname checks if the given string has the shape produced by GuestNickname.
func IsGuestNickname(name string) bool {
	if len(name) != len(GuestNamePrefix)+GuestNameDigits || name[:len(GuestNamePrefix)] != GuestNamePrefix {
		return false
	}
	for _, c := range name[len(GuestNamePrefix):] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// RequestID generates a standard UUID v4 string to correlate a request across logs.
func RequestID() string {
	return uuid.New().String()
}
