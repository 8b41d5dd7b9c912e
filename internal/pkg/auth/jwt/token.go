package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
)

// ParseUnverified decodes the token's claims without checking its signature.
// Only the backend holds the signing key; the result is advisory.
func ParseUnverified(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, errors.New("empty token")
	}

	claims := &Claims{}
	parser := &jwt.Parser{}

	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, err
	}

	return claims, nil
}

// Expired reports whether the token carries an expiry that is not after now.
// Tokens that cannot be decoded, or have no expiry, are left for the backend to judge.
func Expired(tokenString string, now time.Time) bool {
	claims, err := ParseUnverified(tokenString)
	if err != nil {
		return false
	}

	exp, ok := claims.ExpiresAtTime()
	if !ok {
		return false
	}

	return !now.Before(exp)
}
