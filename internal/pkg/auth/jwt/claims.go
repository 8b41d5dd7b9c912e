package jwt

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt"
)

// Claims is the payload of the bearer token issued by the backend.
// The backend signs {"sub": "<user id>", "exp": <unix seconds>}; the client cannot verify
// the signature and only reads these fields to avoid restoring a session that has already lapsed.
type Claims struct {
	jwt.StandardClaims
}

// UserID returns the numeric user id carried in the subject claim, or 0 when absent.
func (c *Claims) UserID() int64 {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// ExpiresAtTime returns the expiry as a time.Time and whether one was set.
func (c *Claims) ExpiresAtTime() (time.Time, bool) {
	if c.ExpiresAt == 0 {
		return time.Time{}, false
	}
	return time.Unix(c.ExpiresAt, 0), true
}
