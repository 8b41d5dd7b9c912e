package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewErrorFormatsDetails(t *testing.T) {
	err := NewError(ErrPageOutOfRange, 7, 3)
	assert.Equal(t, ErrPageOutOfRange, err.Code)
	assert.Equal(t, "Page 7 is out of range (1-3).", err.Message)
	assert.Zero(t, err.Status)
	assert.Equal(t, "Error Code 1008: Page 7 is out of range (1-3).", err.Error())
}

func TestNewErrorUnknownCode(t *testing.T) {
	err := NewError(424242)
	assert.Equal(t, ErrUnknown, err.Code)
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := Wrap(ErrNetwork, cause)

	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
	assert.True(t, Is(fmt.Errorf("loading gallery: %w", err), ErrNetwork))
	assert.False(t, Is(cause, ErrNetwork))
}

func TestFromResponse(t *testing.T) {
	cases := []struct {
		status  int
		detail  string
		code    int
		message string
	}{
		{http.StatusUnauthorized, "", ErrUnauthorized, errorMap[ErrUnauthorized].Message},
		{http.StatusForbidden, "admins only", ErrForbidden, "admins only"},
		{http.StatusNotFound, "", ErrNotFound, "Not found."},
		{http.StatusTooManyRequests, "", ErrRateLimitExceeded, errorMap[ErrRateLimitExceeded].Message},
		{http.StatusBadRequest, "quota exhausted", ErrServerRejected, "quota exhausted"},
		{http.StatusUnprocessableEntity, "width too large", ErrServerRejected, "width too large"},
		{http.StatusBadGateway, "", ErrUnknown, errorMap[ErrUnknown].Message},
	}

	for _, tc := range cases {
		err := FromResponse(tc.status, tc.detail)
		assert.Equal(t, tc.code, err.Code, "status %d", tc.status)
		assert.Equal(t, tc.message, err.Message, "status %d", tc.status)
		assert.Equal(t, tc.status, err.Status)
	}
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "", Message(nil))
	assert.Equal(t, "Action cancelled.", Message(NewError(ErrActionCancelled)))
	assert.Equal(t, "plain", Message(errors.New("plain")))
}
