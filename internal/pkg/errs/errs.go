/*
Package errs provides custom error types and application-level error code constants.

This file defines the CustomError struct, which implements the standard Go error interface
and includes a business code, a user-friendly message, the HTTP status that produced it
(zero for purely local errors) and an optional underlying cause.
*/
package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"zimage/internal/pkg/logx"
)

// CustomError is the custom error structure used throughout the application.
type CustomError struct {
	// Code is the business error code (see constants definition).
	Code int

	// Message is the user-friendly error description.
	Message string

	// Status is the HTTP status code of the backend response, or 0 for local errors.
	Status int

	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the standard Go error interface.
func (e CustomError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Error Code %d", e.Code)
	if e.Status != 0 {
		fmt.Fprintf(&b, " (HTTP %d)", e.Status)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e CustomError) Unwrap() error {
	return e.Cause
}

// NewError constructs and returns a new *CustomError instance based on a predefined error code.
// The optional details parameter allows for formatting arguments (printf-style) to be supplied
// for the error message. If an unknown code is provided, it defaults to returning ErrUnknown.
func NewError(code int, details ...any) *CustomError {
	templateErr, ok := errorMap[code]

	if !ok {
		logx.Error(
			fmt.Errorf("attempted to create an error with an unknown code in errorMap"),
			"Unknown error code requested",
			"requested_code", code,
		)

		unknownErr := errorMap[ErrUnknown]
		return &CustomError{
			Code:    unknownErr.Code,
			Message: unknownErr.Message,
			Status:  unknownErr.Status,
		}
	}

	customErr := templateErr

	if code == ErrUnknown && len(details) > 0 {
		if originalErr, ok := details[0].(error); ok {
			customErr.Cause = originalErr
			logx.Error(
				originalErr,
				"Handling ErrUnknown with underlying error",
			)
		}
	} else if len(details) > 0 {
		if strings.Contains(customErr.Message, "%") {
			customErr.Message = fmt.Sprintf(customErr.Message, details...)
		} else {
			logx.Warn(
				"Details provided for error, but message template has no formatting placeholders. Details ignored.",
				"code", code,
			)
		}
	}

	return &customErr
}

// Wrap builds the error for code and records err as its cause.
func Wrap(code int, err error, details ...any) *CustomError {
	customErr := NewError(code, details...)
	customErr.Cause = err
	return customErr
}

// FromResponse classifies a non-2xx backend response.
// detail is the server-provided message; when empty, the code's generic message is kept.
func FromResponse(status int, detail string) *CustomError {
	var customErr *CustomError

	switch {
	case status == http.StatusUnauthorized:
		customErr = NewError(ErrUnauthorized)
	case status == http.StatusForbidden:
		customErr = NewError(ErrForbidden)
	case status == http.StatusNotFound:
		customErr = NewError(ErrNotFound)
	case status == http.StatusTooManyRequests:
		customErr = NewError(ErrRateLimitExceeded)
	case detail != "":
		customErr = NewError(ErrServerRejected, detail)
	default:
		customErr = NewError(ErrUnknown)
	}

	if detail != "" {
		customErr.Message = detail
	}
	customErr.Status = status

	return customErr
}

// Is reports whether err carries the given business code anywhere in its chain.
func Is(err error, code int) bool {
	var customErr *CustomError
	if errors.As(err, &customErr) {
		return customErr.Code == code
	}
	return false
}

// Message returns the user-facing text for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var customErr *CustomError
	if errors.As(err, &customErr) {
		return customErr.Message
	}
	return err.Error()
}
