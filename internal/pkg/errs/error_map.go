/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct.
*/
package errs

import "net/http"

// errorMap stores the detailed CustomError struct corresponding to every application error code.
// The key is the error code (int), and the value contains the user message and, for codes
// that only arise from HTTP responses, the typical status.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:     {Code: ErrInvalidParams, Message: "Invalid parameters: %s"},
	ErrInvalidJSONFormat: {Code: ErrInvalidJSONFormat, Message: "Unexpected response from the server."},
	ErrRateLimitExceeded: {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},
	ErrPageOutOfRange:    {Code: ErrPageOutOfRange, Message: "Page %d is out of range (1-%d)."},
	ErrActionCancelled:   {Code: ErrActionCancelled, Message: "Action cancelled."},

	// 2xxx: Generation and Chat Errors
	ErrPromptRequired:        {Code: ErrPromptRequired, Message: "Please enter a prompt."},
	ErrPromptTooLong:         {Code: ErrPromptTooLong, Message: "%s is longer than %d characters."},
	ErrInvalidImageSize:      {Code: ErrInvalidImageSize, Message: "Width and height must be between %d and %d."},
	ErrInvalidSteps:          {Code: ErrInvalidSteps, Message: "Steps must be between %d and %d."},
	ErrUnsupportedImageType:  {Code: ErrUnsupportedImageType, Message: "Unsupported image type: %s"},
	ErrMessageContentTooLong: {Code: ErrMessageContentTooLong, Message: "Message is too long."},
	ErrMessageEmpty:          {Code: ErrMessageEmpty, Message: "Message is empty."},
	ErrChatNotConnected:      {Code: ErrChatNotConnected, Message: "Chat is not connected."},

	// 3xxx: User, Session, and Security Errors
	ErrUnauthorized:   {Code: ErrUnauthorized, Message: "Your session has expired. Please sign in again.", Status: http.StatusUnauthorized},
	ErrLoginRequired:  {Code: ErrLoginRequired, Message: "Please sign in to continue."},
	ErrForbidden:      {Code: ErrForbidden, Message: "You do not have permission to do that.", Status: http.StatusForbidden},
	ErrQuotaExhausted: {Code: ErrQuotaExhausted, Message: "Today's generation quota is used up."},

	// 4xxx: Backend Rejections
	ErrServerRejected: {Code: ErrServerRejected, Message: "%s", Status: http.StatusBadRequest},
	ErrNotFound:       {Code: ErrNotFound, Message: "Not found.", Status: http.StatusNotFound},

	// 5xxx: Internal System Errors
	ErrUnknown: {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrNetwork: {Code: ErrNetwork, Message: "Cannot reach the server. Check your connection."},
	ErrStorage: {Code: ErrStorage, Message: "Saving the file failed."},
}
