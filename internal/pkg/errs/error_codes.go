/*
Package errs provides custom error types and application-level error code constants.

These error codes identify client-side validation failures, session problems, backend
rejections and transport failures, so that every call site can print a consistent message.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that local parameter validation failed.
	ErrInvalidParams = 1001

	// ErrInvalidJSONFormat indicates that a backend response body could not be decoded.
	ErrInvalidJSONFormat = 1003

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1007

	// ErrPageOutOfRange indicates a navigation to a page outside [1, total_pages].
	ErrPageOutOfRange = 1008

	// ErrActionCancelled indicates the user declined a confirmation prompt.
	ErrActionCancelled = 1009
)

// 2xxx: Generation and Chat Errors
const (
	// ErrPromptRequired indicates an empty generation prompt.
	ErrPromptRequired = 2101

	// ErrPromptTooLong indicates a prompt or negative prompt above its length limit.
	ErrPromptTooLong = 2102

	// ErrInvalidImageSize indicates a width or height outside the accepted range.
	ErrInvalidImageSize = 2103

	// ErrInvalidSteps indicates a step count outside the accepted range.
	ErrInvalidSteps = 2104

	// ErrUnsupportedImageType indicates an export whose content is not an accepted image type.
	ErrUnsupportedImageType = 2105

	// ErrMessageContentTooLong indicates that the user's message content exceeded the maximum length limit.
	ErrMessageContentTooLong = 2201

	// ErrMessageEmpty indicates a chat message or comment with no visible text.
	ErrMessageEmpty = 2202

	// ErrChatNotConnected indicates the chat channel is not open.
	ErrChatNotConnected = 2203
)

// 3xxx: User, Session, and Security Errors
const (
	// ErrUnauthorized indicates the backend rejected the credentials; the local session was cleared.
	ErrUnauthorized = 3001

	// ErrLoginRequired indicates an operation that needs a signed-in user.
	ErrLoginRequired = 3002

	// ErrForbidden indicates the signed-in user lacks permission.
	ErrForbidden = 3003

	// ErrQuotaExhausted indicates the daily generation quota is used up.
	ErrQuotaExhausted = 3004
)

// 4xxx: Backend Rejections
const (
	// ErrServerRejected carries the backend's own validation message.
	ErrServerRejected = 4000

	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = 4004
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified failure.
	ErrUnknown = 5000

	// ErrNetwork indicates the backend could not be reached.
	ErrNetwork = 5001

	// ErrStorage indicates a local or object storage failure.
	ErrStorage = 5002
)
