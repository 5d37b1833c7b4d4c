/*
Package errs provides custom error types and application-level error code constants.

These error codes identify business or system errors both inside the server and
in the JSON responses sent to clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrFormParseFailed indicates failure to parse URL-encoded form data.
	ErrFormParseFailed = 1005

	// ErrRequestEntityTooLarge indicates that the request body size exceeded the server limit.
	ErrRequestEntityTooLarge = 1006

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1007
)

// 2xxx: User Directory Errors
const (
	// ErrUserNotFound indicates that no record with the requested identifier is held.
	ErrUserNotFound = 2101

	// ErrValidationFailed indicates that a draft record failed field validation.
	ErrValidationFailed = 2102

	// ErrUsersFetchFailed indicates that loading the collection from the remote API failed.
	ErrUsersFetchFailed = 2201

	// ErrUserDeleteFailed indicates that the remote API rejected or failed a removal.
	ErrUserDeleteFailed = 2202

	// ErrDeletionNotStaged indicates a confirm or cancel without a staged deletion.
	ErrDeletionNotStaged = 2301

	// ErrFormNotOpen indicates a field edit or submission while no form is open.
	ErrFormNotOpen = 2302
)

// 3xxx: Session Errors
const (
	// ErrSessionInvalid indicates that the request carries no usable session.
	ErrSessionInvalid = 3001
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000
)
