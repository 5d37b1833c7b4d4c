/*
Package errs provides custom error types and application-level error code constants.

This file maps every error code to its CustomError template.
*/
package errs

import "net/http"

// errorMap holds the user message and HTTP status for each application error code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:         {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType:  {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:     {Code: ErrInvalidJSONFormat, Message: "Unsupported request format.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:    {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrFormParseFailed:       {Code: ErrFormParseFailed, Message: "Failed to process submitted form.", Status: http.StatusBadRequest},
	ErrRequestEntityTooLarge: {Code: ErrRequestEntityTooLarge, Message: "Request size is too large.", Status: http.StatusRequestEntityTooLarge},
	ErrRateLimitExceeded:     {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: User Directory Errors
	ErrUserNotFound:      {Code: ErrUserNotFound, Message: "User not found", Status: http.StatusNotFound},
	ErrValidationFailed:  {Code: ErrValidationFailed, Message: "Some fields are invalid.", Status: http.StatusUnprocessableEntity},
	ErrUsersFetchFailed:  {Code: ErrUsersFetchFailed, Message: "Error fetching users", Status: http.StatusBadGateway},
	ErrUserDeleteFailed:  {Code: ErrUserDeleteFailed, Message: "Error deleting user", Status: http.StatusBadGateway},
	ErrDeletionNotStaged: {Code: ErrDeletionNotStaged, Message: "No deletion is awaiting confirmation.", Status: http.StatusConflict},
	ErrFormNotOpen:       {Code: ErrFormNotOpen, Message: "No form is open.", Status: http.StatusConflict},

	// 3xxx: Session Errors
	ErrSessionInvalid: {Code: ErrSessionInvalid, Message: "Your session has expired. Please reload the page.", Status: http.StatusUnauthorized},

	// 5xxx: Internal System Errors
	ErrUnknown: {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
}
