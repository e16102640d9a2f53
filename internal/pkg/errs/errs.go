/*
Package errs provides the application error type and error code constants
for the HTTP surface of the server.

The WebSocket protocol itself never returns errors to clients; these codes
only cover the pre-upgrade request handling (parameter validation and rate
limiting).
*/
package errs

import (
	"fmt"
	"net/http"
)

// 1xxx: request handling errors.
const (
	// ErrInvalidParams indicates request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrRateLimitExceeded indicates the client exceeded the request rate.
	ErrRateLimitExceeded = 1007
)

// 5xxx: internal errors.
const (
	// ErrUnknown is the unclassified internal server error.
	ErrUnknown = 5000
)

// errorMap binds each code to its message and HTTP status.
var errorMap = map[int]CustomError{
	ErrInvalidParams:     {Code: ErrInvalidParams, Message: "Invalid request parameters", Status: http.StatusBadRequest},
	ErrRateLimitExceeded: {Code: ErrRateLimitExceeded, Message: "Too many requests, slow down", Status: http.StatusTooManyRequests},
	ErrUnknown:           {Code: ErrUnknown, Message: "Internal server error", Status: http.StatusInternalServerError},
}

// CustomError carries a business code, a client-facing message, and the
// HTTP status to respond with.
type CustomError struct {
	Code    int
	Message string
	Status  int
}

// Error implements the error interface.
func (e CustomError) Error() string {
	return fmt.Sprintf("Error Code %d (HTTP %d): %s", e.Code, e.Status, e.Message)
}

// NewError returns the CustomError registered for code, falling back to
// ErrUnknown for codes that are not in the map.
func NewError(code int) *CustomError {
	templateErr, ok := errorMap[code]
	if !ok {
		templateErr = errorMap[ErrUnknown]
	}

	customErr := templateErr
	return &customErr
}
