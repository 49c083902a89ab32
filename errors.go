package storage

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is the error returned when the storage service answers a
// request with a 4xx or 5xx status. Transport failures (DNS, refused
// connections, timeouts) are reported by the underlying HTTP client
// and are never of this type, so callers can tell the two apart with
// [AsError].
type Error struct {
	// StatusCode is the HTTP status code of the response.
	StatusCode int

	// ErrorCode is the service's short error identifier, when provided
	// (e.g. "InvalidKey").
	ErrorCode string

	// Message is the human-readable error message from the service. If
	// the error body was not JSON, Message holds the raw body.
	Message string
}

func (e *Error) Error() string {
	if e.ErrorCode != "" {
		return fmt.Sprintf("storage: %s (status %d, code %s)", e.Message, e.StatusCode, e.ErrorCode)
	}
	return fmt.Sprintf("storage: %s (status %d)", e.Message, e.StatusCode)
}

// AsError unwraps err into a service [*Error], reporting whether it
// was one.
func AsError(err error) (*Error, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsNotFound reports whether err is a service error with status 404.
func IsNotFound(err error) bool {
	se, ok := AsError(err)
	return ok && se.StatusCode == http.StatusNotFound
}
