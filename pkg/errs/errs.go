// Package errs carries HTTP status information on errors so the transport
// boundary can map them without knowing every domain type.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError is an error meant to reach the client with a specific status.
// Message is shown to the client; Err stays internal.
type HTTPError struct {
	Status  int
	Message string
	Err     error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d %s: %v", e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

func (e *HTTPError) Unwrap() error { return e.Err }

func New(status int, message string) *HTTPError {
	return &HTTPError{Status: status, Message: message}
}

// Wrap attaches a status and client message to err.
func Wrap(status int, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Message: message, Err: err}
}

func NotFound(message string) *HTTPError   { return New(http.StatusNotFound, message) }
func Forbidden(message string) *HTTPError  { return New(http.StatusForbidden, message) }
func BadRequest(message string) *HTTPError { return New(http.StatusBadRequest, message) }

// StatusOf returns the status carried by err, or 500.
func StatusOf(err error) int {
	var he *HTTPError
	if errors.As(err, &he) && he.Status > 0 {
		return he.Status
	}
	return http.StatusInternalServerError
}

// MessageOf returns the client-facing message of err. Errors that carry no
// status are reported as a generic internal failure.
func MessageOf(err error) string {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Message
	}
	return "Internal server error."
}
