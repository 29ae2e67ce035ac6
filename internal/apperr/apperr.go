// Package apperr defines the coded errors surfaced by the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error pairs a stable client-facing code with an HTTP status.
type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return e.Code
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error carrying the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func New(status int, code string) *Error { return &Error{Status: status, Code: code} }

func NotFound(code string) *Error { return New(http.StatusNotFound, code) }

func BadRequest(code string) *Error { return New(http.StatusBadRequest, code) }

func Conflict(code string) *Error { return New(http.StatusConflict, code) }

var (
	ErrUnauthorized  = New(http.StatusUnauthorized, "UNAUTHORIZED")
	ErrInvalidJSON   = BadRequest("INVALID_JSON")
	ErrMissingParams = BadRequest("MISSING_PARAMETERS")
	ErrNotFound      = NotFound("NOT_FOUND")
	ErrRateLimited   = New(http.StatusTooManyRequests, "RATE_LIMITED")
)

// Processing wraps an unexpected failure as a 500.
func Processing(err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Code: "INTERNAL_ERROR", Err: err}
}

// Wrap attaches cause to a copy of e, keeping its code and status.
func Wrap(e *Error, cause error) *Error {
	return &Error{Status: e.Status, Code: e.Code, Err: cause}
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
