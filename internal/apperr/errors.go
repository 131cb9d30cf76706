// Package apperr defines the application error taxonomy.
//
// Absence (including ownership mismatch) is always a not-found error;
// store or upstream failures are internal/external and are never
// collapsed into a not-found or an empty result.
package apperr

import (
	"errors"
	"net/http"
)

// Code classifies an application error.
type Code string

const (
	CodeNotFound     Code = "not_found"
	CodeValidation   Code = "validation_error"
	CodeUnauthorized Code = "unauthorized"
	CodeExternal     Code = "external_api_error"
	CodeInternal     Code = "internal_server_error"
)

// Error is a coded application error.
type Error struct {
	Code    Code
	Message string
	// Status overrides the default HTTP mapping when non-zero.
	// Set by external-API errors that carry an upstream status.
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches coded errors by code, so the sentinels below compare true
// against any wrapped instance with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// Sentinels for the common comparison cases.
var (
	ErrNotFound     = &Error{Code: CodeNotFound, Message: "not found"}
	ErrUnauthorized = &Error{Code: CodeUnauthorized, Message: "unauthorized"}
)

// NotFound reports that the named resource is absent or not owned by
// the caller; the two cases are deliberately indistinguishable.
func NotFound(resource string) error {
	return &Error{Code: CodeNotFound, Message: resource + " not found"}
}

// Validation reports a malformed request parameter.
func Validation(message string) error {
	return &Error{Code: CodeValidation, Message: message}
}

// Unauthorized reports missing or failed authentication.
func Unauthorized(message string) error {
	return &Error{Code: CodeUnauthorized, Message: message}
}

// External reports an upstream service failure with the HTTP status the
// boundary should surface.
func External(service, message string, status int) error {
	return &Error{Code: CodeExternal, Message: service + " API error: " + message, Status: status}
}

// Internal wraps an infrastructure failure.
func Internal(message string, cause error) error {
	return &Error{Code: CodeInternal, Message: message, Err: cause}
}

// CodeOf returns the error's code, defaulting to internal.
func CodeOf(err error) Code {
	var coded *Error
	if errors.As(err, &coded) && coded.Code != "" {
		return coded.Code
	}
	return CodeInternal
}

// HTTPStatus maps an error to an HTTP status code.
func HTTPStatus(err error) int {
	var coded *Error
	if !errors.As(err, &coded) {
		return http.StatusInternalServerError
	}
	if coded.Status != 0 {
		return coded.Status
	}
	switch coded.Code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeValidation:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Message returns a user-facing message. Uncoded errors collapse to a
// generic message so raw store errors never leak into API responses.
func Message(err error) string {
	var coded *Error
	if errors.As(err, &coded) && coded.Message != "" {
		return coded.Message
	}
	return "internal error"
}
