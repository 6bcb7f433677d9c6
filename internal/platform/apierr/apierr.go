// Package apierr carries the typed failure categories raised by services and
// adapters. Only the HTTP response layer translates these into status codes;
// everything below it passes *Error values up unchanged.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// Validation: malformed or missing required input.
func Validation(format string, args ...any) *Error {
	return New(http.StatusBadRequest, "validation_error", fmt.Errorf(format, args...))
}

// Auth: bad credentials.
func Auth(format string, args ...any) *Error {
	return New(http.StatusUnauthorized, "auth_error", fmt.Errorf(format, args...))
}

// Conflict: duplicate registration. The client surface reports this as a 400,
// matching the original API contract.
func Conflict(format string, args ...any) *Error {
	return New(http.StatusBadRequest, "conflict_error", fmt.Errorf(format, args...))
}

// NotFound: unknown project, index, record, or file.
func NotFound(format string, args ...any) *Error {
	return New(http.StatusNotFound, "not_found", fmt.Errorf(format, args...))
}

// Upstream: a backing store, LLM provider, or vector index failed.
func Upstream(err error) *Error {
	return New(http.StatusInternalServerError, "upstream_error", err)
}

// UpstreamTimeout: an outbound call exceeded its bounded deadline.
func UpstreamTimeout(err error) *Error {
	return New(http.StatusGatewayTimeout, "upstream_timeout", err)
}

// Storage: a partial-batch persistence failure. Some writes may have landed.
func Storage(format string, args ...any) *Error {
	return New(http.StatusInternalServerError, "storage_error", fmt.Errorf(format, args...))
}

// NotImplemented: a declared parameter or feature this service refuses rather
// than silently ignores.
func NotImplemented(format string, args ...any) *Error {
	return New(http.StatusNotImplemented, "not_implemented", fmt.Errorf(format, args...))
}

// From normalizes any error into an *Error, defaulting to Upstream for
// untyped failures.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Upstream(err)
}
