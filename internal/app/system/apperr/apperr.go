// internal/app/system/apperr/apperr.go

// Package apperr defines the application error taxonomy and its mapping to
// HTTP status codes.
//
// Handlers surface the first failing condition and wrap unexpected failures
// as Internal; nothing below the handler layer writes HTTP responses.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error for HTTP mapping.
type Kind int

const (
	// KindInternal is the zero value so an unclassified error maps to 500.
	KindInternal Kind = iota
	KindValidation
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindConflict
)

// Error carries a user-visible message and a kind. The wrapped cause, if
// any, is logged but never sent to the caller.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Validation reports missing or invalid input (400).
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// Authentication reports a missing or invalid credential (401).
func Authentication(msg string) *Error {
	return &Error{Kind: KindAuthentication, Message: msg}
}

// Authorization reports an authenticated but not permitted caller (403).
func Authorization(msg string) *Error {
	return &Error{Kind: KindAuthorization, Message: msg}
}

// NotFound reports an absent resource (404).
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// Conflict reports a duplicate unique key (400 per the API contract).
func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

// Internal wraps an unexpected failure (500). The cause is preserved for
// logging; the caller sees only msg.
func Internal(msg string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: msg, cause: cause}
}

// Status returns the HTTP status code for err. Unclassified errors map
// to 500.
func Status(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the user-visible message for err. Unclassified errors get
// a generic message so internals never leak.
func Message(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return "internal server error"
	}
	return e.Message
}

// IsKind reports whether err is an application error of the given kind.
func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}
