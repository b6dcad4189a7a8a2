// Package apperror is the error taxonomy shared by repositories and HTTP handlers.
// Repositories return typed errors; handlers classify whatever they get and map the
// kind to a status code.
package apperror

import (
	"errors"
	"net/http"

	"gorm.io/gorm"
)

// Kind is the category an error falls into at the HTTP boundary.
type Kind int

const (
	KindUnclassified Kind = iota
	KindUnauthorized
	KindInvalid
	KindNotFound
	KindConflict
	KindInfrastructure
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindInvalid:
		return "invalid"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInfrastructure:
		return "infrastructure"
	default:
		return "unclassified"
	}
}

// Status maps a kind to its HTTP status code.
func (k Kind) Status() int {
	switch k {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindInvalid:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindInfrastructure:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error is an error with a kind and a message that is safe to show to clients.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New returns an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a kind and client-facing message to err.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Unauthorized(message string) error { return New(KindUnauthorized, message) }
func Invalid(message string) error      { return New(KindInvalid, message) }
func NotFound(message string) error     { return New(KindNotFound, message) }
func Conflict(message string) error     { return New(KindConflict, message) }

// Classify decides the kind of err. Typed errors win; then driver-level
// infrastructure failures, duplicate keys and missing records are recognised.
func Classify(err error) Kind {
	if err == nil {
		return KindUnclassified
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	if _, ok := DetectInfrastructure(err); ok {
		return KindInfrastructure
	}
	if IsDuplicateKey(err) {
		return KindConflict
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return KindNotFound
	}
	return KindUnclassified
}

// Is reports whether err classifies as kind.
func Is(err error, kind Kind) bool {
	return err != nil && Classify(err) == kind
}

// Message returns the client-facing message of a typed error, or fallback.
func Message(err error, fallback string) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return fallback
}
