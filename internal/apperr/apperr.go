// Package apperr defines the error taxonomy surfaced by the HTTP layer.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error for the HTTP layer.
type Kind int

const (
	KindInternal Kind = iota
	KindBadRequest
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindStorageUnavailable
)

// Error carries a client-safe message and the underlying cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// New returns an error of the given kind with a client-safe message.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap attaches a cause. The cause is never rendered to clients.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

func BadRequest(msg string) *Error   { return New(KindBadRequest, msg) }
func Unauthorized(msg string) *Error { return New(KindUnauthorized, msg) }
func Forbidden() *Error              { return New(KindForbidden, "Forbidden") }
func NotFound(msg string) *Error     { return New(KindNotFound, msg) }

// Storage marks a failed transactional operation.
func Storage(msg string, err error) *Error {
	return Wrap(KindStorageUnavailable, msg, err)
}

// Status maps err to an HTTP status code and the message safe to show clients.
// Errors outside the taxonomy become a generic 500.
func Status(err error) (int, string) {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError, "Internal server error"
	}
	switch e.Kind {
	case KindBadRequest:
		return http.StatusBadRequest, e.Msg
	case KindUnauthorized:
		return http.StatusUnauthorized, e.Msg
	case KindForbidden:
		return http.StatusForbidden, e.Msg
	case KindNotFound:
		return http.StatusNotFound, e.Msg
	default:
		return http.StatusInternalServerError, e.Msg
	}
}

// Is reports whether err belongs to kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
