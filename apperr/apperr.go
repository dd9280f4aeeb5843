// Package apperr defines the stable error kinds surfaced across the API
// boundary. Every external-call failure is mapped to one of these kinds
// where it occurs; handlers translate kinds to HTTP status + wire code and
// the client package translates wire codes back.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	Unknown Kind = iota
	Unauthenticated
	PermissionDenied
	InvalidArgument
	AnalysisFailed
	PersistenceFailed
	EncodingError
	NotFound
)

// Error carries a kind alongside the underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error with a message only.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an Error around a cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind from err, or Unknown if err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// Code returns the wire code for a kind. AnalysisFailed, PersistenceFailed
// and Unknown all surface as "internal"; the finer kinds exist for logs and
// for the client-side taxonomy, not for the wire.
func Code(kind Kind) string {
	switch kind {
	case Unauthenticated:
		return "unauthenticated"
	case PermissionDenied:
		return "permission-denied"
	case InvalidArgument:
		return "invalid-argument"
	case NotFound:
		return "not-found"
	default:
		return "internal"
	}
}

// FromCode maps a wire code back to a kind.
func FromCode(code string) Kind {
	switch code {
	case "unauthenticated":
		return Unauthenticated
	case "permission-denied":
		return PermissionDenied
	case "invalid-argument":
		return InvalidArgument
	case "not-found":
		return NotFound
	default:
		return Unknown
	}
}

// HTTPStatus returns the response status for a kind.
func HTTPStatus(kind Kind) int {
	switch kind {
	case Unauthenticated:
		return http.StatusUnauthorized
	case PermissionDenied:
		return http.StatusForbidden
	case InvalidArgument:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
