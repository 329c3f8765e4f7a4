// Package errors defines the error taxonomy shared by the gateway and
// backend services. Every error that can cross a service boundary is
// wrapped in a *Error carrying a stable Kind so HTTP encoders, logs and
// alerts can branch on it without string matching.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for propagation policy and HTTP status mapping.
// This is the total set described in spec §7; callers must not invent
// new kinds.
type Kind string

const (
	KindValidation          Kind = "VALIDATION_ERROR"
	KindAuthentication      Kind = "AUTH_ERROR"
	KindAuthorization       Kind = "FORBIDDEN_ERROR"
	KindDependencyUnavail   Kind = "DEPENDENCY_UNAVAILABLE"
	KindRotationConflict    Kind = "ROTATION_CONFLICT"
	KindInvalidStateTrans   Kind = "INVALID_STATE_TRANSITION"
	KindInternal            Kind = "INTERNAL_ERROR"
)

// Error is the stable wire-facing error shape. Message is safe to return
// to a caller; it must never carry secret material (spec §7, §8).
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New builds an Error of the given kind with no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an Error of the given kind around an underlying cause.
// The cause's message is never included verbatim in Message — callers
// choose what is safe to surface.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// Is reports whether err (or anything it wraps) is a *Error of kind k.
func Is(err error, k Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == k
	}
	return false
}

// KindOf extracts the Kind of err, defaulting to KindInternal when err
// is not a *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf extracts the caller-safe Message of err, never the wrapped
// cause (spec §7/§8: error bodies returned to callers must never carry
// secret material or internal detail). Errors that are not a *Error
// get a generic message instead of leaking their raw Error() string.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}

// HTTPStatus maps a Kind to the status codes fixed by spec §6/§7.
func HTTPStatus(k Kind) int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindDependencyUnavail:
		return http.StatusServiceUnavailable
	case KindRotationConflict, KindInvalidStateTrans:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Retryable reports whether the error kind may be safely retried by a
// resilience wrapper. Authentication/authorization/validation failures
// must never be retried (spec §4.1, §8).
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindDependencyUnavail, KindInternal:
		return true
	default:
		return false
	}
}
