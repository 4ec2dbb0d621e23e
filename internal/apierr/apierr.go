// Package apierr provides the closed error-kind taxonomy shared by the
// runtime, sidecar host, and HTTP API: structured errors that preserve
// causal chains and support errors.Is/As while carrying enough information
// to render an HTTP status or CLI exit code at the edge.
package apierr

import (
	"errors"
	"fmt"
)

// Kind is one of the closed set of error kinds the specification defines.
type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindProtocol   Kind = "protocol"
	KindFatal      Kind = "fatal"
	KindTimeout    Kind = "timeout"
	KindPolicy     Kind = "policy"
	KindInternal   Kind = "internal"
)

// HTTPStatus returns the status code the specification maps a Kind onto.
// Kinds with no HTTP surface (Protocol, Fatal, Timeout, Policy) still
// return a reasonable status for handlers that end up serializing them
// anyway, since callers outside the sidecar/policy layers may surface
// them directly.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return 400
	case KindNotFound:
		return 404
	case KindConflict:
		return 409
	case KindPolicy:
		return 403
	case KindTimeout:
		return 504
	case KindProtocol, KindFatal, KindInternal:
		return 500
	default:
		return 500
	}
}

// Error is a structured failure carrying a Kind, a human-readable message,
// and an optional wrapped cause. Errors may be nested via Cause, preserving
// errors.Is/As support through Unwrap the same way the teacher's tool-call
// error chain does.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// New constructs an Error of the given kind with no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf formats message according to a format specifier.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap constructs an Error of the given kind that wraps cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the wrapped cause, supporting errors.Is/As.
func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is an *Error with the same Kind, so callers can
// write errors.Is(err, apierr.New(apierr.KindNotFound, "")) to test kind
// membership without caring about the message.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Kind == other.Kind
}

// KindOf extracts the Kind of err if it is (or wraps) an *Error, defaulting
// to KindInternal for errors the taxonomy has no opinion about.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
