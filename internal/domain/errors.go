package domain

import (
	"errors"
	"fmt"
)

// ErrorKind is the machine-readable category of an error.
type ErrorKind string

const (
	KindNotFound            ErrorKind = "RESOURCE_NOT_FOUND"
	KindInvalidState        ErrorKind = "INVALID_STATE"
	KindInvalidArgument     ErrorKind = "INVALID_ARGUMENT"
	KindValidation          ErrorKind = "VALIDATION_ERROR"
	KindUpstreamUnavailable ErrorKind = "UPSTREAM_UNAVAILABLE"
	KindInternal            ErrorKind = "INTERNAL_ERROR"
)

// Error is a structured error surfaced to callers.
type Error struct {
	Kind    ErrorKind
	Message string
	Details map[string]string
	Err     error
}

// Sentinels for errors.Is; they match any Error of the same kind.
var (
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrInvalidState    = &Error{Kind: KindInvalidState}
	ErrInvalidArgument = &Error{Kind: KindInvalidArgument}
)

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on kind only.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// WithDetail attaches a machine-readable detail, typically a field error.
func (e *Error) WithDetail(key, value string) *Error {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports a reference to an unknown session.
func NotFound(format string, args ...any) *Error {
	return newError(KindNotFound, format, args...)
}

// InvalidState reports an operation disallowed by the session status.
func InvalidState(format string, args ...any) *Error {
	return newError(KindInvalidState, format, args...)
}

// InvalidArgument reports malformed input.
func InvalidArgument(format string, args ...any) *Error {
	return newError(KindInvalidArgument, format, args...)
}

// Validation reports a request body that could not be decoded or validated.
func Validation(format string, args ...any) *Error {
	return newError(KindValidation, format, args...)
}

// UpstreamUnavailable wraps a failure of the external text generator.
func UpstreamUnavailable(err error, format string, args ...any) *Error {
	e := newError(KindUpstreamUnavailable, format, args...)
	e.Err = err
	return e
}

// KindOf returns the kind of err, or KindInternal for unstructured errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
