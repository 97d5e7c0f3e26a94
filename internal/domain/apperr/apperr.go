package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a domain failure so the transport layer can map it to a
// status code without inspecting error text.
type Kind string

const (
	KindNotFound           Kind = "NOT_FOUND"
	KindForbidden          Kind = "FORBIDDEN"
	KindInvalidTransition  Kind = "INVALID_TRANSITION"
	KindConflict           Kind = "CONFLICT"
	KindInvalid            Kind = "INVALID_PARAM"
	KindAdapterUnavailable Kind = "ADAPTER_UNAVAILABLE"
)

// Error is a classified domain error.
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

func (e *Error) Unwrap() error { return e.Err }

// Is matches two classified errors by kind, which lets callers test
// errors.Is(err, apperr.NotFound("")) style sentinels.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports an unknown id or code.
func NotFound(format string, args ...interface{}) *Error {
	return newError(KindNotFound, format, args...)
}

// Forbidden reports an access-control failure.
func Forbidden(format string, args ...interface{}) *Error {
	return newError(KindForbidden, format, args...)
}

// InvalidTransition reports a state-machine violation.
func InvalidTransition(format string, args ...interface{}) *Error {
	return newError(KindInvalidTransition, format, args...)
}

// Conflict reports a uniqueness or replay violation.
func Conflict(format string, args ...interface{}) *Error {
	return newError(KindConflict, format, args...)
}

// Invalid reports malformed caller input.
func Invalid(format string, args ...interface{}) *Error {
	return newError(KindInvalid, format, args...)
}

// AdapterUnavailable reports an AI adapter failure. It never crosses the
// coordinator boundary; workflows fall back instead of surfacing it.
func AdapterUnavailable(err error) *Error {
	return &Error{Kind: KindAdapterUnavailable, Message: "mediator adapter unavailable", Err: err}
}

// KindOf returns the kind of a classified error, or "" for plain errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
