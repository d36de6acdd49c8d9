package trivia

import (
	"errors"
	"fmt"
)

// Kind classifies a service failure so the transport layer can pick a status
// code without inspecting message text.
type Kind int

const (
	// KindNotFound covers absent records and pages past the last page.
	KindNotFound Kind = iota + 1
	// KindValidation covers malformed or missing request input.
	KindValidation
	// KindUnprocessable covers well-formed requests that fail a downstream
	// constraint, including store access failures.
	KindUnprocessable
)

// Error is the tagged error returned by Service operations. No raw store
// error crosses the service boundary untagged.
type Error struct {
	Kind    Kind
	Message string
	err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.err }

// KindOf extracts the Kind from err, or 0 when err is not a service error.
func KindOf(err error) Kind {
	var serr *Error
	if errors.As(err, &serr) {
		return serr.Kind
	}
	return 0
}

// NotFoundf builds a KindNotFound error.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Invalidf builds a KindValidation error.
func Invalidf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Unprocessablef builds a KindUnprocessable error.
func Unprocessablef(format string, args ...any) *Error {
	return &Error{Kind: KindUnprocessable, Message: fmt.Sprintf(format, args...)}
}

func wrapStore(err error, op string) *Error {
	return &Error{
		Kind:    KindUnprocessable,
		Message: fmt.Sprintf("%s: %v", op, err),
		err:     err,
	}
}
