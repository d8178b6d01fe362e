// Package pdferr defines the error taxonomy shared by the PDF tools.
// Every failure surfaced to an MCP client carries one of these kinds so
// hosts can react programmatically rather than parsing message text.
package pdferr

import (
	"errors"
	"fmt"
)

// Kind is the machine-readable error category.
type Kind string

const (
	KindInvalidInput    Kind = "invalid_input"
	KindConfig          Kind = "config_error"
	KindNotFound        Kind = "not_found"
	KindCorruptDocument Kind = "corrupt_document"
	KindInvalidRange    Kind = "invalid_range"
	KindOCRTimeout      Kind = "ocr_timeout"
	KindOCRFailure      Kind = "ocr_failure"
	KindInternal        Kind = "internal_error"
)

// Error is a categorised error. Message is safe to return to MCP clients;
// Cause may contain host paths and stays server-side (logs only).
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an error of the given kind around a cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// KindOf returns the kind of err, or KindInternal if err is not a *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the client-safe message of err. Errors outside the
// taxonomy are reported generically so host filesystem details never leak.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
