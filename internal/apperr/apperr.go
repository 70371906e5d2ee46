// Package apperr defines the error taxonomy shared by the engine and the
// HTTP layer. Every domain failure carries a machine-readable Kind so the
// API can map it to a status code without string matching.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies a class of domain error.
type Kind string

const (
	KindValidation      Kind = "validation"
	KindImbalancedEntry Kind = "imbalanced_entry"
	KindDuplicateCode   Kind = "duplicate_code"
	KindUnknownAccount  Kind = "unknown_account"
	KindAlreadyBooked   Kind = "already_booked"
	KindInvalidState    Kind = "invalid_state"
	KindPeriodClosed    Kind = "period_closed"
	KindConflict        Kind = "conflict"
	KindNotFound        Kind = "not_found"
	KindInternal        Kind = "internal"
)

// Error is a domain error with a kind and an optional step marker naming
// the phase of a multi-step operation that failed.
type Error struct {
	Kind Kind
	Step string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf creates an Error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and step to an underlying error.
func Wrap(kind Kind, step string, err error) *Error {
	return &Error{Kind: kind, Step: step, Msg: step + " failed", Err: err}
}

// WithStep returns a copy of e carrying the given step marker.
func (e *Error) WithStep(step string) *Error {
	clone := *e
	clone.Step = step
	return &clone
}

// KindOf extracts the Kind from err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps a kind to the status code the API layer returns.
// Domain errors are recoverable 4xx; only infrastructure failures are 5xx.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation, KindImbalancedEntry:
		return http.StatusUnprocessableEntity
	case KindDuplicateCode, KindAlreadyBooked, KindConflict:
		return http.StatusConflict
	case KindUnknownAccount, KindNotFound:
		return http.StatusNotFound
	case KindInvalidState, KindPeriodClosed:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
