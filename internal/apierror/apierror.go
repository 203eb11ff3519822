// Package apierror provides the typed error taxonomy for the purchasing
// workflow. Every business rule failure is one of five kinds; handlers map
// kinds to HTTP status codes so no raw database or internal error ever leaks
// to a client.
package apierror

import (
	"errors"
	"fmt"
)

// Kind classifies a business error.
type Kind int

const (
	// KindValidation — malformed or missing input, rejected before any mutation.
	KindValidation Kind = iota
	// KindAuthorization — role/ownership mismatch, rejected before any mutation.
	KindAuthorization
	// KindNotFound — a referenced entity does not exist.
	KindNotFound
	// KindConflict — duplicate quotation/order, unique-constraint violation.
	KindConflict
	// KindPrecondition — entity status not in the required set for the
	// operation; carries the current status so the UI can explain why.
	KindPrecondition
)

// Error is a structured business failure with a human-readable reason.
type Error struct {
	Kind    Kind
	Message string
	// CurrentStatus is set for KindPrecondition errors.
	CurrentStatus string
}

func (e *Error) Error() string { return e.Message }

// Is lets errors.Is match by kind against the sentinel helpers below.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Kind == e.Kind && t.Message == ""
	}
	return false
}

// Sentinels for errors.Is checks, one per kind.
var (
	ErrValidation    = &Error{Kind: KindValidation}
	ErrAuthorization = &Error{Kind: KindAuthorization}
	ErrNotFound      = &Error{Kind: KindNotFound}
	ErrConflict      = &Error{Kind: KindConflict}
	ErrPrecondition  = &Error{Kind: KindPrecondition}
)

func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func Authorization(format string, args ...interface{}) *Error {
	return &Error{Kind: KindAuthorization, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Precondition builds a status-precondition failure surfacing currentStatus.
func Precondition(currentStatus, format string, args ...interface{}) *Error {
	return &Error{Kind: KindPrecondition, Message: fmt.Sprintf(format, args...), CurrentStatus: currentStatus}
}

// KindOf extracts the kind of err, or ok=false when err is not a business error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
