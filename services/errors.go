package services

import (
	"errors"
	"fmt"
)

// Sentinel errors; handlers map them to status codes with errors.Is.
var (
	ErrValidation          = errors.New("validation failed")
	ErrUnauthenticated     = errors.New("not authenticated")
	ErrForbidden           = errors.New("forbidden")
	ErrSelfRating          = errors.New("cannot rate own department")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrDuplicateSubmission = errors.New("survey already submitted")
)

// Error is a client-facing message classified by one of the sentinels above.
// Its text carries the message only, so response bodies stay plain.
type Error struct {
	msg  string
	kind error
}

func (e *Error) Error() string { return e.msg }
func (e *Error) Unwrap() error { return e.kind }

// NewError classifies a formatted message as kind.
func NewError(kind error, format string, args ...any) error {
	return &Error{msg: fmt.Sprintf(format, args...), kind: kind}
}

func invalid(format string, args ...any) error {
	return NewError(ErrValidation, format, args...)
}

func notFound(format string, args ...any) error {
	return NewError(ErrNotFound, format, args...)
}

func conflict(format string, args ...any) error {
	return NewError(ErrConflict, format, args...)
}

func forbidden(format string, args ...any) error {
	return NewError(ErrForbidden, format, args...)
}

func unauthenticated(format string, args ...any) error {
	return NewError(ErrUnauthenticated, format, args...)
}
