package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a domain failure.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindPrecondition Kind = "precondition"
	KindConflict     Kind = "conflict"
	KindNotFound     Kind = "not_found"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
)

// Sentinels usable with errors.Is against any *Error of the same kind.
var (
	ErrValidation   = &Error{Kind: KindValidation}
	ErrPrecondition = &Error{Kind: KindPrecondition}
	ErrConflict     = &Error{Kind: KindConflict}
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrUnauthorized = &Error{Kind: KindUnauthorized}
	ErrForbidden    = &Error{Kind: KindForbidden}
)

// Error is the structured error returned by services.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on kind so callers can test errors.Is(err, apperror.ErrConflict).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Status maps the kind onto an HTTP status code.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindPrecondition, KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func NewValidation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// NewFieldValidation reports a single offending field.
func NewFieldValidation(field, message string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: map[string]string{field: message}}
}

func NewPrecondition(message string) *Error {
	return &Error{Kind: KindPrecondition, Message: message}
}

func NewConflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func NewNotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func NewUnauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

func NewForbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// Wrap attaches an underlying cause to a kind.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// As extracts the *Error from an error chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
