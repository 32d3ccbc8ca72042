package services

import (
	"errors"
	"fmt"
)

// ErrorKind is the machine readable failure class returned to clients as error_code
type ErrorKind string

const (
	KindValidation         ErrorKind = "validation_error"
	KindNotFound           ErrorKind = "not_found"
	KindConflict           ErrorKind = "conflict"
	KindEmailTaken         ErrorKind = "email_taken"
	KindPhoneTaken         ErrorKind = "phone_taken"
	KindLicenseTaken       ErrorKind = "license_taken"
	KindInvalidCredentials ErrorKind = "invalid_credentials"
	KindInactiveAccount    ErrorKind = "inactive_account"
	KindInvalidTransition  ErrorKind = "invalid_transition"
	KindUnauthorized       ErrorKind = "unauthorized"
	KindForbidden          ErrorKind = "forbidden"
	KindUnknownAction      ErrorKind = "unknown_action"
	KindInternal           ErrorKind = "internal_error"
)

// Error is a failure that is safe to show to the caller. Err keeps the
// underlying cause for server-side logging only.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a typed error
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Validation reports malformed or missing input
func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports a missing entity
func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Internal wraps a store or infrastructure failure behind an opaque message
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf classifies err. Untyped errors are internal.
func KindOf(err error) ErrorKind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return KindInternal
}

// PublicMessage returns the text that may be shown to clients for err
func PublicMessage(err error) string {
	var svcErr *Error
	if errors.As(err, &svcErr) && svcErr.Kind != KindInternal {
		return svcErr.Message
	}
	return "Internal server error"
}
