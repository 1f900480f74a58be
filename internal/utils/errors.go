package utils

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an AppError. HTTP status mapping and retry decisions
// are made on the kind, never on the message.
type ErrorKind string

const (
	KindConfiguration     ErrorKind = "CONFIGURATION"
	KindConnection        ErrorKind = "CONNECTION"
	KindNotFound          ErrorKind = "NOT_FOUND"
	KindValidation        ErrorKind = "VALIDATION"
	KindConflict          ErrorKind = "CONFLICT"
	KindInvalidTransition ErrorKind = "INVALID_TRANSITION"
	KindUnauthorized      ErrorKind = "UNAUTHORIZED"
	KindUnavailable       ErrorKind = "UNAVAILABLE"
	KindDatabase          ErrorKind = "DATABASE"
	KindInternal          ErrorKind = "INTERNAL"
)

// Sentinels for errors.Is. Any AppError of the same kind matches.
var (
	ErrConfiguration     = &AppError{Kind: KindConfiguration, Message: "invalid configuration"}
	ErrConnection        = &AppError{Kind: KindConnection, Message: "connection failed"}
	ErrNotFound          = &AppError{Kind: KindNotFound, Message: MsgNotFound}
	ErrValidation        = &AppError{Kind: KindValidation, Message: MsgValidationFailed}
	ErrConflict          = &AppError{Kind: KindConflict, Message: MsgConflict}
	ErrInvalidTransition = &AppError{Kind: KindInvalidTransition, Message: "invalid status transition"}
	ErrUnauthorized      = &AppError{Kind: KindUnauthorized, Message: MsgUnauthorized}
	ErrUnavailable       = &AppError{Kind: KindUnavailable, Message: "service unavailable"}
	ErrDatabase          = &AppError{Kind: KindDatabase, Message: "database error"}
)

type AppError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an AppError of the same kind.
func (e *AppError) Is(target error) bool {
	var appErr *AppError
	if errors.As(target, &appErr) {
		return e.Kind == appErr.Kind
	}
	return false
}

func NewError(kind ErrorKind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

func WrapError(kind ErrorKind, message string, cause error) *AppError {
	return &AppError{Kind: kind, Message: message, Cause: cause}
}

func NotFoundError(resource string) *AppError {
	return NewError(KindNotFound, resource+" not found")
}

func ValidationError(message string) *AppError {
	return NewError(KindValidation, message)
}

// KindOf returns the kind of the first AppError in err's chain, or
// KindInternal when there is none.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
