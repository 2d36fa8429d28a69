// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for spaceradio.

package api

import "fmt"

// Common errors used across the library.
var (
	ErrInvalidArgument   = fmt.Errorf("invalid argument")
	ErrResourceExhausted = fmt.Errorf("resource exhausted")
	ErrNotSupported      = fmt.Errorf("operation not supported")
	ErrNotFound          = fmt.Errorf("resource not found")
	ErrUnavailable       = fmt.Errorf("resource unavailable")
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeInvalidArgument
	ErrCodeResourceExhausted
	ErrCodeNotSupported
	ErrCodeNotFound
	ErrCodeUnavailable
	ErrCodeInternal
)

// Error represents a structured error with code and context.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if len(e.Context) == 0 {
		return msg
	}
	return fmt.Sprintf("%s (context: %+v)", msg, e.Context)
}

// Unwrap exposes the wrapped cause to errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel associated with the error code.
func (e *Error) Is(target error) bool {
	switch e.Code {
	case ErrCodeInvalidArgument:
		return target == ErrInvalidArgument
	case ErrCodeResourceExhausted:
		return target == ErrResourceExhausted
	case ErrCodeNotSupported:
		return target == ErrNotSupported
	case ErrCodeNotFound:
		return target == ErrNotFound
	case ErrCodeUnavailable:
		return target == ErrUnavailable
	}
	return false
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
	}
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// Wrap records cause as the underlying error.
func (e *Error) Wrap(cause error) *Error {
	e.Err = cause
	return e
}
