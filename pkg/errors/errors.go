// Package errors provides structured error types for copper.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, HTTP server and library packages
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Codes fall into three groups:
//   - Input errors (NO_NET_AT_POINT, INVALID_LAYER, BUSY_ROUTING, INVALID_INPUT):
//     returned to the caller, never auto-corrected
//   - State conflicts (CONFLICT, DANGLING_ROUTE, NOT_FOUND): rejected with zero
//     partial mutation
//   - INTERNAL_ERROR: a contract breach, such as a dangling net reference
//     discovered mid-operation
//
// Design rule violations are not errors. They are data returned by the DRC engine.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidLayer, "layer %q is not in the stack", name)
//	if errors.Is(err, errors.ErrCodeInvalidLayer) {
//	    // Handle rejected layer
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input errors
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeInvalidLayer Code = "INVALID_LAYER"
	ErrCodeInvalidPath  Code = "INVALID_PATH"
	ErrCodeNoNetAtPoint Code = "NO_NET_AT_POINT"
	ErrCodeBusyRouting  Code = "BUSY_ROUTING"
	ErrCodeNotRouting   Code = "NOT_ROUTING"

	// State conflicts
	ErrCodeConflict      Code = "CONFLICT"
	ErrCodeDanglingRoute Code = "DANGLING_ROUTE"
	ErrCodeNotFound      Code = "NOT_FOUND"

	// Run control
	ErrCodeCancelled Code = "CANCELLED"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsInputError reports whether err is a caller input error that should be
// presented back to the user unchanged.
func IsInputError(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidLayer, ErrCodeInvalidPath,
		ErrCodeNoNetAtPoint, ErrCodeBusyRouting, ErrCodeNotRouting:
		return true
	}
	return false
}

// IsConflict reports whether err is a rejected state change.
func IsConflict(err error) bool {
	switch GetCode(err) {
	case ErrCodeConflict, ErrCodeDanglingRoute, ErrCodeNotFound:
		return true
	}
	return false
}

// IsFatal reports whether err signals a broken contract rather than a
// recoverable condition.
func IsFatal(err error) bool {
	return GetCode(err) == ErrCodeInternal
}

// Internal creates an INTERNAL_ERROR for a contract breach.
func Internal(format string, args ...any) *Error {
	return New(ErrCodeInternal, format, args...)
}
