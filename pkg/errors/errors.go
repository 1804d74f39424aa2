// Package errors provides structured error types for the cyclefold application.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - *_NOT_FOUND: Resource not found
//   - PARSE_ERROR: Malformed graph text
//   - INVARIANT_VIOLATION: Internal structural assertion failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidFactor, "unfolding factor must be >= 1, got %d", k)
//	if errors.Is(err, errors.ErrCodeInvalidFactor) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeParse, origErr, "line %d", line)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidFactor    Code = "INVALID_FACTOR"    // unfolding factor is not a positive integer
	ErrCodeInvalidPolicy    Code = "INVALID_POLICY"    // unknown delta or identity policy
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"    // unknown output format
	ErrCodeInvalidSeparator Code = "INVALID_SEPARATOR" // empty identifier separator

	// Delay encoding errors
	ErrCodeInvalidLabel  Code = "INVALID_LABEL"  // edge label does not encode an integer
	ErrCodeNegativeDelta Code = "NEGATIVE_DELTA" // edge label encodes a negative delay

	// Resource not found errors
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Graph text errors
	ErrCodeParse Code = "PARSE_ERROR"

	// Internal errors
	ErrCodeInvariant Code = "INVARIANT_VIOLATION" // non-constraint edge crossed a cycle boundary
	ErrCodeInternal  Code = "INTERNAL_ERROR"
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
