// Package errors provides structured error types for townsquare.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the HTTP API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - NOT_FOUND: Resource not found
//   - NETWORK_ERROR, TIMEOUT: Cache backend connectivity
//   - LAYOUT_BUSY: A layout pass was skipped because another one is running
//   - INTERNAL_ERROR: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "participant %d has no name", i)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeNetwork, origErr, "failed to reach %s", addr)
//
// The layout engine itself returns plain sentinel errors; the outer layers
// translate them with [FromLayout].
package errors

import (
	"errors"
	"fmt"

	"github.com/matzehuels/townsquare/pkg/names"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidViewport Code = "INVALID_VIEWPORT"

	// Resource not found errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Network errors
	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

	// Layout errors
	ErrCodeLayoutBusy Code = "LAYOUT_BUSY"

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

// coder is implemented by error types that carry their code in a method.
type coder interface{ Code() Code }

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error or a coder.
func Is(err error, code Code) bool {
	c := GetCode(err)
	return c != "" && c == code
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if nothing in the chain carries a code.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var c coder
	if errors.As(err, &c) {
		return c.Code()
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

// FromLayout converts an error returned by the layout engine into an *Error.
// A skipped pass becomes a *BusyError; anything else is internal.
func FromLayout(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	if errors.Is(err, names.ErrPassInProgress) {
		return &BusyError{Cause: err}
	}
	return Wrap(ErrCodeInternal, err, "layout failed")
}

// BusyError reports a layout pass that was skipped because another pass on
// the same engine was still running. Clients may retry.
type BusyError struct {
	RetryAfter int // Seconds to wait before retrying
	Cause      error
}

// Error implements the error interface.
func (e *BusyError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("layout busy: retry after %d seconds", e.RetryAfter)
	}
	return "layout busy"
}

// Unwrap returns the engine error.
func (e *BusyError) Unwrap() error { return e.Cause }

// Code returns the error code for this error type.
func (e *BusyError) Code() Code {
	return ErrCodeLayoutBusy
}
