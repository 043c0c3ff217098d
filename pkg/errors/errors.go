// Package errors provides structured error types for the cycler application.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and HTTP API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - DANGLING_REFERENCE, UNKNOWN_CLASS: documents that cannot be restored
//   - NOT_FOUND: Missing files or resources
//   - INTERNAL_ERROR: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidClass, "invalid class name: %q", name)
//	if errors.Is(err, errors.ErrCodeInvalidClass) {
//	    // Handle validation error
//	}
//
//	// Map library errors to codes at the application boundary
//	code := errors.Classify(err).Code
package errors

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/matzehuels/cycler/pkg/codec"
	"github.com/matzehuels/cycler/pkg/cycle"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"
	ErrCodeInvalidClass  Code = "INVALID_CLASS"

	// Restoration errors
	ErrCodeDanglingReference Code = "DANGLING_REFERENCE"
	ErrCodeUnknownClass      Code = "UNKNOWN_CLASS"

	// Resource errors
	ErrCodeNotFound Code = "NOT_FOUND"
	ErrCodeCanceled Code = "CANCELED"

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
		if e.Cause != nil && e.Code != ErrCodeInternal {
			return fmt.Sprintf("%s: %v", e.Message, e.Cause)
		}
		return e.Message
	}
	return err.Error()
}

// Classify returns err as an *Error, assigning a code from the sentinel
// errors of the cycle and codec packages when err carries none.
// Classify returns nil for a nil error.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}

	var dangling *cycle.DanglingReferenceError
	var unknown *cycle.UnknownClassError
	switch {
	case errors.As(err, &dangling):
		return Wrap(ErrCodeDanglingReference, err, "reference %s does not resolve", dangling.Path)
	case errors.As(err, &unknown):
		return Wrap(ErrCodeUnknownClass, err, "class %q is not registered", unknown.Name)
	case errors.Is(err, cycle.ErrInvalidPath):
		return Wrap(ErrCodeInvalidPath, err, "invalid path")
	case errors.Is(err, codec.ErrUnknownFormat):
		return Wrap(ErrCodeInvalidFormat, err, "unsupported format")
	case errors.Is(err, codec.ErrCyclic), errors.Is(err, codec.ErrUnsupportedValue):
		return Wrap(ErrCodeInvalidInput, err, "value cannot be encoded")
	case errors.Is(err, fs.ErrNotExist):
		return Wrap(ErrCodeNotFound, err, "file not found")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return Wrap(ErrCodeCanceled, err, "operation canceled")
	}
	return Wrap(ErrCodeInternal, err, "internal error")
}

// HTTPStatus maps an error code to the HTTP status the API responds with.
func HTTPStatus(code Code) int {
	switch code {
	case ErrCodeInvalidInput, ErrCodeInvalidFormat, ErrCodeInvalidPath, ErrCodeInvalidClass:
		return http.StatusBadRequest
	case ErrCodeDanglingReference, ErrCodeUnknownClass:
		return http.StatusUnprocessableEntity
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnsupported:
		return http.StatusUnsupportedMediaType
	case ErrCodeCanceled:
		return http.StatusRequestTimeout
	}
	return http.StatusInternalServerError
}
