// Package errors provides structured error types for skillcat.
//
// Errors carry a machine-readable [Code] so that the pipeline can decide how
// far a failure propagates: a NOT_FOUND from the upstream API is an expected
// absence, RATE_LIMITED and NETWORK_ERROR abort only the current collector,
// MALFORMED_DATA skips a single item, and UNAUTHORIZED at preflight aborts
// the run before any collector starts.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "invalid repository: %s", name)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeNetwork, origErr, "failed to fetch %s", url)
package errors

import (
	"errors"
	"fmt"
	"time"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"
	ErrCodeInvalidSlug   Code = "INVALID_SLUG"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Resource not found errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Upstream errors
	ErrCodeNetwork       Code = "NETWORK_ERROR"
	ErrCodeRateLimited   Code = "RATE_LIMITED"
	ErrCodeMalformedData Code = "MALFORMED_DATA"

	// Authentication errors
	ErrCodeUnauthorized Code = "UNAUTHORIZED"

	// Local resource errors
	ErrCodeLocked   Code = "LOCKED"
	ErrCodeInternal Code = "INTERNAL_ERROR"
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

// Is reports whether err carries the given error code anywhere in its chain.
// A [RateLimitedError] counts as ErrCodeRateLimited.
func Is(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			break
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	if code == ErrCodeRateLimited {
		var rl *RateLimitedError
		return errors.As(err, &rl)
	}
	return false
}

// GetCode extracts the outermost error code from an error, if available.
// Returns empty string if the error carries no code.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var rl *RateLimitedError
	if errors.As(err, &rl) {
		return ErrCodeRateLimited
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

// RateLimitedError reports an exhausted upstream request budget.
type RateLimitedError struct {
	RetryAfter int       // Seconds to wait before retrying
	Reset      time.Time // When the budget refills, if the upstream reported it
	Message    string
}

// Error implements the error interface.
func (e *RateLimitedError) Error() string {
	switch {
	case e.RetryAfter > 0:
		return fmt.Sprintf("rate limited: retry after %d seconds", e.RetryAfter)
	case !e.Reset.IsZero():
		return fmt.Sprintf("rate limited: resets at %s", e.Reset.UTC().Format(time.RFC3339))
	}
	return "rate limited"
}

// Code returns the error code for this error type.
func (e *RateLimitedError) Code() Code {
	return ErrCodeRateLimited
}
