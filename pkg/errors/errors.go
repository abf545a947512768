// Package errors provides structured error types for ghcensus.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the collector and the CLI
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// A run only knows two tiers of failure. Rate limiting is recovered in place
// by the HTTP client and never surfaces unless a wait cap was configured.
// Everything else is fatal to the run:
//   - INVALID_*: Input validation failures (flags, config)
//   - MISSING_CREDENTIAL: No API token was supplied
//   - HTTP_ERROR: Upstream answered with a non-200, non-rate-limit status
//   - NETWORK_ERROR: Transport failure (timeout, reset, DNS)
//   - DECODE_ERROR: Response body was not the expected JSON
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "location cannot be empty")
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeNetwork, origErr, "GET %s", url)
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidLocation Code = "INVALID_LOCATION"
	ErrCodeInvalidLogin    Code = "INVALID_LOGIN"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"

	// Credential errors
	ErrCodeMissingCredential Code = "MISSING_CREDENTIAL"

	// Upstream errors
	ErrCodeHTTP        Code = "HTTP_ERROR"
	ErrCodeNetwork     Code = "NETWORK_ERROR"
	ErrCodeRateLimited Code = "RATE_LIMITED"
	ErrCodeDecode      Code = "DECODE_ERROR"

	// Output errors
	ErrCodeOutput Code = "OUTPUT_ERROR"

	// Internal errors
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

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
// An *HTTPError matches ErrCodeHTTP.
func Is(err error, code Code) bool {
	return GetCode(err) == code
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error carries no code.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var he *HTTPError
	if errors.As(err, &he) {
		return ErrCodeHTTP
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return e.Message + ": " + UserMessage(e.Cause)
		}
		return e.Message
	}
	return err.Error()
}

// HTTPError is returned for any upstream response that is neither 200 nor
// a recognized rate-limit rejection. It is fatal to the run.
type HTTPError struct {
	StatusCode int
	URL        string
	Body       string
}

// maxBodyInMessage bounds how much of the response body Error() repeats.
const maxBodyInMessage = 200

// Error implements the error interface.
func (e *HTTPError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > maxBodyInMessage {
		body = body[:maxBodyInMessage] + "..."
	}
	if body == "" {
		return fmt.Sprintf("http %d: %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("http %d: %s: %s", e.StatusCode, e.URL, body)
}

// Code returns the error code for this error type.
func (e *HTTPError) Code() Code {
	return ErrCodeHTTP
}

// RateLimitedError is returned only when a rate-limit wait cap is configured
// and exhausted.
type RateLimitedError struct {
	Waits      int // Number of waits already performed
	RetryAfter int // Seconds the last response asked to wait
}

// Error implements the error interface.
func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited after %d waits: retry after %d seconds", e.Waits, e.RetryAfter)
	}
	return fmt.Sprintf("rate limited after %d waits", e.Waits)
}

// Code returns the error code for this error type.
func (e *RateLimitedError) Code() Code {
	return ErrCodeRateLimited
}
