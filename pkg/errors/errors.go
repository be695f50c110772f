package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Status     int    `json:"status"`
	RetryAfter int    `json:"retry_after_seconds,omitempty"`
	Err        error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors sharing the same code so clones and wraps of a
// predefined error still satisfy errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrMissingText     = New("MISSING_FIELD", http.StatusBadRequest, "Missing required field: text")
	ErrMissingClientID = New("MISSING_HEADER", http.StatusBadRequest, "Missing required header: X-Client-UUID")
	ErrValidation      = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrExtractionParse = New("EXTRACTION_PARSE_ERROR", http.StatusBadRequest, "Failed to parse event data from API response.")
	ErrMissingAPIKey   = New("CONFIG_ERROR", http.StatusInternalServerError, "Server misconfigured: missing OpenAI API key")
	ErrRateLimited     = New("RATE_LIMITED", http.StatusTooManyRequests, "Rate limit exceeded")
	ErrInternal        = New("INTERNAL_ERROR", http.StatusInternalServerError, "Unexpected error occurred")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// RateLimited returns a rate limit error carrying the retry delay in seconds.
func RateLimited(retryAfterSeconds int) *Error {
	clone := Clone(ErrRateLimited, "")
	if retryAfterSeconds > 0 {
		clone.RetryAfter = retryAfterSeconds
	}
	return clone
}

// Validation returns a client input error with the provided message.
func Validation(message string) *Error {
	return Clone(ErrValidation, message)
}
