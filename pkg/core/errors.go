package core

import (
	"fmt"
)

// ErrorCategory classifies a framework error for reporting.
type ErrorCategory int

const (
	ErrCategoryNone       ErrorCategory = iota // No error
	ErrCategoryAssertion                       // Expected event/element/condition not observed
	ErrCategoryTimeout                         // Bounded wait expired
	ErrCategoryUsage                           // Caller supplied bad input (malformed pattern, etc.)
	ErrCategoryConnection                      // Device/server connection lost
	ErrCategoryConfig                          // Invalid or missing configuration
)

// String returns the string representation of ErrorCategory.
func (c ErrorCategory) String() string {
	switch c {
	case ErrCategoryNone:
		return "none"
	case ErrCategoryAssertion:
		return "assertion"
	case ErrCategoryTimeout:
		return "timeout"
	case ErrCategoryUsage:
		return "usage"
	case ErrCategoryConnection:
		return "connection"
	case ErrCategoryConfig:
		return "config"
	default:
		return "unknown"
	}
}

// FrameworkError represents a structured error with category and details.
type FrameworkError struct {
	Category ErrorCategory
	Code     string                 // Machine-readable code: event_not_found_timeout, etc.
	Message  string                 // Human-readable message
	Details  map[string]interface{} // Additional context
	Cause    error                  // Underlying error
}

// Error implements the error interface.
func (e *FrameworkError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *FrameworkError) Unwrap() error {
	return e.Cause
}

// Is matches framework errors by code, so errors.Is works against the
// predefined sentinels after WithMessage/WithDetails copies.
func (e *FrameworkError) Is(target error) bool {
	t, ok := target.(*FrameworkError)
	return ok && t.Code == e.Code
}

// WithCause returns a copy of the error with the given cause.
func (e *FrameworkError) WithCause(cause error) *FrameworkError {
	clone := *e
	clone.Cause = cause
	return &clone
}

// WithMessage returns a copy of the error with a custom message.
func (e *FrameworkError) WithMessage(msg string) *FrameworkError {
	clone := *e
	clone.Message = msg
	return &clone
}

// WithDetails returns a copy of the error with additional details.
func (e *FrameworkError) WithDetails(details map[string]interface{}) *FrameworkError {
	merged := make(map[string]interface{}, len(e.Details)+len(details))
	for k, v := range e.Details {
		merged[k] = v
	}
	for k, v := range details {
		merged[k] = v
	}
	clone := *e
	clone.Details = merged
	return &clone
}

// Predefined errors
var (
	// ErrEventNotFound: a foreground event check exhausted its timeout
	// without a match. Details carry the pattern and last observed payload.
	ErrEventNotFound = &FrameworkError{
		Category: ErrCategoryTimeout,
		Code:     "event_not_found_timeout",
		Message:  "expected event was not found within the timeout",
	}

	// ErrItemLookupFailed: page element lookup exhausted all scroll retries.
	ErrItemLookupFailed = &FrameworkError{
		Category: ErrCategoryAssertion,
		Code:     "event_item_lookup_failed",
		Message:  "no event item matched the requested data",
	}

	// ErrMalformedPattern: the caller-supplied pattern is not a JSON object.
	ErrMalformedPattern = &FrameworkError{
		Category: ErrCategoryUsage,
		Code:     "malformed_pattern",
		Message:  "pattern must be a JSON object with key/value pairs",
	}

	// ErrBackgroundChecksFailed: one or more background checks came back false.
	ErrBackgroundChecksFailed = &FrameworkError{
		Category: ErrCategoryAssertion,
		Code:     "background_checks_failed",
		Message:  "one or more background event checks failed",
	}

	// ErrAssertionFailed: a hard assertion on event data did not hold.
	ErrAssertionFailed = &FrameworkError{
		Category: ErrCategoryAssertion,
		Code:     "assertion_failed",
		Message:  "assertion failed",
	}

	ErrInvalidConfig = &FrameworkError{
		Category: ErrCategoryConfig,
		Code:     "invalid_config",
		Message:  "invalid configuration",
	}
	ErrMissingRequired = &FrameworkError{
		Category: ErrCategoryConfig,
		Code:     "missing_required",
		Message:  "missing required field",
	}
	ErrServerUnreachable = &FrameworkError{
		Category: ErrCategoryConnection,
		Code:     "server_unreachable",
		Message:  "could not connect to automation server",
	}
)

// NewFrameworkError creates a new FrameworkError with the given parameters.
func NewFrameworkError(category ErrorCategory, code, message string) *FrameworkError {
	return &FrameworkError{
		Category: category,
		Code:     code,
		Message:  message,
	}
}
