package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeNetwork          ErrorType = "network"
	ErrorTypeRateLimit        ErrorType = "rate_limit"
	ErrorTypeParsing          ErrorType = "parsing"
	ErrorTypeNotFound         ErrorType = "not_found"
	ErrorTypeServerError      ErrorType = "server_error"
	ErrorTypeMissingStructure ErrorType = "missing_structure"
	ErrorTypeUnknown          ErrorType = "unknown"
)

// ErrMissingStructure matches any *MissingStructureError via errors.Is.
var ErrMissingStructure = stderrors.New("missing page structure")

// Error represents a typed error with an optional status code
type Error struct {
	Type    ErrorType
	Message string
	Code    int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
}

// MissingStructureError is returned when a candidate element does not have
// the nested label the extractor depends on, or the label does not match.
type MissingStructureError struct {
	ElementID string
	Reason    string
	Label     string
}

func (e *MissingStructureError) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("emoji %q: %s (label %q)", e.ElementID, e.Reason, e.Label)
	}
	return fmt.Sprintf("emoji %q: %s", e.ElementID, e.Reason)
}

// Is reports whether target is ErrMissingStructure.
func (e *MissingStructureError) Is(target error) bool {
	return target == ErrMissingStructure
}

// TypeOf returns the ErrorType carried by err, or ErrorTypeUnknown.
func TypeOf(err error) ErrorType {
	var typed *Error
	if stderrors.As(err, &typed) {
		return typed.Type
	}
	if stderrors.Is(err, ErrMissingStructure) {
		return ErrorTypeMissingStructure
	}
	return ErrorTypeUnknown
}

// IsRetryable checks if an error type should be retried
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNetwork, ErrorTypeRateLimit, ErrorTypeServerError:
		return true
	default:
		return false
	}
}

// IsRetryableStatusCode checks if an HTTP status code indicates a retryable error
func IsRetryableStatusCode(statusCode int) bool {
	switch statusCode {
	case 0: // Network error
		return true
	case 429:
		return true
	case 401, 403, 404:
		return false
	default:
		return statusCode >= 500
	}
}

// FromStatusCode builds a typed error for a failed HTTP response.
func FromStatusCode(statusCode int, msg string) *Error {
	t := ErrorTypeUnknown
	switch {
	case statusCode == 429:
		t = ErrorTypeRateLimit
	case statusCode == 404:
		t = ErrorTypeNotFound
	case statusCode >= 500:
		t = ErrorTypeServerError
	}
	return &Error{Type: t, Message: msg, Code: statusCode}
}
