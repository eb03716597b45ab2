package errors

import (
	"fmt"
)

// ReaderError is the structured error type for the reader core.
// It provides context for error handling, logging, and caller presentation.
type ReaderError struct {
	// Code is the unique error code (e.g., "ERR_401_GATE_CLOSED").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, Input, Integrity, ...).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error
}

// Error implements the error interface.
func (e *ReaderError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *ReaderError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with ReaderError.
func (e *ReaderError) Is(target error) bool {
	if t, ok := target.(*ReaderError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *ReaderError) WithDetail(key, value string) *ReaderError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// New creates a new ReaderError with the given code and message.
// Category and severity are derived from the code.
func New(code string, message string, cause error) *ReaderError {
	return &ReaderError{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
		Cause:    cause,
	}
}

// Newf creates a new ReaderError with a formatted message.
func Newf(code string, format string, args ...any) *ReaderError {
	return New(code, fmt.Sprintf(format, args...), nil)
}

// Wrap creates a ReaderError from an existing error.
// The error's message becomes the ReaderError message.
func Wrap(code string, err error) *ReaderError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// Sentinel errors for errors.Is matching across the module. The factories
// below produce errors carrying the same codes, so callers can compare
// against these without caring about the message.
var (
	// ErrGateClosed is returned when an operation is attempted after shutdown.
	ErrGateClosed = New(ErrCodeGateClosed, "reader is shutting down", nil)

	// ErrChannelClosed is returned when a dispatch completion channel is
	// closed before a result was delivered.
	ErrChannelClosed = New(ErrCodeChannelClosed, "dispatch channel closed unexpectedly", nil)

	// ErrUnknownDocument is returned for lookups of ids with no matches.
	ErrUnknownDocument = New(ErrCodeUnknownDocument, "no document exists with this id", nil)

	// ErrMissingPrivateField is returned when the schema lacks the private
	// identifier field. This is a configuration bug, never worked around.
	ErrMissingPrivateField = New(ErrCodeMissingPrivateField, "missing a required private field, this is a bug", nil)

	// ErrCorruptDataset is returned when a matched document carries a missing
	// or mistyped identifier.
	ErrCorruptDataset = New(ErrCodeCorruptDataset, "document has been mislabeled (missing identifier tag), the dataset is invalid", nil)

	// ErrNotFastField is returned when ordering is requested on a field
	// without typed fast access.
	ErrNotFastField = New(ErrCodeNotFastField, "field is not a fast field", nil)
)

// BadQuery creates a query-construction input error.
func BadQuery(message string) *ReaderError {
	return New(ErrCodeBadQuery, message, nil)
}

// ModeMismatch creates a payload/mode mismatch error.
func ModeMismatch(message string) *ReaderError {
	return New(ErrCodeModeMismatch, message, nil)
}

// Internal creates an internal error wrapping the given cause.
func Internal(message string, cause error) *ReaderError {
	return New(ErrCodeInternal, message, cause)
}

// IsFatal reports whether the error is a ReaderError with fatal severity.
func IsFatal(err error) bool {
	if re, ok := err.(*ReaderError); ok {
		return re.Severity == SeverityFatal
	}
	return false
}
