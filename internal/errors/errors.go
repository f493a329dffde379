// Package errors provides structured error types for the Vellum schema
// engine. All errors include a category, code, message, and the offending
// object names so client-facing diagnostics can reproduce exact wording.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors by system component.
type ErrorCategory string

const (
	ErrCategoryValidation ErrorCategory = "VALIDATION"
	ErrCategoryAnalysis   ErrorCategory = "ANALYSIS"
	ErrCategoryHistory    ErrorCategory = "HISTORY"
	ErrCategoryInternal   ErrorCategory = "INTERNAL"
)

// Error codes for DDL validation failures. These are stable kinds: the code
// never changes for a given failure mode even if the message wording does.
const (
	// Change stream codes
	CodeDuplicateTrackedObject     = "DUPLICATE_TRACKED_OBJECT"
	CodeUnknownTrackedObject       = "UNKNOWN_TRACKED_OBJECT"
	CodeUnknownColumn              = "UNKNOWN_COLUMN"
	CodePrimaryKeyColumnNotAllowed = "PRIMARY_KEY_COLUMN_NOT_ALLOWED"
	CodeChangeStreamQuotaExceeded  = "CHANGE_STREAM_QUOTA_EXCEEDED"

	// Table codes
	CodeInterleavingKeyMismatch = "INTERLEAVING_KEY_MISMATCH"
	CodeCyclicGeneratedColumn   = "CYCLIC_GENERATED_COLUMN"
	CodeDanglingReference       = "DANGLING_REFERENCE"
	CodeDuplicateName           = "DUPLICATE_NAME"

	// Analysis codes
	CodeAnalysisError = "ANALYSIS_ERROR"

	// History codes
	CodeHistoryWriteFailed = "HISTORY_WRITE_FAILED"
	CodeVersionNotFound    = "VERSION_NOT_FOUND"

	// Internal codes
	CodeUnexpected = "UNEXPECTED"
)

// SchemaError is the structured error type used throughout the system.
type SchemaError struct {
	Category ErrorCategory
	Code     string
	Message  string
	Details  map[string]interface{}
	Cause    error
}

// Error returns a formatted error string.
func (e *SchemaError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *SchemaError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches this error's category and code.
func (e *SchemaError) Is(target error) bool {
	var t *SchemaError
	if errors.As(target, &t) {
		return e.Category == t.Category && e.Code == t.Code
	}
	return false
}

// New creates a new SchemaError.
func New(category ErrorCategory, code, message string) *SchemaError {
	return &SchemaError{
		Category: category,
		Code:     code,
		Message:  message,
	}
}

// Newf creates a new SchemaError with a formatted message.
func Newf(category ErrorCategory, code, format string, args ...interface{}) *SchemaError {
	return New(category, code, fmt.Sprintf(format, args...))
}

// Wrap creates a new SchemaError wrapping an existing error.
func Wrap(category ErrorCategory, code, message string, cause error) *SchemaError {
	return &SchemaError{
		Category: category,
		Code:     code,
		Message:  message,
		Cause:    cause,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *SchemaError) WithDetails(details map[string]interface{}) *SchemaError {
	cp := *e
	cp.Details = details
	return &cp
}

// GetCategory extracts the error category from an error chain.
// Returns empty string if the error is not a SchemaError.
func GetCategory(err error) ErrorCategory {
	var se *SchemaError
	if errors.As(err, &se) {
		return se.Category
	}
	return ""
}

// GetCode extracts the error code from an error chain.
// Returns empty string if the error is not a SchemaError.
func GetCode(err error) string {
	var se *SchemaError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// IsValidation reports whether the error is a DDL validation failure, as
// opposed to an analysis or internal error.
func IsValidation(err error) bool {
	return GetCategory(err) == ErrCategoryValidation
}

// Convenience constructors for common errors.

func NewValidationError(code, format string, args ...interface{}) *SchemaError {
	return Newf(ErrCategoryValidation, code, format, args...)
}

// NewAnalysisError surfaces a parser failure unchanged.
func NewAnalysisError(cause error) *SchemaError {
	return Wrap(ErrCategoryAnalysis, CodeAnalysisError, "statement analysis failed", cause)
}

func NewHistoryError(code, message string, cause error) *SchemaError {
	return Wrap(ErrCategoryHistory, code, message, cause)
}

func NewInternalError(message string, cause error) *SchemaError {
	return Wrap(ErrCategoryInternal, CodeUnexpected, message, cause)
}
