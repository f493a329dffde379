package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestSchemaError_Error(t *testing.T) {
	err := New(ErrCategoryValidation, CodeDuplicateName, "table Users already exists")
	expected := "[VALIDATION:DUPLICATE_NAME] table Users already exists"
	if err.Error() != expected {
		t.Errorf("got %q, want %q", err.Error(), expected)
	}
}

func TestSchemaError_ErrorWithCause(t *testing.T) {
	cause := fmt.Errorf("unexpected token")
	err := Wrap(ErrCategoryAnalysis, CodeAnalysisError, "statement analysis failed", cause)
	expected := "[ANALYSIS:ANALYSIS_ERROR] statement analysis failed: unexpected token"
	if err.Error() != expected {
		t.Errorf("got %q, want %q", err.Error(), expected)
	}
}

func TestSchemaError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := Wrap(ErrCategoryHistory, CodeHistoryWriteFailed, "insert failed", cause)
	if !errors.Is(err, cause) {
		t.Error("Unwrap should allow errors.Is to find the cause")
	}
}

func TestSchemaError_Is(t *testing.T) {
	err1 := New(ErrCategoryValidation, CodeUnknownColumn, "first")
	err2 := New(ErrCategoryValidation, CodeUnknownColumn, "second")
	err3 := New(ErrCategoryValidation, CodeDuplicateName, "different code")

	if !errors.Is(err1, err2) {
		t.Error("errors with same category+code should match via Is")
	}
	if errors.Is(err1, err3) {
		t.Error("errors with different codes should not match via Is")
	}
}

func TestGetCategoryAndCode(t *testing.T) {
	err := NewValidationError(CodeChangeStreamQuotaExceeded, "table %s tracked by too many change streams", "Users")
	if GetCategory(err) != ErrCategoryValidation {
		t.Errorf("got category %q, want %q", GetCategory(err), ErrCategoryValidation)
	}
	if GetCode(err) != CodeChangeStreamQuotaExceeded {
		t.Errorf("got code %q, want %q", GetCode(err), CodeChangeStreamQuotaExceeded)
	}
	if GetCategory(fmt.Errorf("plain error")) != "" {
		t.Error("non-SchemaError should return empty category")
	}
	if GetCode(fmt.Errorf("plain error")) != "" {
		t.Error("non-SchemaError should return empty code")
	}
}

func TestGetCode_WrappedChain(t *testing.T) {
	inner := NewValidationError(CodePrimaryKeyColumnNotAllowed, "column UserId is a key column")
	outer := fmt.Errorf("applying statement 2: %w", inner)
	if GetCode(outer) != CodePrimaryKeyColumnNotAllowed {
		t.Errorf("code should survive %%w wrapping, got %q", GetCode(outer))
	}
}

func TestIsValidation(t *testing.T) {
	if !IsValidation(NewValidationError(CodeInterleavingKeyMismatch, "bad key")) {
		t.Error("validation error not recognized")
	}
	if IsValidation(NewAnalysisError(fmt.Errorf("syntax"))) {
		t.Error("analysis error misclassified as validation")
	}
}

func TestWithDetails(t *testing.T) {
	err := NewValidationError(CodeUnknownColumn, "no such column")
	detailed := err.WithDetails(map[string]interface{}{"column": "Name", "table": "Users"})

	if detailed.Details["column"] != "Name" {
		t.Error("WithDetails should set details")
	}
	if err.Details != nil {
		t.Error("WithDetails should not modify original")
	}
}

func TestMessageCarriesOffendingNames(t *testing.T) {
	err := NewValidationError(CodePrimaryKeyColumnNotAllowed,
		"change stream foo cannot list key column %s of table %s", "UserId", "Users")
	msg := err.Error()
	for _, name := range []string{"UserId", "Users"} {
		if !strings.Contains(msg, name) {
			t.Errorf("message %q should contain %q", msg, name)
		}
	}
}
