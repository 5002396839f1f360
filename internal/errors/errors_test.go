package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"
)

func TestReportError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ReportError
		expected string
	}{
		{
			name:     "error without cause",
			err:      New(CategoryConfig, SeverityFatal, "configuration invalid"),
			expected: "config (fatal): configuration invalid",
		},
		{
			name:     "error with cause",
			err:      Wrap(fmt.Errorf("connection refused"), CategorySource, SeverityError, "fetch failed"),
			expected: "source (error): fetch failed: connection refused",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := test.err.Error()
			if result != test.expected {
				t.Errorf("Error() = %q, want %q", result, test.expected)
			}
		})
	}
}

func TestReportError_WithContext(t *testing.T) {
	err := SourceUnavailable("https://example.com/sheet.csv", fmt.Errorf("timeout")).
		WithContext("attempt", 1)

	if err.Context == nil {
		t.Fatal("Context should not be nil")
	}

	if err.Context["url"] != "https://example.com/sheet.csv" {
		t.Errorf("Context[url] = %v, want the sheet URL", err.Context["url"])
	}

	if err.Context["attempt"] != 1 {
		t.Errorf("Context[attempt] = %v, want 1", err.Context["attempt"])
	}
}

func TestIsCategory(t *testing.T) {
	sourceErr := SourceUnavailable("u", fmt.Errorf("boom"))
	schemaErr := SchemaMissing("Date")
	standardErr := fmt.Errorf("standard error")

	tests := []struct {
		name     string
		err      error
		category ErrorCategory
		expected bool
	}{
		{"source error matches source", sourceErr, CategorySource, true},
		{"source error does not match schema", sourceErr, CategorySchema, false},
		{"schema error matches schema", schemaErr, CategorySchema, true},
		{"standard error matches nothing", standardErr, CategorySource, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := IsCategory(test.err, test.category); got != test.expected {
				t.Errorf("IsCategory() = %v, want %v", got, test.expected)
			}
		})
	}
}

func TestReportError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := GenerationFailed(cause)

	if !stdErrors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestGetCategory(t *testing.T) {
	if got := GetCategory(NotificationFailed("slack", fmt.Errorf("x"))); got != CategoryNotification {
		t.Errorf("GetCategory() = %v, want %v", got, CategoryNotification)
	}
	if got := GetCategory(fmt.Errorf("plain")); got != CategoryInternal {
		t.Errorf("GetCategory() = %v, want %v", got, CategoryInternal)
	}
}
