package apperror

import (
	"errors"
	"fmt"
	"testing"
)

// TABLE-DRIVEN TESTS:
// This is Go's idiomatic pattern for testing multiple cases.
// Instead of writing separate test functions per case, we define a slice of
// test cases and loop over them — adding a case is adding one struct.

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("short URL", 42),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "NotFoundByKey wraps ErrNotFound",
			err:       NotFoundByKey("short URL", "Ab3xYz90"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("original_url", "original_url is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "AuthenticationFailed wraps ErrAuthentication",
			err:       AuthenticationFailed("invalid email or password"),
			target:    ErrAuthentication,
			wantMatch: true,
		},
		{
			name:      "Forbidden wraps ErrAuthorization",
			err:       Forbidden("insufficient permissions"),
			target:    ErrAuthorization,
			wantMatch: true,
		},
		{
			name:      "Conflict wraps ErrConflict",
			err:       Conflict("email already registered"),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "Database wraps ErrDatabase",
			err:       Database("listing URLs failed", errors.New("disk I/O error")),
			target:    ErrDatabase,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("short URL", 1),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "AuthenticationFailed does NOT match ErrNotFound",
			err:       AuthenticationFailed("token expired"),
			target:    ErrNotFound,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.wantMatch {
				t.Errorf("errors.Is() = %v, want %v", got, tt.wantMatch)
			}
		})
	}
}

// Wrapping an AppError with %w must preserve both errors.Is matching and
// errors.As extraction — the HTTP layer relies on both.
func TestWrappedAppError(t *testing.T) {
	inner := NotFound("short URL", 7)
	wrapped := fmt.Errorf("deleting URL: %w", inner)

	if !errors.Is(wrapped, ErrNotFound) {
		t.Error("errors.Is() should find ErrNotFound through a wrapped chain")
	}

	var appErr *AppError
	if !errors.As(wrapped, &appErr) {
		t.Fatal("errors.As() should extract *AppError through a wrapped chain")
	}
	if appErr.Code != "NOT_FOUND_ERROR" {
		t.Errorf("Code = %q, want %q", appErr.Code, "NOT_FOUND_ERROR")
	}
	if appErr.Message != "short URL not found with id 7" {
		t.Errorf("Message = %q", appErr.Message)
	}
}

func TestDatabaseDetails(t *testing.T) {
	err := Database("creating URL failed", errors.New("database is locked"))
	if err.Details != "database is locked" {
		t.Errorf("Details = %q, want driver error text", err.Details)
	}

	errNoCause := Database("creating URL failed", nil)
	if errNoCause.Details != "" {
		t.Errorf("Details = %q, want empty for nil cause", errNoCause.Details)
	}
}

func TestValidationFailedField(t *testing.T) {
	err := ValidationFailed("original_url", "URL must use http or https")
	if err.Field != "original_url" {
		t.Errorf("Field = %q, want %q", err.Field, "original_url")
	}
	if err.Error() != "URL must use http or https" {
		t.Errorf("Error() = %q", err.Error())
	}
}
