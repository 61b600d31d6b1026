package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorClasses(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		class error
	}{
		{"user not found", ErrUserNotFound, ErrNotFound},
		{"budget not found", ErrBudgetNotFound, ErrNotFound},
		{"username taken", ErrUsernameTaken, ErrConflict},
		{"category name taken", ErrCategoryNameTaken, ErrConflict},
		{"system category immutable", ErrSystemCategoryImmutable, ErrValidation},
		{"category in use", ErrCategoryInUse, ErrValidation},
		{"field error", ErrInvalidAmount, ErrValidation},
		{"wrapped field error", fmt.Errorf("create budget: %w", ErrInvalidMonth), ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.class) {
				t.Errorf("%v does not match class %v", tt.err, tt.class)
			}
		})
	}
}

func TestFieldError_As(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", ErrInvalidAlertThreshold)

	var fieldErr *FieldError
	if !errors.As(err, &fieldErr) {
		t.Fatal("Expected errors.As to find FieldError")
	}
	if fieldErr.Field != "alertThreshold" {
		t.Errorf("Expected field alertThreshold, got %s", fieldErr.Field)
	}
}
