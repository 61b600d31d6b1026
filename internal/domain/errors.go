package domain

import (
	"errors"
	"fmt"
)

// Error classes. Every domain error wraps exactly one of these so the HTTP
// boundary can map it to a status code with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("resource not found")
	ErrConflict   = errors.New("resource already exists")
)

// FieldError is a validation error tied to a single input field
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap makes every FieldError match ErrValidation
func (e *FieldError) Unwrap() error {
	return ErrValidation
}

// NewFieldError creates a FieldError
func NewFieldError(field, message string) *FieldError {
	return &FieldError{Field: field, Message: message}
}

// Not found errors
var (
	ErrUserNotFound        = fmt.Errorf("user not found: %w", ErrNotFound)
	ErrCategoryNotFound    = fmt.Errorf("category not found: %w", ErrNotFound)
	ErrTransactionNotFound = fmt.Errorf("transaction not found: %w", ErrNotFound)
	ErrBudgetNotFound      = fmt.Errorf("budget not found: %w", ErrNotFound)
)

// Conflict errors
var (
	ErrUsernameTaken     = fmt.Errorf("username already exists: %w", ErrConflict)
	ErrEmailTaken        = fmt.Errorf("email already exists: %w", ErrConflict)
	ErrCategoryNameTaken = fmt.Errorf("category name already exists: %w", ErrConflict)
	// ErrBudgetAlreadyExists is returned by the repository when an insert lost
	// the race on the (user, category, month, year) key.
	ErrBudgetAlreadyExists = fmt.Errorf("budget already exists for period: %w", ErrConflict)
)

// Rule violations
var (
	ErrSystemCategoryImmutable   = fmt.Errorf("cannot modify system category: %w", ErrValidation)
	ErrSystemCategoryUndeletable = fmt.Errorf("cannot delete system category: %w", ErrValidation)
	ErrCategoryInUse             = fmt.Errorf("cannot delete category with existing transactions: %w", ErrValidation)
)

// Field validation errors
var (
	ErrUsernameRequired       = NewFieldError("username", "Username is required")
	ErrEmailRequired          = NewFieldError("email", "Email is required")
	ErrEmailInvalid           = NewFieldError("email", "Email should be valid")
	ErrFullNameRequired       = NewFieldError("fullName", "Full name is required")
	ErrCategoryNameRequired   = NewFieldError("name", "Category name is required")
	ErrInvalidAmount          = NewFieldError("amount", "Amount must be greater than 0")
	ErrAmountScale            = NewFieldError("amount", fmt.Sprintf("Amount must have at most %d decimal places", AmountScale))
	ErrAmountTooLarge         = NewFieldError("amount", "Amount must not exceed "+MaxAmount.StringFixed(AmountScale))
	ErrInvalidTransactionType = NewFieldError("type", "Type must be one of: INCOME, EXPENSE")
	ErrInvalidMonth           = NewFieldError("month", "Month must be between 1 and 12")
	ErrInvalidYear            = NewFieldError("year", fmt.Sprintf("Year must be %d or later", MinBudgetYear))
	ErrInvalidAlertThreshold  = NewFieldError("alertThreshold", "Alert threshold must be between 1 and 100")
	ErrInvalidDateRange       = NewFieldError("endDate", "End date must not be before start date")
	ErrInvalidSortField       = NewFieldError("sortBy", "Unsupported sort field")
	ErrDescriptionTooLong     = NewFieldError("description", fmt.Sprintf("Description must be %d characters or less", MaxTextLength))
	ErrNotesTooLong           = NewFieldError("notes", fmt.Sprintf("Notes must be %d characters or less", MaxTextLength))
	ErrIconTooLong            = NewFieldError("icon", fmt.Sprintf("Icon must be %d characters or less", MaxIconLength))
	ErrColorTooLong           = NewFieldError("color", fmt.Sprintf("Color must be %d characters or less", MaxColorLength))
	ErrCategoryIDRequired     = NewFieldError("categoryId", "Category ID is required")
	ErrDateRequired           = NewFieldError("transactionDate", "Transaction date is required")
	ErrStartDateRequired      = NewFieldError("startDate", "Start date is required")
	ErrEndDateRequired        = NewFieldError("endDate", "End date is required")
	ErrInvalidPage            = NewFieldError("page", "Page must not be negative")
	ErrInvalidPageSize        = NewFieldError("size", fmt.Sprintf("Size must be between 1 and %d", MaxPageSize))
)

// Validation constants
const (
	MaxTextLength         = 500
	MaxIconLength         = 50
	MaxColorLength        = 7
	MinBudgetYear         = 2020
	DefaultAlertThreshold = 80

	// AmountScale matches the NUMERIC(10,2) money columns
	AmountScale = 2
)
