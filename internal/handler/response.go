package handler

import (
	"errors"
	"net/http"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Errors   map[string]string `json:"errors,omitempty"`
}

// Error types
const (
	ErrorTypeValidation = "https://spendwise.app/errors/validation"
	ErrorTypeNotFound   = "https://spendwise.app/errors/not-found"
	ErrorTypeConflict   = "https://spendwise.app/errors/conflict"
	ErrorTypeInternal   = "https://spendwise.app/errors/internal"
)

// NewValidationError creates a validation error response
func NewValidationError(c echo.Context, detail string, errors map[string]string) error {
	return c.JSON(http.StatusBadRequest, ProblemDetails{
		Type:     ErrorTypeValidation,
		Title:    "Validation Error",
		Status:   http.StatusBadRequest,
		Detail:   detail,
		Instance: c.Request().URL.Path,
		Errors:   errors,
	})
}

// NewNotFoundError creates a not found error response
func NewNotFoundError(c echo.Context, detail string) error {
	return c.JSON(http.StatusNotFound, ProblemDetails{
		Type:     ErrorTypeNotFound,
		Title:    "Not Found",
		Status:   http.StatusNotFound,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewConflictError creates a conflict error response
func NewConflictError(c echo.Context, detail string) error {
	return c.JSON(http.StatusConflict, ProblemDetails{
		Type:     ErrorTypeConflict,
		Title:    "Conflict",
		Status:   http.StatusConflict,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewInternalError creates an internal error response
func NewInternalError(c echo.Context, detail string) error {
	return c.JSON(http.StatusInternalServerError, ProblemDetails{
		Type:     ErrorTypeInternal,
		Title:    "Internal Server Error",
		Status:   http.StatusInternalServerError,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// respondError maps a service error to its response by error class.
// Unclassified errors are logged and answered with a generic 500 carrying msg.
func respondError(c echo.Context, err error, msg string) error {
	var fieldErr *domain.FieldError
	var reqErr *RequestError
	switch {
	case errors.As(err, &reqErr):
		return NewValidationError(c, "Validation failed", reqErr.Fields)
	case errors.As(err, &fieldErr):
		return NewValidationError(c, "Validation failed", map[string]string{fieldErr.Field: fieldErr.Message})
	case errors.Is(err, domain.ErrValidation):
		return NewValidationError(c, validationDetail(err), nil)
	case errors.Is(err, domain.ErrNotFound):
		return NewNotFoundError(c, notFoundDetail(err))
	case errors.Is(err, domain.ErrConflict):
		return NewConflictError(c, conflictDetail(err))
	}

	log.Error().Err(err).Str("path", c.Request().URL.Path).Msg(msg)
	return NewInternalError(c, msg)
}

func validationDetail(err error) string {
	switch {
	case errors.Is(err, domain.ErrSystemCategoryImmutable):
		return "Cannot modify system category"
	case errors.Is(err, domain.ErrSystemCategoryUndeletable):
		return "Cannot delete system category"
	case errors.Is(err, domain.ErrCategoryInUse):
		return "Cannot delete category with existing transactions"
	}
	return "Validation failed"
}

func notFoundDetail(err error) string {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, domain.ErrCategoryNotFound):
		return "Category not found"
	case errors.Is(err, domain.ErrTransactionNotFound):
		return "Transaction not found"
	case errors.Is(err, domain.ErrBudgetNotFound):
		return "Budget not found"
	}
	return "Resource not found"
}

func conflictDetail(err error) string {
	switch {
	case errors.Is(err, domain.ErrUsernameTaken):
		return "Username already exists"
	case errors.Is(err, domain.ErrEmailTaken):
		return "Email already exists"
	case errors.Is(err, domain.ErrCategoryNameTaken):
		return "Category name already exists"
	case errors.Is(err, domain.ErrBudgetAlreadyExists):
		return "Budget already exists for this period"
	}
	return "Resource already exists"
}
