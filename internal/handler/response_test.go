package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		status     int
		errorType  string
		detail     string
		fieldError map[string]string
	}{
		{
			name:       "field error",
			err:        domain.ErrInvalidMonth,
			status:     http.StatusBadRequest,
			errorType:  ErrorTypeValidation,
			detail:     "Validation failed",
			fieldError: map[string]string{"month": "Month must be between 1 and 12"},
		},
		{
			name:      "rule violation",
			err:       domain.ErrCategoryInUse,
			status:    http.StatusBadRequest,
			errorType: ErrorTypeValidation,
			detail:    "Cannot delete category with existing transactions",
		},
		{
			name:      "wrapped not found",
			err:       fmt.Errorf("load budget: %w", domain.ErrBudgetNotFound),
			status:    http.StatusNotFound,
			errorType: ErrorTypeNotFound,
			detail:    "Budget not found",
		},
		{
			name:      "conflict",
			err:       domain.ErrEmailTaken,
			status:    http.StatusConflict,
			errorType: ErrorTypeConflict,
			detail:    "Email already exists",
		},
		{
			name:      "unclassified",
			err:       errors.New("pool closed"),
			status:    http.StatusInternalServerError,
			errorType: ErrorTypeInternal,
			detail:    "Failed to do the thing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newTestContext(http.MethodGet, "/things/1", "")

			require.NoError(t, respondError(c, tt.err, "Failed to do the thing"))
			assert.Equal(t, tt.status, rec.Code)

			problem := decodeProblem(t, rec)
			assert.Equal(t, tt.errorType, problem.Type)
			assert.Equal(t, tt.status, problem.Status)
			assert.Equal(t, tt.detail, problem.Detail)
			assert.Equal(t, "/things/1", problem.Instance)
			assert.Equal(t, tt.fieldError, problem.Errors)
		})
	}
}
