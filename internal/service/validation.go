package service

import (
	"strings"
	"time"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func isValidEmail(email string) bool {
	return validate.Var(email, "required,email") == nil
}

// optionalText trims s and returns nil when nothing is left
func optionalText(s *string, maxLen int, tooLong error) (*string, error) {
	if s == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil, nil
	}
	if len([]rune(trimmed)) > maxLen {
		return nil, tooLong
	}
	return &trimmed, nil
}

// requireDateRange checks an explicit inclusive range
func requireDateRange(start, end time.Time) error {
	if start.IsZero() {
		return domain.ErrStartDateRequired
	}
	if end.IsZero() {
		return domain.ErrEndDateRequired
	}
	if end.Before(start) {
		return domain.ErrInvalidDateRange
	}
	return nil
}
