package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNewMonthlySummary_Balance(t *testing.T) {
	breakdown := []*CategorySpending{
		{CategoryID: 1, CategoryName: "Food", Total: decimal.RequireFromString("80.00")},
		{CategoryID: 2, CategoryName: "Travel", Total: decimal.RequireFromString("20.50")},
	}
	summary := NewMonthlySummary(3, 2024, decimal.RequireFromString("1000.00"), decimal.RequireFromString("100.50"), breakdown)

	assert.Equal(t, "899.50", summary.Balance.StringFixed(2))
	assert.Len(t, summary.CategoryBreakdown, 2)
}

func TestNewMonthlySummary_NilBreakdownBecomesEmpty(t *testing.T) {
	summary := NewMonthlySummary(1, 2024, decimal.Zero, decimal.Zero, nil)

	assert.NotNil(t, summary.CategoryBreakdown)
	assert.Empty(t, summary.CategoryBreakdown)
	assert.True(t, summary.Balance.IsZero())
}

func TestNewYearlySummary_AverageRoundsHalfUp(t *testing.T) {
	tests := []struct {
		expenses string
		want     string
	}{
		{"1200.00", "100.00"},
		{"100.00", "8.33"}, // 8.3333..
		{"100.06", "8.34"}, // 8.33833..
		{"0.06", "0.01"},   // 0.005 -> 0.01
		{"0", "0.00"},
	}

	for _, tt := range tests {
		summary := NewYearlySummary(2024, decimal.Zero, decimal.RequireFromString(tt.expenses))
		assert.Equal(t, tt.want, summary.AverageMonthlyExpense.StringFixed(2), "expenses %s", tt.expenses)
	}
}

func TestNewYearlySummary_Balance(t *testing.T) {
	summary := NewYearlySummary(2024, decimal.RequireFromString("5000.00"), decimal.RequireFromString("6200.00"))
	assert.Equal(t, "-1200.00", summary.Balance.StringFixed(2))
}
