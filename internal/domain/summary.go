package domain

import "github.com/shopspring/decimal"

var monthsPerYear = decimal.NewFromInt(12)

type MonthlySummary struct {
	Month             int                 `json:"month"`
	Year              int                 `json:"year"`
	TotalIncome       decimal.Decimal     `json:"totalIncome"`
	TotalExpenses     decimal.Decimal     `json:"totalExpenses"`
	Balance           decimal.Decimal     `json:"balance"`
	CategoryBreakdown []*CategorySpending `json:"categoryBreakdown"`
}

func NewMonthlySummary(month, year int, income, expenses decimal.Decimal, breakdown []*CategorySpending) *MonthlySummary {
	if breakdown == nil {
		breakdown = []*CategorySpending{}
	}
	return &MonthlySummary{
		Month:             month,
		Year:              year,
		TotalIncome:       income,
		TotalExpenses:     expenses,
		Balance:           income.Sub(expenses),
		CategoryBreakdown: breakdown,
	}
}

type YearlySummary struct {
	Year                  int             `json:"year"`
	TotalIncome           decimal.Decimal `json:"totalIncome"`
	TotalExpenses         decimal.Decimal `json:"totalExpenses"`
	Balance               decimal.Decimal `json:"balance"`
	AverageMonthlyExpense decimal.Decimal `json:"averageMonthlyExpense"`
}

// NewYearlySummary derives balance and the half-up rounded monthly expense average
func NewYearlySummary(year int, income, expenses decimal.Decimal) *YearlySummary {
	return &YearlySummary{
		Year:                  year,
		TotalIncome:           income,
		TotalExpenses:         expenses,
		Balance:               income.Sub(expenses),
		AverageMonthlyExpense: expenses.DivRound(monthsPerYear, 2),
	}
}
