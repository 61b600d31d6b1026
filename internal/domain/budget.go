package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/dafibh/spendwise/spendwise-backend/internal/util"
	"github.com/shopspring/decimal"
)

type Budget struct {
	ID             int64           `json:"id"`
	UserID         int64           `json:"userId"`
	CategoryID     int64           `json:"categoryId"`
	Amount         decimal.Decimal `json:"amount"`
	Month          int             `json:"month"`
	Year           int             `json:"year"`
	AlertThreshold int             `json:"alertThreshold"`
	Notes          *string         `json:"notes,omitempty"`

	User     UserRef     `json:"user"`
	Category CategoryRef `json:"category"`
}

// PeriodStart is the first day of the budget month
func (b *Budget) PeriodStart() time.Time {
	start, _ := util.MonthBounds(b.Year, b.Month)
	return start
}

// PeriodEnd is the last day of the budget month
func (b *Budget) PeriodEnd() time.Time {
	_, end := util.MonthBounds(b.Year, b.Month)
	return end
}

// BudgetKey identifies the single budget a user may hold for a category and month
type BudgetKey struct {
	UserID     int64
	CategoryID int64
	Month      int
	Year       int
}

type BudgetRepository interface {
	// Create inserts a budget. It returns ErrBudgetAlreadyExists without
	// aborting the surrounding transaction when the key is already taken.
	Create(ctx context.Context, budget *Budget) (*Budget, error)
	GetByID(ctx context.Context, userID, id int64) (*Budget, error)
	GetByKey(ctx context.Context, key BudgetKey) (*Budget, error)
	GetByUser(ctx context.Context, userID int64) ([]*Budget, error)
	GetByUserAndPeriod(ctx context.Context, userID int64, month, year int) ([]*Budget, error)
	UpdateLimits(ctx context.Context, budget *Budget) (*Budget, error)
	Delete(ctx context.Context, userID, id int64) error
}

var hundred = decimal.NewFromInt(100)

// BudgetStatus is a budget evaluated against what was spent in its period
type BudgetStatus struct {
	Budget       *Budget         `json:"budget"`
	Spent        decimal.Decimal `json:"spent"`
	Remaining    decimal.Decimal `json:"remaining"`
	Percentage   decimal.Decimal `json:"percentage"`
	IsOverBudget bool            `json:"isOverBudget"`
	IsNearLimit  bool            `json:"isNearLimit"`
}

// NewBudgetStatus computes spending status. Percentage is rounded half-up to
// two places and is zero for a non-positive budget amount.
func NewBudgetStatus(budget *Budget, spent decimal.Decimal) *BudgetStatus {
	percentage := decimal.Zero
	if budget.Amount.IsPositive() {
		percentage = spent.Mul(hundred).DivRound(budget.Amount, 2)
	}
	return &BudgetStatus{
		Budget:       budget,
		Spent:        spent,
		Remaining:    budget.Amount.Sub(spent),
		Percentage:   percentage,
		IsOverBudget: spent.GreaterThan(budget.Amount),
		IsNearLimit:  percentage.GreaterThanOrEqual(decimal.NewFromInt(int64(budget.AlertThreshold))),
	}
}

type AlertSeverity string

const (
	SeverityHigh   AlertSeverity = "HIGH"
	SeverityMedium AlertSeverity = "MEDIUM"
)

type BudgetAlert struct {
	BudgetID     int64           `json:"budgetId"`
	CategoryID   int64           `json:"categoryId"`
	Category     string          `json:"category"`
	BudgetAmount decimal.Decimal `json:"budgetAmount"`
	Spent        decimal.Decimal `json:"spent"`
	Percentage   decimal.Decimal `json:"percentage"`
	Message      string          `json:"message"`
	Severity     AlertSeverity   `json:"severity"`
}

// AlertFor returns an alert when the status reached the budget's threshold, nil otherwise
func AlertFor(status *BudgetStatus) *BudgetAlert {
	if !status.IsNearLimit {
		return nil
	}
	severity := SeverityMedium
	if status.Percentage.GreaterThanOrEqual(hundred) {
		severity = SeverityHigh
	}
	b := status.Budget
	return &BudgetAlert{
		BudgetID:     b.ID,
		CategoryID:   b.CategoryID,
		Category:     b.Category.Name,
		BudgetAmount: b.Amount,
		Spent:        status.Spent,
		Percentage:   status.Percentage,
		Message:      fmt.Sprintf("You've spent %s%% of your %s budget", status.Percentage.Round(0).String(), b.Category.Name),
		Severity:     severity,
	}
}
