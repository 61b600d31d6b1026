package domain

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "INCOME"
	TransactionTypeExpense TransactionType = "EXPENSE"
)

// ParseTransactionType accepts either case ("expense", "EXPENSE")
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", ErrInvalidTransactionType
	}
	return t, nil
}

func (t TransactionType) IsValid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// UserRef is the denormalized owner summary embedded in transactions and budgets
type UserRef struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// CategoryRef is the denormalized category summary embedded in transactions and budgets
type CategoryRef struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Icon  *string `json:"icon,omitempty"`
	Color *string `json:"color,omitempty"`
}

type Transaction struct {
	ID              int64           `json:"id"`
	UserID          int64           `json:"userId"`
	CategoryID      int64           `json:"categoryId"`
	Amount          decimal.Decimal `json:"amount"`
	Description     *string         `json:"description,omitempty"`
	TransactionDate time.Time       `json:"transactionDate"`
	Type            TransactionType `json:"type"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       *time.Time      `json:"updatedAt,omitempty"`

	// Populated by reads that join users/categories
	User     UserRef     `json:"user"`
	Category CategoryRef `json:"category"`
}

// TransactionFilter is the resolved set of criteria a list query applies.
// Nil fields are not filtered on.
type TransactionFilter struct {
	CategoryID *int64
	StartDate  *time.Time
	EndDate    *time.Time
	Type       *TransactionType
}

type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

// ParseSortDirection maps anything other than "asc" (any case) to DESC
func ParseSortDirection(s string) SortDirection {
	if strings.EqualFold(strings.TrimSpace(s), string(SortAsc)) {
		return SortAsc
	}
	return SortDesc
}

// TransactionSortColumns maps API sort fields to column names
var TransactionSortColumns = map[string]string{
	"id":              "t.id",
	"amount":          "t.amount",
	"description":     "t.description",
	"transactionDate": "t.transaction_date",
	"type":            "t.type",
	"createdAt":       "t.created_at",
	"updatedAt":       "t.updated_at",
}

// PageRequest describes a zero-based page with ordering
type PageRequest struct {
	Page          int
	Size          int
	SortBy        string
	SortDirection SortDirection
}

const (
	DefaultPage     = 0
	DefaultPageSize = 20
	MaxPageSize     = 100
	DefaultSortBy   = "transactionDate"
	RecentLimit     = 10
)

type PaginatedTransactions struct {
	Data       []*Transaction `json:"data"`
	Page       int            `json:"page"`
	Size       int            `json:"size"`
	TotalItems int64          `json:"totalItems"`
	TotalPages int            `json:"totalPages"`
}

// CategorySpending is one row of a category breakdown
type CategorySpending struct {
	CategoryID   int64           `json:"categoryId"`
	CategoryName string          `json:"categoryName"`
	Total        decimal.Decimal `json:"total"`
}

type TransactionRepository interface {
	Create(ctx context.Context, transaction *Transaction) (*Transaction, error)
	GetByID(ctx context.Context, userID, id int64) (*Transaction, error)
	Update(ctx context.Context, transaction *Transaction) (*Transaction, error)
	Delete(ctx context.Context, userID, id int64) error
	List(ctx context.Context, userID int64, filter TransactionFilter, page PageRequest) ([]*Transaction, int64, error)
	GetRecent(ctx context.Context, userID int64, limit int) ([]*Transaction, error)
	GetByDateRange(ctx context.Context, userID int64, startDate, endDate time.Time) ([]*Transaction, error)
	SumByType(ctx context.Context, userID int64, txType TransactionType, startDate, endDate time.Time) (decimal.Decimal, error)
	SumByCategory(ctx context.Context, userID, categoryID int64, txType TransactionType, startDate, endDate time.Time) (decimal.Decimal, error)
	GetCategoryBreakdown(ctx context.Context, userID int64, txType TransactionType, startDate, endDate time.Time) ([]*CategorySpending, error)
	CountByCategory(ctx context.Context, categoryID int64) (int64, error)
}

// Money bounds of the NUMERIC(10,2) columns
var (
	MinAmount = decimal.New(1, -AmountScale)
	MaxAmount = decimal.RequireFromString("99999999.99")
)
