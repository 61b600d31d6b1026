package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/util"
	"github.com/dafibh/spendwise/spendwise-backend/internal/websocket"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// TransactionService handles transaction-related business logic
type TransactionService struct {
	store          domain.Store
	eventPublisher websocket.EventPublisher
	now            func() time.Time
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(store domain.Store) *TransactionService {
	return &TransactionService{
		store: store,
		now:   time.Now,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *TransactionService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// publishEvent publishes a WebSocket event if a publisher is configured
func (s *TransactionService) publishEvent(userID int64, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(userID, event)
	}
}

// CreateTransactionInput holds the input for creating a transaction
type CreateTransactionInput struct {
	CategoryID      int64
	Amount          decimal.Decimal
	Description     *string
	TransactionDate *time.Time
	Type            domain.TransactionType
}

// UpdateTransactionInput holds the input for replacing a transaction.
// A nil CategoryID keeps the current category.
type UpdateTransactionInput struct {
	CategoryID      *int64
	Amount          decimal.Decimal
	Description     *string
	TransactionDate *time.Time
	Type            domain.TransactionType
}

// TransactionQuery holds list criteria as received from the caller.
// Nil or empty fields fall back to defaults.
type TransactionQuery struct {
	CategoryID    *int64
	StartDate     *time.Time
	EndDate       *time.Time
	Type          string
	Page          *int
	Size          *int
	SortBy        string
	SortDirection string
}

// CreateTransaction records a transaction for a user
func (s *TransactionService) CreateTransaction(ctx context.Context, userID int64, input CreateTransactionInput) (*domain.Transaction, error) {
	if err := validateAmount(input.Amount); err != nil {
		return nil, err
	}
	if !input.Type.IsValid() {
		return nil, domain.ErrInvalidTransactionType
	}
	if input.CategoryID == 0 {
		return nil, domain.ErrCategoryIDRequired
	}
	description, err := optionalText(input.Description, domain.MaxTextLength, domain.ErrDescriptionTooLong)
	if err != nil {
		return nil, err
	}

	transactionDate := util.DateOf(s.now())
	if input.TransactionDate != nil {
		transactionDate = util.DateOf(*input.TransactionDate)
	}

	var created *domain.Transaction
	var alert *domain.BudgetAlert
	err = s.store.WithinTx(ctx, func(repos domain.Repositories) error {
		if _, err := repos.Users.GetByID(ctx, userID); err != nil {
			return err
		}
		if _, err := repos.Categories.GetByID(ctx, input.CategoryID); err != nil {
			return err
		}

		var err error
		created, err = repos.Transactions.Create(ctx, &domain.Transaction{
			UserID:          userID,
			CategoryID:      input.CategoryID,
			Amount:          input.Amount,
			Description:     description,
			TransactionDate: transactionDate,
			Type:            input.Type,
		})
		if err != nil {
			return err
		}

		alert, err = budgetAlertAfterExpense(ctx, repos, created)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.TransactionCreated(created))
	s.publishAlert(userID, alert)
	return created, nil
}

// GetTransaction retrieves one of a user's transactions
func (s *TransactionService) GetTransaction(ctx context.Context, userID, id int64) (*domain.Transaction, error) {
	var transaction *domain.Transaction
	err := s.store.WithinTx(ctx, func(repos domain.Repositories) error {
		var err error
		transaction, err = repos.Transactions.GetByID(ctx, userID, id)
		return err
	})
	return transaction, err
}

// UpdateTransaction replaces amount, description, date and type, and moves
// the transaction to another category when one is given
func (s *TransactionService) UpdateTransaction(ctx context.Context, userID, id int64, input UpdateTransactionInput) (*domain.Transaction, error) {
	if err := validateAmount(input.Amount); err != nil {
		return nil, err
	}
	if !input.Type.IsValid() {
		return nil, domain.ErrInvalidTransactionType
	}
	if input.TransactionDate == nil {
		return nil, domain.ErrDateRequired
	}
	description, err := optionalText(input.Description, domain.MaxTextLength, domain.ErrDescriptionTooLong)
	if err != nil {
		return nil, err
	}

	var updated *domain.Transaction
	var alert *domain.BudgetAlert
	err = s.store.WithinTx(ctx, func(repos domain.Repositories) error {
		existing, err := repos.Transactions.GetByID(ctx, userID, id)
		if err != nil {
			return err
		}

		categoryID := existing.CategoryID
		if input.CategoryID != nil && *input.CategoryID != existing.CategoryID {
			if _, err := repos.Categories.GetByID(ctx, *input.CategoryID); err != nil {
				return err
			}
			categoryID = *input.CategoryID
		}

		updated, err = repos.Transactions.Update(ctx, &domain.Transaction{
			ID:              existing.ID,
			UserID:          userID,
			CategoryID:      categoryID,
			Amount:          input.Amount,
			Description:     description,
			TransactionDate: util.DateOf(*input.TransactionDate),
			Type:            input.Type,
		})
		if err != nil {
			return err
		}

		alert, err = budgetAlertAfterExpense(ctx, repos, updated)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.TransactionUpdated(updated))
	s.publishAlert(userID, alert)
	return updated, nil
}

// DeleteTransaction removes one of a user's transactions
func (s *TransactionService) DeleteTransaction(ctx context.Context, userID, id int64) error {
	err := s.store.WithinTx(ctx, func(repos domain.Repositories) error {
		return repos.Transactions.Delete(ctx, userID, id)
	})
	if err != nil {
		return err
	}

	s.publishEvent(userID, websocket.TransactionDeleted(id))
	return nil
}

// ListTransactions returns one page of a user's transactions. Only one kind
// of filter applies, chosen in this order: category within a date range,
// category, date range, type, none.
func (s *TransactionService) ListTransactions(ctx context.Context, userID int64, query TransactionQuery) (*domain.PaginatedTransactions, error) {
	page, err := resolvePage(query)
	if err != nil {
		return nil, err
	}
	filter, err := resolveFilter(query)
	if err != nil {
		return nil, err
	}

	var transactions []*domain.Transaction
	var total int64
	err = s.store.WithinTx(ctx, func(repos domain.Repositories) error {
		var err error
		transactions, total, err = repos.Transactions.List(ctx, userID, filter, page)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &domain.PaginatedTransactions{
		Data:       transactions,
		Page:       page.Page,
		Size:       page.Size,
		TotalItems: total,
		TotalPages: int(math.Ceil(float64(total) / float64(page.Size))),
	}, nil
}

// GetRecentTransactions returns a user's newest transactions
func (s *TransactionService) GetRecentTransactions(ctx context.Context, userID int64) ([]*domain.Transaction, error) {
	var transactions []*domain.Transaction
	err := s.store.WithinTx(ctx, func(repos domain.Repositories) error {
		var err error
		transactions, err = repos.Transactions.GetRecent(ctx, userID, domain.RecentLimit)
		return err
	})
	return transactions, err
}

// GetTotalByTypeAndRange totals a user's transactions of one type over an inclusive range
func (s *TransactionService) GetTotalByTypeAndRange(ctx context.Context, userID int64, txType domain.TransactionType, start, end time.Time) (decimal.Decimal, error) {
	if !txType.IsValid() {
		return decimal.Zero, domain.ErrInvalidTransactionType
	}
	if err := requireDateRange(start, end); err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	err := s.store.WithinTx(ctx, func(repos domain.Repositories) error {
		var err error
		total, err = repos.Transactions.SumByType(ctx, userID, txType, start, end)
		return err
	})
	return total, err
}

// GetCategoryBreakdown groups a user's transactions of one type by category
func (s *TransactionService) GetCategoryBreakdown(ctx context.Context, userID int64, txType domain.TransactionType, start, end time.Time) ([]*domain.CategorySpending, error) {
	if !txType.IsValid() {
		return nil, domain.ErrInvalidTransactionType
	}
	if err := requireDateRange(start, end); err != nil {
		return nil, err
	}

	var breakdown []*domain.CategorySpending
	err := s.store.WithinTx(ctx, func(repos domain.Repositories) error {
		var err error
		breakdown, err = repos.Transactions.GetCategoryBreakdown(ctx, userID, txType, start, end)
		return err
	})
	return breakdown, err
}

// GetMonthlySummary summarizes income, expenses and expense categories for a calendar month
func (s *TransactionService) GetMonthlySummary(ctx context.Context, userID int64, month, year int) (*domain.MonthlySummary, error) {
	if !util.IsValidMonth(month) {
		return nil, domain.ErrInvalidMonth
	}
	start, end := util.MonthBounds(year, month)

	var summary *domain.MonthlySummary
	err := s.store.WithinTx(ctx, func(repos domain.Repositories) error {
		income, err := repos.Transactions.SumByType(ctx, userID, domain.TransactionTypeIncome, start, end)
		if err != nil {
			return err
		}
		expenses, err := repos.Transactions.SumByType(ctx, userID, domain.TransactionTypeExpense, start, end)
		if err != nil {
			return err
		}
		breakdown, err := repos.Transactions.GetCategoryBreakdown(ctx, userID, domain.TransactionTypeExpense, start, end)
		if err != nil {
			return err
		}
		summary = domain.NewMonthlySummary(month, year, income, expenses, breakdown)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// GetYearlySummary summarizes income and expenses for a calendar year
func (s *TransactionService) GetYearlySummary(ctx context.Context, userID int64, year int) (*domain.YearlySummary, error) {
	start, end := util.YearBounds(year)

	var summary *domain.YearlySummary
	err := s.store.WithinTx(ctx, func(repos domain.Repositories) error {
		income, err := repos.Transactions.SumByType(ctx, userID, domain.TransactionTypeIncome, start, end)
		if err != nil {
			return err
		}
		expenses, err := repos.Transactions.SumByType(ctx, userID, domain.TransactionTypeExpense, start, end)
		if err != nil {
			return err
		}
		summary = domain.NewYearlySummary(year, income, expenses)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// GetCategorySpending totals a user's expenses in one category over an inclusive range
func (s *TransactionService) GetCategorySpending(ctx context.Context, userID, categoryID int64, start, end time.Time) (decimal.Decimal, error) {
	if err := requireDateRange(start, end); err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	err := s.store.WithinTx(ctx, func(repos domain.Repositories) error {
		var err error
		total, err = repos.Transactions.SumByCategory(ctx, userID, categoryID, domain.TransactionTypeExpense, start, end)
		return err
	})
	return total, err
}

// ExportTransactions returns every transaction of a user in an inclusive
// range, newest first, for spreadsheet export
func (s *TransactionService) ExportTransactions(ctx context.Context, userID int64, start, end time.Time) ([]*domain.Transaction, error) {
	if err := requireDateRange(start, end); err != nil {
		return nil, err
	}

	var transactions []*domain.Transaction
	err := s.store.WithinTx(ctx, func(repos domain.Repositories) error {
		if _, err := repos.Users.GetByID(ctx, userID); err != nil {
			return err
		}
		var err error
		transactions, err = repos.Transactions.GetByDateRange(ctx, userID, start, end)
		return err
	})
	return transactions, err
}

func (s *TransactionService) publishAlert(userID int64, alert *domain.BudgetAlert) {
	if alert == nil {
		return
	}
	log.Info().
		Int64("user_id", userID).
		Int64("budget_id", alert.BudgetID).
		Str("severity", string(alert.Severity)).
		Msg("Budget threshold reached")
	s.publishEvent(userID, websocket.BudgetAlert(alert))
}

// budgetAlertAfterExpense re-evaluates the budget an expense counts against
// and returns an alert when it reached its threshold
func budgetAlertAfterExpense(ctx context.Context, repos domain.Repositories, t *domain.Transaction) (*domain.BudgetAlert, error) {
	if t.Type != domain.TransactionTypeExpense {
		return nil, nil
	}
	month, year := util.CurrentPeriod(t.TransactionDate)
	budget, err := repos.Budgets.GetByKey(ctx, domain.BudgetKey{
		UserID:     t.UserID,
		CategoryID: t.CategoryID,
		Month:      month,
		Year:       year,
	})
	if errors.Is(err, domain.ErrBudgetNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	status, err := evaluateBudget(ctx, repos, budget)
	if err != nil {
		return nil, err
	}
	return domain.AlertFor(status), nil
}

// validateAmount checks amount fits a positive NUMERIC(10,2) without rounding
func validateAmount(amount decimal.Decimal) error {
	if amount.LessThan(domain.MinAmount) {
		return domain.ErrInvalidAmount
	}
	if !amount.Equal(amount.Truncate(domain.AmountScale)) {
		return domain.ErrAmountScale
	}
	if amount.GreaterThan(domain.MaxAmount) {
		return domain.ErrAmountTooLarge
	}
	return nil
}

func resolvePage(query TransactionQuery) (domain.PageRequest, error) {
	page := domain.PageRequest{
		Page:          domain.DefaultPage,
		Size:          domain.DefaultPageSize,
		SortBy:        domain.DefaultSortBy,
		SortDirection: domain.ParseSortDirection(query.SortDirection),
	}
	if query.Page != nil {
		if *query.Page < 0 {
			return page, domain.ErrInvalidPage
		}
		page.Page = *query.Page
	}
	if query.Size != nil {
		if *query.Size < 1 || *query.Size > domain.MaxPageSize {
			return page, domain.ErrInvalidPageSize
		}
		page.Size = *query.Size
	}
	if query.SortBy != "" {
		if _, ok := domain.TransactionSortColumns[query.SortBy]; !ok {
			return page, domain.ErrInvalidSortField
		}
		page.SortBy = query.SortBy
	}
	return page, nil
}

func resolveFilter(query TransactionQuery) (domain.TransactionFilter, error) {
	hasRange := query.StartDate != nil && query.EndDate != nil
	if hasRange && query.EndDate.Before(*query.StartDate) {
		return domain.TransactionFilter{}, domain.ErrInvalidDateRange
	}

	switch {
	case query.CategoryID != nil && hasRange:
		return domain.TransactionFilter{CategoryID: query.CategoryID, StartDate: query.StartDate, EndDate: query.EndDate}, nil
	case query.CategoryID != nil:
		return domain.TransactionFilter{CategoryID: query.CategoryID}, nil
	case hasRange:
		return domain.TransactionFilter{StartDate: query.StartDate, EndDate: query.EndDate}, nil
	case query.Type != "":
		txType, err := domain.ParseTransactionType(query.Type)
		if err != nil {
			return domain.TransactionFilter{}, err
		}
		return domain.TransactionFilter{Type: &txType}, nil
	default:
		return domain.TransactionFilter{}, nil
	}
}
