package service

import (
	"context"
	"errors"
	"time"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/util"
	"github.com/dafibh/spendwise/spendwise-backend/internal/websocket"
	"github.com/shopspring/decimal"
)

// BudgetService handles budget-related business logic
type BudgetService struct {
	store          domain.Store
	eventPublisher websocket.EventPublisher
	now            func() time.Time
}

// NewBudgetService creates a new BudgetService
func NewBudgetService(store domain.Store) *BudgetService {
	return &BudgetService{
		store: store,
		now:   time.Now,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *BudgetService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// publishEvent publishes a WebSocket event if a publisher is configured
func (s *BudgetService) publishEvent(userID int64, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(userID, event)
	}
}

// BudgetInput holds the input for creating or updating a budget
type BudgetInput struct {
	CategoryID     int64
	Amount         decimal.Decimal
	Month          int
	Year           int
	AlertThreshold *int
	Notes          *string
}

// CreateOrUpdateBudget stores the user's budget for a category and month,
// overwriting the limits of an existing one
func (s *BudgetService) CreateOrUpdateBudget(ctx context.Context, userID int64, input BudgetInput) (*domain.Budget, error) {
	budget, err := buildBudget(userID, input)
	if err != nil {
		return nil, err
	}

	var saved *domain.Budget
	err = s.store.WithinTx(ctx, func(repos domain.Repositories) error {
		var err error
		saved, err = upsertBudget(ctx, repos, budget)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.BudgetUpserted(saved))
	return saved, nil
}

// UpdateBudget requires the budget to exist for the user, then stores the
// input the same way CreateOrUpdateBudget does
func (s *BudgetService) UpdateBudget(ctx context.Context, userID, id int64, input BudgetInput) (*domain.Budget, error) {
	budget, err := buildBudget(userID, input)
	if err != nil {
		return nil, err
	}

	var saved *domain.Budget
	err = s.store.WithinTx(ctx, func(repos domain.Repositories) error {
		if _, err := repos.Budgets.GetByID(ctx, userID, id); err != nil {
			return err
		}
		var err error
		saved, err = upsertBudget(ctx, repos, budget)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.BudgetUpserted(saved))
	return saved, nil
}

// GetBudget retrieves one of a user's budgets
func (s *BudgetService) GetBudget(ctx context.Context, userID, id int64) (*domain.Budget, error) {
	var budget *domain.Budget
	err := s.store.WithinTx(ctx, func(repos domain.Repositories) error {
		var err error
		budget, err = repos.Budgets.GetByID(ctx, userID, id)
		return err
	})
	return budget, err
}

// GetUserBudgets retrieves all budgets of a user
func (s *BudgetService) GetUserBudgets(ctx context.Context, userID int64) ([]*domain.Budget, error) {
	var budgets []*domain.Budget
	err := s.store.WithinTx(ctx, func(repos domain.Repositories) error {
		var err error
		budgets, err = repos.Budgets.GetByUser(ctx, userID)
		return err
	})
	return budgets, err
}

// GetBudgetStatus evaluates the user's budget for a category and month
func (s *BudgetService) GetBudgetStatus(ctx context.Context, userID, categoryID int64, month, year int) (*domain.BudgetStatus, error) {
	if err := validatePeriod(month, year); err != nil {
		return nil, err
	}

	var status *domain.BudgetStatus
	err := s.store.WithinTx(ctx, func(repos domain.Repositories) error {
		budget, err := repos.Budgets.GetByKey(ctx, domain.BudgetKey{
			UserID:     userID,
			CategoryID: categoryID,
			Month:      month,
			Year:       year,
		})
		if err != nil {
			return err
		}
		status, err = evaluateBudget(ctx, repos, budget)
		return err
	})
	if err != nil {
		return nil, err
	}
	return status, nil
}

// GetMonthlyBudgetsWithStatus evaluates every budget of a user for a month
func (s *BudgetService) GetMonthlyBudgetsWithStatus(ctx context.Context, userID int64, month, year int) ([]*domain.BudgetStatus, error) {
	if err := validatePeriod(month, year); err != nil {
		return nil, err
	}

	var statuses []*domain.BudgetStatus
	err := s.store.WithinTx(ctx, func(repos domain.Repositories) error {
		var err error
		statuses, err = monthlyStatuses(ctx, repos, userID, month, year)
		return err
	})
	if err != nil {
		return nil, err
	}
	return statuses, nil
}

// GetBudgetAlerts lists the current month's budgets that reached their threshold
func (s *BudgetService) GetBudgetAlerts(ctx context.Context, userID int64) ([]*domain.BudgetAlert, error) {
	month, year := util.CurrentPeriod(s.now())

	alerts := make([]*domain.BudgetAlert, 0)
	err := s.store.WithinTx(ctx, func(repos domain.Repositories) error {
		statuses, err := monthlyStatuses(ctx, repos, userID, month, year)
		if err != nil {
			return err
		}
		for _, status := range statuses {
			if alert := domain.AlertFor(status); alert != nil {
				alerts = append(alerts, alert)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return alerts, nil
}

// DeleteBudget removes one of a user's budgets
func (s *BudgetService) DeleteBudget(ctx context.Context, userID, id int64) error {
	err := s.store.WithinTx(ctx, func(repos domain.Repositories) error {
		return repos.Budgets.Delete(ctx, userID, id)
	})
	if err != nil {
		return err
	}

	s.publishEvent(userID, websocket.BudgetDeleted(id))
	return nil
}

// upsertBudget keeps a single row per budget key. Losing an insert race to a
// concurrent request falls through to updating the row that request created.
func upsertBudget(ctx context.Context, repos domain.Repositories, budget *domain.Budget) (*domain.Budget, error) {
	if _, err := repos.Users.GetByID(ctx, budget.UserID); err != nil {
		return nil, err
	}
	if _, err := repos.Categories.GetByID(ctx, budget.CategoryID); err != nil {
		return nil, err
	}

	key := domain.BudgetKey{
		UserID:     budget.UserID,
		CategoryID: budget.CategoryID,
		Month:      budget.Month,
		Year:       budget.Year,
	}
	existing, err := repos.Budgets.GetByKey(ctx, key)
	if err == nil {
		return overwriteLimits(ctx, repos, existing, budget)
	}
	if !errors.Is(err, domain.ErrBudgetNotFound) {
		return nil, err
	}

	created, err := repos.Budgets.Create(ctx, budget)
	if err == nil {
		return created, nil
	}
	if !errors.Is(err, domain.ErrBudgetAlreadyExists) {
		return nil, err
	}

	existing, err = repos.Budgets.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	return overwriteLimits(ctx, repos, existing, budget)
}

func overwriteLimits(ctx context.Context, repos domain.Repositories, existing, input *domain.Budget) (*domain.Budget, error) {
	changed := *existing
	changed.Amount = input.Amount
	changed.AlertThreshold = input.AlertThreshold
	changed.Notes = input.Notes
	return repos.Budgets.UpdateLimits(ctx, &changed)
}

// evaluateBudget sums the expenses counted against a budget in its period
func evaluateBudget(ctx context.Context, repos domain.Repositories, budget *domain.Budget) (*domain.BudgetStatus, error) {
	spent, err := repos.Transactions.SumByCategory(ctx, budget.UserID, budget.CategoryID,
		domain.TransactionTypeExpense, budget.PeriodStart(), budget.PeriodEnd())
	if err != nil {
		return nil, err
	}
	return domain.NewBudgetStatus(budget, spent), nil
}

func monthlyStatuses(ctx context.Context, repos domain.Repositories, userID int64, month, year int) ([]*domain.BudgetStatus, error) {
	budgets, err := repos.Budgets.GetByUserAndPeriod(ctx, userID, month, year)
	if err != nil {
		return nil, err
	}

	statuses := make([]*domain.BudgetStatus, 0, len(budgets))
	for _, budget := range budgets {
		status, err := evaluateBudget(ctx, repos, budget)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func validatePeriod(month, year int) error {
	if !util.IsValidMonth(month) {
		return domain.ErrInvalidMonth
	}
	if year < domain.MinBudgetYear {
		return domain.ErrInvalidYear
	}
	return nil
}

func buildBudget(userID int64, input BudgetInput) (*domain.Budget, error) {
	if input.CategoryID == 0 {
		return nil, domain.ErrCategoryIDRequired
	}
	if err := validateAmount(input.Amount); err != nil {
		return nil, err
	}
	if err := validatePeriod(input.Month, input.Year); err != nil {
		return nil, err
	}

	threshold := domain.DefaultAlertThreshold
	if input.AlertThreshold != nil {
		threshold = *input.AlertThreshold
	}
	if threshold < 1 || threshold > 100 {
		return nil, domain.ErrInvalidAlertThreshold
	}

	notes, err := optionalText(input.Notes, domain.MaxTextLength, domain.ErrNotesTooLong)
	if err != nil {
		return nil, err
	}

	return &domain.Budget{
		UserID:         userID,
		CategoryID:     input.CategoryID,
		Amount:         input.Amount,
		Month:          input.Month,
		Year:           input.Year,
		AlertThreshold: threshold,
		Notes:          notes,
	}, nil
}
