package service

import (
	"context"
	"testing"
	"time"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBudgetFixture(t *testing.T) (*testutil.MockStore, *BudgetService, *testutil.MockEventPublisher) {
	t.Helper()
	store := testutil.NewMockStore()
	store.SeedUser(aliceID, "alice")
	store.SeedUser(bobID, "bob")
	store.SeedCategory(foodID, "Food & Dining", true)
	store.SeedCategory(travel, "Travel", true)

	svc := NewBudgetService(store)
	svc.now = func() time.Time { return time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC) }
	publisher := testutil.NewMockEventPublisher()
	svc.SetEventPublisher(publisher)
	return store, svc, publisher
}

func marchFoodBudget(amount string) BudgetInput {
	return BudgetInput{
		CategoryID: foodID,
		Amount:     decimal.RequireFromString(amount),
		Month:      3,
		Year:       2024,
	}
}

func TestBudgetService_CreateOrUpdateBudget_Creates(t *testing.T) {
	_, svc, publisher := newBudgetFixture(t)

	budget, err := svc.CreateOrUpdateBudget(context.Background(), aliceID, marchFoodBudget("100.00"))

	require.NoError(t, err)
	assert.NotZero(t, budget.ID)
	assert.Equal(t, domain.DefaultAlertThreshold, budget.AlertThreshold)
	assert.Equal(t, "Food & Dining", budget.Category.Name)
	assert.Equal(t, []string{"budget.upserted"}, publisher.Types())
}

func TestBudgetService_CreateOrUpdateBudget_UpdatesSameRow(t *testing.T) {
	store, svc, _ := newBudgetFixture(t)
	ctx := context.Background()

	first, err := svc.CreateOrUpdateBudget(ctx, aliceID, marchFoodBudget("100.00"))
	require.NoError(t, err)

	input := marchFoodBudget("150.00")
	input.AlertThreshold = intPtr(90)
	input.Notes = strPtr("raised")
	second, err := svc.CreateOrUpdateBudget(ctx, aliceID, input)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "150.00", second.Amount.StringFixed(2))
	assert.Equal(t, 90, second.AlertThreshold)
	assert.Equal(t, "raised", *second.Notes)
	assert.Len(t, store.Budgets.Budgets, 1)
}

func TestBudgetService_CreateOrUpdateBudget_LostInsertRace(t *testing.T) {
	store, svc, _ := newBudgetFixture(t)
	// Simulate a concurrent request inserting the same key between lookup and insert
	store.Budgets.CreateFn = func(b *domain.Budget) (*domain.Budget, error) {
		store.Budgets.CreateFn = nil
		winner := *b
		if _, err := store.Budgets.Create(context.Background(), &winner); err != nil {
			return nil, err
		}
		return nil, domain.ErrBudgetAlreadyExists
	}

	input := marchFoodBudget("120.00")
	input.AlertThreshold = intPtr(60)
	budget, err := svc.CreateOrUpdateBudget(context.Background(), aliceID, input)

	require.NoError(t, err)
	assert.Len(t, store.Budgets.Budgets, 1)
	assert.Equal(t, 60, budget.AlertThreshold)
	assert.Equal(t, 1, store.Commits)
}

func TestBudgetService_CreateOrUpdateBudget_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*BudgetInput)
		want   error
	}{
		{"zero amount", func(in *BudgetInput) { in.Amount = decimal.Zero }, domain.ErrInvalidAmount},
		{"below one cent", func(in *BudgetInput) { in.Amount = decimal.RequireFromString("0.004") }, domain.ErrInvalidAmount},
		{"three decimal places", func(in *BudgetInput) { in.Amount = decimal.RequireFromString("99.999") }, domain.ErrAmountScale},
		{"above column maximum", func(in *BudgetInput) { in.Amount = decimal.RequireFromString("100000000.00") }, domain.ErrAmountTooLarge},
		{"month 0", func(in *BudgetInput) { in.Month = 0 }, domain.ErrInvalidMonth},
		{"month 13", func(in *BudgetInput) { in.Month = 13 }, domain.ErrInvalidMonth},
		{"year before 2020", func(in *BudgetInput) { in.Year = 2019 }, domain.ErrInvalidYear},
		{"threshold 0", func(in *BudgetInput) { in.AlertThreshold = intPtr(0) }, domain.ErrInvalidAlertThreshold},
		{"threshold 101", func(in *BudgetInput) { in.AlertThreshold = intPtr(101) }, domain.ErrInvalidAlertThreshold},
		{"no category", func(in *BudgetInput) { in.CategoryID = 0 }, domain.ErrCategoryIDRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, svc, _ := newBudgetFixture(t)
			input := marchFoodBudget("100.00")
			tt.mutate(&input)

			_, err := svc.CreateOrUpdateBudget(context.Background(), aliceID, input)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestBudgetService_CreateOrUpdateBudget_UnknownReferences(t *testing.T) {
	_, svc, publisher := newBudgetFixture(t)
	ctx := context.Background()

	_, err := svc.CreateOrUpdateBudget(ctx, 404, marchFoodBudget("10.00"))
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	input := marchFoodBudget("10.00")
	input.CategoryID = 404
	_, err = svc.CreateOrUpdateBudget(ctx, aliceID, input)
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
	assert.Empty(t, publisher.Types())
}

func TestBudgetService_UpdateBudget(t *testing.T) {
	store, svc, _ := newBudgetFixture(t)
	store.SeedBudget(1, aliceID, foodID, "100.00", 3, 2024, 80)
	ctx := context.Background()

	updated, err := svc.UpdateBudget(ctx, aliceID, 1, marchFoodBudget("75.00"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated.ID)
	assert.Equal(t, "75.00", updated.Amount.StringFixed(2))

	_, err = svc.UpdateBudget(ctx, bobID, 1, marchFoodBudget("75.00"))
	assert.ErrorIs(t, err, domain.ErrBudgetNotFound)

	_, err = svc.UpdateBudget(ctx, aliceID, 99, marchFoodBudget("75.00"))
	assert.ErrorIs(t, err, domain.ErrBudgetNotFound)
}

func TestBudgetService_GetBudgets(t *testing.T) {
	store, svc, _ := newBudgetFixture(t)
	store.SeedBudget(1, aliceID, foodID, "100.00", 2, 2024, 80)
	store.SeedBudget(2, aliceID, foodID, "100.00", 3, 2024, 80)
	store.SeedBudget(3, bobID, foodID, "100.00", 3, 2024, 80)
	ctx := context.Background()

	budget, err := svc.GetBudget(ctx, aliceID, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, budget.Month)

	_, err = svc.GetBudget(ctx, aliceID, 3)
	assert.ErrorIs(t, err, domain.ErrBudgetNotFound)

	budgets, err := svc.GetUserBudgets(ctx, aliceID)
	require.NoError(t, err)
	require.Len(t, budgets, 2)
	assert.Equal(t, int64(2), budgets[0].ID, "newest period first")
}

func TestBudgetService_GetBudgetStatus_Scenario(t *testing.T) {
	store, svc, _ := newBudgetFixture(t)
	store.SeedBudget(1, aliceID, foodID, "100.00", 3, 2024, 75)
	store.SeedTransaction(1, aliceID, foodID, domain.TransactionTypeExpense, "30.00", testutil.Date(2024, 3, 1))
	store.SeedTransaction(2, aliceID, foodID, domain.TransactionTypeExpense, "50.00", testutil.Date(2024, 3, 31))
	// Outside the period, other type, other category and other user are not counted
	store.SeedTransaction(3, aliceID, foodID, domain.TransactionTypeExpense, "999.00", testutil.Date(2024, 4, 1))
	store.SeedTransaction(4, aliceID, foodID, domain.TransactionTypeIncome, "999.00", testutil.Date(2024, 3, 2))
	store.SeedTransaction(5, aliceID, travel, domain.TransactionTypeExpense, "999.00", testutil.Date(2024, 3, 2))
	store.SeedTransaction(6, bobID, foodID, domain.TransactionTypeExpense, "999.00", testutil.Date(2024, 3, 2))

	status, err := svc.GetBudgetStatus(context.Background(), aliceID, foodID, 3, 2024)

	require.NoError(t, err)
	assert.Equal(t, "80.00", status.Spent.StringFixed(2))
	assert.Equal(t, "20.00", status.Remaining.StringFixed(2))
	assert.Equal(t, "80.00", status.Percentage.StringFixed(2))
	assert.False(t, status.IsOverBudget)
	assert.True(t, status.IsNearLimit)
}

func TestBudgetService_GetBudgetStatus_NoBudget(t *testing.T) {
	_, svc, _ := newBudgetFixture(t)

	_, err := svc.GetBudgetStatus(context.Background(), aliceID, foodID, 3, 2024)

	assert.ErrorIs(t, err, domain.ErrBudgetNotFound)
}

func TestBudgetService_GetMonthlyBudgetsWithStatus(t *testing.T) {
	store, svc, _ := newBudgetFixture(t)
	store.SeedBudget(1, aliceID, travel, "500.00", 3, 2024, 80)
	store.SeedBudget(2, aliceID, foodID, "50.00", 3, 2024, 80)
	store.SeedBudget(3, aliceID, foodID, "50.00", 4, 2024, 80)
	store.SeedTransaction(1, aliceID, foodID, domain.TransactionTypeExpense, "80.00", testutil.Date(2024, 3, 10))

	statuses, err := svc.GetMonthlyBudgetsWithStatus(context.Background(), aliceID, 3, 2024)

	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.Equal(t, "Food & Dining", statuses[0].Budget.Category.Name)
	assert.True(t, statuses[0].IsOverBudget)
	assert.Equal(t, "160.00", statuses[0].Percentage.StringFixed(2))
	assert.Equal(t, "-30.00", statuses[0].Remaining.StringFixed(2))
	assert.True(t, statuses[1].Spent.IsZero())

	_, err = svc.GetMonthlyBudgetsWithStatus(context.Background(), aliceID, 3, 2010)
	assert.ErrorIs(t, err, domain.ErrInvalidYear)
}

func TestBudgetService_GetBudgetAlerts_CurrentMonthOnly(t *testing.T) {
	store, svc, _ := newBudgetFixture(t)
	store.SeedBudget(1, aliceID, foodID, "100.00", 3, 2024, 75)
	store.SeedBudget(2, aliceID, travel, "100.00", 3, 2024, 80)
	store.SeedBudget(3, aliceID, foodID, "10.00", 2, 2024, 50)
	store.SeedTransaction(1, aliceID, foodID, domain.TransactionTypeExpense, "120.00", testutil.Date(2024, 3, 5))
	store.SeedTransaction(2, aliceID, travel, domain.TransactionTypeExpense, "10.00", testutil.Date(2024, 3, 5))
	store.SeedTransaction(3, aliceID, foodID, domain.TransactionTypeExpense, "10.00", testutil.Date(2024, 2, 5))

	alerts, err := svc.GetBudgetAlerts(context.Background(), aliceID)

	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "Food & Dining", alerts[0].Category)
	assert.Equal(t, domain.SeverityHigh, alerts[0].Severity)
	assert.Equal(t, "You've spent 120% of your Food & Dining budget", alerts[0].Message)
}

func TestBudgetService_GetBudgetAlerts_None(t *testing.T) {
	_, svc, _ := newBudgetFixture(t)

	alerts, err := svc.GetBudgetAlerts(context.Background(), aliceID)

	require.NoError(t, err)
	assert.NotNil(t, alerts)
	assert.Empty(t, alerts)
}

func TestBudgetService_DeleteBudget(t *testing.T) {
	store, svc, publisher := newBudgetFixture(t)
	store.SeedBudget(1, aliceID, foodID, "100.00", 3, 2024, 80)
	ctx := context.Background()

	assert.ErrorIs(t, svc.DeleteBudget(ctx, bobID, 1), domain.ErrBudgetNotFound)
	require.NoError(t, svc.DeleteBudget(ctx, aliceID, 1))
	assert.Empty(t, store.Budgets.Budgets)
	assert.Equal(t, []string{"budget.deleted"}, publisher.Types())
}
