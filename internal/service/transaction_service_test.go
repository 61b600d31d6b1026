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

const (
	aliceID = int64(1)
	bobID   = int64(2)
	foodID  = int64(1)
	travel  = int64(2)
	salary  = int64(3)
)

func newTransactionFixture(t *testing.T) (*testutil.MockStore, *TransactionService, *testutil.MockEventPublisher) {
	t.Helper()
	store := testutil.NewMockStore()
	store.SeedUser(aliceID, "alice")
	store.SeedUser(bobID, "bob")
	store.SeedCategory(foodID, "Food & Dining", true)
	store.SeedCategory(travel, "Travel", true)
	store.SeedCategory(salary, "Income", true)

	svc := NewTransactionService(store)
	svc.now = func() time.Time { return time.Date(2024, 3, 20, 15, 4, 5, 0, time.UTC) }
	publisher := testutil.NewMockEventPublisher()
	svc.SetEventPublisher(publisher)
	return store, svc, publisher
}

func intPtr(i int) *int {
	return &i
}

func TestTransactionService_CreateTransaction_DefaultsDateToToday(t *testing.T) {
	_, svc, publisher := newTransactionFixture(t)

	created, err := svc.CreateTransaction(context.Background(), aliceID, CreateTransactionInput{
		CategoryID:  foodID,
		Amount:      decimal.RequireFromString("12.50"),
		Description: strPtr(" lunch "),
		Type:        domain.TransactionTypeExpense,
	})

	require.NoError(t, err)
	assert.Equal(t, testutil.Date(2024, 3, 20), created.TransactionDate)
	assert.Equal(t, "lunch", *created.Description)
	assert.Nil(t, created.UpdatedAt)
	assert.Equal(t, "alice", created.User.Username)
	assert.Equal(t, "Food & Dining", created.Category.Name)
	assert.Equal(t, []string{"transaction.created"}, publisher.Types())
}

func TestTransactionService_CreateTransaction_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input CreateTransactionInput
		want  error
	}{
		{"zero amount", CreateTransactionInput{CategoryID: foodID, Amount: decimal.Zero, Type: domain.TransactionTypeExpense}, domain.ErrInvalidAmount},
		{"negative amount", CreateTransactionInput{CategoryID: foodID, Amount: decimal.NewFromInt(-5), Type: domain.TransactionTypeExpense}, domain.ErrInvalidAmount},
		{"below one cent", CreateTransactionInput{CategoryID: foodID, Amount: decimal.RequireFromString("0.004"), Type: domain.TransactionTypeExpense}, domain.ErrInvalidAmount},
		{"sub-cent fraction", CreateTransactionInput{CategoryID: foodID, Amount: decimal.RequireFromString("0.001"), Type: domain.TransactionTypeExpense}, domain.ErrInvalidAmount},
		{"three decimal places", CreateTransactionInput{CategoryID: foodID, Amount: decimal.RequireFromString("10.005"), Type: domain.TransactionTypeExpense}, domain.ErrAmountScale},
		{"above column maximum", CreateTransactionInput{CategoryID: foodID, Amount: decimal.RequireFromString("123456789.99"), Type: domain.TransactionTypeExpense}, domain.ErrAmountTooLarge},
		{"bad type", CreateTransactionInput{CategoryID: foodID, Amount: decimal.NewFromInt(5), Type: "TRANSFER"}, domain.ErrInvalidTransactionType},
		{"no category", CreateTransactionInput{Amount: decimal.NewFromInt(5), Type: domain.TransactionTypeIncome}, domain.ErrCategoryIDRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, svc, _ := newTransactionFixture(t)
			_, err := svc.CreateTransaction(context.Background(), aliceID, tt.input)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestTransactionService_CreateTransaction_UnknownReferences(t *testing.T) {
	_, svc, publisher := newTransactionFixture(t)
	ctx := context.Background()

	_, err := svc.CreateTransaction(ctx, 99, CreateTransactionInput{CategoryID: foodID, Amount: decimal.NewFromInt(1), Type: domain.TransactionTypeExpense})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = svc.CreateTransaction(ctx, aliceID, CreateTransactionInput{CategoryID: 99, Amount: decimal.NewFromInt(1), Type: domain.TransactionTypeExpense})
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)

	assert.Empty(t, publisher.Types(), "failed writes publish nothing")
}

func TestTransactionService_CreateTransaction_PublishesBudgetAlert(t *testing.T) {
	store, svc, publisher := newTransactionFixture(t)
	store.SeedBudget(1, aliceID, foodID, "100.00", 3, 2024, 75)
	store.SeedTransaction(1, aliceID, foodID, domain.TransactionTypeExpense, "30.00", testutil.Date(2024, 3, 5))

	date := testutil.Date(2024, 3, 10)
	_, err := svc.CreateTransaction(context.Background(), aliceID, CreateTransactionInput{
		CategoryID:      foodID,
		Amount:          decimal.RequireFromString("50.00"),
		TransactionDate: &date,
		Type:            domain.TransactionTypeExpense,
	})

	require.NoError(t, err)
	require.Equal(t, []string{"transaction.created", "budget.alert"}, publisher.Types())
	alert, ok := publisher.Events[1].Event.Payload.(*domain.BudgetAlert)
	require.True(t, ok)
	assert.Equal(t, "80", alert.Percentage.String())
	assert.Equal(t, domain.SeverityMedium, alert.Severity)
	assert.Equal(t, aliceID, publisher.Events[1].UserID)
}

func TestTransactionService_CreateTransaction_IncomeNeverAlerts(t *testing.T) {
	store, svc, publisher := newTransactionFixture(t)
	store.SeedBudget(1, aliceID, salary, "10.00", 3, 2024, 50)

	_, err := svc.CreateTransaction(context.Background(), aliceID, CreateTransactionInput{
		CategoryID: salary,
		Amount:     decimal.NewFromInt(1000),
		Type:       domain.TransactionTypeIncome,
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"transaction.created"}, publisher.Types())
}

func TestTransactionService_GetTransaction_ScopedToOwner(t *testing.T) {
	store, svc, _ := newTransactionFixture(t)
	store.SeedTransaction(1, aliceID, foodID, domain.TransactionTypeExpense, "9.99", testutil.Date(2024, 3, 1))
	ctx := context.Background()

	got, err := svc.GetTransaction(ctx, aliceID, 1)
	require.NoError(t, err)
	assert.Equal(t, "9.99", got.Amount.StringFixed(2))

	_, err = svc.GetTransaction(ctx, bobID, 1)
	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)
}

func TestTransactionService_UpdateTransaction(t *testing.T) {
	store, svc, publisher := newTransactionFixture(t)
	store.SeedTransaction(1, aliceID, foodID, domain.TransactionTypeExpense, "10.00", testutil.Date(2024, 3, 1))
	ctx := context.Background()
	date := testutil.Date(2024, 3, 2)

	updated, err := svc.UpdateTransaction(ctx, aliceID, 1, UpdateTransactionInput{
		Amount:          decimal.RequireFromString("20.00"),
		TransactionDate: &date,
		Type:            domain.TransactionTypeExpense,
	})
	require.NoError(t, err)
	assert.Equal(t, foodID, updated.CategoryID, "category kept when none supplied")
	assert.Equal(t, "20.00", updated.Amount.StringFixed(2))
	assert.NotNil(t, updated.UpdatedAt)

	newCategory := travel
	updated, err = svc.UpdateTransaction(ctx, aliceID, 1, UpdateTransactionInput{
		CategoryID:      &newCategory,
		Amount:          decimal.RequireFromString("20.00"),
		TransactionDate: &date,
		Type:            domain.TransactionTypeExpense,
	})
	require.NoError(t, err)
	assert.Equal(t, "Travel", updated.Category.Name)

	missing := int64(99)
	_, err = svc.UpdateTransaction(ctx, aliceID, 1, UpdateTransactionInput{
		CategoryID:      &missing,
		Amount:          decimal.NewFromInt(1),
		TransactionDate: &date,
		Type:            domain.TransactionTypeExpense,
	})
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)

	_, err = svc.UpdateTransaction(ctx, bobID, 1, UpdateTransactionInput{
		Amount:          decimal.NewFromInt(1),
		TransactionDate: &date,
		Type:            domain.TransactionTypeExpense,
	})
	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)

	_, err = svc.UpdateTransaction(ctx, aliceID, 1, UpdateTransactionInput{Amount: decimal.NewFromInt(1), Type: domain.TransactionTypeExpense})
	assert.ErrorIs(t, err, domain.ErrDateRequired)

	assert.Equal(t, []string{"transaction.updated", "transaction.updated"}, publisher.Types())
}

func TestTransactionService_DeleteTransaction(t *testing.T) {
	store, svc, publisher := newTransactionFixture(t)
	store.SeedTransaction(1, aliceID, foodID, domain.TransactionTypeExpense, "10.00", testutil.Date(2024, 3, 1))
	ctx := context.Background()

	assert.ErrorIs(t, svc.DeleteTransaction(ctx, bobID, 1), domain.ErrTransactionNotFound)
	require.NoError(t, svc.DeleteTransaction(ctx, aliceID, 1))
	assert.ErrorIs(t, svc.DeleteTransaction(ctx, aliceID, 1), domain.ErrTransactionNotFound)
	assert.Equal(t, []string{"transaction.deleted"}, publisher.Types())
}

func seedListData(store *testutil.MockStore) {
	store.SeedTransaction(1, aliceID, foodID, domain.TransactionTypeExpense, "10.00", testutil.Date(2024, 1, 15))
	store.SeedTransaction(2, aliceID, travel, domain.TransactionTypeExpense, "300.00", testutil.Date(2024, 2, 1))
	store.SeedTransaction(3, aliceID, salary, domain.TransactionTypeIncome, "2500.00", testutil.Date(2024, 2, 28))
	store.SeedTransaction(4, aliceID, foodID, domain.TransactionTypeExpense, "45.00", testutil.Date(2024, 3, 3))
	store.SeedTransaction(5, bobID, foodID, domain.TransactionTypeExpense, "1.00", testutil.Date(2024, 3, 3))
}

func ids(transactions []*domain.Transaction) []int64 {
	result := make([]int64, len(transactions))
	for i, t := range transactions {
		result[i] = t.ID
	}
	return result
}

func TestTransactionService_ListTransactions_Defaults(t *testing.T) {
	store, svc, _ := newTransactionFixture(t)
	seedListData(store)

	page, err := svc.ListTransactions(context.Background(), aliceID, TransactionQuery{})

	require.NoError(t, err)
	assert.Equal(t, []int64{4, 3, 2, 1}, ids(page.Data), "newest transaction date first")
	assert.Equal(t, 0, page.Page)
	assert.Equal(t, 20, page.Size)
	assert.Equal(t, int64(4), page.TotalItems)
	assert.Equal(t, 1, page.TotalPages)
}

func TestTransactionService_ListTransactions_FilterPrecedence(t *testing.T) {
	store, svc, _ := newTransactionFixture(t)
	seedListData(store)
	ctx := context.Background()

	category := foodID
	start := testutil.Date(2024, 2, 1)
	end := testutil.Date(2024, 3, 31)

	tests := []struct {
		name  string
		query TransactionQuery
		want  []int64
	}{
		{"category and range", TransactionQuery{CategoryID: &category, StartDate: &start, EndDate: &end, Type: "INCOME"}, []int64{4}},
		{"category wins over type", TransactionQuery{CategoryID: &category, Type: "income"}, []int64{4, 1}},
		{"category ignores half range", TransactionQuery{CategoryID: &category, StartDate: &start}, []int64{4, 1}},
		{"range wins over type", TransactionQuery{StartDate: &start, EndDate: &end, Type: "INCOME"}, []int64{4, 3, 2}},
		{"type", TransactionQuery{Type: "income"}, []int64{3}},
		{"half range means no filter", TransactionQuery{EndDate: &end}, []int64{4, 3, 2, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := svc.ListTransactions(ctx, aliceID, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(page.Data))
		})
	}
}

func TestTransactionService_ListTransactions_SortingAndPaging(t *testing.T) {
	store, svc, _ := newTransactionFixture(t)
	seedListData(store)
	ctx := context.Background()

	page, err := svc.ListTransactions(ctx, aliceID, TransactionQuery{SortBy: "amount", SortDirection: "asc", Size: intPtr(3)})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 4, 2}, ids(page.Data))
	assert.Equal(t, 2, page.TotalPages)

	page, err = svc.ListTransactions(ctx, aliceID, TransactionQuery{SortBy: "amount", SortDirection: "asc", Size: intPtr(3), Page: intPtr(1)})
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, ids(page.Data))

	page, err = svc.ListTransactions(ctx, aliceID, TransactionQuery{SortBy: "amount", SortDirection: "sideways"})
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 2, 4, 1}, ids(page.Data), "unknown direction means DESC")

	page, err = svc.ListTransactions(ctx, aliceID, TransactionQuery{Page: intPtr(5)})
	require.NoError(t, err)
	assert.Empty(t, page.Data)
	assert.Equal(t, int64(4), page.TotalItems)
}

func TestTransactionService_ListTransactions_InvalidQuery(t *testing.T) {
	_, svc, _ := newTransactionFixture(t)
	ctx := context.Background()
	start := testutil.Date(2024, 3, 1)
	end := testutil.Date(2024, 2, 1)

	tests := []struct {
		name  string
		query TransactionQuery
		want  error
	}{
		{"unknown sort field", TransactionQuery{SortBy: "password"}, domain.ErrInvalidSortField},
		{"negative page", TransactionQuery{Page: intPtr(-1)}, domain.ErrInvalidPage},
		{"oversized page", TransactionQuery{Size: intPtr(101)}, domain.ErrInvalidPageSize},
		{"zero size", TransactionQuery{Size: intPtr(0)}, domain.ErrInvalidPageSize},
		{"inverted range", TransactionQuery{StartDate: &start, EndDate: &end}, domain.ErrInvalidDateRange},
		{"bad type", TransactionQuery{Type: "gift"}, domain.ErrInvalidTransactionType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ListTransactions(ctx, aliceID, tt.query)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestTransactionService_ListTransactions_UnknownUserIsEmpty(t *testing.T) {
	_, svc, _ := newTransactionFixture(t)

	page, err := svc.ListTransactions(context.Background(), 404, TransactionQuery{})

	require.NoError(t, err)
	assert.Empty(t, page.Data)
	assert.Equal(t, 0, page.TotalPages)
}

func TestTransactionService_GetRecentTransactions(t *testing.T) {
	store, svc, _ := newTransactionFixture(t)
	for i := int64(1); i <= 12; i++ {
		store.SeedTransaction(i, aliceID, foodID, domain.TransactionTypeExpense, "1.00", testutil.Date(2024, 1, int(i)))
	}

	recent, err := svc.GetRecentTransactions(context.Background(), aliceID)

	require.NoError(t, err)
	require.Len(t, recent, domain.RecentLimit)
	assert.Equal(t, int64(12), recent[0].ID)
	assert.Equal(t, int64(3), recent[9].ID)
}

func TestTransactionService_Totals(t *testing.T) {
	store, svc, _ := newTransactionFixture(t)
	seedListData(store)
	ctx := context.Background()
	start := testutil.Date(2024, 2, 1)
	end := testutil.Date(2024, 3, 3)

	expenses, err := svc.GetTotalByTypeAndRange(ctx, aliceID, domain.TransactionTypeExpense, start, end)
	require.NoError(t, err)
	assert.Equal(t, "345.00", expenses.StringFixed(2), "range bounds are inclusive")

	none, err := svc.GetTotalByTypeAndRange(ctx, aliceID, domain.TransactionTypeIncome, testutil.Date(2023, 1, 1), testutil.Date(2023, 12, 31))
	require.NoError(t, err)
	assert.True(t, none.IsZero())

	breakdown, err := svc.GetCategoryBreakdown(ctx, aliceID, domain.TransactionTypeExpense, start, end)
	require.NoError(t, err)
	require.Len(t, breakdown, 2)
	assert.Equal(t, "Travel", breakdown[0].CategoryName)
	assert.Equal(t, "300.00", breakdown[0].Total.StringFixed(2))

	spending, err := svc.GetCategorySpending(ctx, aliceID, foodID, testutil.Date(2024, 1, 1), testutil.Date(2024, 12, 31))
	require.NoError(t, err)
	assert.Equal(t, "55.00", spending.StringFixed(2))

	_, err = svc.GetCategorySpending(ctx, aliceID, foodID, end, start)
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)

	_, err = svc.GetTotalByTypeAndRange(ctx, aliceID, domain.TransactionTypeExpense, time.Time{}, end)
	assert.ErrorIs(t, err, domain.ErrStartDateRequired)
}

func TestTransactionService_GetMonthlySummary(t *testing.T) {
	store, svc, _ := newTransactionFixture(t)
	seedListData(store)
	store.SeedTransaction(6, aliceID, foodID, domain.TransactionTypeExpense, "5.00", testutil.Date(2024, 2, 29))

	summary, err := svc.GetMonthlySummary(context.Background(), aliceID, 2, 2024)

	require.NoError(t, err)
	assert.Equal(t, "2500.00", summary.TotalIncome.StringFixed(2))
	assert.Equal(t, "305.00", summary.TotalExpenses.StringFixed(2), "leap day is inside February")
	assert.Equal(t, "2195.00", summary.Balance.StringFixed(2))

	sum := decimal.Zero
	for _, s := range summary.CategoryBreakdown {
		sum = sum.Add(s.Total)
	}
	assert.True(t, sum.Equal(summary.TotalExpenses))

	_, err = svc.GetMonthlySummary(context.Background(), aliceID, 13, 2024)
	assert.ErrorIs(t, err, domain.ErrInvalidMonth)
}

func TestTransactionService_GetMonthlySummary_Empty(t *testing.T) {
	_, svc, _ := newTransactionFixture(t)

	summary, err := svc.GetMonthlySummary(context.Background(), aliceID, 6, 2024)

	require.NoError(t, err)
	assert.True(t, summary.Balance.IsZero())
	assert.NotNil(t, summary.CategoryBreakdown)
	assert.Empty(t, summary.CategoryBreakdown)
}

func TestTransactionService_GetYearlySummary(t *testing.T) {
	store, svc, _ := newTransactionFixture(t)
	seedListData(store)

	summary, err := svc.GetYearlySummary(context.Background(), aliceID, 2024)

	require.NoError(t, err)
	assert.Equal(t, "355.00", summary.TotalExpenses.StringFixed(2))
	assert.Equal(t, "2145.00", summary.Balance.StringFixed(2))
	assert.Equal(t, "29.58", summary.AverageMonthlyExpense.StringFixed(2))
}

func TestTransactionService_ExportTransactions(t *testing.T) {
	store, svc, _ := newTransactionFixture(t)
	seedListData(store)
	ctx := context.Background()

	rows, err := svc.ExportTransactions(ctx, aliceID, testutil.Date(2024, 2, 1), testutil.Date(2024, 3, 31))
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 3, 2}, ids(rows))

	_, err = svc.ExportTransactions(ctx, 404, testutil.Date(2024, 2, 1), testutil.Date(2024, 3, 31))
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
