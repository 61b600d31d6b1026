package testutil

import (
	"time"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// SeedUser adds an active user to the store
func (s *MockStore) SeedUser(id int64, username string) *domain.User {
	user := &domain.User{
		ID:        id,
		Username:  username,
		Email:     username + "@example.com",
		FullName:  username,
		Active:    true,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	s.Users.AddUser(user)
	return user
}

// SeedCategory adds a category to the store
func (s *MockStore) SeedCategory(id int64, name string, isSystem bool) *domain.Category {
	category := &domain.Category{ID: id, Name: name, IsSystem: isSystem}
	s.Categories.AddCategory(category)
	return category
}

// SeedTransaction adds a transaction dated on the given day
func (s *MockStore) SeedTransaction(id, userID, categoryID int64, txType domain.TransactionType, amount string, date time.Time) *domain.Transaction {
	transaction := &domain.Transaction{
		ID:              id,
		UserID:          userID,
		CategoryID:      categoryID,
		Amount:          decimal.RequireFromString(amount),
		TransactionDate: date,
		Type:            txType,
		CreatedAt:       date,
	}
	s.Transactions.AddTransaction(transaction)
	return transaction
}

// SeedBudget adds a budget for a category and month
func (s *MockStore) SeedBudget(id, userID, categoryID int64, amount string, month, year, threshold int) *domain.Budget {
	budget := &domain.Budget{
		ID:             id,
		UserID:         userID,
		CategoryID:     categoryID,
		Amount:         decimal.RequireFromString(amount),
		Month:          month,
		Year:           year,
		AlertThreshold: threshold,
	}
	s.Budgets.AddBudget(budget)
	return budget
}

// Date builds a UTC calendar date
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
