package domain

import "context"

// Repositories groups the repositories bound to one unit of work
type Repositories struct {
	Users        UserRepository
	Categories   CategoryRepository
	Transactions TransactionRepository
	Budgets      BudgetRepository
}

// Store runs service operations atomically. fn's repositories share one
// database transaction which commits when fn returns nil and rolls back
// otherwise.
type Store interface {
	WithinTx(ctx context.Context, fn func(repos Repositories) error) error
}
