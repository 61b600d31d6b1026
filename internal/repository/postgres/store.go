package postgres

import (
	"context"
	"fmt"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store implements domain.Store on a pgx connection pool. Each WithinTx call
// runs in its own database transaction.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

var _ domain.Store = (*Store)(nil)

// WithinTx implements domain.Store
func (s *Store) WithinTx(ctx context.Context, fn func(repos domain.Repositories) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(NewRepositories(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// NewRepositories binds all repositories to db
func NewRepositories(db DBTX) domain.Repositories {
	return domain.Repositories{
		Users:        NewUserRepository(db),
		Categories:   NewCategoryRepository(db),
		Transactions: NewTransactionRepository(db),
		Budgets:      NewBudgetRepository(db),
	}
}
