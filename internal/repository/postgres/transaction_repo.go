package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// transactionSelect reads from a relation aliased t joined to its owner and category
const transactionSelect = `
	SELECT t.id, t.user_id, t.category_id, t.amount, t.description, t.transaction_date,
		t.type, t.created_at, t.updated_at, u.username, c.name, c.icon, c.color`

const transactionJoins = `
	JOIN users u ON u.id = t.user_id
	JOIN categories c ON c.id = t.category_id`

// TransactionRepository implements domain.TransactionRepository using PostgreSQL
type TransactionRepository struct {
	db DBTX
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(db DBTX) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create inserts a transaction and returns it with owner and category populated
func (r *TransactionRepository) Create(ctx context.Context, transaction *domain.Transaction) (*domain.Transaction, error) {
	amount, err := decimalToPgNumeric(transaction.Amount)
	if err != nil {
		return nil, err
	}

	row := r.db.QueryRow(ctx, `
		WITH t AS (
			INSERT INTO transactions (user_id, category_id, amount, description, transaction_date, type)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING *
		)`+transactionSelect+` FROM t`+transactionJoins,
		transaction.UserID,
		transaction.CategoryID,
		amount,
		stringPtrToPgText(transaction.Description),
		timeToPgDate(transaction.TransactionDate),
		string(transaction.Type),
	)
	created, err := scanTransaction(row)
	if err != nil {
		if isPgForeignKeyViolation(err) {
			return nil, mapTransactionForeignKeyError(err)
		}
		return nil, err
	}
	return created, nil
}

// GetByID retrieves a transaction owned by userID
func (r *TransactionRepository) GetByID(ctx context.Context, userID, id int64) (*domain.Transaction, error) {
	row := r.db.QueryRow(ctx, transactionSelect+` FROM transactions t`+transactionJoins+`
		WHERE t.id = $1 AND t.user_id = $2`, id, userID)
	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return t, nil
}

// Update replaces the mutable fields and stamps updated_at
func (r *TransactionRepository) Update(ctx context.Context, transaction *domain.Transaction) (*domain.Transaction, error) {
	amount, err := decimalToPgNumeric(transaction.Amount)
	if err != nil {
		return nil, err
	}

	row := r.db.QueryRow(ctx, `
		WITH t AS (
			UPDATE transactions
			SET category_id = $3, amount = $4, description = $5, transaction_date = $6, type = $7, updated_at = NOW()
			WHERE id = $1 AND user_id = $2
			RETURNING *
		)`+transactionSelect+` FROM t`+transactionJoins,
		transaction.ID,
		transaction.UserID,
		transaction.CategoryID,
		amount,
		stringPtrToPgText(transaction.Description),
		timeToPgDate(transaction.TransactionDate),
		string(transaction.Type),
	)
	updated, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		if isPgForeignKeyViolation(err) {
			return nil, mapTransactionForeignKeyError(err)
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes a transaction owned by userID
func (r *TransactionRepository) Delete(ctx context.Context, userID, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

// List returns one page of a user's transactions and the total number matching the filter
func (r *TransactionRepository) List(ctx context.Context, userID int64, filter domain.TransactionFilter, page domain.PageRequest) ([]*domain.Transaction, int64, error) {
	where, args := buildTransactionFilter(userID, filter)

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM transactions t WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []*domain.Transaction{}, 0, nil
	}

	column, ok := domain.TransactionSortColumns[page.SortBy]
	if !ok {
		column = domain.TransactionSortColumns[domain.DefaultSortBy]
	}
	direction := domain.SortDesc
	if page.SortDirection == domain.SortAsc {
		direction = domain.SortAsc
	}

	query := fmt.Sprintf(`%s FROM transactions t%s
		WHERE %s
		ORDER BY %s %s, t.id %s
		LIMIT $%d OFFSET $%d`,
		transactionSelect, transactionJoins, where, column, direction, direction, len(args)+1, len(args)+2)
	args = append(args, page.Size, pageOffset(page.Page, page.Size))

	transactions, err := r.queryTransactions(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return transactions, total, nil
}

// GetRecent returns the newest transactions by date, then creation time
func (r *TransactionRepository) GetRecent(ctx context.Context, userID int64, limit int) ([]*domain.Transaction, error) {
	return r.queryTransactions(ctx, transactionSelect+` FROM transactions t`+transactionJoins+`
		WHERE t.user_id = $1
		ORDER BY t.transaction_date DESC, t.created_at DESC, t.id DESC
		LIMIT $2`, userID, limit)
}

// GetByDateRange returns a user's transactions dated within [startDate, endDate], newest first
func (r *TransactionRepository) GetByDateRange(ctx context.Context, userID int64, startDate, endDate time.Time) ([]*domain.Transaction, error) {
	return r.queryTransactions(ctx, transactionSelect+` FROM transactions t`+transactionJoins+`
		WHERE t.user_id = $1 AND t.transaction_date BETWEEN $2 AND $3
		ORDER BY t.transaction_date DESC, t.id DESC`,
		userID, timeToPgDate(startDate), timeToPgDate(endDate))
}

// SumByType totals a user's transactions of one type within the inclusive date range
func (r *TransactionRepository) SumByType(ctx context.Context, userID int64, txType domain.TransactionType, startDate, endDate time.Time) (decimal.Decimal, error) {
	var total pgtype.Numeric
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE user_id = $1 AND type = $2 AND transaction_date BETWEEN $3 AND $4`,
		userID, string(txType), timeToPgDate(startDate), timeToPgDate(endDate),
	).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return pgNumericToDecimal(total), nil
}

// SumByCategory totals a user's transactions of one type and category within the inclusive date range
func (r *TransactionRepository) SumByCategory(ctx context.Context, userID, categoryID int64, txType domain.TransactionType, startDate, endDate time.Time) (decimal.Decimal, error) {
	var total pgtype.Numeric
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE user_id = $1 AND category_id = $2 AND type = $3 AND transaction_date BETWEEN $4 AND $5`,
		userID, categoryID, string(txType), timeToPgDate(startDate), timeToPgDate(endDate),
	).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return pgNumericToDecimal(total), nil
}

// GetCategoryBreakdown groups totals by category, largest first. Categories
// without matching transactions are omitted.
func (r *TransactionRepository) GetCategoryBreakdown(ctx context.Context, userID int64, txType domain.TransactionType, startDate, endDate time.Time) ([]*domain.CategorySpending, error) {
	rows, err := r.db.Query(ctx, `
		SELECT c.id, c.name, SUM(t.amount) AS total
		FROM transactions t
		JOIN categories c ON c.id = t.category_id
		WHERE t.user_id = $1 AND t.type = $2 AND t.transaction_date BETWEEN $3 AND $4
		GROUP BY c.id, c.name
		ORDER BY total DESC, c.name ASC`,
		userID, string(txType), timeToPgDate(startDate), timeToPgDate(endDate),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	breakdown := make([]*domain.CategorySpending, 0)
	for rows.Next() {
		var s domain.CategorySpending
		var total pgtype.Numeric
		if err := rows.Scan(&s.CategoryID, &s.CategoryName, &total); err != nil {
			return nil, err
		}
		s.Total = pgNumericToDecimal(total)
		breakdown = append(breakdown, &s)
	}
	return breakdown, rows.Err()
}

// CountByCategory counts transactions of any user that reference the category
func (r *TransactionRepository) CountByCategory(ctx context.Context, categoryID int64) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM transactions WHERE category_id = $1`, categoryID).Scan(&count)
	return count, err
}

func (r *TransactionRepository) queryTransactions(ctx context.Context, query string, args ...any) ([]*domain.Transaction, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := make([]*domain.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

// Helper functions

// buildTransactionFilter renders the WHERE clause for t. Criteria combine with AND.
func buildTransactionFilter(userID int64, filter domain.TransactionFilter) (string, []any) {
	conditions := []string{"t.user_id = $1"}
	args := []any{userID}

	add := func(condition string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(condition, len(args)))
	}
	if filter.CategoryID != nil {
		add("t.category_id = $%d", *filter.CategoryID)
	}
	if filter.StartDate != nil {
		add("t.transaction_date >= $%d", timeToPgDate(*filter.StartDate))
	}
	if filter.EndDate != nil {
		add("t.transaction_date <= $%d", timeToPgDate(*filter.EndDate))
	}
	if filter.Type != nil {
		add("t.type = $%d", string(*filter.Type))
	}
	return strings.Join(conditions, " AND "), args
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var t domain.Transaction
	var (
		amount      pgtype.Numeric
		description pgtype.Text
		date        pgtype.Date
		txType      string
		updatedAt   pgtype.Timestamptz
		icon, color pgtype.Text
	)
	err := row.Scan(
		&t.ID, &t.UserID, &t.CategoryID, &amount, &description, &date,
		&txType, &t.CreatedAt, &updatedAt, &t.User.Username, &t.Category.Name, &icon, &color,
	)
	if err != nil {
		return nil, err
	}
	t.Amount = pgNumericToDecimal(amount)
	t.Description = pgTextToStringPtr(description)
	t.TransactionDate = pgDateToTime(date)
	t.Type = domain.TransactionType(txType)
	t.UpdatedAt = pgTimestamptzToTimePtr(updatedAt)
	t.User.ID = t.UserID
	t.Category.ID = t.CategoryID
	t.Category.Icon = pgTextToStringPtr(icon)
	t.Category.Color = pgTextToStringPtr(color)
	return &t, nil
}

func mapTransactionForeignKeyError(err error) error {
	if violatedConstraint(err) == constraintTransactionUser {
		return domain.ErrUserNotFound
	}
	return domain.ErrCategoryNotFound
}
