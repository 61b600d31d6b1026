package postgres

import (
	"context"
	"errors"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// budgetSelect reads from a relation aliased b joined to its owner and category
const budgetSelect = `
	SELECT b.id, b.user_id, b.category_id, b.amount, b.month, b.year, b.alert_threshold, b.notes,
		u.username, c.name, c.icon, c.color`

const budgetJoins = `
	JOIN users u ON u.id = b.user_id
	JOIN categories c ON c.id = b.category_id`

// BudgetRepository implements domain.BudgetRepository using PostgreSQL
type BudgetRepository struct {
	db DBTX
}

// NewBudgetRepository creates a new BudgetRepository
func NewBudgetRepository(db DBTX) *BudgetRepository {
	return &BudgetRepository{db: db}
}

// Create inserts a budget. A concurrent insert for the same key makes the
// INSERT a no-op so the caller can fall back to updating the winner's row.
func (r *BudgetRepository) Create(ctx context.Context, budget *domain.Budget) (*domain.Budget, error) {
	amount, err := decimalToPgNumeric(budget.Amount)
	if err != nil {
		return nil, err
	}

	row := r.db.QueryRow(ctx, `
		WITH b AS (
			INSERT INTO budgets (user_id, category_id, amount, month, year, alert_threshold, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (user_id, category_id, month, year) DO NOTHING
			RETURNING *
		)`+budgetSelect+` FROM b`+budgetJoins,
		budget.UserID,
		budget.CategoryID,
		amount,
		budget.Month,
		budget.Year,
		budget.AlertThreshold,
		stringPtrToPgText(budget.Notes),
	)
	created, err := scanBudget(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBudgetAlreadyExists
		}
		if isPgForeignKeyViolation(err) {
			if violatedConstraint(err) == constraintBudgetUser {
				return nil, domain.ErrUserNotFound
			}
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}
	return created, nil
}

// GetByID retrieves a budget owned by userID
func (r *BudgetRepository) GetByID(ctx context.Context, userID, id int64) (*domain.Budget, error) {
	return r.getOne(ctx, budgetSelect+` FROM budgets b`+budgetJoins+`
		WHERE b.id = $1 AND b.user_id = $2`, id, userID)
}

// GetByKey retrieves the budget for a user, category and month
func (r *BudgetRepository) GetByKey(ctx context.Context, key domain.BudgetKey) (*domain.Budget, error) {
	return r.getOne(ctx, budgetSelect+` FROM budgets b`+budgetJoins+`
		WHERE b.user_id = $1 AND b.category_id = $2 AND b.month = $3 AND b.year = $4`,
		key.UserID, key.CategoryID, key.Month, key.Year)
}

// GetByUser retrieves all of a user's budgets, newest period first
func (r *BudgetRepository) GetByUser(ctx context.Context, userID int64) ([]*domain.Budget, error) {
	return r.getMany(ctx, budgetSelect+` FROM budgets b`+budgetJoins+`
		WHERE b.user_id = $1
		ORDER BY b.year DESC, b.month DESC, c.name ASC`, userID)
}

// GetByUserAndPeriod retrieves a user's budgets for one month
func (r *BudgetRepository) GetByUserAndPeriod(ctx context.Context, userID int64, month, year int) ([]*domain.Budget, error) {
	return r.getMany(ctx, budgetSelect+` FROM budgets b`+budgetJoins+`
		WHERE b.user_id = $1 AND b.month = $2 AND b.year = $3
		ORDER BY c.name ASC`, userID, month, year)
}

// UpdateLimits overwrites amount, alert threshold and notes. Owner, category
// and period are the budget's identity and never change.
func (r *BudgetRepository) UpdateLimits(ctx context.Context, budget *domain.Budget) (*domain.Budget, error) {
	amount, err := decimalToPgNumeric(budget.Amount)
	if err != nil {
		return nil, err
	}

	return r.getOne(ctx, `
		WITH b AS (
			UPDATE budgets
			SET amount = $3, alert_threshold = $4, notes = $5
			WHERE id = $1 AND user_id = $2
			RETURNING *
		)`+budgetSelect+` FROM b`+budgetJoins,
		budget.ID,
		budget.UserID,
		amount,
		budget.AlertThreshold,
		stringPtrToPgText(budget.Notes),
	)
}

// Delete removes a budget owned by userID
func (r *BudgetRepository) Delete(ctx context.Context, userID, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM budgets WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBudgetNotFound
	}
	return nil
}

func (r *BudgetRepository) getOne(ctx context.Context, query string, args ...any) (*domain.Budget, error) {
	b, err := scanBudget(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBudgetNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *BudgetRepository) getMany(ctx context.Context, query string, args ...any) ([]*domain.Budget, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	budgets := make([]*domain.Budget, 0)
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

// Helper functions

func scanBudget(row pgx.Row) (*domain.Budget, error) {
	var b domain.Budget
	var (
		amount      pgtype.Numeric
		notes       pgtype.Text
		icon, color pgtype.Text
	)
	err := row.Scan(
		&b.ID, &b.UserID, &b.CategoryID, &amount, &b.Month, &b.Year, &b.AlertThreshold, &notes,
		&b.User.Username, &b.Category.Name, &icon, &color,
	)
	if err != nil {
		return nil, err
	}
	b.Amount = pgNumericToDecimal(amount)
	b.Notes = pgTextToStringPtr(notes)
	b.User.ID = b.UserID
	b.Category.ID = b.CategoryID
	b.Category.Icon = pgTextToStringPtr(icon)
	b.Category.Color = pgTextToStringPtr(color)
	return &b, nil
}
