package postgres

import (
	"context"
	"errors"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const categoryColumns = `id, name, description, icon, color, is_system`

// CategoryRepository implements domain.CategoryRepository using PostgreSQL
type CategoryRepository struct {
	db DBTX
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(db DBTX) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create inserts a category
func (r *CategoryRepository) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO categories (name, description, icon, color, is_system)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+categoryColumns,
		category.Name,
		stringPtrToPgText(category.Description),
		stringPtrToPgText(category.Icon),
		stringPtrToPgText(category.Color),
		category.IsSystem,
	)
	created, err := scanCategory(row)
	if err != nil {
		return nil, mapCategoryConstraintError(err)
	}
	return created, nil
}

// CreateBatch inserts all categories in a single round trip
func (r *CategoryRepository) CreateBatch(ctx context.Context, categories []*domain.Category) error {
	batch := &pgx.Batch{}
	for _, c := range categories {
		batch.Queue(`
			INSERT INTO categories (name, description, icon, color, is_system)
			VALUES ($1, $2, $3, $4, $5)`,
			c.Name,
			stringPtrToPgText(c.Description),
			stringPtrToPgText(c.Icon),
			stringPtrToPgText(c.Color),
			c.IsSystem,
		)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()
	for range categories {
		if _, err := results.Exec(); err != nil {
			return mapCategoryConstraintError(err)
		}
	}
	return nil
}

// GetByID retrieves a category by ID
func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	return r.getOne(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
}

// GetByName retrieves a category by its exact name
func (r *CategoryRepository) GetByName(ctx context.Context, name string) (*domain.Category, error) {
	return r.getOne(ctx, `SELECT `+categoryColumns+` FROM categories WHERE name = $1`, name)
}

// GetAll retrieves all categories ordered by name
func (r *CategoryRepository) GetAll(ctx context.Context) ([]*domain.Category, error) {
	return r.getMany(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY name ASC`)
}

// GetBySystemFlag retrieves system or custom categories ordered by name
func (r *CategoryRepository) GetBySystemFlag(ctx context.Context, isSystem bool) ([]*domain.Category, error) {
	return r.getMany(ctx, `SELECT `+categoryColumns+` FROM categories WHERE is_system = $1 ORDER BY name ASC`, isSystem)
}

// Update writes name, description, icon and color. The system flag is never changed.
func (r *CategoryRepository) Update(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE categories
		SET name = $2, description = $3, icon = $4, color = $5
		WHERE id = $1
		RETURNING `+categoryColumns,
		category.ID,
		category.Name,
		stringPtrToPgText(category.Description),
		stringPtrToPgText(category.Icon),
		stringPtrToPgText(category.Color),
	)
	updated, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, mapCategoryConstraintError(err)
	}
	return updated, nil
}

// Delete removes a category. A category still referenced by transactions or
// budgets yields ErrCategoryInUse.
func (r *CategoryRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		if isPgForeignKeyViolation(err) {
			return domain.ErrCategoryInUse
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}

// ExistsByName reports whether a category holds the name
func (r *CategoryRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM categories WHERE name = $1)`, name).Scan(&exists)
	return exists, err
}

// Count returns the number of categories
func (r *CategoryRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM categories`).Scan(&count)
	return count, err
}

func (r *CategoryRepository) getOne(ctx context.Context, query string, arg any) (*domain.Category, error) {
	c, err := scanCategory(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *CategoryRepository) getMany(ctx context.Context, query string, args ...any) ([]*domain.Category, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]*domain.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// Helper functions

func scanCategory(row pgx.Row) (*domain.Category, error) {
	var c domain.Category
	var description, icon, color pgtype.Text
	if err := row.Scan(&c.ID, &c.Name, &description, &icon, &color, &c.IsSystem); err != nil {
		return nil, err
	}
	c.Description = pgTextToStringPtr(description)
	c.Icon = pgTextToStringPtr(icon)
	c.Color = pgTextToStringPtr(color)
	return &c, nil
}

func mapCategoryConstraintError(err error) error {
	if isPgUniqueViolation(err) && violatedConstraint(err) == constraintCategoryName {
		return domain.ErrCategoryNameTaken
	}
	return err
}
