package service

import (
	"context"
	"strings"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
)

// CategoryService handles category-related business logic
type CategoryService struct {
	store domain.Store
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(store domain.Store) *CategoryService {
	return &CategoryService{store: store}
}

// CategoryInput holds the fields of a custom category
type CategoryInput struct {
	Name        string
	Description *string
	Icon        *string
	Color       *string
}

// SeedSystemCategories inserts the fixed system categories into an empty
// table and returns how many were inserted
func (s *CategoryService) SeedSystemCategories(ctx context.Context) (int, error) {
	inserted := 0
	err := s.store.WithinTx(ctx, func(repos domain.Repositories) error {
		count, err := repos.Categories.Count(ctx)
		if err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		categories := domain.SystemCategories()
		if err := repos.Categories.CreateBatch(ctx, categories); err != nil {
			return err
		}
		inserted = len(categories)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// CreateCategory creates a custom (non-system) category
func (s *CategoryService) CreateCategory(ctx context.Context, input CategoryInput) (*domain.Category, error) {
	category, err := buildCategory(input)
	if err != nil {
		return nil, err
	}

	var created *domain.Category
	err = s.store.WithinTx(ctx, func(repos domain.Repositories) error {
		taken, err := repos.Categories.ExistsByName(ctx, category.Name)
		if err != nil {
			return err
		}
		if taken {
			return domain.ErrCategoryNameTaken
		}
		created, err = repos.Categories.Create(ctx, category)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetAllCategories retrieves all categories ordered by name
func (s *CategoryService) GetAllCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.list(ctx, func(repos domain.Repositories) ([]*domain.Category, error) {
		return repos.Categories.GetAll(ctx)
	})
}

// GetSystemCategories retrieves the seeded system categories
func (s *CategoryService) GetSystemCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.list(ctx, func(repos domain.Repositories) ([]*domain.Category, error) {
		return repos.Categories.GetBySystemFlag(ctx, true)
	})
}

// GetCustomCategories retrieves user-created categories
func (s *CategoryService) GetCustomCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.list(ctx, func(repos domain.Repositories) ([]*domain.Category, error) {
		return repos.Categories.GetBySystemFlag(ctx, false)
	})
}

// GetCategoryByID retrieves a category by ID
func (s *CategoryService) GetCategoryByID(ctx context.Context, id int64) (*domain.Category, error) {
	var category *domain.Category
	err := s.store.WithinTx(ctx, func(repos domain.Repositories) error {
		var err error
		category, err = repos.Categories.GetByID(ctx, id)
		return err
	})
	return category, err
}

// GetCategoryByName retrieves a category by its exact name
func (s *CategoryService) GetCategoryByName(ctx context.Context, name string) (*domain.Category, error) {
	var category *domain.Category
	err := s.store.WithinTx(ctx, func(repos domain.Repositories) error {
		var err error
		category, err = repos.Categories.GetByName(ctx, strings.TrimSpace(name))
		return err
	})
	return category, err
}

// UpdateCategory overwrites a custom category. System categories are immutable.
func (s *CategoryService) UpdateCategory(ctx context.Context, id int64, input CategoryInput) (*domain.Category, error) {
	changes, err := buildCategory(input)
	if err != nil {
		return nil, err
	}

	var updated *domain.Category
	err = s.store.WithinTx(ctx, func(repos domain.Repositories) error {
		existing, err := repos.Categories.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if existing.IsSystem {
			return domain.ErrSystemCategoryImmutable
		}

		if changes.Name != existing.Name {
			taken, err := repos.Categories.ExistsByName(ctx, changes.Name)
			if err != nil {
				return err
			}
			if taken {
				return domain.ErrCategoryNameTaken
			}
		}

		changes.ID = existing.ID
		updated, err = repos.Categories.Update(ctx, changes)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteCategory removes a custom category that no transaction references
func (s *CategoryService) DeleteCategory(ctx context.Context, id int64) error {
	return s.store.WithinTx(ctx, func(repos domain.Repositories) error {
		category, err := repos.Categories.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if category.IsSystem {
			return domain.ErrSystemCategoryUndeletable
		}

		count, err := repos.Transactions.CountByCategory(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return domain.ErrCategoryInUse
		}

		return repos.Categories.Delete(ctx, id)
	})
}

func (s *CategoryService) list(ctx context.Context, fn func(repos domain.Repositories) ([]*domain.Category, error)) ([]*domain.Category, error) {
	var categories []*domain.Category
	err := s.store.WithinTx(ctx, func(repos domain.Repositories) error {
		var err error
		categories, err = fn(repos)
		return err
	})
	return categories, err
}

func buildCategory(input CategoryInput) (*domain.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrCategoryNameRequired
	}
	description, err := optionalText(input.Description, domain.MaxTextLength, domain.ErrDescriptionTooLong)
	if err != nil {
		return nil, err
	}
	icon, err := optionalText(input.Icon, domain.MaxIconLength, domain.ErrIconTooLong)
	if err != nil {
		return nil, err
	}
	color, err := optionalText(input.Color, domain.MaxColorLength, domain.ErrColorTooLong)
	if err != nil {
		return nil, err
	}
	return &domain.Category{
		Name:        name,
		Description: description,
		Icon:        icon,
		Color:       color,
		IsSystem:    false,
	}, nil
}
