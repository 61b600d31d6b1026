package service

import (
	"context"
	"strings"
	"testing"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string {
	return &s
}

func TestCategoryService_SeedSystemCategories(t *testing.T) {
	store := testutil.NewMockStore()
	svc := NewCategoryService(store)
	ctx := context.Background()

	inserted, err := svc.SeedSystemCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12, inserted)

	system, err := svc.GetSystemCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, system, 12)
	for _, c := range system {
		assert.True(t, c.IsSystem)
		assert.NotNil(t, c.Icon)
		assert.NotNil(t, c.Color)
	}

	inserted, err = svc.SeedSystemCategories(ctx)
	require.NoError(t, err)
	assert.Zero(t, inserted, "seeding is gated on an empty table")
	assert.Len(t, store.Categories.Categories, 12)
}

func TestCategoryService_SeedSkipsWhenAnyCategoryExists(t *testing.T) {
	store := testutil.NewMockStore()
	store.SeedCategory(1, "Pets", false)
	svc := NewCategoryService(store)

	inserted, err := svc.SeedSystemCategories(context.Background())

	require.NoError(t, err)
	assert.Zero(t, inserted)
}

func TestCategoryService_CreateCategory(t *testing.T) {
	store := testutil.NewMockStore()
	svc := NewCategoryService(store)

	category, err := svc.CreateCategory(context.Background(), CategoryInput{
		Name:  "  Pets ",
		Icon:  strPtr("🐶"),
		Color: strPtr("#AABBCC"),
	})

	require.NoError(t, err)
	assert.Equal(t, "Pets", category.Name)
	assert.False(t, category.IsSystem)
	assert.Nil(t, category.Description)
}

func TestCategoryService_CreateCategory_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input CategoryInput
		want  error
	}{
		{"empty name", CategoryInput{Name: " "}, domain.ErrCategoryNameRequired},
		{"long description", CategoryInput{Name: "X", Description: strPtr(strings.Repeat("d", 501))}, domain.ErrDescriptionTooLong},
		{"long icon", CategoryInput{Name: "X", Icon: strPtr(strings.Repeat("i", 51))}, domain.ErrIconTooLong},
		{"long color", CategoryInput{Name: "X", Color: strPtr("#1234567")}, domain.ErrColorTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewCategoryService(testutil.NewMockStore())
			_, err := svc.CreateCategory(context.Background(), tt.input)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCategoryService_CreateCategory_DuplicateName(t *testing.T) {
	store := testutil.NewMockStore()
	store.SeedCategory(1, "Pets", false)
	svc := NewCategoryService(store)

	_, err := svc.CreateCategory(context.Background(), CategoryInput{Name: "Pets"})

	assert.ErrorIs(t, err, domain.ErrCategoryNameTaken)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestCategoryService_ListsOrderedByName(t *testing.T) {
	store := testutil.NewMockStore()
	store.SeedCategory(1, "Travel", true)
	store.SeedCategory(2, "Pets", false)
	store.SeedCategory(3, "Food & Dining", true)
	svc := NewCategoryService(store)
	ctx := context.Background()

	all, err := svc.GetAllCategories(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"Food & Dining", "Pets", "Travel"}, []string{all[0].Name, all[1].Name, all[2].Name})

	custom, err := svc.GetCustomCategories(ctx)
	require.NoError(t, err)
	require.Len(t, custom, 1)
	assert.Equal(t, "Pets", custom[0].Name)

	byName, err := svc.GetCategoryByName(ctx, "Travel")
	require.NoError(t, err)
	assert.Equal(t, int64(1), byName.ID)

	_, err = svc.GetCategoryByID(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
}

func TestCategoryService_UpdateCategory(t *testing.T) {
	store := testutil.NewMockStore()
	store.SeedCategory(1, "Travel", true)
	store.SeedCategory(2, "Pets", false)
	store.SeedCategory(3, "Garden", false)
	svc := NewCategoryService(store)
	ctx := context.Background()

	updated, err := svc.UpdateCategory(ctx, 2, CategoryInput{Name: "Pet Care", Description: strPtr("Vet and food")})
	require.NoError(t, err)
	assert.Equal(t, "Pet Care", updated.Name)
	assert.Equal(t, "Vet and food", *updated.Description)
	assert.False(t, updated.IsSystem)

	_, err = svc.UpdateCategory(ctx, 1, CategoryInput{Name: "Trips"})
	assert.ErrorIs(t, err, domain.ErrSystemCategoryImmutable)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.UpdateCategory(ctx, 3, CategoryInput{Name: "Pet Care"})
	assert.ErrorIs(t, err, domain.ErrCategoryNameTaken)

	_, err = svc.UpdateCategory(ctx, 99, CategoryInput{Name: "Nope"})
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
}

func TestCategoryService_DeleteCategory(t *testing.T) {
	store := testutil.NewMockStore()
	store.SeedUser(1, "alice")
	store.SeedCategory(1, "Travel", true)
	store.SeedCategory(2, "Pets", false)
	store.SeedCategory(3, "Garden", false)
	store.SeedTransaction(1, 1, 2, domain.TransactionTypeExpense, "10.00", testutil.Date(2024, 3, 1))
	svc := NewCategoryService(store)
	ctx := context.Background()

	assert.ErrorIs(t, svc.DeleteCategory(ctx, 1), domain.ErrSystemCategoryUndeletable)
	assert.ErrorIs(t, svc.DeleteCategory(ctx, 2), domain.ErrCategoryInUse)
	assert.ErrorIs(t, svc.DeleteCategory(ctx, 99), domain.ErrCategoryNotFound)

	require.NoError(t, svc.DeleteCategory(ctx, 3))
	_, err := svc.GetCategoryByID(ctx, 3)
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
}

func TestCategoryService_DeleteCategory_ReferencedByBudget(t *testing.T) {
	store := testutil.NewMockStore()
	store.SeedCategory(4, "Hobbies", false)
	store.Categories.InUse[4] = true
	svc := NewCategoryService(store)

	err := svc.DeleteCategory(context.Background(), 4)

	assert.ErrorIs(t, err, domain.ErrCategoryInUse)
	assert.Equal(t, 1, store.Rollbacks)
}
