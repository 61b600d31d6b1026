package domain

import "context"

type Category struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Icon        *string `json:"icon,omitempty"`
	Color       *string `json:"color,omitempty"`
	IsSystem    bool    `json:"isSystem"`
}

type CategoryRepository interface {
	Create(ctx context.Context, category *Category) (*Category, error)
	CreateBatch(ctx context.Context, categories []*Category) error
	GetByID(ctx context.Context, id int64) (*Category, error)
	GetByName(ctx context.Context, name string) (*Category, error)
	GetAll(ctx context.Context) ([]*Category, error)
	GetBySystemFlag(ctx context.Context, isSystem bool) ([]*Category, error)
	Update(ctx context.Context, category *Category) (*Category, error)
	Delete(ctx context.Context, id int64) error
	ExistsByName(ctx context.Context, name string) (bool, error)
	Count(ctx context.Context) (int64, error)
}

// SystemCategories returns the fixed set of categories seeded on first boot
func SystemCategories() []*Category {
	return []*Category{
		systemCategory("Food & Dining", "Restaurants, groceries, food delivery", "🍔", "#FF6384"),
		systemCategory("Transportation", "Gas, public transit, parking, taxi", "🚗", "#36A2EB"),
		systemCategory("Shopping", "Clothing, electronics, household items", "🛍️", "#FFCE56"),
		systemCategory("Entertainment", "Movies, games, hobbies, subscriptions", "🎬", "#4BC0C0"),
		systemCategory("Bills & Utilities", "Electricity, water, internet, phone", "💡", "#9966FF"),
		systemCategory("Healthcare", "Medical, dental, pharmacy, insurance", "🏥", "#FF9F40"),
		systemCategory("Education", "Courses, books, training materials", "📚", "#FF6384"),
		systemCategory("Travel", "Flights, hotels, vacation expenses", "✈️", "#C9CBCF"),
		systemCategory("Personal Care", "Haircuts, cosmetics, gym membership", "💅", "#4BC0C0"),
		systemCategory("Savings", "Emergency fund, investments", "💰", "#90EE90"),
		systemCategory("Income", "Salary, freelance, other income", "💵", "#32CD32"),
		systemCategory("Other", "Miscellaneous expenses", "📌", "#808080"),
	}
}

func systemCategory(name, description, icon, color string) *Category {
	return &Category{
		Name:        name,
		Description: &description,
		Icon:        &icon,
		Color:       &color,
		IsSystem:    true,
	}
}
