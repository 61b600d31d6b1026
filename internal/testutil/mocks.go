package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// MockUserRepository is a mock implementation of domain.UserRepository
type MockUserRepository struct {
	Users    map[int64]*domain.User
	NextID   int64
	CreateFn func(user *domain.User) (*domain.User, error)
}

// NewMockUserRepository creates a new MockUserRepository
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users:  make(map[int64]*domain.User),
		NextID: 1,
	}
}

// Create creates a new user
func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if m.CreateFn != nil {
		return m.CreateFn(user)
	}
	for _, u := range m.Users {
		if u.Username == user.Username {
			return nil, domain.ErrUsernameTaken
		}
		if u.Email == user.Email {
			return nil, domain.ErrEmailTaken
		}
	}
	user.ID = m.NextID
	m.NextID++
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	m.Users[user.ID] = user
	return user, nil
}

// GetByID retrieves a user by ID
func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if user, ok := m.Users[id]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// GetByUsername retrieves a user by username
func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	for _, u := range m.Users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// GetByEmail retrieves a user by email
func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range m.Users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// GetAll retrieves all users ordered by ID
func (m *MockUserRepository) GetAll(ctx context.Context) ([]*domain.User, error) {
	users := make([]*domain.User, 0, len(m.Users))
	for _, u := range m.Users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// Update updates an existing user
func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	if _, ok := m.Users[user.ID]; !ok {
		return nil, domain.ErrUserNotFound
	}
	for _, u := range m.Users {
		if u.ID == user.ID {
			continue
		}
		if u.Username == user.Username {
			return nil, domain.ErrUsernameTaken
		}
		if u.Email == user.Email {
			return nil, domain.ErrEmailTaken
		}
	}
	m.Users[user.ID] = user
	return user, nil
}

// ExistsByUsername checks whether a username is taken
func (m *MockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := m.GetByUsername(ctx, username)
	return err == nil, nil
}

// ExistsByEmail checks whether an email is taken
func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := m.GetByEmail(ctx, email)
	return err == nil, nil
}

// Count returns the number of users
func (m *MockUserRepository) Count(ctx context.Context) (int64, error) {
	return int64(len(m.Users)), nil
}

// AddUser adds a user to the mock repository (helper for tests)
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.Users[user.ID] = user
	if user.ID >= m.NextID {
		m.NextID = user.ID + 1
	}
}

// MockCategoryRepository is a mock implementation of domain.CategoryRepository
type MockCategoryRepository struct {
	Categories map[int64]*domain.Category
	NextID     int64
	// InUse marks categories whose deletion violates a foreign key
	InUse    map[int64]bool
	DeleteFn func(id int64) error
}

// NewMockCategoryRepository creates a new MockCategoryRepository
func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{
		Categories: make(map[int64]*domain.Category),
		InUse:      make(map[int64]bool),
		NextID:     1,
	}
}

// Create creates a new category
func (m *MockCategoryRepository) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	for _, c := range m.Categories {
		if c.Name == category.Name {
			return nil, domain.ErrCategoryNameTaken
		}
	}
	category.ID = m.NextID
	m.NextID++
	m.Categories[category.ID] = category
	return category, nil
}

// CreateBatch creates several categories
func (m *MockCategoryRepository) CreateBatch(ctx context.Context, categories []*domain.Category) error {
	for _, c := range categories {
		if _, err := m.Create(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

// GetByID retrieves a category by ID
func (m *MockCategoryRepository) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	if c, ok := m.Categories[id]; ok {
		return c, nil
	}
	return nil, domain.ErrCategoryNotFound
}

// GetByName retrieves a category by name
func (m *MockCategoryRepository) GetByName(ctx context.Context, name string) (*domain.Category, error) {
	for _, c := range m.Categories {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, domain.ErrCategoryNotFound
}

// GetAll retrieves all categories ordered by name
func (m *MockCategoryRepository) GetAll(ctx context.Context) ([]*domain.Category, error) {
	return m.filter(func(*domain.Category) bool { return true }), nil
}

// GetBySystemFlag retrieves system or custom categories ordered by name
func (m *MockCategoryRepository) GetBySystemFlag(ctx context.Context, isSystem bool) ([]*domain.Category, error) {
	return m.filter(func(c *domain.Category) bool { return c.IsSystem == isSystem }), nil
}

// Update updates an existing category
func (m *MockCategoryRepository) Update(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	existing, ok := m.Categories[category.ID]
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	for _, c := range m.Categories {
		if c.ID != category.ID && c.Name == category.Name {
			return nil, domain.ErrCategoryNameTaken
		}
	}
	category.IsSystem = existing.IsSystem
	m.Categories[category.ID] = category
	return category, nil
}

// Delete deletes a category
func (m *MockCategoryRepository) Delete(ctx context.Context, id int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(id)
	}
	if _, ok := m.Categories[id]; !ok {
		return domain.ErrCategoryNotFound
	}
	if m.InUse[id] {
		return domain.ErrCategoryInUse
	}
	delete(m.Categories, id)
	return nil
}

// ExistsByName checks whether a category name is taken
func (m *MockCategoryRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	_, err := m.GetByName(ctx, name)
	return err == nil, nil
}

// Count returns the number of categories
func (m *MockCategoryRepository) Count(ctx context.Context) (int64, error) {
	return int64(len(m.Categories)), nil
}

// AddCategory adds a category to the mock repository (helper for tests)
func (m *MockCategoryRepository) AddCategory(category *domain.Category) {
	m.Categories[category.ID] = category
	if category.ID >= m.NextID {
		m.NextID = category.ID + 1
	}
}

func (m *MockCategoryRepository) filter(keep func(*domain.Category) bool) []*domain.Category {
	result := make([]*domain.Category, 0)
	for _, c := range m.Categories {
		if keep(c) {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// MockTransactionRepository is a mock implementation of domain.TransactionRepository.
// Users and Categories, when set, are used to populate the embedded refs.
type MockTransactionRepository struct {
	Transactions map[int64]*domain.Transaction
	NextID       int64
	Users        *MockUserRepository
	Categories   *MockCategoryRepository
	Now          func() time.Time
	CreateFn     func(transaction *domain.Transaction) (*domain.Transaction, error)
	ListFn       func(userID int64, filter domain.TransactionFilter, page domain.PageRequest) ([]*domain.Transaction, int64, error)
}

// NewMockTransactionRepository creates a new MockTransactionRepository
func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		Transactions: make(map[int64]*domain.Transaction),
		NextID:       1,
		Now:          time.Now,
	}
}

// Create creates a new transaction
func (m *MockTransactionRepository) Create(ctx context.Context, transaction *domain.Transaction) (*domain.Transaction, error) {
	if m.CreateFn != nil {
		return m.CreateFn(transaction)
	}
	transaction.ID = m.NextID
	m.NextID++
	transaction.CreatedAt = m.Now()
	transaction.UpdatedAt = nil
	m.populate(transaction)
	m.Transactions[transaction.ID] = transaction
	return transaction, nil
}

// GetByID retrieves a transaction owned by userID
func (m *MockTransactionRepository) GetByID(ctx context.Context, userID, id int64) (*domain.Transaction, error) {
	if t, ok := m.Transactions[id]; ok && t.UserID == userID {
		return t, nil
	}
	return nil, domain.ErrTransactionNotFound
}

// Update updates an existing transaction
func (m *MockTransactionRepository) Update(ctx context.Context, transaction *domain.Transaction) (*domain.Transaction, error) {
	existing, ok := m.Transactions[transaction.ID]
	if !ok || existing.UserID != transaction.UserID {
		return nil, domain.ErrTransactionNotFound
	}
	now := m.Now()
	transaction.CreatedAt = existing.CreatedAt
	transaction.UpdatedAt = &now
	m.populate(transaction)
	m.Transactions[transaction.ID] = transaction
	return transaction, nil
}

// Delete deletes a transaction owned by userID
func (m *MockTransactionRepository) Delete(ctx context.Context, userID, id int64) error {
	if t, ok := m.Transactions[id]; !ok || t.UserID != userID {
		return domain.ErrTransactionNotFound
	}
	delete(m.Transactions, id)
	return nil
}

// List filters, orders and pages a user's transactions
func (m *MockTransactionRepository) List(ctx context.Context, userID int64, filter domain.TransactionFilter, page domain.PageRequest) ([]*domain.Transaction, int64, error) {
	if m.ListFn != nil {
		return m.ListFn(userID, filter, page)
	}
	matched := m.match(func(t *domain.Transaction) bool {
		if t.UserID != userID {
			return false
		}
		if filter.CategoryID != nil && t.CategoryID != *filter.CategoryID {
			return false
		}
		if filter.StartDate != nil && t.TransactionDate.Before(*filter.StartDate) {
			return false
		}
		if filter.EndDate != nil && t.TransactionDate.After(*filter.EndDate) {
			return false
		}
		if filter.Type != nil && t.Type != *filter.Type {
			return false
		}
		return true
	})

	less := transactionLess(page.SortBy)
	sort.SliceStable(matched, func(i, j int) bool {
		if page.SortDirection == domain.SortAsc {
			return less(matched[i], matched[j])
		}
		return less(matched[j], matched[i])
	})

	total := int64(len(matched))
	start := page.Page * page.Size
	if start >= len(matched) {
		return []*domain.Transaction{}, total, nil
	}
	end := start + page.Size
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

// GetRecent returns the newest transactions of a user
func (m *MockTransactionRepository) GetRecent(ctx context.Context, userID int64, limit int) ([]*domain.Transaction, error) {
	matched := m.match(func(t *domain.Transaction) bool { return t.UserID == userID })
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.TransactionDate.Equal(b.TransactionDate) {
			return a.TransactionDate.After(b.TransactionDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// GetByDateRange returns a user's transactions in the inclusive range, newest first
func (m *MockTransactionRepository) GetByDateRange(ctx context.Context, userID int64, startDate, endDate time.Time) ([]*domain.Transaction, error) {
	matched := m.match(func(t *domain.Transaction) bool {
		return t.UserID == userID && inRange(t.TransactionDate, startDate, endDate)
	})
	less := transactionLess("transactionDate")
	sort.SliceStable(matched, func(i, j int) bool { return less(matched[j], matched[i]) })
	return matched, nil
}

// SumByType totals a user's transactions of one type within the range
func (m *MockTransactionRepository) SumByType(ctx context.Context, userID int64, txType domain.TransactionType, startDate, endDate time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, t := range m.Transactions {
		if t.UserID == userID && t.Type == txType && inRange(t.TransactionDate, startDate, endDate) {
			total = total.Add(t.Amount)
		}
	}
	return total, nil
}

// SumByCategory totals a user's transactions of one type and category within the range
func (m *MockTransactionRepository) SumByCategory(ctx context.Context, userID, categoryID int64, txType domain.TransactionType, startDate, endDate time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, t := range m.Transactions {
		if t.UserID == userID && t.CategoryID == categoryID && t.Type == txType && inRange(t.TransactionDate, startDate, endDate) {
			total = total.Add(t.Amount)
		}
	}
	return total, nil
}

// GetCategoryBreakdown groups totals by category, largest first
func (m *MockTransactionRepository) GetCategoryBreakdown(ctx context.Context, userID int64, txType domain.TransactionType, startDate, endDate time.Time) ([]*domain.CategorySpending, error) {
	byCategory := make(map[int64]*domain.CategorySpending)
	for _, t := range m.Transactions {
		if t.UserID != userID || t.Type != txType || !inRange(t.TransactionDate, startDate, endDate) {
			continue
		}
		s, ok := byCategory[t.CategoryID]
		if !ok {
			s = &domain.CategorySpending{CategoryID: t.CategoryID, CategoryName: t.Category.Name, Total: decimal.Zero}
			byCategory[t.CategoryID] = s
		}
		s.Total = s.Total.Add(t.Amount)
	}
	breakdown := make([]*domain.CategorySpending, 0, len(byCategory))
	for _, s := range byCategory {
		breakdown = append(breakdown, s)
	}
	sort.Slice(breakdown, func(i, j int) bool {
		if !breakdown[i].Total.Equal(breakdown[j].Total) {
			return breakdown[i].Total.GreaterThan(breakdown[j].Total)
		}
		return breakdown[i].CategoryName < breakdown[j].CategoryName
	})
	return breakdown, nil
}

// CountByCategory counts transactions referencing a category
func (m *MockTransactionRepository) CountByCategory(ctx context.Context, categoryID int64) (int64, error) {
	var count int64
	for _, t := range m.Transactions {
		if t.CategoryID == categoryID {
			count++
		}
	}
	return count, nil
}

// AddTransaction adds a transaction to the mock repository (helper for tests)
func (m *MockTransactionRepository) AddTransaction(transaction *domain.Transaction) {
	m.populate(transaction)
	m.Transactions[transaction.ID] = transaction
	if transaction.ID >= m.NextID {
		m.NextID = transaction.ID + 1
	}
}

func (m *MockTransactionRepository) populate(t *domain.Transaction) {
	t.User.ID = t.UserID
	t.Category.ID = t.CategoryID
	if m.Users != nil {
		if u, ok := m.Users.Users[t.UserID]; ok {
			t.User.Username = u.Username
		}
	}
	if m.Categories != nil {
		if c, ok := m.Categories.Categories[t.CategoryID]; ok {
			t.Category.Name = c.Name
			t.Category.Icon = c.Icon
			t.Category.Color = c.Color
		}
	}
}

func (m *MockTransactionRepository) match(keep func(*domain.Transaction) bool) []*domain.Transaction {
	result := make([]*domain.Transaction, 0)
	for _, t := range m.Transactions {
		if keep(t) {
			result = append(result, t)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// transactionLess orders ascending by the sort field with ID as tie-break
func transactionLess(sortBy string) func(a, b *domain.Transaction) bool {
	return func(a, b *domain.Transaction) bool {
		var c int
		switch sortBy {
		case "amount":
			c = a.Amount.Cmp(b.Amount)
		case "description":
			c = strings.Compare(derefString(a.Description), derefString(b.Description))
		case "type":
			c = strings.Compare(string(a.Type), string(b.Type))
		case "createdAt":
			c = a.CreatedAt.Compare(b.CreatedAt)
		case "id":
			c = 0
		default:
			c = a.TransactionDate.Compare(b.TransactionDate)
		}
		if c != 0 {
			return c < 0
		}
		return a.ID < b.ID
	}
}

func inRange(date, start, end time.Time) bool {
	return !date.Before(start) && !date.After(end)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// MockBudgetRepository is a mock implementation of domain.BudgetRepository
type MockBudgetRepository struct {
	Budgets    map[int64]*domain.Budget
	NextID     int64
	Users      *MockUserRepository
	Categories *MockCategoryRepository
	// CreateFn overrides Create, e.g. to simulate losing an insert race
	CreateFn func(budget *domain.Budget) (*domain.Budget, error)
}

// NewMockBudgetRepository creates a new MockBudgetRepository
func NewMockBudgetRepository() *MockBudgetRepository {
	return &MockBudgetRepository{
		Budgets: make(map[int64]*domain.Budget),
		NextID:  1,
	}
}

// Create creates a budget unless its key is taken
func (m *MockBudgetRepository) Create(ctx context.Context, budget *domain.Budget) (*domain.Budget, error) {
	if m.CreateFn != nil {
		return m.CreateFn(budget)
	}
	if _, err := m.GetByKey(ctx, keyOf(budget)); err == nil {
		return nil, domain.ErrBudgetAlreadyExists
	}
	budget.ID = m.NextID
	m.NextID++
	m.populate(budget)
	m.Budgets[budget.ID] = budget
	return budget, nil
}

// GetByID retrieves a budget owned by userID
func (m *MockBudgetRepository) GetByID(ctx context.Context, userID, id int64) (*domain.Budget, error) {
	if b, ok := m.Budgets[id]; ok && b.UserID == userID {
		return b, nil
	}
	return nil, domain.ErrBudgetNotFound
}

// GetByKey retrieves the budget for a user, category and month
func (m *MockBudgetRepository) GetByKey(ctx context.Context, key domain.BudgetKey) (*domain.Budget, error) {
	for _, b := range m.Budgets {
		if keyOf(b) == key {
			return b, nil
		}
	}
	return nil, domain.ErrBudgetNotFound
}

// GetByUser retrieves a user's budgets, newest period first
func (m *MockBudgetRepository) GetByUser(ctx context.Context, userID int64) ([]*domain.Budget, error) {
	result := m.match(func(b *domain.Budget) bool { return b.UserID == userID })
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Year != result[j].Year {
			return result[i].Year > result[j].Year
		}
		return result[i].Month > result[j].Month
	})
	return result, nil
}

// GetByUserAndPeriod retrieves a user's budgets for one month
func (m *MockBudgetRepository) GetByUserAndPeriod(ctx context.Context, userID int64, month, year int) ([]*domain.Budget, error) {
	return m.match(func(b *domain.Budget) bool {
		return b.UserID == userID && b.Month == month && b.Year == year
	}), nil
}

// UpdateLimits updates amount, alert threshold and notes
func (m *MockBudgetRepository) UpdateLimits(ctx context.Context, budget *domain.Budget) (*domain.Budget, error) {
	existing, ok := m.Budgets[budget.ID]
	if !ok || existing.UserID != budget.UserID {
		return nil, domain.ErrBudgetNotFound
	}
	updated := *existing
	updated.Amount = budget.Amount
	updated.AlertThreshold = budget.AlertThreshold
	updated.Notes = budget.Notes
	m.Budgets[budget.ID] = &updated
	return &updated, nil
}

// Delete deletes a budget owned by userID
func (m *MockBudgetRepository) Delete(ctx context.Context, userID, id int64) error {
	if b, ok := m.Budgets[id]; !ok || b.UserID != userID {
		return domain.ErrBudgetNotFound
	}
	delete(m.Budgets, id)
	return nil
}

// AddBudget adds a budget to the mock repository (helper for tests)
func (m *MockBudgetRepository) AddBudget(budget *domain.Budget) {
	m.populate(budget)
	m.Budgets[budget.ID] = budget
	if budget.ID >= m.NextID {
		m.NextID = budget.ID + 1
	}
}

func (m *MockBudgetRepository) populate(b *domain.Budget) {
	b.User.ID = b.UserID
	b.Category.ID = b.CategoryID
	if m.Users != nil {
		if u, ok := m.Users.Users[b.UserID]; ok {
			b.User.Username = u.Username
		}
	}
	if m.Categories != nil {
		if c, ok := m.Categories.Categories[b.CategoryID]; ok {
			b.Category.Name = c.Name
			b.Category.Icon = c.Icon
			b.Category.Color = c.Color
		}
	}
}

func (m *MockBudgetRepository) match(keep func(*domain.Budget) bool) []*domain.Budget {
	result := make([]*domain.Budget, 0)
	for _, b := range m.Budgets {
		if keep(b) {
			result = append(result, b)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Category.Name != result[j].Category.Name {
			return result[i].Category.Name < result[j].Category.Name
		}
		return result[i].ID < result[j].ID
	})
	return result
}

func keyOf(b *domain.Budget) domain.BudgetKey {
	return domain.BudgetKey{UserID: b.UserID, CategoryID: b.CategoryID, Month: b.Month, Year: b.Year}
}

// MockStore is a mock implementation of domain.Store. It does not undo writes
// on rollback; tests assert on the Commits and Rollbacks counters instead.
type MockStore struct {
	mu           sync.Mutex
	Users        *MockUserRepository
	Categories   *MockCategoryRepository
	Transactions *MockTransactionRepository
	Budgets      *MockBudgetRepository
	Commits      int
	Rollbacks    int
}

// NewMockStore creates a MockStore with cross-linked repositories
func NewMockStore() *MockStore {
	users := NewMockUserRepository()
	categories := NewMockCategoryRepository()

	transactions := NewMockTransactionRepository()
	transactions.Users = users
	transactions.Categories = categories

	budgets := NewMockBudgetRepository()
	budgets.Users = users
	budgets.Categories = categories

	return &MockStore{
		Users:        users,
		Categories:   categories,
		Transactions: transactions,
		Budgets:      budgets,
	}
}

// WithinTx runs fn serially against the mock repositories
func (s *MockStore) WithinTx(ctx context.Context, fn func(repos domain.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := fn(domain.Repositories{
		Users:        s.Users,
		Categories:   s.Categories,
		Transactions: s.Transactions,
		Budgets:      s.Budgets,
	})
	if err != nil {
		s.Rollbacks++
		return err
	}
	s.Commits++
	return nil
}
