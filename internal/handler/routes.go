package handler

import (
	"github.com/dafibh/spendwise/spendwise-backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

// Handlers groups the handlers mounted by RegisterRoutes
type Handlers struct {
	User        *UserHandler
	Category    *CategoryHandler
	Transaction *TransactionHandler
	Budget      *BudgetHandler
	WebSocket   *WebSocketHandler
}

// RegisterRoutes sets up all API routes under prefix, which may be empty
func RegisterRoutes(e *echo.Echo, prefix string, rateLimiter *middleware.RateLimiter, h Handlers) {
	api := e.Group(prefix)
	api.Use(middleware.RateLimitMiddleware(rateLimiter))

	// User routes
	users := api.Group("/users")
	users.POST("", h.User.CreateUser)
	users.GET("", h.User.GetAllUsers)
	users.GET("/username/:username", h.User.GetUserByUsername)
	users.GET("/email/:email", h.User.GetUserByEmail)
	users.GET("/:id", h.User.GetUser)
	users.PUT("/:id", h.User.UpdateUser)
	users.DELETE("/:id", h.User.DeactivateUser)

	// Category routes
	categories := api.Group("/categories")
	categories.GET("", h.Category.GetCategories)
	categories.POST("", h.Category.CreateCategory)
	categories.GET("/system", h.Category.GetSystemCategories)
	categories.GET("/custom", h.Category.GetCustomCategories)
	categories.GET("/:id", h.Category.GetCategory)
	categories.PUT("/:id", h.Category.UpdateCategory)
	categories.DELETE("/:id", h.Category.DeleteCategory)

	// Transaction routes
	transactions := users.Group("/:userId/transactions")
	transactions.GET("", h.Transaction.GetTransactions)
	transactions.POST("", h.Transaction.CreateTransaction)
	transactions.GET("/recent", h.Transaction.GetRecentTransactions)
	transactions.GET("/summary/monthly", h.Transaction.GetMonthlySummary)
	transactions.GET("/summary/yearly", h.Transaction.GetYearlySummary)
	transactions.GET("/summary/total", h.Transaction.GetTotalByType)
	transactions.GET("/summary/breakdown", h.Transaction.GetCategoryBreakdown)
	transactions.GET("/spending/category/:categoryId", h.Transaction.GetCategorySpending)
	transactions.GET("/export", h.Transaction.ExportTransactions)
	transactions.GET("/:id", h.Transaction.GetTransaction)
	transactions.PUT("/:id", h.Transaction.UpdateTransaction)
	transactions.DELETE("/:id", h.Transaction.DeleteTransaction)

	// Budget routes
	budgets := users.Group("/:userId/budgets")
	budgets.GET("", h.Budget.GetBudgets)
	budgets.POST("", h.Budget.CreateOrUpdateBudget)
	budgets.GET("/monthly", h.Budget.GetMonthlyBudgets)
	budgets.GET("/alerts", h.Budget.GetBudgetAlerts)
	budgets.GET("/category/:categoryId/status", h.Budget.GetBudgetStatus)
	budgets.GET("/:id", h.Budget.GetBudget)
	budgets.PUT("/:id", h.Budget.UpdateBudget)
	budgets.DELETE("/:id", h.Budget.DeleteBudget)

	// Live events
	users.GET("/:userId/ws", h.WebSocket.HandleWS)
}
