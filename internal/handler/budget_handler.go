package handler

import (
	"net/http"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// BudgetHandler handles budget-related HTTP requests
type BudgetHandler struct {
	budgetService *service.BudgetService
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(budgetService *service.BudgetService) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService}
}

// BudgetRequest represents the create/update budget request body.
// AlertThreshold defaults to 80 when omitted.
type BudgetRequest struct {
	CategoryID     *int64          `json:"categoryId" validate:"required"`
	Amount         decimal.Decimal `json:"amount" swaggertype:"string" example:"12.50"`
	Month          int             `json:"month" validate:"required,min=1,max=12"`
	Year           int             `json:"year" validate:"required,min=2020"`
	AlertThreshold *int            `json:"alertThreshold,omitempty" validate:"omitempty,min=1,max=100"`
	Notes          *string         `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// BudgetResponse represents a budget in API responses
type BudgetResponse struct {
	ID             int64           `json:"id"`
	Amount         string          `json:"amount"`
	Month          int             `json:"month"`
	Year           int             `json:"year"`
	AlertThreshold int             `json:"alertThreshold"`
	Notes          *string         `json:"notes,omitempty"`
	PeriodStart    string          `json:"periodStart"`
	PeriodEnd      string          `json:"periodEnd"`
	User           UserSummary     `json:"user"`
	Category       CategorySummary `json:"category"`
}

// BudgetStatusResponse represents a budget evaluated against its spending
type BudgetStatusResponse struct {
	Budget       BudgetResponse `json:"budget"`
	Spent        string         `json:"spent"`
	Remaining    string         `json:"remaining"`
	Percentage   string         `json:"percentage"`
	IsOverBudget bool           `json:"isOverBudget"`
	IsNearLimit  bool           `json:"isNearLimit"`
}

// BudgetAlertResponse represents a budget at or above its alert threshold
type BudgetAlertResponse struct {
	BudgetID     int64  `json:"budgetId"`
	CategoryID   int64  `json:"categoryId"`
	Category     string `json:"category"`
	BudgetAmount string `json:"budgetAmount"`
	Spent        string `json:"spent"`
	Percentage   string `json:"percentage"`
	Message      string `json:"message"`
	Severity     string `json:"severity"`
}

// CreateOrUpdateBudget godoc
// @Summary Create or update a budget
// @Description Store the budget for a category and month, updating the existing one for that period
// @Tags budgets
// @Accept json
// @Produce json
// @Param userId path int true "User ID"
// @Param request body BudgetRequest true "Budget details"
// @Success 201 {object} BudgetResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /users/{userId}/budgets [post]
func (h *BudgetHandler) CreateOrUpdateBudget(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return respondError(c, err, "Failed to save budget")
	}

	var req BudgetRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err, "Failed to save budget")
	}

	budget, err := h.budgetService.CreateOrUpdateBudget(c.Request().Context(), userID, req.toInput())
	if err != nil {
		return respondError(c, err, "Failed to save budget")
	}

	log.Info().
		Int64("user_id", userID).
		Int64("budget_id", budget.ID).
		Int64("category_id", budget.CategoryID).
		Msg("Budget saved")
	return c.JSON(http.StatusCreated, toBudgetResponse(budget))
}

// GetBudgets godoc
// @Summary List budgets
// @Tags budgets
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {array} BudgetResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /users/{userId}/budgets [get]
func (h *BudgetHandler) GetBudgets(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return respondError(c, err, "Failed to get budgets")
	}

	budgets, err := h.budgetService.GetUserBudgets(c.Request().Context(), userID)
	if err != nil {
		return respondError(c, err, "Failed to get budgets")
	}

	response := make([]BudgetResponse, len(budgets))
	for i, budget := range budgets {
		response[i] = toBudgetResponse(budget)
	}
	return c.JSON(http.StatusOK, response)
}

// GetBudget godoc
// @Summary Get a budget
// @Tags budgets
// @Produce json
// @Param userId path int true "User ID"
// @Param id path int true "Budget ID"
// @Success 200 {object} BudgetResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /users/{userId}/budgets/{id} [get]
func (h *BudgetHandler) GetBudget(c echo.Context) error {
	userID, id, err := userAndID(c)
	if err != nil {
		return respondError(c, err, "Failed to get budget")
	}

	budget, err := h.budgetService.GetBudget(c.Request().Context(), userID, id)
	if err != nil {
		return respondError(c, err, "Failed to get budget")
	}
	return c.JSON(http.StatusOK, toBudgetResponse(budget))
}

// GetMonthlyBudgets godoc
// @Summary List budget statuses for a month
// @Tags budgets
// @Produce json
// @Param userId path int true "User ID"
// @Param month query int true "Month (1-12)"
// @Param year query int true "Year"
// @Success 200 {array} BudgetStatusResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /users/{userId}/budgets/monthly [get]
func (h *BudgetHandler) GetMonthlyBudgets(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return respondError(c, err, "Failed to get monthly budgets")
	}
	month, err := requireQueryInt(c, "month")
	if err != nil {
		return respondError(c, err, "Failed to get monthly budgets")
	}
	year, err := requireQueryInt(c, "year")
	if err != nil {
		return respondError(c, err, "Failed to get monthly budgets")
	}

	statuses, err := h.budgetService.GetMonthlyBudgetsWithStatus(c.Request().Context(), userID, month, year)
	if err != nil {
		return respondError(c, err, "Failed to get monthly budgets")
	}

	response := make([]BudgetStatusResponse, len(statuses))
	for i, status := range statuses {
		response[i] = toBudgetStatusResponse(status)
	}
	return c.JSON(http.StatusOK, response)
}

// GetBudgetStatus godoc
// @Summary Get a budget status
// @Tags budgets
// @Produce json
// @Param userId path int true "User ID"
// @Param categoryId path int true "Category ID"
// @Param month query int true "Month (1-12)"
// @Param year query int true "Year"
// @Success 200 {object} BudgetStatusResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /users/{userId}/budgets/category/{categoryId}/status [get]
func (h *BudgetHandler) GetBudgetStatus(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return respondError(c, err, "Failed to get budget status")
	}
	categoryID, err := pathID(c, "categoryId")
	if err != nil {
		return respondError(c, err, "Failed to get budget status")
	}
	month, err := requireQueryInt(c, "month")
	if err != nil {
		return respondError(c, err, "Failed to get budget status")
	}
	year, err := requireQueryInt(c, "year")
	if err != nil {
		return respondError(c, err, "Failed to get budget status")
	}

	status, err := h.budgetService.GetBudgetStatus(c.Request().Context(), userID, categoryID, month, year)
	if err != nil {
		return respondError(c, err, "Failed to get budget status")
	}
	return c.JSON(http.StatusOK, toBudgetStatusResponse(status))
}

// UpdateBudget godoc
// @Summary Update a budget
// @Tags budgets
// @Accept json
// @Produce json
// @Param userId path int true "User ID"
// @Param id path int true "Budget ID"
// @Param request body BudgetRequest true "Budget details"
// @Success 200 {object} BudgetResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /users/{userId}/budgets/{id} [put]
func (h *BudgetHandler) UpdateBudget(c echo.Context) error {
	userID, id, err := userAndID(c)
	if err != nil {
		return respondError(c, err, "Failed to update budget")
	}

	var req BudgetRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err, "Failed to update budget")
	}

	budget, err := h.budgetService.UpdateBudget(c.Request().Context(), userID, id, req.toInput())
	if err != nil {
		return respondError(c, err, "Failed to update budget")
	}

	log.Info().Int64("user_id", userID).Int64("budget_id", budget.ID).Msg("Budget updated")
	return c.JSON(http.StatusOK, toBudgetResponse(budget))
}

// DeleteBudget godoc
// @Summary Delete a budget
// @Tags budgets
// @Produce json
// @Param userId path int true "User ID"
// @Param id path int true "Budget ID"
// @Success 204 "No Content"
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /users/{userId}/budgets/{id} [delete]
func (h *BudgetHandler) DeleteBudget(c echo.Context) error {
	userID, id, err := userAndID(c)
	if err != nil {
		return respondError(c, err, "Failed to delete budget")
	}

	if err := h.budgetService.DeleteBudget(c.Request().Context(), userID, id); err != nil {
		return respondError(c, err, "Failed to delete budget")
	}

	log.Info().Int64("user_id", userID).Int64("budget_id", id).Msg("Budget deleted")
	return c.NoContent(http.StatusNoContent)
}

// GetBudgetAlerts godoc
// @Summary List budget alerts
// @Description Get the current month's budgets at or above their alert threshold
// @Tags budgets
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {array} BudgetAlertResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /users/{userId}/budgets/alerts [get]
func (h *BudgetHandler) GetBudgetAlerts(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return respondError(c, err, "Failed to get budget alerts")
	}

	alerts, err := h.budgetService.GetBudgetAlerts(c.Request().Context(), userID)
	if err != nil {
		return respondError(c, err, "Failed to get budget alerts")
	}

	response := make([]BudgetAlertResponse, len(alerts))
	for i, alert := range alerts {
		response[i] = BudgetAlertResponse{
			BudgetID:     alert.BudgetID,
			CategoryID:   alert.CategoryID,
			Category:     alert.Category,
			BudgetAmount: formatMoney(alert.BudgetAmount),
			Spent:        formatMoney(alert.Spent),
			Percentage:   formatMoney(alert.Percentage),
			Message:      alert.Message,
			Severity:     string(alert.Severity),
		}
	}
	return c.JSON(http.StatusOK, response)
}

func (r BudgetRequest) toInput() service.BudgetInput {
	input := service.BudgetInput{
		Amount:         r.Amount,
		Month:          r.Month,
		Year:           r.Year,
		AlertThreshold: r.AlertThreshold,
		Notes:          r.Notes,
	}
	if r.CategoryID != nil {
		input.CategoryID = *r.CategoryID
	}
	return input
}

func toBudgetResponse(b *domain.Budget) BudgetResponse {
	return BudgetResponse{
		ID:             b.ID,
		Amount:         formatMoney(b.Amount),
		Month:          b.Month,
		Year:           b.Year,
		AlertThreshold: b.AlertThreshold,
		Notes:          b.Notes,
		PeriodStart:    formatDate(b.PeriodStart()),
		PeriodEnd:      formatDate(b.PeriodEnd()),
		User:           toUserSummary(b.User),
		Category:       toCategorySummary(b.Category),
	}
}

func toBudgetStatusResponse(s *domain.BudgetStatus) BudgetStatusResponse {
	return BudgetStatusResponse{
		Budget:       toBudgetResponse(s.Budget),
		Spent:        formatMoney(s.Spent),
		Remaining:    formatMoney(s.Remaining),
		Percentage:   formatMoney(s.Percentage),
		IsOverBudget: s.IsOverBudget,
		IsNearLimit:  s.IsNearLimit,
	}
}
