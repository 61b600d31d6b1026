package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/export"
	"github.com/dafibh/spendwise/spendwise-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// TransactionHandler handles transaction-related HTTP requests
type TransactionHandler struct {
	transactionService *service.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// TransactionRequest represents the create/update transaction request body.
// Amount accepts a JSON number or string.
type TransactionRequest struct {
	CategoryID      *int64          `json:"categoryId"`
	Amount          decimal.Decimal `json:"amount" swaggertype:"string" example:"12.50"`
	Description     *string         `json:"description,omitempty" validate:"omitempty,max=500"`
	TransactionDate *string         `json:"transactionDate,omitempty"`
	Type            string          `json:"type" validate:"required"`
}

// UserSummary is the owner embedded in transaction and budget responses
type UserSummary struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// CategorySummary is the category embedded in transaction and budget responses
type CategorySummary struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Icon  *string `json:"icon,omitempty"`
	Color *string `json:"color,omitempty"`
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID              int64           `json:"id"`
	Amount          string          `json:"amount"`
	Description     *string         `json:"description,omitempty"`
	TransactionDate string          `json:"transactionDate"`
	Type            string          `json:"type"`
	User            UserSummary     `json:"user"`
	Category        CategorySummary `json:"category"`
	CreatedAt       string          `json:"createdAt"`
	UpdatedAt       *string         `json:"updatedAt,omitempty"`
}

// PaginatedTransactionsResponse represents one page of transactions
type PaginatedTransactionsResponse struct {
	Data       []TransactionResponse `json:"data"`
	Page       int                   `json:"page"`
	Size       int                   `json:"size"`
	TotalItems int64                 `json:"totalItems"`
	TotalPages int                   `json:"totalPages"`
}

// CategorySpendingResponse represents one category's total
type CategorySpendingResponse struct {
	CategoryID   int64  `json:"categoryId"`
	CategoryName string `json:"categoryName"`
	Total        string `json:"total"`
}

// MonthlySummaryResponse represents a month's income and expenses
type MonthlySummaryResponse struct {
	Month             int                        `json:"month"`
	Year              int                        `json:"year"`
	TotalIncome       string                     `json:"totalIncome"`
	TotalExpenses     string                     `json:"totalExpenses"`
	Balance           string                     `json:"balance"`
	CategoryBreakdown []CategorySpendingResponse `json:"categoryBreakdown"`
}

// YearlySummaryResponse represents a year's income and expenses
type YearlySummaryResponse struct {
	Year                  int    `json:"year"`
	TotalIncome           string `json:"totalIncome"`
	TotalExpenses         string `json:"totalExpenses"`
	Balance               string `json:"balance"`
	AverageMonthlyExpense string `json:"averageMonthlyExpense"`
}

// RangeTotalResponse represents a total over a date range
type RangeTotalResponse struct {
	CategoryID *int64 `json:"categoryId,omitempty"`
	Type       string `json:"type"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
	Total      string `json:"total"`
}

// CreateTransaction godoc
// @Summary Create a transaction
// @Description Record an income or expense for the user
// @Tags transactions
// @Accept json
// @Produce json
// @Param userId path int true "User ID"
// @Param request body TransactionRequest true "Transaction details"
// @Success 201 {object} TransactionResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /users/{userId}/transactions [post]
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return respondError(c, err, "Failed to create transaction")
	}

	var req TransactionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err, "Failed to create transaction")
	}
	if req.CategoryID == nil {
		return respondError(c, domain.ErrCategoryIDRequired, "Failed to create transaction")
	}
	txType, err := domain.ParseTransactionType(req.Type)
	if err != nil {
		return respondError(c, err, "Failed to create transaction")
	}
	date, err := parseBodyDate("transactionDate", req.TransactionDate)
	if err != nil {
		return respondError(c, err, "Failed to create transaction")
	}

	transaction, err := h.transactionService.CreateTransaction(c.Request().Context(), userID, service.CreateTransactionInput{
		CategoryID:      *req.CategoryID,
		Amount:          req.Amount,
		Description:     req.Description,
		TransactionDate: date,
		Type:            txType,
	})
	if err != nil {
		return respondError(c, err, "Failed to create transaction")
	}

	log.Info().
		Int64("user_id", userID).
		Int64("transaction_id", transaction.ID).
		Str("type", string(transaction.Type)).
		Msg("Transaction created")
	return c.JSON(http.StatusCreated, toTransactionResponse(transaction))
}

// GetTransactions godoc
// @Summary List transactions
// @Description Get one page of the user's transactions with optional filters
// @Tags transactions
// @Produce json
// @Param userId path int true "User ID"
// @Param categoryId query int false "Filter by category ID"
// @Param startDate query string false "Start date (YYYY-MM-DD)"
// @Param endDate query string false "End date (YYYY-MM-DD)"
// @Param type query string false "Transaction type (INCOME or EXPENSE)"
// @Param page query int false "Page number, starting at 0"
// @Param size query int false "Items per page (max 100)"
// @Param sortBy query string false "Sort field"
// @Param sortDirection query string false "ASC or DESC"
// @Success 200 {object} PaginatedTransactionsResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /users/{userId}/transactions [get]
func (h *TransactionHandler) GetTransactions(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return respondError(c, err, "Failed to get transactions")
	}

	query, err := parseTransactionQuery(c)
	if err != nil {
		return respondError(c, err, "Failed to get transactions")
	}

	page, err := h.transactionService.ListTransactions(c.Request().Context(), userID, query)
	if err != nil {
		return respondError(c, err, "Failed to get transactions")
	}

	return c.JSON(http.StatusOK, PaginatedTransactionsResponse{
		Data:       toTransactionResponses(page.Data),
		Page:       page.Page,
		Size:       page.Size,
		TotalItems: page.TotalItems,
		TotalPages: page.TotalPages,
	})
}

// GetRecentTransactions godoc
// @Summary List recent transactions
// @Description Get the user's 10 newest transactions
// @Tags transactions
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {array} TransactionResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /users/{userId}/transactions/recent [get]
func (h *TransactionHandler) GetRecentTransactions(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return respondError(c, err, "Failed to get recent transactions")
	}

	transactions, err := h.transactionService.GetRecentTransactions(c.Request().Context(), userID)
	if err != nil {
		return respondError(c, err, "Failed to get recent transactions")
	}
	return c.JSON(http.StatusOK, toTransactionResponses(transactions))
}

// GetTransaction godoc
// @Summary Get a transaction
// @Tags transactions
// @Produce json
// @Param userId path int true "User ID"
// @Param id path int true "Transaction ID"
// @Success 200 {object} TransactionResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /users/{userId}/transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c echo.Context) error {
	userID, id, err := userAndID(c)
	if err != nil {
		return respondError(c, err, "Failed to get transaction")
	}

	transaction, err := h.transactionService.GetTransaction(c.Request().Context(), userID, id)
	if err != nil {
		return respondError(c, err, "Failed to get transaction")
	}
	return c.JSON(http.StatusOK, toTransactionResponse(transaction))
}

// UpdateTransaction godoc
// @Summary Update a transaction
// @Tags transactions
// @Accept json
// @Produce json
// @Param userId path int true "User ID"
// @Param id path int true "Transaction ID"
// @Param request body TransactionRequest true "Transaction details"
// @Success 200 {object} TransactionResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /users/{userId}/transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c echo.Context) error {
	userID, id, err := userAndID(c)
	if err != nil {
		return respondError(c, err, "Failed to update transaction")
	}

	var req TransactionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err, "Failed to update transaction")
	}
	txType, err := domain.ParseTransactionType(req.Type)
	if err != nil {
		return respondError(c, err, "Failed to update transaction")
	}
	date, err := parseBodyDate("transactionDate", req.TransactionDate)
	if err != nil {
		return respondError(c, err, "Failed to update transaction")
	}

	transaction, err := h.transactionService.UpdateTransaction(c.Request().Context(), userID, id, service.UpdateTransactionInput{
		CategoryID:      req.CategoryID,
		Amount:          req.Amount,
		Description:     req.Description,
		TransactionDate: date,
		Type:            txType,
	})
	if err != nil {
		return respondError(c, err, "Failed to update transaction")
	}

	log.Info().Int64("user_id", userID).Int64("transaction_id", id).Msg("Transaction updated")
	return c.JSON(http.StatusOK, toTransactionResponse(transaction))
}

// DeleteTransaction godoc
// @Summary Delete a transaction
// @Tags transactions
// @Produce json
// @Param userId path int true "User ID"
// @Param id path int true "Transaction ID"
// @Success 204 "No Content"
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /users/{userId}/transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c echo.Context) error {
	userID, id, err := userAndID(c)
	if err != nil {
		return respondError(c, err, "Failed to delete transaction")
	}

	if err := h.transactionService.DeleteTransaction(c.Request().Context(), userID, id); err != nil {
		return respondError(c, err, "Failed to delete transaction")
	}

	log.Info().Int64("user_id", userID).Int64("transaction_id", id).Msg("Transaction deleted")
	return c.NoContent(http.StatusNoContent)
}

// GetMonthlySummary godoc
// @Summary Get a monthly summary
// @Tags transactions
// @Produce json
// @Param userId path int true "User ID"
// @Param month query int true "Month (1-12)"
// @Param year query int true "Year"
// @Success 200 {object} MonthlySummaryResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /users/{userId}/transactions/summary/monthly [get]
func (h *TransactionHandler) GetMonthlySummary(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return respondError(c, err, "Failed to get monthly summary")
	}
	month, err := requireQueryInt(c, "month")
	if err != nil {
		return respondError(c, err, "Failed to get monthly summary")
	}
	year, err := requireQueryInt(c, "year")
	if err != nil {
		return respondError(c, err, "Failed to get monthly summary")
	}

	summary, err := h.transactionService.GetMonthlySummary(c.Request().Context(), userID, month, year)
	if err != nil {
		return respondError(c, err, "Failed to get monthly summary")
	}

	return c.JSON(http.StatusOK, MonthlySummaryResponse{
		Month:             summary.Month,
		Year:              summary.Year,
		TotalIncome:       formatMoney(summary.TotalIncome),
		TotalExpenses:     formatMoney(summary.TotalExpenses),
		Balance:           formatMoney(summary.Balance),
		CategoryBreakdown: toCategorySpendingResponses(summary.CategoryBreakdown),
	})
}

// GetYearlySummary godoc
// @Summary Get a yearly summary
// @Tags transactions
// @Produce json
// @Param userId path int true "User ID"
// @Param year query int true "Year"
// @Success 200 {object} YearlySummaryResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /users/{userId}/transactions/summary/yearly [get]
func (h *TransactionHandler) GetYearlySummary(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return respondError(c, err, "Failed to get yearly summary")
	}
	year, err := requireQueryInt(c, "year")
	if err != nil {
		return respondError(c, err, "Failed to get yearly summary")
	}

	summary, err := h.transactionService.GetYearlySummary(c.Request().Context(), userID, year)
	if err != nil {
		return respondError(c, err, "Failed to get yearly summary")
	}

	return c.JSON(http.StatusOK, YearlySummaryResponse{
		Year:                  summary.Year,
		TotalIncome:           formatMoney(summary.TotalIncome),
		TotalExpenses:         formatMoney(summary.TotalExpenses),
		Balance:               formatMoney(summary.Balance),
		AverageMonthlyExpense: formatMoney(summary.AverageMonthlyExpense),
	})
}

// GetTotalByType godoc
// @Summary Get the total of one type
// @Tags transactions
// @Produce json
// @Param userId path int true "User ID"
// @Param type query string true "Transaction type (INCOME or EXPENSE)"
// @Param startDate query string true "Start date (YYYY-MM-DD)"
// @Param endDate query string true "End date (YYYY-MM-DD)"
// @Success 200 {object} RangeTotalResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /users/{userId}/transactions/summary/total [get]
func (h *TransactionHandler) GetTotalByType(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return respondError(c, err, "Failed to get total")
	}
	txType, err := domain.ParseTransactionType(c.QueryParam("type"))
	if err != nil {
		return respondError(c, err, "Failed to get total")
	}
	start, end, err := requireDateRange(c)
	if err != nil {
		return respondError(c, err, "Failed to get total")
	}

	total, err := h.transactionService.GetTotalByTypeAndRange(c.Request().Context(), userID, txType, start, end)
	if err != nil {
		return respondError(c, err, "Failed to get total")
	}

	return c.JSON(http.StatusOK, RangeTotalResponse{
		Type:      string(txType),
		StartDate: formatDate(start),
		EndDate:   formatDate(end),
		Total:     formatMoney(total),
	})
}

// GetCategoryBreakdown godoc
// @Summary Get totals per category
// @Tags transactions
// @Produce json
// @Param userId path int true "User ID"
// @Param startDate query string true "Start date (YYYY-MM-DD)"
// @Param endDate query string true "End date (YYYY-MM-DD)"
// @Param type query string false "Transaction type, EXPENSE when omitted"
// @Success 200 {array} CategorySpendingResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /users/{userId}/transactions/summary/breakdown [get]
func (h *TransactionHandler) GetCategoryBreakdown(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return respondError(c, err, "Failed to get category breakdown")
	}
	txType := domain.TransactionTypeExpense
	if raw := c.QueryParam("type"); raw != "" {
		if txType, err = domain.ParseTransactionType(raw); err != nil {
			return respondError(c, err, "Failed to get category breakdown")
		}
	}
	start, end, err := requireDateRange(c)
	if err != nil {
		return respondError(c, err, "Failed to get category breakdown")
	}

	breakdown, err := h.transactionService.GetCategoryBreakdown(c.Request().Context(), userID, txType, start, end)
	if err != nil {
		return respondError(c, err, "Failed to get category breakdown")
	}
	return c.JSON(http.StatusOK, toCategorySpendingResponses(breakdown))
}

// GetCategorySpending godoc
// @Summary Get spending in a category
// @Tags transactions
// @Produce json
// @Param userId path int true "User ID"
// @Param categoryId path int true "Category ID"
// @Param startDate query string true "Start date (YYYY-MM-DD)"
// @Param endDate query string true "End date (YYYY-MM-DD)"
// @Success 200 {object} RangeTotalResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /users/{userId}/transactions/spending/category/{categoryId} [get]
func (h *TransactionHandler) GetCategorySpending(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return respondError(c, err, "Failed to get category spending")
	}
	categoryID, err := pathID(c, "categoryId")
	if err != nil {
		return respondError(c, err, "Failed to get category spending")
	}
	start, end, err := requireDateRange(c)
	if err != nil {
		return respondError(c, err, "Failed to get category spending")
	}

	total, err := h.transactionService.GetCategorySpending(c.Request().Context(), userID, categoryID, start, end)
	if err != nil {
		return respondError(c, err, "Failed to get category spending")
	}

	return c.JSON(http.StatusOK, RangeTotalResponse{
		CategoryID: &categoryID,
		Type:       string(domain.TransactionTypeExpense),
		StartDate:  formatDate(start),
		EndDate:    formatDate(end),
		Total:      formatMoney(total),
	})
}

// ExportTransactions godoc
// @Summary Export transactions
// @Description Download the user's transactions in a date range as an xlsx workbook
// @Tags transactions
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param userId path int true "User ID"
// @Param startDate query string true "Start date (YYYY-MM-DD)"
// @Param endDate query string true "End date (YYYY-MM-DD)"
// @Success 200 {file} file
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /users/{userId}/transactions/export [get]
func (h *TransactionHandler) ExportTransactions(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return respondError(c, err, "Failed to export transactions")
	}
	start, end, err := requireDateRange(c)
	if err != nil {
		return respondError(c, err, "Failed to export transactions")
	}

	transactions, err := h.transactionService.ExportTransactions(c.Request().Context(), userID, start, end)
	if err != nil {
		return respondError(c, err, "Failed to export transactions")
	}

	var buf bytes.Buffer
	if err := export.WriteTransactions(&buf, transactions); err != nil {
		return respondError(c, err, "Failed to export transactions")
	}

	log.Info().Int64("user_id", userID).Int("rows", len(transactions)).Msg("Transactions exported")
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", export.Filename(start, end)))
	return c.Blob(http.StatusOK, export.ContentType, buf.Bytes())
}

func parseTransactionQuery(c echo.Context) (service.TransactionQuery, error) {
	var query service.TransactionQuery
	var err error

	if query.CategoryID, err = queryID(c, "categoryId"); err != nil {
		return query, err
	}
	if query.StartDate, err = queryDate(c, "startDate"); err != nil {
		return query, err
	}
	if query.EndDate, err = queryDate(c, "endDate"); err != nil {
		return query, err
	}
	if query.Page, err = queryInt(c, "page"); err != nil {
		return query, err
	}
	if query.Size, err = queryInt(c, "size"); err != nil {
		return query, err
	}
	query.Type = c.QueryParam("type")
	query.SortBy = c.QueryParam("sortBy")
	query.SortDirection = c.QueryParam("sortDirection")
	return query, nil
}

// userAndID parses the owning user and the resource id from the path
func userAndID(c echo.Context) (int64, int64, error) {
	userID, err := pathID(c, "userId")
	if err != nil {
		return 0, 0, err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return 0, 0, err
	}
	return userID, id, nil
}

func toTransactionResponse(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:              t.ID,
		Amount:          formatMoney(t.Amount),
		Description:     t.Description,
		TransactionDate: formatDate(t.TransactionDate),
		Type:            string(t.Type),
		User:            toUserSummary(t.User),
		Category:        toCategorySummary(t.Category),
		CreatedAt:       formatTimestamp(t.CreatedAt),
		UpdatedAt:       formatTimestampPtr(t.UpdatedAt),
	}
}

func toTransactionResponses(transactions []*domain.Transaction) []TransactionResponse {
	response := make([]TransactionResponse, len(transactions))
	for i, t := range transactions {
		response[i] = toTransactionResponse(t)
	}
	return response
}

func toCategorySpendingResponses(breakdown []*domain.CategorySpending) []CategorySpendingResponse {
	response := make([]CategorySpendingResponse, len(breakdown))
	for i, row := range breakdown {
		response[i] = CategorySpendingResponse{
			CategoryID:   row.CategoryID,
			CategoryName: row.CategoryName,
			Total:        formatMoney(row.Total),
		}
	}
	return response
}

func toUserSummary(u domain.UserRef) UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username}
}

func toCategorySummary(c domain.CategoryRef) CategorySummary {
	return CategorySummary{ID: c.ID, Name: c.Name, Icon: c.Icon, Color: c.Color}
}
