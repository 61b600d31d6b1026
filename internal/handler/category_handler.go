package handler

import (
	"net/http"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// CategoryHandler handles category-related HTTP requests
type CategoryHandler struct {
	categoryService *service.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// CategoryRequest represents the create/update category request body
type CategoryRequest struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	Icon        *string `json:"icon,omitempty" validate:"omitempty,max=50"`
	Color       *string `json:"color,omitempty" validate:"omitempty,max=7"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Icon        *string `json:"icon,omitempty"`
	Color       *string `json:"color,omitempty"`
	IsSystem    bool    `json:"isSystem"`
}

// GetCategories godoc
// @Summary List categories
// @Description Get all categories ordered by name
// @Tags categories
// @Produce json
// @Success 200 {array} CategoryResponse
// @Failure 500 {object} ProblemDetails
// @Router /categories [get]
func (h *CategoryHandler) GetCategories(c echo.Context) error {
	categories, err := h.categoryService.GetAllCategories(c.Request().Context())
	if err != nil {
		return respondError(c, err, "Failed to get categories")
	}
	return c.JSON(http.StatusOK, toCategoryResponses(categories))
}

// GetSystemCategories godoc
// @Summary List system categories
// @Tags categories
// @Produce json
// @Success 200 {array} CategoryResponse
// @Failure 500 {object} ProblemDetails
// @Router /categories/system [get]
func (h *CategoryHandler) GetSystemCategories(c echo.Context) error {
	categories, err := h.categoryService.GetSystemCategories(c.Request().Context())
	if err != nil {
		return respondError(c, err, "Failed to get categories")
	}
	return c.JSON(http.StatusOK, toCategoryResponses(categories))
}

// GetCustomCategories godoc
// @Summary List custom categories
// @Tags categories
// @Produce json
// @Success 200 {array} CategoryResponse
// @Failure 500 {object} ProblemDetails
// @Router /categories/custom [get]
func (h *CategoryHandler) GetCustomCategories(c echo.Context) error {
	categories, err := h.categoryService.GetCustomCategories(c.Request().Context())
	if err != nil {
		return respondError(c, err, "Failed to get categories")
	}
	return c.JSON(http.StatusOK, toCategoryResponses(categories))
}

// GetCategory godoc
// @Summary Get a category
// @Tags categories
// @Produce json
// @Param id path int true "Category ID"
// @Success 200 {object} CategoryResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /categories/{id} [get]
func (h *CategoryHandler) GetCategory(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err, "Failed to get category")
	}

	category, err := h.categoryService.GetCategoryByID(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err, "Failed to get category")
	}
	return c.JSON(http.StatusOK, toCategoryResponse(category))
}

// CreateCategory godoc
// @Summary Create a category
// @Description Create a custom category
// @Tags categories
// @Accept json
// @Produce json
// @Param request body CategoryRequest true "Category details"
// @Success 201 {object} CategoryResponse
// @Failure 400 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Router /categories [post]
func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	var req CategoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err, "Failed to create category")
	}

	category, err := h.categoryService.CreateCategory(c.Request().Context(), req.toInput())
	if err != nil {
		return respondError(c, err, "Failed to create category")
	}

	log.Info().Int64("category_id", category.ID).Str("name", category.Name).Msg("Category created")
	return c.JSON(http.StatusCreated, toCategoryResponse(category))
}

// UpdateCategory godoc
// @Summary Update a category
// @Description Update a custom category. System categories cannot be modified.
// @Tags categories
// @Accept json
// @Produce json
// @Param id path int true "Category ID"
// @Param request body CategoryRequest true "Category details"
// @Success 200 {object} CategoryResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Router /categories/{id} [put]
func (h *CategoryHandler) UpdateCategory(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err, "Failed to update category")
	}

	var req CategoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err, "Failed to update category")
	}

	category, err := h.categoryService.UpdateCategory(c.Request().Context(), id, req.toInput())
	if err != nil {
		return respondError(c, err, "Failed to update category")
	}

	log.Info().Int64("category_id", category.ID).Msg("Category updated")
	return c.JSON(http.StatusOK, toCategoryResponse(category))
}

// DeleteCategory godoc
// @Summary Delete a category
// @Description Delete a custom category that no transaction uses
// @Tags categories
// @Produce json
// @Param id path int true "Category ID"
// @Success 204 "No Content"
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /categories/{id} [delete]
func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err, "Failed to delete category")
	}

	if err := h.categoryService.DeleteCategory(c.Request().Context(), id); err != nil {
		return respondError(c, err, "Failed to delete category")
	}

	log.Info().Int64("category_id", id).Msg("Category deleted")
	return c.NoContent(http.StatusNoContent)
}

func (r CategoryRequest) toInput() service.CategoryInput {
	return service.CategoryInput{
		Name:        r.Name,
		Description: r.Description,
		Icon:        r.Icon,
		Color:       r.Color,
	}
}

func toCategoryResponse(category *domain.Category) CategoryResponse {
	return CategoryResponse{
		ID:          category.ID,
		Name:        category.Name,
		Description: category.Description,
		Icon:        category.Icon,
		Color:       category.Color,
		IsSystem:    category.IsSystem,
	}
}

func toCategoryResponses(categories []*domain.Category) []CategoryResponse {
	response := make([]CategoryResponse, len(categories))
	for i, category := range categories {
		response[i] = toCategoryResponse(category)
	}
	return response
}
