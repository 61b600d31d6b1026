package handler

import (
	"net/http"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// CreateUserRequest represents the signup request body
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	FullName string `json:"fullName" validate:"required,max=255"`
}

// UpdateUserRequest represents the profile update request body
type UpdateUserRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	FullName string `json:"fullName" validate:"required,max=255"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FullName  string `json:"fullName"`
	IsActive  bool   `json:"isActive"`
	CreatedAt string `json:"createdAt"`
}

// CreateUser godoc
// @Summary Create a user
// @Description Register a new active user
// @Tags users
// @Accept json
// @Produce json
// @Param request body CreateUserRequest true "User creation request"
// @Success 201 {object} UserResponse
// @Failure 400 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Router /users [post]
func (h *UserHandler) CreateUser(c echo.Context) error {
	var req CreateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err, "Failed to create user")
	}

	user, err := h.userService.CreateUser(c.Request().Context(), service.CreateUserInput{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
	})
	if err != nil {
		return respondError(c, err, "Failed to create user")
	}

	log.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("User created")
	return c.JSON(http.StatusCreated, toUserResponse(user))
}

// GetAllUsers godoc
// @Summary List users
// @Description Get every user, including deactivated ones
// @Tags users
// @Produce json
// @Success 200 {array} UserResponse
// @Failure 500 {object} ProblemDetails
// @Router /users [get]
func (h *UserHandler) GetAllUsers(c echo.Context) error {
	users, err := h.userService.GetAllUsers(c.Request().Context())
	if err != nil {
		return respondError(c, err, "Failed to get users")
	}

	response := make([]UserResponse, len(users))
	for i, user := range users {
		response[i] = toUserResponse(user)
	}
	return c.JSON(http.StatusOK, response)
}

// GetUser godoc
// @Summary Get a user
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} UserResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err, "Failed to get user")
	}

	user, err := h.userService.GetUserByID(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err, "Failed to get user")
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// GetUserByUsername godoc
// @Summary Get a user by username
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} UserResponse
// @Failure 404 {object} ProblemDetails
// @Router /users/username/{username} [get]
func (h *UserHandler) GetUserByUsername(c echo.Context) error {
	user, err := h.userService.GetUserByUsername(c.Request().Context(), c.Param("username"))
	if err != nil {
		return respondError(c, err, "Failed to get user")
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// GetUserByEmail godoc
// @Summary Get a user by email
// @Tags users
// @Produce json
// @Param email path string true "Email address"
// @Success 200 {object} UserResponse
// @Failure 404 {object} ProblemDetails
// @Router /users/email/{email} [get]
func (h *UserHandler) GetUserByEmail(c echo.Context) error {
	user, err := h.userService.GetUserByEmail(c.Request().Context(), c.Param("email"))
	if err != nil {
		return respondError(c, err, "Failed to get user")
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// UpdateUser godoc
// @Summary Update a user
// @Description Replace a user's email and full name. The username cannot change.
// @Tags users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param request body UpdateUserRequest true "User update request"
// @Success 200 {object} UserResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Router /users/{id} [put]
func (h *UserHandler) UpdateUser(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err, "Failed to update user")
	}

	var req UpdateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err, "Failed to update user")
	}

	user, err := h.userService.UpdateUser(c.Request().Context(), id, service.UpdateUserInput{
		Email:    req.Email,
		FullName: req.FullName,
	})
	if err != nil {
		return respondError(c, err, "Failed to update user")
	}

	log.Info().Int64("user_id", user.ID).Msg("User updated")
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// DeactivateUser godoc
// @Summary Deactivate a user
// @Description Mark a user inactive. Their data is kept.
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 204 "No Content"
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /users/{id} [delete]
func (h *UserHandler) DeactivateUser(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err, "Failed to deactivate user")
	}

	if err := h.userService.DeactivateUser(c.Request().Context(), id); err != nil {
		return respondError(c, err, "Failed to deactivate user")
	}

	log.Info().Int64("user_id", id).Msg("User deactivated")
	return c.NoContent(http.StatusNoContent)
}

func toUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FullName:  user.FullName,
		IsActive:  user.Active,
		CreatedAt: formatTimestamp(user.CreatedAt),
	}
}
