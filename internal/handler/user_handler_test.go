package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/service"
	"github.com/dafibh/spendwise/spendwise-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserHandler() (*UserHandler, *testutil.MockStore) {
	store := testutil.NewMockStore()
	return NewUserHandler(service.NewUserService(store)), store
}

func TestCreateUser_Success(t *testing.T) {
	h, store := newUserHandler()

	body := `{"username": "alice", "email": "alice@example.com", "fullName": "Alice Smith"}`
	c, rec := newTestContext(http.MethodPost, "/users", body)

	require.NoError(t, h.CreateUser(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var response UserResponse
	decodeJSON(t, rec, &response)
	assert.Equal(t, "alice", response.Username)
	assert.Equal(t, "alice@example.com", response.Email)
	assert.Equal(t, "Alice Smith", response.FullName)
	assert.True(t, response.IsActive)
	assert.NotZero(t, response.ID)
	assert.Len(t, store.Users.Users, 1)
}

func TestCreateUser_ValidationErrors(t *testing.T) {
	h, store := newUserHandler()

	body := `{"username": "", "email": "not-an-email"}`
	c, rec := newTestContext(http.MethodPost, "/users", body)

	require.NoError(t, h.CreateUser(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	problem := decodeProblem(t, rec)
	assert.Equal(t, ErrorTypeValidation, problem.Type)
	assert.Equal(t, "username is required", problem.Errors["username"])
	assert.Equal(t, "Email should be valid", problem.Errors["email"])
	assert.Equal(t, "fullName is required", problem.Errors["fullName"])
	assert.Empty(t, store.Users.Users)
}

func TestCreateUser_MalformedBody(t *testing.T) {
	h, _ := newUserHandler()

	c, rec := newTestContext(http.MethodPost, "/users", `{"username": `)

	require.NoError(t, h.CreateUser(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", decodeProblem(t, rec).Errors["body"])
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	h, store := newUserHandler()
	store.SeedUser(1, "alice")

	body := `{"username": "alice", "email": "other@example.com", "fullName": "Alice Again"}`
	c, rec := newTestContext(http.MethodPost, "/users", body)

	require.NoError(t, h.CreateUser(c))
	assert.Equal(t, http.StatusConflict, rec.Code)

	problem := decodeProblem(t, rec)
	assert.Equal(t, ErrorTypeConflict, problem.Type)
	assert.Equal(t, "Username already exists", problem.Detail)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	h, store := newUserHandler()
	store.SeedUser(1, "alice")

	body := `{"username": "alice2", "email": "alice@example.com", "fullName": "Alice Again"}`
	c, rec := newTestContext(http.MethodPost, "/users", body)

	require.NoError(t, h.CreateUser(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Email already exists", decodeProblem(t, rec).Detail)
}

func TestCreateUser_StorageFailure(t *testing.T) {
	h, store := newUserHandler()
	store.Users.CreateFn = func(user *domain.User) (*domain.User, error) {
		return nil, errors.New("connection reset")
	}

	body := `{"username": "alice", "email": "alice@example.com", "fullName": "Alice Smith"}`
	c, rec := newTestContext(http.MethodPost, "/users", body)

	require.NoError(t, h.CreateUser(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	problem := decodeProblem(t, rec)
	assert.Equal(t, ErrorTypeInternal, problem.Type)
	assert.Equal(t, "Failed to create user", problem.Detail)
	assert.NotContains(t, rec.Body.String(), "connection reset")
}

func TestGetUser(t *testing.T) {
	h, store := newUserHandler()
	store.SeedUser(7, "bob")

	t.Run("found", func(t *testing.T) {
		c, rec := newTestContext(http.MethodGet, "/users/7", "", "id", "7")
		require.NoError(t, h.GetUser(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var response UserResponse
		decodeJSON(t, rec, &response)
		assert.Equal(t, int64(7), response.ID)
		assert.Equal(t, "2024-01-01T00:00:00Z", response.CreatedAt)
	})

	t.Run("not found", func(t *testing.T) {
		c, rec := newTestContext(http.MethodGet, "/users/99", "", "id", "99")
		require.NoError(t, h.GetUser(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "User not found", decodeProblem(t, rec).Detail)
	})

	t.Run("invalid id", func(t *testing.T) {
		c, rec := newTestContext(http.MethodGet, "/users/abc", "", "id", "abc")
		require.NoError(t, h.GetUser(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeProblem(t, rec).Errors, "id")
	})
}

func TestGetUserByUsernameAndEmail(t *testing.T) {
	h, store := newUserHandler()
	store.SeedUser(3, "carol")

	c, rec := newTestContext(http.MethodGet, "/users/username/carol", "", "username", "carol")
	require.NoError(t, h.GetUserByUsername(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	c, rec = newTestContext(http.MethodGet, "/users/email/carol@example.com", "", "email", "carol@example.com")
	require.NoError(t, h.GetUserByEmail(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var response UserResponse
	decodeJSON(t, rec, &response)
	assert.Equal(t, "carol", response.Username)

	c, rec = newTestContext(http.MethodGet, "/users/username/nobody", "", "username", "nobody")
	require.NoError(t, h.GetUserByUsername(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetAllUsers(t *testing.T) {
	h, store := newUserHandler()
	store.SeedUser(1, "alice")
	store.SeedUser(2, "bob")

	c, rec := newTestContext(http.MethodGet, "/users", "")
	require.NoError(t, h.GetAllUsers(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var response []UserResponse
	decodeJSON(t, rec, &response)
	assert.Len(t, response, 2)
}

func TestUpdateUser(t *testing.T) {
	h, store := newUserHandler()
	store.SeedUser(1, "alice")

	body := `{"email": "alice@work.example.com", "fullName": "Alice Jones"}`
	c, rec := newTestContext(http.MethodPut, "/users/1", body, "id", "1")

	require.NoError(t, h.UpdateUser(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var response UserResponse
	decodeJSON(t, rec, &response)
	assert.Equal(t, "alice", response.Username)
	assert.Equal(t, "alice@work.example.com", response.Email)
	assert.Equal(t, "Alice Jones", response.FullName)
}

func TestDeactivateUser(t *testing.T) {
	h, store := newUserHandler()
	store.SeedUser(1, "alice")

	c, rec := newTestContext(http.MethodDelete, "/users/1", "", "id", "1")
	require.NoError(t, h.DeactivateUser(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, store.Users.Users[1].Active)

	c, rec = newTestContext(http.MethodDelete, "/users/2", "", "id", "2")
	require.NoError(t, h.DeactivateUser(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
