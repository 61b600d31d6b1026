package service

import (
	"context"
	"errors"
	"strings"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
)

// UserService handles user-related business logic
type UserService struct {
	store domain.Store
}

// NewUserService creates a new UserService
func NewUserService(store domain.Store) *UserService {
	return &UserService{store: store}
}

// CreateUserInput holds the input for signing up a user
type CreateUserInput struct {
	Username string
	Email    string
	FullName string
}

// UpdateUserInput holds the mutable user fields. Username cannot change.
type UpdateUserInput struct {
	Email    string
	FullName string
}

// CreateUser registers a new, active user
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, domain.ErrUsernameRequired
	}
	email, fullName, err := validateProfile(input.Email, input.FullName)
	if err != nil {
		return nil, err
	}

	var created *domain.User
	err = s.store.WithinTx(ctx, func(repos domain.Repositories) error {
		taken, err := repos.Users.ExistsByUsername(ctx, username)
		if err != nil {
			return err
		}
		if taken {
			return domain.ErrUsernameTaken
		}
		taken, err = repos.Users.ExistsByEmail(ctx, email)
		if err != nil {
			return err
		}
		if taken {
			return domain.ErrEmailTaken
		}

		created, err = repos.Users.Create(ctx, &domain.User{
			Username: username,
			Email:    email,
			FullName: fullName,
			Active:   true,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetUserByID retrieves a user by ID
func (s *UserService) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	var user *domain.User
	err := s.store.WithinTx(ctx, func(repos domain.Repositories) error {
		var err error
		user, err = repos.Users.GetByID(ctx, id)
		return err
	})
	return user, err
}

// GetUserByUsername retrieves a user by username
func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user *domain.User
	err := s.store.WithinTx(ctx, func(repos domain.Repositories) error {
		var err error
		user, err = repos.Users.GetByUsername(ctx, username)
		return err
	})
	return user, err
}

// GetUserByEmail retrieves a user by email
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user *domain.User
	err := s.store.WithinTx(ctx, func(repos domain.Repositories) error {
		var err error
		user, err = repos.Users.GetByEmail(ctx, email)
		return err
	})
	return user, err
}

// GetAllUsers retrieves every user, including deactivated ones
func (s *UserService) GetAllUsers(ctx context.Context) ([]*domain.User, error) {
	var users []*domain.User
	err := s.store.WithinTx(ctx, func(repos domain.Repositories) error {
		var err error
		users, err = repos.Users.GetAll(ctx)
		return err
	})
	return users, err
}

// UpdateUser changes a user's full name and email
func (s *UserService) UpdateUser(ctx context.Context, id int64, input UpdateUserInput) (*domain.User, error) {
	email, fullName, err := validateProfile(input.Email, input.FullName)
	if err != nil {
		return nil, err
	}

	var updated *domain.User
	err = s.store.WithinTx(ctx, func(repos domain.Repositories) error {
		user, err := repos.Users.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if email != user.Email {
			taken, err := repos.Users.ExistsByEmail(ctx, email)
			if err != nil {
				return err
			}
			if taken {
				return domain.ErrEmailTaken
			}
		}

		changed := *user
		changed.Email = email
		changed.FullName = fullName
		updated, err = repos.Users.Update(ctx, &changed)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeactivateUser marks a user inactive. The row and its data are kept.
func (s *UserService) DeactivateUser(ctx context.Context, id int64) error {
	return s.store.WithinTx(ctx, func(repos domain.Repositories) error {
		user, err := repos.Users.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !user.Active {
			return nil
		}

		changed := *user
		changed.Active = false
		_, err = repos.Users.Update(ctx, &changed)
		return err
	})
}

// UserExists reports whether a user with the ID exists
func (s *UserService) UserExists(ctx context.Context, id int64) (bool, error) {
	_, err := s.GetUserByID(ctx, id)
	if errors.Is(err, domain.ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// SeedDemoUser creates the demo user when no users exist. It reports whether
// the user was created.
func (s *UserService) SeedDemoUser(ctx context.Context) (bool, error) {
	seeded := false
	err := s.store.WithinTx(ctx, func(repos domain.Repositories) error {
		count, err := repos.Users.Count(ctx)
		if err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		_, err = repos.Users.Create(ctx, &domain.User{
			Username: domain.DemoUsername,
			Email:    domain.DemoEmail,
			FullName: domain.DemoFullName,
			Active:   true,
		})
		seeded = err == nil
		return err
	})
	return seeded, err
}

func validateProfile(email, fullName string) (string, string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", "", domain.ErrEmailRequired
	}
	if !isValidEmail(email) {
		return "", "", domain.ErrEmailInvalid
	}
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return "", "", domain.ErrFullNameRequired
	}
	return email, fullName, nil
}
