package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/example/lcs/internal/models"
	"github.com/example/lcs/internal/ports/primary"
	"github.com/example/lcs/internal/ports/secondary"
)

// UserServiceImpl implements the UserService interface.
type UserServiceImpl struct {
	userRepo secondary.UserRepository
}

// NewUserService creates a new UserService with injected dependencies.
func NewUserService(userRepo secondary.UserRepository) *UserServiceImpl {
	return &UserServiceImpl{userRepo: userRepo}
}

// Create registers a new user. Admin-only.
func (s *UserServiceImpl) Create(ctx context.Context, actor primary.Actor, username, password, role string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return NewValidationError("username is required")
	}
	if !models.ValidRole(role) {
		return NewValidationError("unknown role %q", role)
	}
	if len(password) < 4 {
		return NewValidationError("password must be at least 4 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	return translateStoreErr(s.userRepo.Create(ctx, user), fmt.Sprintf("user %s", username))
}

// Delete removes a user together with their entitlements. Admin-only.
func (s *UserServiceImpl) Delete(ctx context.Context, actor primary.Actor, username string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if actor.User == username {
		return NewConflictError("cannot delete the acting user")
	}
	return translateStoreErr(s.userRepo.Delete(ctx, username), fmt.Sprintf("user %s", username))
}

// List returns every user. Admin-only; password hashes are cleared.
func (s *UserServiceImpl) List(ctx context.Context, actor primary.Actor) ([]*models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	for _, u := range users {
		u.PasswordHash = ""
	}
	return users, nil
}

// Authenticate verifies a credential pair. Unknown users and wrong
// passwords produce the same error.
func (s *UserServiceImpl) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, NewForbiddenError("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, NewForbiddenError("invalid credentials")
	}
	return user, nil
}

// Ensure UserServiceImpl implements the interface.
var _ primary.UserService = (*UserServiceImpl)(nil)
