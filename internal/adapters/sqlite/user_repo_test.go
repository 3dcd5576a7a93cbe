package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/lcs/internal/adapters/sqlite"
	"github.com/example/lcs/internal/models"
	"github.com/example/lcs/internal/ports/secondary"
)

func TestUserRepository_CreateGetList(t *testing.T) {
	database := setupTestDB(t)
	repo := sqlite.NewUserRepository(database)
	ctx := context.Background()

	alice := &models.User{
		Username:     "alice",
		PasswordHash: "$2a$10$notarealhash",
		Role:         models.RoleAuthor,
		CreatedAt:    time.Now().UTC(),
	}
	if err := repo.Create(ctx, alice); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := repo.Create(ctx, alice); !errors.Is(err, secondary.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}

	got, err := repo.GetByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetByUsername failed: %v", err)
	}
	if got.Role != models.RoleAuthor {
		t.Errorf("expected role author, got %q", got.Role)
	}

	if _, err := repo.GetByUsername(ctx, "ghost"); !errors.Is(err, secondary.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	users, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(users) != 1 {
		t.Errorf("expected 1 user, got %d", len(users))
	}
}

func TestUserRepository_DeleteCleansEntitlements(t *testing.T) {
	database := setupTestDB(t)
	userRepo := sqlite.NewUserRepository(database)
	domainRepo := sqlite.NewDomainRepository(database)
	ctx := context.Background()

	if err := userRepo.Create(ctx, &models.User{
		Username:     "alice",
		PasswordHash: "$2a$10$notarealhash",
		Role:         models.RoleAuthor,
		CreatedAt:    time.Now().UTC(),
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := domainRepo.Create(ctx, "debian", "root"); err != nil {
		t.Fatalf("Create domain failed: %v", err)
	}
	if err := domainRepo.Grant(ctx, "alice", "debian", "root"); err != nil {
		t.Fatalf("Grant failed: %v", err)
	}

	if err := userRepo.Delete(ctx, "alice"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	domains, err := domainRepo.EntitledDomains(ctx, "alice")
	if err != nil {
		t.Fatalf("EntitledDomains failed: %v", err)
	}
	if len(domains) != 0 {
		t.Errorf("expected entitlements removed with user, got %v", domains)
	}

	if err := userRepo.Delete(ctx, "alice"); !errors.Is(err, secondary.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}
