package primary

import (
	"context"

	"github.com/example/lcs/internal/models"
)

// RegistryService manages the domain registry and per-user entitlements.
// All mutations are admin-only; reads are open to any authenticated role.
type RegistryService interface {
	CreateDomain(ctx context.Context, actor Actor, name string) error
	DisableDomain(ctx context.Context, actor Actor, name string) error
	ListDomains(ctx context.Context, actor Actor) ([]*models.Domain, error)

	Grant(ctx context.Context, actor Actor, username, domain string) error
	Revoke(ctx context.Context, actor Actor, username, domain string) error
	EntitledDomains(ctx context.Context, actor Actor, username string) ([]string, error)
}

// UserService manages authenticated identities.
type UserService interface {
	Create(ctx context.Context, actor Actor, username, password, role string) error
	Delete(ctx context.Context, actor Actor, username string) error
	List(ctx context.Context, actor Actor) ([]*models.User, error)

	// Authenticate verifies a credential pair and returns the stored
	// identity on success.
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
}
