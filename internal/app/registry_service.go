package app

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/example/lcs/internal/models"
	"github.com/example/lcs/internal/ports/primary"
	"github.com/example/lcs/internal/ports/secondary"
)

// domainNameRe constrains registry names to lowercase slug form.
var domainNameRe = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

// RegistryServiceImpl implements the RegistryService interface. Registry
// mutations are admin-only; reads are open to any authenticated role.
type RegistryServiceImpl struct {
	domainRepo secondary.DomainRepository
	userRepo   secondary.UserRepository
}

// NewRegistryService creates a new RegistryService with injected
// dependencies.
func NewRegistryService(domainRepo secondary.DomainRepository, userRepo secondary.UserRepository) *RegistryServiceImpl {
	return &RegistryServiceImpl{
		domainRepo: domainRepo,
		userRepo:   userRepo,
	}
}

func requireAdmin(actor primary.Actor) error {
	if actor.Role != models.RoleAdmin {
		return NewForbiddenError("role %s may not manage the registry", actor.Role)
	}
	return nil
}

// CreateDomain registers a new governance domain.
func (s *RegistryServiceImpl) CreateDomain(ctx context.Context, actor primary.Actor, name string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if !domainNameRe.MatchString(name) {
		return NewValidationError("domain name %q must be a lowercase slug", name)
	}
	return translateStoreErr(s.domainRepo.Create(ctx, name, actor.User), fmt.Sprintf("domain %s", name))
}

// DisableDomain soft-disables a domain. Existing records and entitlements
// keep referencing it; it just stops accepting new submits.
func (s *RegistryServiceImpl) DisableDomain(ctx context.Context, actor primary.Actor, name string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	return translateStoreErr(s.domainRepo.Disable(ctx, name), fmt.Sprintf("domain %s", name))
}

// ListDomains returns every registered domain.
func (s *RegistryServiceImpl) ListDomains(ctx context.Context, actor primary.Actor) ([]*models.Domain, error) {
	if !models.ValidRole(actor.Role) {
		return nil, NewForbiddenError("unknown role %q", actor.Role)
	}
	domains, err := s.domainRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list domains: %w", err)
	}
	return domains, nil
}

// Grant entitles a user to a domain.
func (s *RegistryServiceImpl) Grant(ctx context.Context, actor primary.Actor, username, domain string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if _, err := s.userRepo.GetByUsername(ctx, username); err != nil {
		return translateStoreErr(err, fmt.Sprintf("user %s", username))
	}
	active, err := s.domainRepo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active domains: %w", err)
	}
	found := false
	for _, d := range active {
		if d == domain {
			found = true
			break
		}
	}
	if !found {
		return NewNotFoundError("domain %s is not an active registry domain", domain)
	}
	return translateStoreErr(s.domainRepo.Grant(ctx, username, domain, actor.User), fmt.Sprintf("entitlement %s/%s", username, domain))
}

// Revoke removes a user's entitlement to a domain.
func (s *RegistryServiceImpl) Revoke(ctx context.Context, actor primary.Actor, username, domain string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	return translateStoreErr(s.domainRepo.Revoke(ctx, username, domain), fmt.Sprintf("entitlement %s/%s", username, domain))
}

// EntitledDomains returns the domains a user is entitled to.
func (s *RegistryServiceImpl) EntitledDomains(ctx context.Context, actor primary.Actor, username string) ([]string, error) {
	if !models.ValidRole(actor.Role) {
		return nil, NewForbiddenError("unknown role %q", actor.Role)
	}
	domains, err := s.domainRepo.EntitledDomains(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to list entitlements: %w", err)
	}
	return domains, nil
}

// Ensure RegistryServiceImpl implements the interface.
var _ primary.RegistryService = (*RegistryServiceImpl)(nil)
