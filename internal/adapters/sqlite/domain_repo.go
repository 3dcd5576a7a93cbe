package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/lcs/internal/models"
	"github.com/example/lcs/internal/ports/secondary"
)

// DomainRepository implements secondary.DomainRepository with SQLite.
type DomainRepository struct {
	db *sql.DB
}

// NewDomainRepository creates a new SQLite domain repository.
func NewDomainRepository(db *sql.DB) *DomainRepository {
	return &DomainRepository{db: db}
}

// Create registers a new domain.
func (r *DomainRepository) Create(ctx context.Context, name, actor string) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO domains (name, created_at, created_by) VALUES (?, ?, ?)",
		name, time.Now().UTC(), actor,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return secondary.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create domain: %w", err)
	}
	return nil
}

// Disable soft-disables a domain. Existing records and entitlements keep
// referencing it.
func (r *DomainRepository) Disable(ctx context.Context, name string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE domains SET disabled_at = ? WHERE name = ? AND disabled_at IS NULL",
		time.Now().UTC(), name,
	)
	if err != nil {
		return fmt.Errorf("failed to disable domain: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		var exists int
		if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM domains WHERE name = ?", name).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check domain existence: %w", err)
		}
		if exists == 0 {
			return secondary.ErrNotFound
		}
		// Already disabled; idempotent.
	}

	return nil
}

// List returns every registered domain, enabled or not, sorted by name.
func (r *DomainRepository) List(ctx context.Context) ([]*models.Domain, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT name, created_at, created_by, disabled_at FROM domains ORDER BY name ASC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list domains: %w", err)
	}
	defer rows.Close()

	var domains []*models.Domain
	for rows.Next() {
		d := &models.Domain{}
		var disabledAt sql.NullTime
		if err := rows.Scan(&d.Name, &d.CreatedAt, &d.CreatedBy, &disabledAt); err != nil {
			return nil, fmt.Errorf("failed to scan domain: %w", err)
		}
		if disabledAt.Valid {
			d.DisabledAt = disabledAt.Time
			d.Disabled = true
		}
		domains = append(domains, d)
	}

	return domains, rows.Err()
}

// ListActive returns enabled domain names in sorted order.
func (r *DomainRepository) ListActive(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT name FROM domains WHERE disabled_at IS NULL ORDER BY name ASC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list active domains: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan domain name: %w", err)
		}
		names = append(names, name)
	}

	return names, rows.Err()
}

// Grant entitles a user to a domain. Granting twice is an error.
func (r *DomainRepository) Grant(ctx context.Context, username, domain, actor string) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO user_domains (username, domain, granted_at, granted_by) VALUES (?, ?, ?, ?)",
		username, domain, time.Now().UTC(), actor,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return secondary.ErrAlreadyExists
		}
		return fmt.Errorf("failed to grant entitlement: %w", err)
	}
	return nil
}

// Revoke removes a user's entitlement to a domain.
func (r *DomainRepository) Revoke(ctx context.Context, username, domain string) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM user_domains WHERE username = ? AND domain = ?",
		username, domain,
	)
	if err != nil {
		return fmt.Errorf("failed to revoke entitlement: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return secondary.ErrNotFound
	}

	return nil
}

// EntitledDomains returns the domains a user is entitled to, sorted.
func (r *DomainRepository) EntitledDomains(ctx context.Context, username string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT domain FROM user_domains WHERE username = ? ORDER BY domain ASC",
		username,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list entitlements: %w", err)
	}
	defer rows.Close()

	var domains []string
	for rows.Next() {
		var domain string
		if err := rows.Scan(&domain); err != nil {
			return nil, fmt.Errorf("failed to scan entitlement: %w", err)
		}
		domains = append(domains, domain)
	}

	return domains, rows.Err()
}

// IsEntitled reports whether a user holds an entitlement for a domain.
func (r *DomainRepository) IsEntitled(ctx context.Context, username, domain string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM user_domains WHERE username = ? AND domain = ?",
		username, domain,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check entitlement: %w", err)
	}
	return count > 0, nil
}

// Ensure DomainRepository implements the interface
var _ secondary.DomainRepository = (*DomainRepository)(nil)
