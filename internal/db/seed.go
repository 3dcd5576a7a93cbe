package db

import (
	"database/sql"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Canonical demo domains. Matches the operational domain registry used by
// the demo corpus.
var demoDomains = []string{
	"ansible",
	"arch",
	"aws",
	"azure",
	"debian",
	"gcp",
	"kubernetes",
	"linux",
	"postgres",
	"terraform",
	"windows",
}

// demoUsers covers every role once. All demo accounts share the password
// "demo".
var demoUsers = []struct {
	username string
	role     string
}{
	{"vera", "viewer"},
	{"alice", "author"},
	{"quinn", "assessment_author"},
	{"rex", "reviewer"},
	{"pat", "content_publisher"},
	{"root", "admin"},
}

// demoEntitlements grants the working accounts a few domains each. The
// admin account needs none (break-glass).
var demoEntitlements = map[string][]string{
	"alice": {"debian", "linux", "postgres"},
	"quinn": {"debian", "linux"},
	"rex":   {"debian", "linux", "postgres", "kubernetes"},
}

// SeedDemo populates the domain registry, demo users, and entitlements.
// Idempotent: existing rows are left alone.
func SeedDemo(database *sql.DB) error {
	now := time.Now().UTC()

	for _, name := range demoDomains {
		if _, err := database.Exec(
			"INSERT OR IGNORE INTO domains (name, created_at, created_by) VALUES (?, ?, ?)",
			name, now, "seed",
		); err != nil {
			return fmt.Errorf("seed domains: %w", err)
		}
	}

	for _, u := range demoUsers {
		hash, err := bcrypt.GenerateFromPassword([]byte("demo"), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("seed users: %w", err)
		}
		if _, err := database.Exec(
			"INSERT OR IGNORE INTO users (username, password_hash, role, created_at) VALUES (?, ?, ?, ?)",
			u.username, string(hash), u.role, now,
		); err != nil {
			return fmt.Errorf("seed users: %w", err)
		}
	}

	for username, domains := range demoEntitlements {
		for _, domain := range domains {
			if _, err := database.Exec(
				"INSERT OR IGNORE INTO user_domains (username, domain, granted_at, granted_by) VALUES (?, ?, ?, ?)",
				username, domain, now, "seed",
			); err != nil {
				return fmt.Errorf("seed entitlements: %w", err)
			}
		}
	}

	return nil
}
