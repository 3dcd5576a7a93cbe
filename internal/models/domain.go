package models

import "time"

// Domain is a governance scope in the registry. Disabling a domain is a
// soft operation: existing records and entitlements keep referencing it.
type Domain struct {
	Name       string
	CreatedAt  time.Time
	CreatedBy  string
	DisabledAt time.Time
	Disabled   bool
}

// Entitlement grants one user the right to submit, confirm, and return
// records in one domain. Entitlements are additive and role-independent.
type Entitlement struct {
	User      string
	Domain    string
	GrantedAt time.Time
	GrantedBy string
}
