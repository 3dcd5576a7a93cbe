package models

import "time"

// Audit actions. The audit log is append-only; rows are never updated or
// deleted.
const (
	ActionCreate       = "create"
	ActionNewVersion   = "new_version"
	ActionSubmit       = "submit"
	ActionConfirm      = "confirm"
	ActionReturn       = "return_for_changes"
	ActionForceSubmit  = "force_submit"
	ActionForceConfirm = "force_confirm"
	ActionDeprecate    = "deprecate"
	ActionExport       = "export"
)

// AuditEvent records who did what to which record version, when, and why.
type AuditEvent struct {
	ID         int64
	EntityKind string
	RecordID   string
	Version    int
	Action     string
	Actor      string
	At         time.Time
	Note       string
}
