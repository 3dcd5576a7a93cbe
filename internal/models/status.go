// Package models contains domain types for governed content records.
// Persistence lives in internal/adapters/sqlite; these types carry no SQL.
package models

// Record status constants. Every version of every record kind is in exactly
// one of these states.
const (
	StatusDraft      = "draft"
	StatusSubmitted  = "submitted"
	StatusReturned   = "returned"
	StatusConfirmed  = "confirmed"
	StatusDeprecated = "deprecated"
)

// Statuses lists all valid record statuses.
var Statuses = []string{
	StatusDraft,
	StatusSubmitted,
	StatusReturned,
	StatusConfirmed,
	StatusDeprecated,
}

// ValidStatus reports whether s is a known record status.
func ValidStatus(s string) bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// Workflow readiness classifications, derived from the statuses of the task
// versions a workflow references. Never stored; recomputed on every read.
const (
	ReadinessReady    = "ready"
	ReadinessAwaiting = "awaiting_task_confirmation"
	ReadinessInvalid  = "invalid"
)

// Entity kind constants, used in the audit log and the generic transition
// surface.
const (
	KindTask       = "task"
	KindWorkflow   = "workflow"
	KindAssessment = "assessment"
)
