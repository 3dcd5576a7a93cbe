// Package authz contains the pure role-action authorization matrix.
// It is one of two independent gates on state transitions; the other is the
// per-domain entitlement check in the domain registry. Reads are never gated
// here beyond basic authentication.
package authz

import (
	"strings"

	"github.com/example/lcs/internal/models"
)

// Action names over the enumerated action space:
// {task|workflow|assessment}:{create|revise|submit|confirm|return|force_submit|force_confirm}
// plus the non-record actions below.
const (
	ActionDeliveryView   = "delivery:view"
	ActionDeliveryExport = "delivery:export"
	ActionAuditView      = "audit:view"
	ActionDBSwitch       = "db:switch"
)

// RecordAction builds a record-scoped action name, e.g. "task:submit".
func RecordAction(kind, verb string) string {
	return kind + ":" + verb
}

// CanPerform reports whether a role may perform an action. Admin overrides
// everything. The matrix is pure: it never consults the domain registry.
func CanPerform(role, action string) bool {
	if role == models.RoleAdmin {
		return true
	}

	kind, verb, ok := strings.Cut(action, ":")
	if !ok {
		return false
	}

	switch action {
	case ActionDeliveryView, ActionAuditView:
		// Any authenticated role may view delivered content and audit
		// trails.
		return models.ValidRole(role)
	case ActionDeliveryExport:
		return role == models.RoleContentPublisher
	case ActionDBSwitch:
		return false // admin only, handled above
	}

	switch verb {
	case "confirm", "return":
		// Reviewers never create or revise content.
		return role == models.RoleReviewer
	case "force_submit", "force_confirm":
		return false // admin only, handled above
	case "create", "revise", "submit":
		// Content/assessment firewall: assessment authors and general
		// authors are disjoint capability sets.
		if kind == models.KindAssessment {
			return role == models.RoleAssessmentAuthor
		}
		if kind == models.KindTask || kind == models.KindWorkflow {
			return role == models.RoleAuthor
		}
	}

	return false
}
