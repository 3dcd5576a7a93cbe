// Package record contains the pure state-machine guards for record
// transitions. Guards evaluate preconditions without side effects; role and
// entitlement gates live elsewhere and are checked before these run.
package record

import (
	"fmt"
	"strings"

	"github.com/example/lcs/internal/models"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

func allowed() GuardResult {
	return GuardResult{Allowed: true}
}

func denied(format string, args ...any) GuardResult {
	return GuardResult{Reason: fmt.Sprintf(format, args...)}
}

// SubmitContext provides context for submit guards.
type SubmitContext struct {
	Status string
}

// CanSubmit evaluates whether a version can move to submitted.
// Rules:
// - Status must be "draft" (a returned version is revised first)
func CanSubmit(ctx SubmitContext) GuardResult {
	if ctx.Status != models.StatusDraft {
		return denied("only draft records can be submitted (current status: %s)", ctx.Status)
	}
	return allowed()
}

// ConfirmContext provides context for confirm guards.
type ConfirmContext struct {
	Status string

	// Readiness applies to workflows only; leave empty for other kinds.
	Readiness string
}

// CanConfirm evaluates whether a version can move to confirmed.
// Rules:
// - Status must be "submitted"
// - A workflow must be ready (every referenced task version confirmed)
func CanConfirm(ctx ConfirmContext) GuardResult {
	if ctx.Status != models.StatusSubmitted {
		return denied("only submitted records can be confirmed (current status: %s)", ctx.Status)
	}
	if ctx.Readiness != "" && ctx.Readiness != models.ReadinessReady {
		return denied("workflow is not ready for confirmation (readiness: %s)", ctx.Readiness)
	}
	return allowed()
}

// ReturnContext provides context for return-for-changes guards.
type ReturnContext struct {
	Status string
	Note   string
}

// CanReturn evaluates whether a version can be returned to its author.
// Rules:
// - Status must be "submitted"
// - The return note is required (it anchors the revision attribution chain)
func CanReturn(ctx ReturnContext) GuardResult {
	if ctx.Status != models.StatusSubmitted {
		return denied("only submitted records can be returned (current status: %s)", ctx.Status)
	}
	if strings.TrimSpace(ctx.Note) == "" {
		return denied("a return note is required")
	}
	return allowed()
}

// ReviseContext provides context for new-version guards.
type ReviseContext struct {
	ChangeNote string
}

// CanRevise evaluates whether a new draft version can be spawned. Any
// status may be revised; the source row is never touched.
func CanRevise(ctx ReviseContext) GuardResult {
	if strings.TrimSpace(ctx.ChangeNote) == "" {
		return denied("change_note is required when creating a new version")
	}
	return allowed()
}

// ForceSubmitContext provides context for the admin submit bypass.
type ForceSubmitContext struct {
	Status string
}

// CanForceSubmit evaluates the admin force-submit bypass. Force skips role
// and domain gates but never structural state guards.
func CanForceSubmit(ctx ForceSubmitContext) GuardResult {
	if ctx.Status == models.StatusDeprecated || ctx.Status == models.StatusConfirmed {
		return denied("cannot force-submit a %s record", ctx.Status)
	}
	return allowed()
}

// ForceConfirmContext provides context for the admin confirm bypass.
type ForceConfirmContext struct {
	Status string

	// Readiness applies to workflows only; leave empty for other kinds.
	Readiness string
}

// CanForceConfirm evaluates the admin force-confirm bypass. Workflow
// readiness still applies: force overrides authorization, not structural
// correctness.
func CanForceConfirm(ctx ForceConfirmContext) GuardResult {
	if ctx.Status == models.StatusDeprecated {
		return denied("cannot force-confirm a deprecated record")
	}
	if ctx.Readiness != "" && ctx.Readiness != models.ReadinessReady {
		return denied("workflow is not ready for confirmation (readiness: %s)", ctx.Readiness)
	}
	return allowed()
}
