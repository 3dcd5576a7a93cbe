// Package composition derives workflow-level state from the exact task
// versions a workflow references. Nothing here is ever cached: referenced
// task statuses are mutable, so callers resolve refs and recompute on every
// submit, confirm, export, and listing.
package composition

import (
	"sort"

	"github.com/example/lcs/internal/models"
)

// ResolvedRef is the lookup result for one pinned task reference.
type ResolvedRef struct {
	Found  bool
	Status string
	Domain string
}

// Readiness classifies a workflow's referenced task versions.
// Rules:
//   - empty refs, a missing reference, or a deprecated reference => invalid
//     (short-circuits on the first invalid reference)
//   - any reference not confirmed => awaiting_task_confirmation
//   - otherwise => ready
func Readiness(refs []ResolvedRef) string {
	if len(refs) == 0 {
		return models.ReadinessInvalid
	}

	awaiting := false
	for _, ref := range refs {
		if !ref.Found || ref.Status == models.StatusDeprecated {
			return models.ReadinessInvalid
		}
		if ref.Status != models.StatusConfirmed {
			awaiting = true
		}
	}

	if awaiting {
		return models.ReadinessAwaiting
	}
	return models.ReadinessReady
}

// DeriveDomains returns the sorted union of the domain sets contributed by
// each resolved reference. Missing refs contribute nothing; empty domains
// are dropped.
func DeriveDomains(sets ...[]string) []string {
	seen := make(map[string]bool)
	for _, set := range sets {
		for _, d := range set {
			if d != "" {
				seen[d] = true
			}
		}
	}

	out := make([]string, 0, len(seen))
	for d := range seen {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}
