// Package content contains the submit-time structural completeness checks.
// Draft saves accept incomplete content; a record must pass these checks
// before it can move to submitted.
package content

import (
	"fmt"
	"strings"

	"github.com/example/lcs/internal/core/composition"
	"github.com/example/lcs/internal/core/lint"
	"github.com/example/lcs/internal/models"
)

// NormalizeSteps trims step fields and drops rows that are entirely empty.
func NormalizeSteps(steps []models.Step) []models.Step {
	out := make([]models.Step, 0, len(steps))
	for _, s := range steps {
		s.Text = strings.TrimSpace(s.Text)
		s.Completion = strings.TrimSpace(s.Completion)
		if s.Text == "" && s.Completion == "" && len(s.Actions) == 0 {
			continue
		}
		out = append(out, s)
	}
	return out
}

// TaskSubmitIssues returns the reasons a task version cannot be submitted.
// An empty result means the task passes validation.
func TaskSubmitIssues(t *models.Task) []string {
	var issues []string

	if strings.TrimSpace(t.Domain) == "" {
		issues = append(issues, "domain must be set before submit")
	}
	if len(t.Steps) == 0 {
		issues = append(issues, "at least one step is required")
	}
	for i, s := range t.Steps {
		if strings.TrimSpace(s.Text) == "" {
			issues = append(issues, fmt.Sprintf("step %d: step text is required", i+1))
		}
		if strings.TrimSpace(s.Completion) == "" {
			issues = append(issues, fmt.Sprintf("step %d: completion text is required", i+1))
		}
	}

	return issues
}

// WorkflowSubmitIssues returns the reasons a workflow version cannot be
// submitted: it must reference at least one task version, and every
// reference must exist and not be deprecated. Unconfirmed references are
// fine at submit; they only block confirm.
func WorkflowSubmitIssues(refs []models.TaskRef, resolved []composition.ResolvedRef) []string {
	var issues []string

	if len(refs) == 0 {
		issues = append(issues, "at least one task reference is required")
	}
	for i, r := range resolved {
		if i >= len(refs) {
			break
		}
		ref := refs[i]
		if !r.Found {
			issues = append(issues, fmt.Sprintf("referenced task %s@%d does not exist", ref.RecordID, ref.Version))
			continue
		}
		if r.Status == models.StatusDeprecated {
			issues = append(issues, fmt.Sprintf("referenced task %s@%d is deprecated", ref.RecordID, ref.Version))
		}
	}

	return issues
}

// AssessmentSubmitIssues returns the reasons an assessment item cannot be
// submitted: any error-level lint finding blocks; warnings never do.
func AssessmentSubmitIssues(a *models.Assessment, findings []lint.Finding) []string {
	var issues []string

	if strings.TrimSpace(a.Stem) == "" {
		issues = append(issues, "stem is required")
	}
	for _, f := range findings {
		if f.Level == lint.LevelError {
			issues = append(issues, f.Message)
		}
	}

	return issues
}
