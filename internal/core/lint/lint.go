// Package lint contains the pluggable content linting rules. Findings at
// level error block submission; warnings are advisory and never block.
package lint

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/example/lcs/internal/models"
)

// Finding levels.
const (
	LevelError = "error"
	LevelWarn  = "warn"
)

// Finding is one lint result.
type Finding struct {
	Level   string `json:"level"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HasErrors reports whether any finding is at level error.
func HasErrors(findings []Finding) bool {
	for _, f := range findings {
		if f.Level == LevelError {
			return true
		}
	}
	return false
}

// Verbs that bundle several actions behind one word. Steps starting with one
// of these usually need decomposing.
var abstractVerbs = []string{
	"edit",
	"configure",
	"set up",
	"setup",
	"manage",
	"ensure",
	"handle",
	"prepare",
	"troubleshoot",
}

// Verbs that change system state and therefore want an explicit
// verification step or observable.
var stateChangeVerbs = []string{
	"install",
	"mount",
	"enable",
	"add",
	"update",
	"remove",
	"create",
	"delete",
}

var (
	codeSpanRe     = regexp.MustCompile("`.+?`")
	verificationRe = regexp.MustCompile(`\b(confirm|verify|check)\b`)
	conjunctionRe  = regexp.MustCompile(`\b(and|then|also|as well as)\b`)
)

func startsWithVerb(low, verb string) bool {
	return low == verb || strings.HasPrefix(low, verb+" ")
}

// Steps lints a task's procedure steps. All findings are warnings; required
// text/completion fields are enforced by the content validator instead.
func Steps(steps []models.Step) []Finding {
	var findings []Finding

	for i, step := range steps {
		n := i + 1
		low := strings.ToLower(strings.TrimSpace(step.Text))

		for _, v := range abstractVerbs {
			if startsWithVerb(low, v) {
				if !codeSpanRe.MatchString(step.Text) && !verificationRe.MatchString(low) {
					findings = append(findings, Finding{
						Level:   LevelWarn,
						Code:    "abstract_verb",
						Message: fmt.Sprintf("step %d: starts with abstract verb %q; prefer decomposed steps with explicit method and completion check", n, v),
					})
				}
				break
			}
		}

		if conjunctionRe.MatchString(low) {
			findings = append(findings, Finding{
				Level:   LevelWarn,
				Code:    "multi_action",
				Message: fmt.Sprintf("step %d: may include multiple actions (contains a conjunction like and/then/also); consider splitting", n),
			})
		}

		for _, v := range stateChangeVerbs {
			if startsWithVerb(low, v) {
				if !verificationRe.MatchString(low) && !codeSpanRe.MatchString(step.Text) {
					findings = append(findings, Finding{
						Level:   LevelWarn,
						Code:    "missing_verification",
						Message: fmt.Sprintf("step %d: appears to change state; include an explicit confirmation check or follow with a check step", n),
					})
				}
				break
			}
		}
	}

	return findings
}

// Absolute terms in option text are a classic give-away in multiple-choice
// items.
var absoluteTermRe = regexp.MustCompile(`\b(always|never|all|none|only|every|guaranteed)\b`)

var scenarioMarkers = []string{"you are", "you have", "a user", "an operator", "a team", "during", "while", "after"}

// Assessment lints a multiple-choice item. Structural defects (option count,
// empty or duplicate option text, invalid correct key) are errors and block
// submission; the remaining heuristics are warnings.
func Assessment(a *models.Assessment) []Finding {
	var findings []Finding

	if len(a.Options) != len(models.OptionKeys) {
		findings = append(findings, Finding{
			Level:   LevelError,
			Code:    "option_count",
			Message: fmt.Sprintf("exactly %d options keyed A-D are required, got %d", len(models.OptionKeys), len(a.Options)),
		})
	}

	seen := make(map[string]string)
	for _, key := range models.OptionKeys {
		text, ok := a.Options[key]
		if !ok {
			findings = append(findings, Finding{
				Level:   LevelError,
				Code:    "option_missing",
				Message: fmt.Sprintf("option %s is missing", key),
			})
			continue
		}
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			findings = append(findings, Finding{
				Level:   LevelError,
				Code:    "option_empty",
				Message: fmt.Sprintf("option %s has empty text", key),
			})
			continue
		}
		norm := strings.ToLower(trimmed)
		if prev, dup := seen[norm]; dup {
			findings = append(findings, Finding{
				Level:   LevelError,
				Code:    "option_duplicate",
				Message: fmt.Sprintf("options %s and %s have identical text", prev, key),
			})
		} else {
			seen[norm] = key
		}
	}

	// Unknown keys are structural defects too.
	var extra []string
	for key := range a.Options {
		known := false
		for _, k := range models.OptionKeys {
			if key == k {
				known = true
				break
			}
		}
		if !known {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	for _, key := range extra {
		findings = append(findings, Finding{
			Level:   LevelError,
			Code:    "option_unknown_key",
			Message: fmt.Sprintf("option key %q is not in A-D", key),
		})
	}

	if _, ok := a.Options[a.CorrectKey]; !ok {
		findings = append(findings, Finding{
			Level:   LevelError,
			Code:    "correct_key_invalid",
			Message: fmt.Sprintf("correct_key %q does not match an option", a.CorrectKey),
		})
	}

	// Advisory heuristics below.
	shortest, longest := -1, 0
	for _, key := range models.OptionKeys {
		text := strings.TrimSpace(a.Options[key])
		if text == "" {
			continue
		}
		if absoluteTermRe.MatchString(strings.ToLower(text)) {
			findings = append(findings, Finding{
				Level:   LevelWarn,
				Code:    "absolute_term",
				Message: fmt.Sprintf("option %s contains an absolute term; absolute phrasing often signals the wrong answers", key),
			})
		}
		if shortest == -1 || len(text) < shortest {
			shortest = len(text)
		}
		if len(text) > longest {
			longest = len(text)
		}
	}
	if shortest > 0 && longest > 3*shortest {
		findings = append(findings, Finding{
			Level:   LevelWarn,
			Code:    "option_length_imbalance",
			Message: "option lengths are heavily imbalanced; the longest option is often a give-away",
		})
	}

	if a.Claim == models.ClaimProcedureProxy {
		low := strings.ToLower(a.Stem)
		framed := false
		for _, marker := range scenarioMarkers {
			if strings.Contains(low, marker) {
				framed = true
				break
			}
		}
		if !framed {
			findings = append(findings, Finding{
				Level:   LevelWarn,
				Code:    "scenario_framing",
				Message: "procedure_proxy items should frame a concrete scenario in the stem",
			})
		}
	}

	return findings
}
