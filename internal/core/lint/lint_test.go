package lint

import (
	"testing"

	"github.com/example/lcs/internal/models"
)

func codes(findings []Finding) map[string]int {
	out := make(map[string]int)
	for _, f := range findings {
		out[f.Code]++
	}
	return out
}

func TestSteps(t *testing.T) {
	tests := []struct {
		name      string
		steps     []models.Step
		wantCodes []string
	}{
		{
			name: "clean step has no findings",
			steps: []models.Step{
				{Text: "Run `apt update` to refresh the package index", Completion: "exit code 0"},
			},
			wantCodes: nil,
		},
		{
			name: "abstract verb without method",
			steps: []models.Step{
				{Text: "Configure the firewall", Completion: "firewall active"},
			},
			wantCodes: []string{"abstract_verb"},
		},
		{
			name: "abstract verb excused by code span",
			steps: []models.Step{
				{Text: "Configure the firewall with `ufw enable`", Completion: "ufw status reports active"},
			},
			wantCodes: nil,
		},
		{
			name: "conjunction flags multi action",
			steps: []models.Step{
				{Text: "Stop the service then remove the unit file", Completion: "unit absent"},
			},
			wantCodes: []string{"multi_action"},
		},
		{
			name: "state change without verification",
			steps: []models.Step{
				{Text: "Install the postgres server package", Completion: "package installed"},
			},
			wantCodes: []string{"missing_verification"},
		},
		{
			name: "state change with verification wording",
			steps: []models.Step{
				{Text: "Install the package, verify the service starts", Completion: "systemctl reports active"},
			},
			wantCodes: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := codes(Steps(tt.steps))
			if len(got) != len(tt.wantCodes) {
				t.Fatalf("got %v, want codes %v", got, tt.wantCodes)
			}
			for _, code := range tt.wantCodes {
				if got[code] == 0 {
					t.Errorf("missing finding %q in %v", code, got)
				}
			}
		})
	}
}

func TestSteps_AllWarnLevel(t *testing.T) {
	findings := Steps([]models.Step{
		{Text: "Configure networking and restart", Completion: ""},
		{Text: "Remove the old kernel", Completion: ""},
	})
	if len(findings) == 0 {
		t.Fatal("expected findings")
	}
	if HasErrors(findings) {
		t.Error("step lint findings must never be errors")
	}
}

func validAssessment() *models.Assessment {
	return &models.Assessment{
		Stem: "While patching a fleet, which check best validates the repo mirror?",
		Options: map[string]string{
			"A": "Compare mirror checksums against upstream",
			"B": "Re-run the sync job",
			"C": "Restart the mirror host",
			"D": "Inspect the sync log timestamps",
		},
		CorrectKey: "A",
		Claim:      models.ClaimFactProbe,
	}
}

func TestAssessment_Structural(t *testing.T) {
	t.Run("valid item has no errors", func(t *testing.T) {
		if HasErrors(Assessment(validAssessment())) {
			t.Error("expected no error findings")
		}
	})

	t.Run("missing option", func(t *testing.T) {
		a := validAssessment()
		delete(a.Options, "C")
		got := codes(Assessment(a))
		if got["option_count"] == 0 || got["option_missing"] == 0 {
			t.Errorf("expected option_count and option_missing, got %v", got)
		}
	})

	t.Run("empty option text", func(t *testing.T) {
		a := validAssessment()
		a.Options["B"] = "   "
		got := codes(Assessment(a))
		if got["option_empty"] == 0 {
			t.Errorf("expected option_empty, got %v", got)
		}
	})

	t.Run("duplicate option text", func(t *testing.T) {
		a := validAssessment()
		a.Options["D"] = "re-run the sync job"
		got := codes(Assessment(a))
		if got["option_duplicate"] == 0 {
			t.Errorf("expected option_duplicate, got %v", got)
		}
	})

	t.Run("unknown option key", func(t *testing.T) {
		a := validAssessment()
		a.Options["E"] = "None of the above"
		got := codes(Assessment(a))
		if got["option_unknown_key"] == 0 {
			t.Errorf("expected option_unknown_key, got %v", got)
		}
	})

	t.Run("correct key must match an option", func(t *testing.T) {
		a := validAssessment()
		a.CorrectKey = "E"
		got := codes(Assessment(a))
		if got["correct_key_invalid"] == 0 {
			t.Errorf("expected correct_key_invalid, got %v", got)
		}
	})
}

func TestAssessment_Heuristics(t *testing.T) {
	t.Run("absolute term warns", func(t *testing.T) {
		a := validAssessment()
		a.Options["C"] = "Always restart the mirror host"
		findings := Assessment(a)
		got := codes(findings)
		if got["absolute_term"] == 0 {
			t.Errorf("expected absolute_term, got %v", got)
		}
		if HasErrors(findings) {
			t.Error("absolute_term must not block submission")
		}
	})

	t.Run("length imbalance warns", func(t *testing.T) {
		a := validAssessment()
		a.Options["A"] = "Compare mirror checksums against the published upstream checksums for every release artifact before promoting"
		a.Options["B"] = "Re-run it"
		got := codes(Assessment(a))
		if got["option_length_imbalance"] == 0 {
			t.Errorf("expected option_length_imbalance, got %v", got)
		}
	})

	t.Run("procedure proxy wants scenario framing", func(t *testing.T) {
		a := validAssessment()
		a.Claim = models.ClaimProcedureProxy
		a.Stem = "Which command mounts a filesystem?"
		got := codes(Assessment(a))
		if got["scenario_framing"] == 0 {
			t.Errorf("expected scenario_framing, got %v", got)
		}
	})

	t.Run("framed procedure proxy is clean", func(t *testing.T) {
		a := validAssessment()
		a.Claim = models.ClaimProcedureProxy
		got := codes(Assessment(a))
		if got["scenario_framing"] != 0 {
			t.Errorf("unexpected scenario_framing: %v", got)
		}
	})
}
