package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/lcs/internal/models"
	"github.com/example/lcs/internal/ports/primary"
	"github.com/example/lcs/internal/wire"
)

var assessmentCmd = &cobra.Command{
	Use:     "assessment",
	Aliases: []string{"item"},
	Short:   "Manage multiple-choice assessment items",
	Long:    "Create, revise, and govern assessment items probing tasks and workflows",
}

// parseAssessmentRefs parses repeated --ref flags of the form
// "kind:record-id:version" where kind is task or workflow.
func parseAssessmentRefs(raw []string) ([]models.AssessmentRef, error) {
	refs := make([]models.AssessmentRef, 0, len(raw))
	for i, r := range raw {
		parts := strings.SplitN(r, ":", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid ref %q: expected \"task|workflow:record-id:version\"", r)
		}
		version, err := strconv.Atoi(parts[2])
		if err != nil {
			return nil, fmt.Errorf("invalid ref version in %q", r)
		}
		refs = append(refs, models.AssessmentRef{
			OrderIndex: i,
			RefType:    parts[0],
			RecordID:   parts[1],
			Version:    version,
		})
	}
	return refs, nil
}

var assessmentCreateCmd = &cobra.Command{
	Use:   "create [stem]",
	Short: "Create a new assessment item draft (version 1)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		actor, err := resolveActor(cmd)
		if err != nil {
			return err
		}

		rawOptions, _ := cmd.Flags().GetStringArray("option")
		correct, _ := cmd.Flags().GetString("correct")
		rationale, _ := cmd.Flags().GetString("rationale")
		claim, _ := cmd.Flags().GetString("claim")
		rawRefs, _ := cmd.Flags().GetStringArray("ref")
		tags, _ := cmd.Flags().GetStringArray("tag")

		options, err := parseKV(rawOptions)
		if err != nil {
			return err
		}
		refs, err := parseAssessmentRefs(rawRefs)
		if err != nil {
			return err
		}

		item, err := wire.Default().Assessments.CreateDraft(cmd.Context(), primary.CreateAssessmentRequest{
			Actor:      actor,
			Stem:       args[0],
			Options:    options,
			CorrectKey: correct,
			Rationale:  rationale,
			Claim:      claim,
			Refs:       refs,
			Tags:       tags,
		})
		if err != nil {
			return err
		}

		fmt.Printf("✓ Created assessment %s v%d\n", item.RecordID, item.Version)
		fmt.Printf("  Status: %s\n", statusColored(item.Status))
		fmt.Printf("  Claim: %s\n", item.Claim)
		return nil
	},
}

var assessmentReviseCmd = &cobra.Command{
	Use:   "revise [record-id]",
	Short: "Create a new draft version from an existing one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		actor, err := resolveActor(cmd)
		if err != nil {
			return err
		}
		svc := wire.Default().Assessments

		sourceVersion, _ := cmd.Flags().GetInt("from")
		changeNote, _ := cmd.Flags().GetString("change-note")
		if sourceVersion == 0 {
			versions, err := svc.ListVersions(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			sourceVersion = versions[len(versions)-1].Version
		}

		detail, err := svc.Get(cmd.Context(), args[0], sourceVersion)
		if err != nil {
			return err
		}
		source := detail.Assessment

		req := primary.ReviseAssessmentRequest{
			Actor:         actor,
			RecordID:      args[0],
			SourceVersion: sourceVersion,
			ChangeNote:    changeNote,
			Stem:          source.Stem,
			Options:       source.Options,
			CorrectKey:    source.CorrectKey,
			Rationale:     source.Rationale,
			Claim:         source.Claim,
			Refs:          source.Refs,
			Tags:          source.Tags,
			Meta:          source.Meta,
		}
		if cmd.Flags().Changed("stem") {
			req.Stem, _ = cmd.Flags().GetString("stem")
		}
		if cmd.Flags().Changed("correct") {
			req.CorrectKey, _ = cmd.Flags().GetString("correct")
		}
		if cmd.Flags().Changed("option") {
			rawOptions, _ := cmd.Flags().GetStringArray("option")
			overrides, err := parseKV(rawOptions)
			if err != nil {
				return err
			}
			merged := make(map[string]string, len(source.Options))
			for k, v := range source.Options {
				merged[k] = v
			}
			for k, v := range overrides {
				merged[k] = v
			}
			req.Options = merged
		}

		item, err := svc.Revise(cmd.Context(), req)
		if err != nil {
			return err
		}

		fmt.Printf("✓ Created assessment %s v%d from v%d\n", item.RecordID, item.Version, sourceVersion)
		fmt.Printf("  Change note: %s\n", item.ChangeNote)
		return nil
	},
}

var assessmentShowCmd = &cobra.Command{
	Use:   "show [record-id] [version]",
	Short: "Show one assessment version with lint findings",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := wire.Default().Assessments

		version, err := parseVersion(args, 1)
		if err != nil {
			return err
		}
		if version == 0 {
			versions, err := svc.ListVersions(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			version = versions[len(versions)-1].Version
		}

		detail, err := svc.Get(cmd.Context(), args[0], version)
		if err != nil {
			return err
		}
		printAssessment(detail)
		return nil
	},
}

var assessmentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List assessment items at their latest version",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")

		summaries, err := wire.Default().Assessments.ListLatest(cmd.Context(), status)
		if err != nil {
			return err
		}
		if len(summaries) == 0 {
			fmt.Println("No assessment items found")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "RECORD\tVER\tSTATUS\tCLAIM\tSTEM")
		for _, s := range summaries {
			stem := s.Stem
			if len(stem) > 60 {
				stem = stem[:57] + "..."
			}
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", s.RecordID, s.LatestVersion, statusColored(s.Status), s.Claim, stem)
		}
		w.Flush()
		return nil
	},
}

var assessmentVersionsCmd = &cobra.Command{
	Use:   "versions [record-id]",
	Short: "List every version of an assessment item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		versions, err := wire.Default().Assessments.ListVersions(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "VER\tSTATUS\tCREATED\tBY\tCHANGE NOTE")
		for _, a := range versions {
			note := a.ChangeNote
			if note == "" {
				note = "-"
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", a.Version, statusColored(a.Status), formatTime(a.CreatedAt), a.CreatedBy, note)
		}
		w.Flush()
		return nil
	},
}

func printAssessment(detail *primary.AssessmentDetail) {
	a := detail.Assessment
	fmt.Printf("Assessment: %s v%d\n", a.RecordID, a.Version)
	fmt.Printf("Status: %s\n", statusColored(a.Status))
	fmt.Printf("Claim: %s\n", a.Claim)
	if len(detail.Domains) > 0 {
		fmt.Printf("Domains: %s\n", strings.Join(detail.Domains, ", "))
	}
	fmt.Printf("Stem: %s\n", a.Stem)
	for _, key := range models.OptionKeys {
		marker := " "
		if key == a.CorrectKey {
			marker = "*"
		}
		fmt.Printf("  %s %s. %s\n", marker, key, a.Options[key])
	}
	if a.Rationale != "" {
		fmt.Printf("Rationale: %s\n", a.Rationale)
	}
	if len(a.Refs) > 0 {
		fmt.Println("References:")
		for _, ref := range a.Refs {
			fmt.Printf("  %d. %s %s v%d\n", ref.OrderIndex+1, ref.RefType, ref.RecordID, ref.Version)
		}
	}
	if a.ChangeNote != "" {
		fmt.Printf("Change note: %s\n", a.ChangeNote)
	}
	fmt.Printf("Created: %s by %s\n", formatTime(a.CreatedAt), a.CreatedBy)
	if a.ReviewedBy != "" {
		fmt.Printf("Reviewed: %s by %s\n", formatTime(a.ReviewedAt), a.ReviewedBy)
	}
	printLint(detail.Lint)
}

func init() {
	assessmentCreateCmd.Flags().StringArray("option", nil, "Option as KEY=text, keys A-D (repeatable)")
	assessmentCreateCmd.Flags().String("correct", "", "Correct option key")
	assessmentCreateCmd.Flags().String("rationale", "", "Why the correct answer is correct")
	assessmentCreateCmd.Flags().String("claim", "", "Claim type: fact_probe, concept_check, procedure_proxy")
	assessmentCreateCmd.Flags().StringArray("ref", nil, "Reference as \"task|workflow:record-id:version\" (repeatable)")
	assessmentCreateCmd.Flags().StringArray("tag", nil, "Free-form tag (repeatable)")

	assessmentReviseCmd.Flags().Int("from", 0, "Source version (defaults to latest)")
	assessmentReviseCmd.Flags().String("change-note", "", "What changed and why (required)")
	assessmentReviseCmd.Flags().String("stem", "", "Replacement stem")
	assessmentReviseCmd.Flags().String("correct", "", "Replacement correct key")
	assessmentReviseCmd.Flags().StringArray("option", nil, "Option override as KEY=text (repeatable)")

	assessmentListCmd.Flags().StringP("status", "s", "", "Filter by status")

	assessmentCmd.AddCommand(assessmentCreateCmd)
	assessmentCmd.AddCommand(assessmentReviseCmd)
	assessmentCmd.AddCommand(assessmentShowCmd)
	assessmentCmd.AddCommand(assessmentListCmd)
	assessmentCmd.AddCommand(assessmentVersionsCmd)
	addTransitionCommands(assessmentCmd, models.KindAssessment)
	addActorFlag(assessmentCmd)
}

// AssessmentCmd returns the assessment command
func AssessmentCmd() *cobra.Command {
	return assessmentCmd
}
