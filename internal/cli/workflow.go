package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/lcs/internal/models"
	"github.com/example/lcs/internal/ports/primary"
	"github.com/example/lcs/internal/wire"
)

var workflowCmd = &cobra.Command{
	Use:   "workflow",
	Short: "Manage composite workflow records",
	Long:  "Compose task versions into ordered workflows and govern their lifecycle",
}

var workflowCreateCmd = &cobra.Command{
	Use:   "create [title]",
	Short: "Create a new workflow draft (version 1)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		actor, err := resolveActor(cmd)
		if err != nil {
			return err
		}

		objective, _ := cmd.Flags().GetString("objective")
		rawRefs, _ := cmd.Flags().GetStringArray("ref")
		tags, _ := cmd.Flags().GetStringArray("tag")
		rawMeta, _ := cmd.Flags().GetStringArray("meta")

		refs, err := parseTaskRefs(rawRefs)
		if err != nil {
			return err
		}
		meta, err := parseKV(rawMeta)
		if err != nil {
			return err
		}

		wf, err := wire.Default().Workflows.CreateDraft(cmd.Context(), primary.CreateWorkflowRequest{
			Actor:     actor,
			Title:     args[0],
			Objective: objective,
			TaskRefs:  refs,
			Tags:      tags,
			Meta:      meta,
		})
		if err != nil {
			return err
		}

		fmt.Printf("✓ Created workflow %s v%d: %s\n", wf.RecordID, wf.Version, wf.Title)
		fmt.Printf("  Status: %s\n", statusColored(wf.Status))
		fmt.Printf("  Refs: %d\n", len(wf.TaskRefs))
		return nil
	},
}

var workflowReviseCmd = &cobra.Command{
	Use:   "revise [record-id]",
	Short: "Create a new draft version from an existing one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		actor, err := resolveActor(cmd)
		if err != nil {
			return err
		}
		svc := wire.Default().Workflows

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
		source := detail.Workflow

		req := primary.ReviseWorkflowRequest{
			Actor:         actor,
			RecordID:      args[0],
			SourceVersion: sourceVersion,
			ChangeNote:    changeNote,
			Title:         source.Title,
			Objective:     source.Objective,
			TaskRefs:      source.TaskRefs,
			Tags:          source.Tags,
			Meta:          source.Meta,
		}
		if cmd.Flags().Changed("title") {
			req.Title, _ = cmd.Flags().GetString("title")
		}
		if cmd.Flags().Changed("objective") {
			req.Objective, _ = cmd.Flags().GetString("objective")
		}
		if cmd.Flags().Changed("ref") {
			rawRefs, _ := cmd.Flags().GetStringArray("ref")
			if req.TaskRefs, err = parseTaskRefs(rawRefs); err != nil {
				return err
			}
		}

		wf, err := svc.Revise(cmd.Context(), req)
		if err != nil {
			return err
		}

		fmt.Printf("✓ Created workflow %s v%d from v%d\n", wf.RecordID, wf.Version, sourceVersion)
		fmt.Printf("  Change note: %s\n", wf.ChangeNote)
		return nil
	},
}

var workflowShowCmd = &cobra.Command{
	Use:   "show [record-id] [version]",
	Short: "Show one workflow version with derived readiness",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := wire.Default().Workflows

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
		printWorkflow(detail)
		return nil
	},
}

var workflowListCmd = &cobra.Command{
	Use:   "list",
	Short: "List workflow records at their latest version",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")

		summaries, err := wire.Default().Workflows.ListLatest(cmd.Context(), status)
		if err != nil {
			return err
		}
		if len(summaries) == 0 {
			fmt.Println("No workflows found")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "RECORD\tVER\tSTATUS\tREADINESS\tTITLE")
		for _, s := range summaries {
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", s.RecordID, s.LatestVersion, statusColored(s.Status), readinessColored(s.Readiness), s.Title)
		}
		w.Flush()
		return nil
	},
}

var workflowVersionsCmd = &cobra.Command{
	Use:   "versions [record-id]",
	Short: "List every version of a workflow record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		versions, err := wire.Default().Workflows.ListVersions(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "VER\tSTATUS\tREFS\tCREATED\tBY\tCHANGE NOTE")
		for _, wf := range versions {
			note := wf.ChangeNote
			if note == "" {
				note = "-"
			}
			fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\t%s\n", wf.Version, statusColored(wf.Status), len(wf.TaskRefs), formatTime(wf.CreatedAt), wf.CreatedBy, note)
		}
		w.Flush()
		return nil
	},
}

var workflowReadinessCmd = &cobra.Command{
	Use:   "readiness [record-id] [version]",
	Short: "Recompute a workflow version's readiness against live task statuses",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		version, err := parseVersion(args, 1)
		if err != nil {
			return err
		}
		svc := wire.Default().Workflows

		readiness, err := svc.ComputeReadiness(cmd.Context(), args[0], version)
		if err != nil {
			return err
		}
		domains, err := svc.DeriveDomains(cmd.Context(), args[0], version)
		if err != nil {
			return err
		}

		fmt.Printf("Readiness: %s\n", readinessColored(readiness))
		fmt.Printf("Domains: %s\n", strings.Join(domains, ", "))
		return nil
	},
}

func printWorkflow(detail *primary.WorkflowDetail) {
	wf := detail.Workflow
	fmt.Printf("Workflow: %s v%d\n", wf.RecordID, wf.Version)
	fmt.Printf("Title: %s\n", wf.Title)
	fmt.Printf("Status: %s\n", statusColored(wf.Status))
	fmt.Printf("Readiness: %s\n", readinessColored(detail.Readiness))
	if len(detail.Domains) > 0 {
		fmt.Printf("Domains: %s\n", strings.Join(detail.Domains, ", "))
	}
	if wf.Objective != "" {
		fmt.Printf("Objective: %s\n", wf.Objective)
	}
	if len(wf.Tags) > 0 {
		fmt.Printf("Tags: %s\n", strings.Join(wf.Tags, ", "))
	}
	if len(detail.Refs) > 0 {
		fmt.Println("References:")
		for _, ref := range detail.Refs {
			if !ref.Found {
				fmt.Printf("  %d. %s v%d %s\n", ref.OrderIndex+1, ref.RecordID, ref.Version, color.New(color.FgRed).Sprint("MISSING"))
				continue
			}
			fmt.Printf("  %d. %s v%d [%s] %s\n", ref.OrderIndex+1, ref.RecordID, ref.Version, statusColored(ref.Status), ref.Title)
		}
	}
	if wf.ChangeNote != "" {
		fmt.Printf("Change note: %s\n", wf.ChangeNote)
	}
	fmt.Printf("Created: %s by %s\n", formatTime(wf.CreatedAt), wf.CreatedBy)
	if wf.ReviewedBy != "" {
		fmt.Printf("Reviewed: %s by %s\n", formatTime(wf.ReviewedAt), wf.ReviewedBy)
	}
}

func init() {
	workflowCreateCmd.Flags().String("objective", "", "What completing the workflow achieves")
	workflowCreateCmd.Flags().StringArray("ref", nil, "Task reference as \"record-id:version\", in order (repeatable)")
	workflowCreateCmd.Flags().StringArray("tag", nil, "Free-form tag (repeatable)")
	workflowCreateCmd.Flags().StringArray("meta", nil, "Metadata as key=value (repeatable)")

	workflowReviseCmd.Flags().Int("from", 0, "Source version (defaults to latest)")
	workflowReviseCmd.Flags().String("change-note", "", "What changed and why (required)")
	workflowReviseCmd.Flags().String("title", "", "Replacement title")
	workflowReviseCmd.Flags().String("objective", "", "Replacement objective")
	workflowReviseCmd.Flags().StringArray("ref", nil, "Replacement task references (repeatable)")

	workflowListCmd.Flags().StringP("status", "s", "", "Filter by status")

	workflowCmd.AddCommand(workflowCreateCmd)
	workflowCmd.AddCommand(workflowReviseCmd)
	workflowCmd.AddCommand(workflowShowCmd)
	workflowCmd.AddCommand(workflowListCmd)
	workflowCmd.AddCommand(workflowVersionsCmd)
	workflowCmd.AddCommand(workflowReadinessCmd)
	addTransitionCommands(workflowCmd, models.KindWorkflow)
	addActorFlag(workflowCmd)
}

// WorkflowCmd returns the workflow command
func WorkflowCmd() *cobra.Command {
	return workflowCmd
}
