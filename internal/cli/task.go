package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/lcs/internal/core/lint"
	"github.com/example/lcs/internal/models"
	"github.com/example/lcs/internal/ports/primary"
	"github.com/example/lcs/internal/wire"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage atomic task records",
	Long:  "Create, revise, and move task records through the review lifecycle",
}

var taskCreateCmd = &cobra.Command{
	Use:   "create [title]",
	Short: "Create a new task draft (version 1)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		actor, err := resolveActor(cmd)
		if err != nil {
			return err
		}

		outcome, _ := cmd.Flags().GetString("outcome")
		domain, _ := cmd.Flags().GetString("domain")
		procedure, _ := cmd.Flags().GetString("procedure")
		facts, _ := cmd.Flags().GetStringArray("fact")
		concepts, _ := cmd.Flags().GetStringArray("concept")
		deps, _ := cmd.Flags().GetStringArray("dep")
		rawSteps, _ := cmd.Flags().GetStringArray("step")
		irreversible, _ := cmd.Flags().GetBool("irreversible")

		steps, err := parseSteps(rawSteps)
		if err != nil {
			return err
		}

		task, err := wire.Default().Tasks.CreateDraft(cmd.Context(), primary.CreateTaskRequest{
			Actor:         actor,
			Title:         args[0],
			Outcome:       outcome,
			ProcedureName: procedure,
			Facts:         facts,
			Concepts:      concepts,
			Dependencies:  deps,
			Steps:         steps,
			Irreversible:  irreversible,
			Domain:        domain,
		})
		if err != nil {
			return err
		}

		fmt.Printf("✓ Created task %s v%d: %s\n", task.RecordID, task.Version, task.Title)
		fmt.Printf("  Status: %s\n", statusColored(task.Status))
		if task.Domain != "" {
			fmt.Printf("  Domain: %s\n", task.Domain)
		}
		return nil
	},
}

var taskReviseCmd = &cobra.Command{
	Use:   "revise [record-id]",
	Short: "Create a new draft version from an existing one",
	Long: `Revise loads the source version and carries its content forward.
Flags override individual fields; --change-note is required.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		actor, err := resolveActor(cmd)
		if err != nil {
			return err
		}
		svc := wire.Default().Tasks

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
		source := detail.Task

		req := primary.ReviseTaskRequest{
			Actor:         actor,
			RecordID:      args[0],
			SourceVersion: sourceVersion,
			ChangeNote:    changeNote,
			Title:         source.Title,
			Outcome:       source.Outcome,
			ProcedureName: source.ProcedureName,
			Facts:         source.Facts,
			Concepts:      source.Concepts,
			Dependencies:  source.Dependencies,
			Steps:         source.Steps,
			Irreversible:  source.IrreversibleFlag,
			Domain:        source.Domain,
		}
		if cmd.Flags().Changed("title") {
			req.Title, _ = cmd.Flags().GetString("title")
		}
		if cmd.Flags().Changed("outcome") {
			req.Outcome, _ = cmd.Flags().GetString("outcome")
		}
		if cmd.Flags().Changed("domain") {
			req.Domain, _ = cmd.Flags().GetString("domain")
		}
		if cmd.Flags().Changed("step") {
			rawSteps, _ := cmd.Flags().GetStringArray("step")
			if req.Steps, err = parseSteps(rawSteps); err != nil {
				return err
			}
		}

		task, err := svc.Revise(cmd.Context(), req)
		if err != nil {
			return err
		}

		fmt.Printf("✓ Created task %s v%d from v%d\n", task.RecordID, task.Version, sourceVersion)
		fmt.Printf("  Change note: %s\n", task.ChangeNote)
		return nil
	},
}

var taskShowCmd = &cobra.Command{
	Use:   "show [record-id] [version]",
	Short: "Show one task version with lint findings",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := wire.Default().Tasks

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
		printTask(detail.Task, detail.Lint)
		return nil
	},
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List task records at their latest version",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")

		summaries, err := wire.Default().Tasks.ListLatest(cmd.Context(), status)
		if err != nil {
			return err
		}
		if len(summaries) == 0 {
			fmt.Println("No tasks found")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "RECORD\tVER\tSTATUS\tDOMAIN\tTITLE")
		for _, s := range summaries {
			marker := ""
			if s.UpdatePendingConfirmation {
				marker = " [update pending]"
			}
			if s.NeedsReviewFlag {
				marker += " [needs review]"
			}
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s%s\n", s.RecordID, s.LatestVersion, statusColored(s.Status), s.Domain, s.Title, marker)
		}
		w.Flush()
		return nil
	},
}

var taskVersionsCmd = &cobra.Command{
	Use:   "versions [record-id]",
	Short: "List every version of a task record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		versions, err := wire.Default().Tasks.ListVersions(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "VER\tSTATUS\tCREATED\tBY\tCHANGE NOTE")
		for _, t := range versions {
			note := t.ChangeNote
			if note == "" {
				note = "-"
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", t.Version, statusColored(t.Status), formatTime(t.CreatedAt), t.CreatedBy, note)
		}
		w.Flush()
		return nil
	},
}

func printTask(t *models.Task, findings []lint.Finding) {
	fmt.Printf("Task: %s v%d\n", t.RecordID, t.Version)
	fmt.Printf("Title: %s\n", t.Title)
	fmt.Printf("Status: %s\n", statusColored(t.Status))
	if t.Domain != "" {
		fmt.Printf("Domain: %s\n", t.Domain)
	}
	if t.Outcome != "" {
		fmt.Printf("Outcome: %s\n", t.Outcome)
	}
	if t.ProcedureName != "" {
		fmt.Printf("Procedure: %s\n", t.ProcedureName)
	}
	if t.IrreversibleFlag {
		fmt.Println("Irreversible: yes")
	}
	for _, f := range t.Facts {
		fmt.Printf("  Fact: %s\n", f)
	}
	for _, c := range t.Concepts {
		fmt.Printf("  Concept: %s\n", c)
	}
	for _, d := range t.Dependencies {
		fmt.Printf("  Requires: %s\n", d)
	}
	if len(t.Steps) > 0 {
		fmt.Println("Steps:")
		for i, s := range t.Steps {
			fmt.Printf("  %d. %s\n", i+1, s.Text)
			if s.Completion != "" {
				fmt.Printf("     Verify: %s\n", s.Completion)
			}
			for _, a := range s.Actions {
				fmt.Printf("     $ %s\n", a)
			}
		}
	}
	if t.ChangeNote != "" {
		fmt.Printf("Change note: %s\n", t.ChangeNote)
	}
	if t.NeedsReviewFlag {
		fmt.Printf("Needs review: %s\n", t.NeedsReviewNote)
	}
	fmt.Printf("Created: %s by %s\n", formatTime(t.CreatedAt), t.CreatedBy)
	if t.ReviewedBy != "" {
		fmt.Printf("Reviewed: %s by %s\n", formatTime(t.ReviewedAt), t.ReviewedBy)
	}
	printLint(findings)
}

func init() {
	taskCreateCmd.Flags().String("outcome", "", "Observable outcome the task produces")
	taskCreateCmd.Flags().String("domain", "", "Governance domain")
	taskCreateCmd.Flags().String("procedure", "", "Procedure name")
	taskCreateCmd.Flags().StringArray("fact", nil, "Fact the task teaches (repeatable)")
	taskCreateCmd.Flags().StringArray("concept", nil, "Concept the task teaches (repeatable)")
	taskCreateCmd.Flags().StringArray("dep", nil, "Dependency statement (repeatable)")
	taskCreateCmd.Flags().StringArray("step", nil, "Step as \"text|completion check\" (repeatable)")
	taskCreateCmd.Flags().Bool("irreversible", false, "Mark the procedure as irreversible")

	taskReviseCmd.Flags().Int("from", 0, "Source version (defaults to latest)")
	taskReviseCmd.Flags().String("change-note", "", "What changed and why (required)")
	taskReviseCmd.Flags().String("title", "", "Replacement title")
	taskReviseCmd.Flags().String("outcome", "", "Replacement outcome")
	taskReviseCmd.Flags().String("domain", "", "Replacement domain")
	taskReviseCmd.Flags().StringArray("step", nil, "Replacement steps (repeatable)")

	taskListCmd.Flags().StringP("status", "s", "", "Filter by status")

	taskCmd.AddCommand(taskCreateCmd)
	taskCmd.AddCommand(taskReviseCmd)
	taskCmd.AddCommand(taskShowCmd)
	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskVersionsCmd)
	addTransitionCommands(taskCmd, models.KindTask)
	addActorFlag(taskCmd)
}

// TaskCmd returns the task command
func TaskCmd() *cobra.Command {
	return taskCmd
}
