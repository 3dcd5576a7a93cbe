package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/lcs/internal/models"
	"github.com/example/lcs/internal/ports/primary"
	"github.com/example/lcs/internal/wire"
)

// taskImport is the JSON shape ingestion pipelines hand over. Each entry
// becomes a draft v1 with needs_review set.
type taskImport struct {
	Title         string        `json:"title"`
	Outcome       string        `json:"outcome"`
	ProcedureName string        `json:"procedure_name"`
	Facts         []string      `json:"facts"`
	Concepts      []string      `json:"concepts"`
	Dependencies  []string      `json:"dependencies"`
	Steps         []models.Step `json:"steps"`
	Irreversible  bool          `json:"irreversible"`
	Domain        string        `json:"domain"`
	SourceNote    string        `json:"source_note"`
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Ingest externally produced content as drafts",
}

var importTasksCmd = &cobra.Command{
	Use:   "tasks [file.json]",
	Short: "Create draft tasks from a JSON candidate file",
	Long: `Import reads a JSON array of task candidates and creates one draft v1
record per entry, flagged needs_review. Drafts go through the same
submit/confirm lifecycle as manually authored content.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		actor, err := resolveActor(cmd)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read import file: %w", err)
		}
		var candidates []taskImport
		if err := json.Unmarshal(data, &candidates); err != nil {
			return fmt.Errorf("failed to parse import file: %w", err)
		}
		if len(candidates) == 0 {
			return fmt.Errorf("import file contains no tasks")
		}

		source := filepath.Base(args[0])
		created, failed := 0, 0
		for i, c := range candidates {
			note := c.SourceNote
			if note == "" {
				note = "imported candidate; verify content before submitting"
			}
			task, err := wire.Default().Tasks.CreateDraft(cmd.Context(), primary.CreateTaskRequest{
				Actor:           actor,
				Title:           c.Title,
				Outcome:         c.Outcome,
				ProcedureName:   c.ProcedureName,
				Facts:           c.Facts,
				Concepts:        c.Concepts,
				Dependencies:    c.Dependencies,
				Steps:           c.Steps,
				Irreversible:    c.Irreversible,
				Domain:          c.Domain,
				NeedsReview:     true,
				NeedsReviewNote: note,
				AuditNote:       fmt.Sprintf("imported from %s", source),
			})
			if err != nil {
				failed++
				fmt.Printf("  %s entry %d (%q): %v\n", color.New(color.FgRed).Sprint("✗"), i+1, c.Title, err)
				continue
			}
			created++
			fmt.Printf("  ✓ %s v1: %s\n", task.RecordID, task.Title)
		}

		fmt.Printf("Imported %d of %d tasks as drafts\n", created, len(candidates))
		if failed > 0 {
			return fmt.Errorf("%d entries failed", failed)
		}
		return nil
	},
}

func init() {
	importCmd.AddCommand(importTasksCmd)
	addActorFlag(importCmd)
}

// ImportCmd returns the import command
func ImportCmd() *cobra.Command {
	return importCmd
}
