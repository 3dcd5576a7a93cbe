package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/lcs/internal/ports/primary"
	"github.com/example/lcs/internal/wire"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export confirmed content for delivery",
}

var exportWorkflowCmd = &cobra.Command{
	Use:   "workflow [record-id] [version]",
	Short: "Render a confirmed workflow as Markdown or HTML",
	Long: `Export renders a confirmed, ready workflow with its referenced task
versions inlined in order. Omitting the version selects the currently
confirmed one.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		actor, err := resolveActor(cmd)
		if err != nil {
			return err
		}
		version, err := parseVersion(args, 1)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		out, _ := cmd.Flags().GetString("out")

		result, err := wire.Default().Delivery.ExportWorkflow(cmd.Context(), primary.ExportRequest{
			Actor:    actor,
			RecordID: args[0],
			Version:  version,
			Format:   format,
		})
		if err != nil {
			return err
		}

		if out == "" || out == "-" {
			os.Stdout.Write(result.Content)
			return nil
		}
		if err := os.WriteFile(out, result.Content, 0644); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Exported %s v%d (%s, %d bytes) to %s\n", result.RecordID, result.Version, result.Format, len(result.Content), out)
		return nil
	},
}

func init() {
	exportWorkflowCmd.Flags().StringP("format", "f", primary.FormatMarkdown, "Output format: markdown or html")
	exportWorkflowCmd.Flags().StringP("out", "o", "", "Output file (defaults to stdout)")

	exportCmd.AddCommand(exportWorkflowCmd)
	addActorFlag(exportCmd)
}

// ExportCmd returns the export command
func ExportCmd() *cobra.Command {
	return exportCmd
}
