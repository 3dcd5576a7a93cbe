package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/lcs/internal/cli"
	"github.com/example/lcs/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "lcs",
		Short:   "LCS - governance engine for versioned learning content",
		Version: version.String(),
		Long: `LCS governs versioned learning content records (tasks, workflows,
assessment items) through an authoring and review lifecycle with an
append-only audit trail.`,
	}

	// Record lifecycle commands
	rootCmd.AddCommand(cli.TaskCmd())
	rootCmd.AddCommand(cli.WorkflowCmd())
	rootCmd.AddCommand(cli.AssessmentCmd())

	// Governance and identity
	rootCmd.AddCommand(cli.DomainCmd())
	rootCmd.AddCommand(cli.UserCmd())
	rootCmd.AddCommand(cli.AuditCmd())

	// Delivery and ingestion
	rootCmd.AddCommand(cli.ExportCmd())
	rootCmd.AddCommand(cli.ImportCmd())

	// Operations
	rootCmd.AddCommand(cli.DBCmd())
	rootCmd.AddCommand(cli.ServeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
