package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/lcs/internal/core/lint"
	"github.com/example/lcs/internal/models"
	"github.com/example/lcs/internal/ports/primary"
	"github.com/example/lcs/internal/wire"
)

// lifecycleService is the transition surface all three record services
// share.
type lifecycleService interface {
	Submit(ctx context.Context, req primary.TransitionRequest) error
	Confirm(ctx context.Context, req primary.TransitionRequest) error
	ReturnForChanges(ctx context.Context, req primary.ReturnRequest) error
	ForceSubmit(ctx context.Context, req primary.TransitionRequest) error
	ForceConfirm(ctx context.Context, req primary.TransitionRequest) error
}

func lifecycleFor(kind string) lifecycleService {
	switch kind {
	case models.KindTask:
		return wire.Default().Tasks
	case models.KindWorkflow:
		return wire.Default().Workflows
	default:
		return wire.Default().Assessments
	}
}

// addTransitionCommands registers the five status transition subcommands on
// a record command. Every record kind gets the identical surface.
func addTransitionCommands(parent *cobra.Command, kind string) {
	transition := func(use, short string, run func(svc lifecycleService, req primary.TransitionRequest) error) *cobra.Command {
		return &cobra.Command{
			Use:   use + " [record-id] [version]",
			Short: short,
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				actor, err := resolveActor(cmd)
				if err != nil {
					return err
				}
				version, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("invalid version %q", args[1])
				}
				return run(lifecycleFor(kind), primary.TransitionRequest{
					Actor:    actor,
					RecordID: args[0],
					Version:  version,
				})
			},
		}
	}

	submitCmd := transition("submit", fmt.Sprintf("Submit a %s draft for review", kind),
		func(svc lifecycleService, req primary.TransitionRequest) error {
			if err := svc.Submit(context.Background(), req); err != nil {
				return err
			}
			fmt.Printf("✓ Submitted %s %s v%d\n", kind, req.RecordID, req.Version)
			return nil
		})

	confirmCmd := transition("confirm", fmt.Sprintf("Confirm a submitted %s version", kind),
		func(svc lifecycleService, req primary.TransitionRequest) error {
			if err := svc.Confirm(context.Background(), req); err != nil {
				return err
			}
			fmt.Printf("✓ Confirmed %s %s v%d\n", kind, req.RecordID, req.Version)
			return nil
		})

	forceSubmitCmd := transition("force-submit", "Admin override: submit regardless of gates",
		func(svc lifecycleService, req primary.TransitionRequest) error {
			if err := svc.ForceSubmit(context.Background(), req); err != nil {
				return err
			}
			fmt.Printf("%s force-submitted %s %s v%d\n", color.New(color.FgYellow).Sprint("!"), kind, req.RecordID, req.Version)
			return nil
		})

	forceConfirmCmd := transition("force-confirm", "Admin override: confirm regardless of gates",
		func(svc lifecycleService, req primary.TransitionRequest) error {
			if err := svc.ForceConfirm(context.Background(), req); err != nil {
				return err
			}
			fmt.Printf("%s force-confirmed %s %s v%d\n", color.New(color.FgYellow).Sprint("!"), kind, req.RecordID, req.Version)
			return nil
		})

	returnCmd := &cobra.Command{
		Use:   "return [record-id] [version]",
		Short: fmt.Sprintf("Return a submitted %s for changes", kind),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := resolveActor(cmd)
			if err != nil {
				return err
			}
			version, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid version %q", args[1])
			}
			note, _ := cmd.Flags().GetString("note")
			if err := lifecycleFor(kind).ReturnForChanges(cmd.Context(), primary.ReturnRequest{
				Actor:    actor,
				RecordID: args[0],
				Version:  version,
				Note:     note,
			}); err != nil {
				return err
			}
			fmt.Printf("✓ Returned %s %s v%d for changes\n", kind, args[0], version)
			return nil
		},
	}
	returnCmd.Flags().String("note", "", "What must change before resubmission (required)")

	parent.AddCommand(submitCmd)
	parent.AddCommand(confirmCmd)
	parent.AddCommand(returnCmd)
	parent.AddCommand(forceSubmitCmd)
	parent.AddCommand(forceConfirmCmd)
}

// printLint renders advisory lint findings under a record view.
func printLint(findings []lint.Finding) {
	if len(findings) == 0 {
		return
	}
	fmt.Println("Lint:")
	for _, f := range findings {
		icon := color.New(color.FgYellow).Sprint("warn")
		if f.Level == lint.LevelError {
			icon = color.New(color.FgRed).Sprint("error")
		}
		fmt.Printf("  [%s] %s\n", icon, f.Message)
	}
}
