// Package cli implements the lcs command tree. Commands are thin: they
// parse flags into service requests and render results; every rule lives
// behind the service interfaces.
package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/lcs/internal/models"
	"github.com/example/lcs/internal/ports/primary"
	"github.com/example/lcs/internal/wire"
)

// resolveActor determines who is acting: the --as flag, falling back to the
// configured default actor.
func resolveActor(cmd *cobra.Command) (primary.Actor, error) {
	username, _ := cmd.Flags().GetString("as")
	if username == "" {
		username = wire.Cfg().DefaultActor
	}
	if username == "" {
		return primary.Actor{}, fmt.Errorf("no actor: pass --as <username> or set default_actor in the config")
	}
	return wire.Default().ResolveActor(cmd.Context(), username)
}

// addActorFlag registers the --as flag on a command and its subcommands.
func addActorFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().String("as", "", "Username to act as (defaults to config default_actor)")
}

// parseVersion parses a positional version argument, treating an absent
// argument as "latest" (0).
func parseVersion(args []string, index int) (int, error) {
	if len(args) <= index {
		return 0, nil
	}
	v, err := strconv.Atoi(args[index])
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid version %q", args[index])
	}
	return v, nil
}

// parseKV parses repeated key=value flags into a map.
func parseKV(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid key=value pair %q", p)
		}
		out[key] = value
	}
	return out, nil
}

// parseSteps parses repeated --step flags of the form "text|completion".
func parseSteps(raw []string) ([]models.Step, error) {
	steps := make([]models.Step, 0, len(raw))
	for _, r := range raw {
		text, completion, _ := strings.Cut(r, "|")
		if strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("invalid step %q: expected \"text|completion\"", r)
		}
		steps = append(steps, models.Step{Text: strings.TrimSpace(text), Completion: strings.TrimSpace(completion)})
	}
	return steps, nil
}

// parseTaskRefs parses repeated --ref flags of the form "record-id:version".
func parseTaskRefs(raw []string) ([]models.TaskRef, error) {
	refs := make([]models.TaskRef, 0, len(raw))
	for i, r := range raw {
		recordID, versionStr, ok := strings.Cut(r, ":")
		if !ok {
			return nil, fmt.Errorf("invalid ref %q: expected \"record-id:version\"", r)
		}
		version, err := strconv.Atoi(versionStr)
		if err != nil {
			return nil, fmt.Errorf("invalid ref version in %q", r)
		}
		refs = append(refs, models.TaskRef{OrderIndex: i, RecordID: recordID, Version: version})
	}
	return refs, nil
}

// statusColored renders a record status with the conventional color.
func statusColored(status string) string {
	switch status {
	case models.StatusDraft:
		return color.New(color.FgYellow).Sprint(status)
	case models.StatusSubmitted:
		return color.New(color.FgCyan).Sprint(status)
	case models.StatusReturned:
		return color.New(color.FgMagenta).Sprint(status)
	case models.StatusConfirmed:
		return color.New(color.FgGreen).Sprint(status)
	case models.StatusDeprecated:
		return color.New(color.Faint).Sprint(status)
	default:
		return status
	}
}

// readinessColored renders a workflow readiness classification.
func readinessColored(readiness string) string {
	switch readiness {
	case models.ReadinessReady:
		return color.New(color.FgGreen).Sprint(readiness)
	case models.ReadinessAwaiting:
		return color.New(color.FgYellow).Sprint(readiness)
	case models.ReadinessInvalid:
		return color.New(color.FgRed).Sprint(readiness)
	default:
		return readiness
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
