package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/lcs/internal/wire"
)

var auditCmd = &cobra.Command{
	Use:   "audit [kind] [record-id]",
	Short: "Show the audit trail of a record",
	Long:  "List every governance action ever taken on a record, oldest first",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		actor, err := resolveActor(cmd)
		if err != nil {
			return err
		}
		events, err := wire.Default().Audit.ListForRecord(cmd.Context(), actor, args[0], args[1])
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "AT\tVER\tACTION\tACTOR\tNOTE")
		for _, e := range events {
			note := e.Note
			if note == "" {
				note = "-"
			}
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", formatTime(e.At), e.Version, e.Action, e.Actor, note)
		}
		w.Flush()
		return nil
	},
}

func init() {
	addActorFlag(auditCmd)
}

// AuditCmd returns the audit command
func AuditCmd() *cobra.Command {
	return auditCmd
}
