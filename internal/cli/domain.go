package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/lcs/internal/wire"
)

var domainCmd = &cobra.Command{
	Use:   "domain",
	Short: "Manage the governance domain registry",
	Long:  "Register domains and grant users entitlements to act within them",
}

var domainAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Register a new domain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		actor, err := resolveActor(cmd)
		if err != nil {
			return err
		}
		if err := wire.Default().Registry.CreateDomain(cmd.Context(), actor, args[0]); err != nil {
			return err
		}
		fmt.Printf("✓ Registered domain %s\n", args[0])
		return nil
	},
}

var domainDisableCmd = &cobra.Command{
	Use:   "disable [name]",
	Short: "Soft-disable a domain (stops new submits, keeps existing records)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		actor, err := resolveActor(cmd)
		if err != nil {
			return err
		}
		if err := wire.Default().Registry.DisableDomain(cmd.Context(), actor, args[0]); err != nil {
			return err
		}
		fmt.Printf("✓ Disabled domain %s\n", args[0])
		return nil
	},
}

var domainListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered domains",
	RunE: func(cmd *cobra.Command, args []string) error {
		actor, err := resolveActor(cmd)
		if err != nil {
			return err
		}
		domains, err := wire.Default().Registry.ListDomains(cmd.Context(), actor)
		if err != nil {
			return err
		}
		if len(domains) == 0 {
			fmt.Println("No domains registered")
			return nil
		}
		sort.Slice(domains, func(i, j int) bool { return domains[i].Name < domains[j].Name })

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tSTATE\tCREATED")
		for _, d := range domains {
			state := color.New(color.FgGreen).Sprint("active")
			if d.Disabled {
				state = color.New(color.Faint).Sprint("disabled")
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", d.Name, state, formatTime(d.CreatedAt))
		}
		w.Flush()
		return nil
	},
}

var domainGrantCmd = &cobra.Command{
	Use:   "grant [username] [domain]",
	Short: "Entitle a user to a domain",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		actor, err := resolveActor(cmd)
		if err != nil {
			return err
		}
		if err := wire.Default().Registry.Grant(cmd.Context(), actor, args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("✓ Granted %s access to %s\n", args[0], args[1])
		return nil
	},
}

var domainRevokeCmd = &cobra.Command{
	Use:   "revoke [username] [domain]",
	Short: "Revoke a user's domain entitlement",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		actor, err := resolveActor(cmd)
		if err != nil {
			return err
		}
		if err := wire.Default().Registry.Revoke(cmd.Context(), actor, args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("✓ Revoked %s's access to %s\n", args[0], args[1])
		return nil
	},
}

var domainEntitlementsCmd = &cobra.Command{
	Use:   "entitlements [username]",
	Short: "List the domains a user is entitled to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		actor, err := resolveActor(cmd)
		if err != nil {
			return err
		}
		domains, err := wire.Default().Registry.EntitledDomains(cmd.Context(), actor, args[0])
		if err != nil {
			return err
		}
		if len(domains) == 0 {
			fmt.Printf("%s has no domain entitlements\n", args[0])
			return nil
		}
		fmt.Printf("%s: %s\n", args[0], strings.Join(domains, ", "))
		return nil
	},
}

func init() {
	domainCmd.AddCommand(domainAddCmd)
	domainCmd.AddCommand(domainDisableCmd)
	domainCmd.AddCommand(domainListCmd)
	domainCmd.AddCommand(domainGrantCmd)
	domainCmd.AddCommand(domainRevokeCmd)
	domainCmd.AddCommand(domainEntitlementsCmd)
	addActorFlag(domainCmd)
}

// DomainCmd returns the domain command
func DomainCmd() *cobra.Command {
	return domainCmd
}
