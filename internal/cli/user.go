package cli

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/lcs/internal/wire"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts",
}

var userAddCmd = &cobra.Command{
	Use:   "add [username]",
	Short: "Create a user account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		actor, err := resolveActor(cmd)
		if err != nil {
			return err
		}
		role, _ := cmd.Flags().GetString("role")
		password, _ := cmd.Flags().GetString("password")

		if err := wire.Default().Users.Create(cmd.Context(), actor, args[0], password, role); err != nil {
			return err
		}
		fmt.Printf("✓ Created user %s (%s)\n", args[0], role)
		return nil
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List user accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		actor, err := resolveActor(cmd)
		if err != nil {
			return err
		}
		users, err := wire.Default().Users.List(cmd.Context(), actor)
		if err != nil {
			return err
		}
		sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "USERNAME\tROLE\tCREATED")
		for _, u := range users {
			fmt.Fprintf(w, "%s\t%s\t%s\n", u.Username, u.Role, formatTime(u.CreatedAt))
		}
		w.Flush()
		return nil
	},
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete [username]",
	Short: "Delete a user account and its entitlements",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		actor, err := resolveActor(cmd)
		if err != nil {
			return err
		}
		if err := wire.Default().Users.Delete(cmd.Context(), actor, args[0]); err != nil {
			return err
		}
		fmt.Printf("✓ Deleted user %s\n", args[0])
		return nil
	},
}

func init() {
	userAddCmd.Flags().String("role", "viewer", "Role: viewer, author, assessment_author, reviewer, content_publisher, admin")
	userAddCmd.Flags().String("password", "", "Initial password")

	userCmd.AddCommand(userAddCmd)
	userCmd.AddCommand(userListCmd)
	userCmd.AddCommand(userDeleteCmd)
	addActorFlag(userCmd)
}

// UserCmd returns the user command
func UserCmd() *cobra.Command {
	return userCmd
}
