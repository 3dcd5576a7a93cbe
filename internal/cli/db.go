package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/lcs/internal/config"
	"github.com/example/lcs/internal/core/authz"
	"github.com/example/lcs/internal/db"
	"github.com/example/lcs/internal/wire"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage database profiles",
}

var dbInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the config and initialize the active database",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default() creates the config on first use and runs migrations.
		wire.Default()
		path, err := wire.Cfg().ActiveDBPath()
		if err != nil {
			return err
		}
		fmt.Printf("✓ Database ready: %s (profile %s)\n", path, wire.Cfg().ActiveProfile)
		return nil
	},
}

var dbSeedDemoCmd = &cobra.Command{
	Use:   "seed-demo",
	Short: "Seed demo domains, users, and entitlements",
	Long:  "Idempotent. All demo accounts use the password \"demo\".",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := db.SeedDemo(wire.Default().DB); err != nil {
			return err
		}
		fmt.Println("✓ Seeded demo domains, users, and entitlements")
		fmt.Println("  Accounts: vera (viewer), alice (author), quinn (assessment_author),")
		fmt.Println("            rex (reviewer), pat (content_publisher), root (admin)")
		return nil
	},
}

var dbSwitchCmd = &cobra.Command{
	Use:   "switch [profile]",
	Short: "Switch the active database profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		actor, err := resolveActor(cmd)
		if err != nil {
			return err
		}
		if !authz.CanPerform(actor.Role, authz.ActionDBSwitch) {
			return fmt.Errorf("role %s may not switch databases", actor.Role)
		}

		profile := args[0]
		path, _ := cmd.Flags().GetString("path")

		dir, err := config.Dir()
		if err != nil {
			return err
		}
		cfg, err := config.Load(dir)
		if err != nil {
			return err
		}

		if path != "" {
			cfg.Profiles[profile] = path
		}
		if _, ok := cfg.Profiles[profile]; !ok {
			return fmt.Errorf("unknown profile %q (register it with --path)", profile)
		}
		cfg.ActiveProfile = profile
		if err := config.Save(dir, cfg); err != nil {
			return err
		}

		fmt.Printf("✓ Active profile: %s (%s)\n", profile, cfg.Profiles[profile])
		return nil
	},
}

var dbPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the active database path",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := wire.Cfg().ActiveDBPath()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

func init() {
	dbSwitchCmd.Flags().String("path", "", "Register the profile at this database path")

	dbCmd.AddCommand(dbInitCmd)
	dbCmd.AddCommand(dbSeedDemoCmd)
	dbCmd.AddCommand(dbSwitchCmd)
	dbCmd.AddCommand(dbPathCmd)
	addActorFlag(dbCmd)
}

// DBCmd returns the db command
func DBCmd() *cobra.Command {
	return dbCmd
}
