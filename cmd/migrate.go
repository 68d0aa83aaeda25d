package cmd

import (
	"context"
	"fmt"
	"strconv"

	"barrierbet/config"
	"barrierbet/database"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateStatusCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(cmd.Context(), func(mg *database.Migrator) error {
			return mg.Up()
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down [steps]",
	Short: "Roll back migrations (default 1)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		steps := 1
		if len(args) == 1 {
			parsed, err := strconv.Atoi(args[0])
			if err != nil || parsed < 1 {
				return fmt.Errorf("steps must be a positive integer, got %q", args[0])
			}
			steps = parsed
		}
		return withMigrator(cmd.Context(), func(mg *database.Migrator) error {
			return mg.Down(steps)
		})
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current schema version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(cmd.Context(), func(mg *database.Migrator) error {
			status, err := mg.Status()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !status.Applied {
				fmt.Fprintln(out, "No migrations applied")
				return nil
			}
			fmt.Fprintf(out, "Version: %d\n", status.Version)
			if status.Dirty {
				fmt.Fprintln(out, "State:   dirty (a migration failed part way; fix the schema and force the version)")
			} else {
				fmt.Fprintln(out, "State:   clean")
			}
			return nil
		})
	},
}

// withMigrator opens a migrator for the configured engine
func withMigrator(ctx context.Context, fn func(*database.Migrator) error) error {
	cfg := config.Get()

	var mg *database.Migrator
	switch cfg.StorageDriver {
	case config.StorageDriverSQLite:
		db, err := database.ConnectSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return err
		}
		defer db.Close()

		mg, err = database.NewSQLiteMigrator(db)
		if err != nil {
			return err
		}

	default:
		var err error
		mg, err = database.NewPostgresMigrator(cfg.GetDatabaseURL())
		if err != nil {
			return err
		}
	}
	defer mg.Close()

	return fn(mg)
}
