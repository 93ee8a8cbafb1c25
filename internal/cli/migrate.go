package cli

import (
	"context"
	"fmt"

	"github.com/orgball2608/insta-archive/internal/db"
	"github.com/orgball2608/insta-archive/pkg/config"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
		Long: `Apply, roll back or inspect the embedded SQL migrations.

Migrations are stored in internal/migrations and compiled into the binary.`,
	}

	cmd.AddCommand(
		migrationCmd("up", "Apply all pending migrations", "Migrations applied successfully", (*db.Postgres).Up),
		migrationCmd("down", "Roll back the latest migration", "Migration rollback successful", (*db.Postgres).Down),
		migrationCmd("status", "Print the state of every migration", "", (*db.Postgres).Status),
		migrationCmd("reset", "Roll back every migration", "All migrations have been rolled back", (*db.Postgres).Reset),
		newMigrationCreateCmd(),
	)
	return cmd
}

func migrationCmd(use, short, done string, run func(*db.Postgres, context.Context) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.New()
			if err != nil {
				return err
			}

			pg, err := db.NewConnect(cfg)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer pg.Close()

			if err := run(pg, cmd.Context()); err != nil {
				return fmt.Errorf("migrate %s: %w", use, err)
			}
			if done != "" {
				fmt.Fprintln(cmd.OutOrStdout(), done)
			}
			return nil
		},
	}
}

func newMigrationCreateCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Write a new timestamped SQL migration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "Creating migration in: %s\n", dir)
			return db.Create(dir, args[0])
		},
	}
	cmd.Flags().StringVar(&dir, "dir", db.SourceDir, "directory the migration file is written to")
	return cmd
}
