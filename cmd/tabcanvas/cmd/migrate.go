package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/tabcanvas/internal/database"
	"github.com/jmylchreest/tabcanvas/internal/observability"
)

var migrateJSON bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Database schema commands",
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show applied and pending migrations",
	Args:  cobra.NoArgs,
	RunE: withDatabase(func(ctx context.Context, cmd *cobra.Command, db *database.DB) error {
		statuses, err := db.MigrationStatus(ctx)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if migrateJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(statuses)
		}

		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "VERSION\tSTATE\tAPPLIED AT\tDESCRIPTION")
		for _, s := range statuses {
			state, at := "pending", "-"
			if s.Applied {
				state = "applied"
				at = s.AppliedAt.Local().Format(time.DateTime)
			}
			if s.Unknown {
				state = "unknown"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.Version, state, at, s.Description)
		}
		return tw.Flush()
	}),
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	Args:  cobra.NoArgs,
	RunE: withDatabase(func(ctx context.Context, cmd *cobra.Command, db *database.DB) error {
		if err := db.Migrate(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
		return nil
	}),
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migration",
	Args:  cobra.NoArgs,
	RunE: withDatabase(func(ctx context.Context, cmd *cobra.Command, db *database.DB) error {
		if err := db.Rollback(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "rolled back one migration")
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateStatusCmd, migrateUpCmd, migrateDownCmd)
	migrateStatusCmd.Flags().BoolVar(&migrateJSON, "json", false, "print status as JSON")
}

// withDatabase opens the configured database without migrating it.
func withDatabase(fn func(ctx context.Context, cmd *cobra.Command, db *database.DB) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		logger := newLogger(cfg.Logging)
		db, err := database.New(cfg.Database, observability.WithComponent(logger, "database"))
		if err != nil {
			return fmt.Errorf("initializing database: %w", err)
		}
		defer func() { _ = db.Close() }()
		return fn(ctx, cmd, db)
	}
}
