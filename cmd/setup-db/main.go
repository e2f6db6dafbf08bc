// Command setup-db applies the schema and repairs reaction-role counters
// without starting the bot.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"score-bot/tasks"
	"score-bot/utils"
	"score-bot/utils/database"
)

type rootOptions struct {
	Driver string
	DSN    string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "setup-db",
		Short:         "Manage the score bot database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.Driver, "driver", envOr("DATABASE_DRIVER", database.DriverSQLite), "database driver (sqlite3 or postgres)")
	cmd.PersistentFlags().StringVar(&opts.DSN, "dsn", envOr("DATABASE_URL", "data/score.db"), "database path or connection string")

	cmd.AddCommand(newMigrateCommand(opts), newReconcileCommand(opts))
	return cmd
}

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create missing tables and indexes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.Open(opts.Driver, opts.DSN)
			if err != nil {
				return err
			}
			defer db.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "schema is up to date (%s)\n", db.Driver())
			return nil
		},
	}
}

func newReconcileCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Recompute reaction-role slots from the recorded holders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.Open(opts.Driver, opts.DSN)
			if err != nil {
				return err
			}
			defer db.Close()
			n, err := tasks.ReconcileSlots(cmd.Context(), db)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reconciled %d reaction roles\n", n)
			return nil
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	utils.InitLogger(envOr("LOG_LEVEL", "warn"), "text")
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
