package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/solatis/searchcond/internal/core/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the rule-set store schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	Args:  cobra.NoArgs,
	RunE:  runMigrateUp,
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show applied and pending migrations",
	Args:  cobra.NoArgs,
	RunE:  runMigrateStatus,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd, migrateStatusCmd)
}

func runMigrateUp(cmd *cobra.Command, args []string) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("--db-url or SEARCHCOND_DB_URL required")
	}
	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	applied, err := db.MigrateUp(database)
	for _, id := range applied {
		logger.Info("migration applied", zap.String("migration_id", id))
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d migrations applied\n", len(applied))
	return nil
}

func runMigrateStatus(cmd *cobra.Command, args []string) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("--db-url or SEARCHCOND_DB_URL required")
	}
	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	statuses, err := db.MigrateStatus(database)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "MIGRATION\tSTATUS\tAPPLIED AT\tDURATION")
	for _, s := range statuses {
		if !s.Applied {
			fmt.Fprintf(w, "%s\tpending\t-\t-\n", s.ID)
			continue
		}
		appliedAt := "-"
		if s.AppliedAt != nil {
			appliedAt = s.AppliedAt.Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%s\tapplied\t%s\t%dms\n", s.ID, appliedAt, s.ExecutionMs)
	}
	return w.Flush()
}
