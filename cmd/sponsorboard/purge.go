package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/sponsorboard/internal/db"
	"github.com/jonathan/sponsorboard/internal/recommend"
	"github.com/jonathan/sponsorboard/internal/scheduler"
)

var purgeDatabaseURL string

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Remove stale recommendations for all users",
	Long:  "Run the retention sweep once, removing recommendations older than the retention period for every user with history. The serve command runs the same sweep on a schedule.",
	RunE:  runPurge,
}

func init() {
	purgeCmd.Flags().StringVar(&purgeDatabaseURL, "db-url", "", "Database URL (overrides DATABASE_URL)")
	rootCmd.AddCommand(purgeCmd)
}

func runPurge(_ *cobra.Command, _ []string) error {
	databaseURL, err := resolveDatabaseURL(purgeDatabaseURL)
	if err != nil {
		return err
	}

	ctx := context.Background()
	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	sweep := scheduler.New(database, recommend.NewEngine(database))
	removed, err := sweep.Sweep(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Removed %d stale recommendations\n", removed)
	return nil
}
