package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/sponsorboard/internal/db"
	"github.com/jonathan/sponsorboard/internal/observability"
	"github.com/jonathan/sponsorboard/internal/recommend"
)

var (
	statsUser        string
	statsDatabaseURL string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show one user's recommendation history",
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsUser, "user", "", "User ID to report on (required)")
	statsCmd.Flags().StringVar(&statsDatabaseURL, "db-url", "", "Database URL (overrides DATABASE_URL)")
	_ = statsCmd.MarkFlagRequired("user")

	rootCmd.AddCommand(statsCmd)
}

func runStats(_ *cobra.Command, _ []string) error {
	userID, err := uuid.Parse(statsUser)
	if err != nil {
		return fmt.Errorf("invalid user ID: %w", err)
	}

	databaseURL, err := resolveDatabaseURL(statsDatabaseURL)
	if err != nil {
		return err
	}

	ctx := context.Background()
	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	stats, err := recommend.NewEngine(database).Stats(ctx, userID)
	if err != nil {
		return err
	}

	observability.NewPrinter(os.Stdout).PrintStats(stats)
	return nil
}
