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

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run the recommendation engine for one user",
	Long:  "Run a one-off generation pass for a user, scoring active sponsor jobs against their preferences and persisting the ranked results.",
	RunE:  runGenerate,
}

var (
	generateUser        string
	generateLimit       int
	generateRefresh     bool
	generateVerbose     bool
	generateDatabaseURL string
)

func init() {
	generateCmd.Flags().StringVar(&generateUser, "user", "", "User ID to generate recommendations for (required)")
	generateCmd.Flags().IntVar(&generateLimit, "limit", 0, "Maximum recommendations to produce (0 = user's preference)")
	generateCmd.Flags().BoolVar(&generateRefresh, "refresh", false, "Bypass the cache and re-score everything")
	generateCmd.Flags().BoolVarP(&generateVerbose, "verbose", "v", false, "Print preferences, matches, and run summary")
	generateCmd.Flags().StringVar(&generateDatabaseURL, "db-url", "", "Database URL (overrides DATABASE_URL)")
	_ = generateCmd.MarkFlagRequired("user")

	rootCmd.AddCommand(generateCmd)
}

// resolveDatabaseURL prefers the flag over the environment
func resolveDatabaseURL(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url, nil
	}
	return "", fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required")
}

func runGenerate(_ *cobra.Command, _ []string) error {
	userID, err := uuid.Parse(generateUser)
	if err != nil {
		return fmt.Errorf("invalid user ID: %w", err)
	}

	databaseURL, err := resolveDatabaseURL(generateDatabaseURL)
	if err != nil {
		return err
	}

	ctx := context.Background()
	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	engine := recommend.NewEngine(database)
	printer := observability.NewPrinter(os.Stdout)

	if generateVerbose {
		prefs, err := database.GetOrCreatePreferences(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to load preferences: %w", err)
		}
		printer.PrintPreferences(prefs)
	}

	recs, err := engine.Generate(ctx, userID, generateLimit, generateRefresh)
	if err != nil {
		return err
	}

	if generateVerbose {
		printer.PrintRecommendations(recs)
		batch, err := database.GetLatestBatch(ctx, userID)
		if err == nil && batch != nil {
			printer.PrintBatchSummary(batch)
		}
		return nil
	}

	fmt.Fprintf(os.Stdout, "Generated %d recommendations for user %s\n", len(recs), userID)
	return nil
}
