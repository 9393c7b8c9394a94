// Package main provides the entry point for the sponsorboard API server
// and its companion CLI commands.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sponsorboard",
	Short: "Sponsorboard job recommendation backend",
	Long:  "Sponsorboard matches job seekers who need UK visa sponsorship with active postings at licensed sponsor companies, via a REST API and a rule-based recommendation engine.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
