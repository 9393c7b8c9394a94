package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/jonathan/sponsorboard/internal/config"
	"github.com/jonathan/sponsorboard/internal/recommend"
	"github.com/jonathan/sponsorboard/internal/scheduler"
	"github.com/jonathan/sponsorboard/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  "Start the HTTP server that exposes the auth, preference, job, and recommendation endpoints, plus the daily retention sweep.",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.NewConfig()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}

	srv, err := server.New(server.Config{
		Port:        cfg.Port,
		DatabaseURL: cfg.DatabaseURL,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	if cfg.PurgeEnabled {
		sched := scheduler.New(srv.DB(), recommend.NewEngine(srv.DB()))
		if err := sched.Start(cfg.PurgeSchedule); err != nil {
			return err
		}
		defer sched.Stop()
	} else {
		log.Println("[scheduler] Retention sweep disabled")
	}

	return srv.Start()
}
