// Package config provides environment-based configuration for the
// server, scheduler, and auth layers.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the application-level settings read from the
// environment. Secrets (JWT, password hashing) live in their own
// config types.
type Config struct {
	DatabaseURL   string // PostgreSQL connection URL (required)
	Port          int    // HTTP listen port
	PurgeSchedule string // cron spec for the stale-recommendation sweep
	PurgeEnabled  bool   // disable to run the server without the scheduler
}

// NewConfig reads application configuration from the environment.
// DATABASE_URL is required; PORT defaults to 8080 and PURGE_SCHEDULE
// to a daily sweep.
func NewConfig() (*Config, error) {
	cfg := &Config{
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		PurgeSchedule: envOr("PURGE_SCHEDULE", "@daily"),
		PurgeEnabled:  envOr("PURGE_ENABLED", "true") != "false",
	}

	port, err := envIntOr("PORT", 8080)
	if err != nil {
		return nil, err
	}
	cfg.Port = port

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// normalize validates the configuration.
func (c *Config) normalize() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required but not set")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT out of range: %d", c.Port)
	}
	if c.PurgeSchedule == "" {
		return fmt.Errorf("PURGE_SCHEDULE cannot be empty")
	}
	return nil
}

// envOr returns the value of key, or fallback when unset or empty
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envIntOr returns the integer value of key, or fallback when unset
func envIntOr(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", key, err)
	}
	return n, nil
}
