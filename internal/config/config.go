// Package config centralises configuration parsing for the sync daemon.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config captures runtime configuration values for the sync daemon.
type Config struct {
	HTTPAddress   string
	DatabasePath  string
	ServerBaseURL string
	AuthToken     string // Server-issued JWT; empty means signed out.
	SyncInterval  time.Duration
	SyncWorkers   int
	TieBreakLocal bool          // Prefer the local copy on an exact timestamp tie.
	WatchThrottle time.Duration // Minimum spacing between live companion messages.
}

// Load reads environment variables into Config, applying sensible defaults
// for local dev.
func Load() Config {
	return Config{
		HTTPAddress:   getEnv("HTTP_ADDRESS", ":8090"),
		DatabasePath:  getEnv("DATABASE_PATH", "fitsync.db"),
		ServerBaseURL: getEnv("SERVER_BASE_URL", "http://localhost:8080"),
		AuthToken:     getEnv("AUTH_TOKEN", ""),
		SyncInterval:  getDurationEnv("SYNC_INTERVAL", 5*time.Minute),
		SyncWorkers:   getIntEnv("SYNC_WORKERS", 4),
		TieBreakLocal: getBoolEnv("TIE_BREAK_LOCAL", false),
		WatchThrottle: getDurationEnv("WATCH_THROTTLE", 2*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
