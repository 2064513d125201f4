// Package config loads engine bootstrap settings: a .env file feeding a
// handful of os.Getenv reads, with sane defaults so the demo entrypoint
// runs without any setup.
package config

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds everything the engine needs to boot: an explicit value
// that cmd/demo's bootstrap loads once and wires the store and metrics
// endpoint from, rather than package-level globals. The façade never
// reads it; it resolves what it needs from the container.
type Config struct {
	// DatabasePath is the single SQLite file backing the engine. ":memory:"
	// is legal for tests.
	DatabasePath string
	// ChangeLogEnabled toggles change-log recording; disabled by default.
	ChangeLogEnabled bool
	// MetricsAddr is where the Prometheus handler listens, empty disables it.
	MetricsAddr string
}

// Load reads a .env file if present (missing is not fatal, since the
// engine is a library that may be embedded without any .env at all) and
// returns a populated Config.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", slog.Any("error", err))
	}

	return Config{
		DatabasePath:     getEnvOrDefault("TOURNAMENT_DB_PATH", "tournament.db"),
		ChangeLogEnabled: getBoolOrDefault("TOURNAMENT_CHANGELOG_ENABLED", false),
		MetricsAddr:      getEnvOrDefault("TOURNAMENT_METRICS_ADDR", ""),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}
