/*
Package config loads server configuration from the environment.

PURPOSE:
  One flat Config struct, env-var overrides with sensible defaults, and an
  explicit Validate step so a bad deployment fails at startup instead of on
  the first request. cmd/server loads a .env file before calling Load.
*/
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP server
	Port        string
	CORSOrigins []string

	// Database
	DBPath string

	// Payment pacing
	MinimumMonthlyCents int64
	PayoffWindowDays    int

	// Background alert scheduler
	AlertInterval time.Duration
	AlertsEnabled bool
}

// Load reads configuration from the environment, falling back to defaults.
func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:5173,http://localhost:8080")),

		DBPath: getEnv("DB_PATH", "./data/receivables.db"),

		MinimumMonthlyCents: getEnvInt64("MINIMUM_MONTHLY_CENTS", 50_000),
		PayoffWindowDays:    int(getEnvInt64("PAYOFF_WINDOW_DAYS", 10)),

		AlertInterval: getEnvDuration("ALERT_INTERVAL", 1*time.Hour),
		AlertsEnabled: getEnvBool("ALERTS_ENABLED", true),
	}
}

// Validate returns an error describing every invalid setting.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port %q: must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.DBPath == "" {
		errs = append(errs, "database path cannot be empty")
	}

	if c.MinimumMonthlyCents <= 0 {
		errs = append(errs, fmt.Sprintf("minimum monthly cents must be positive, got %d", c.MinimumMonthlyCents))
	}
	if c.PayoffWindowDays < 0 {
		errs = append(errs, fmt.Sprintf("payoff window days cannot be negative, got %d", c.PayoffWindowDays))
	}
	if c.AlertInterval < time.Second {
		errs = append(errs, fmt.Sprintf("alert interval too short: %v", c.AlertInterval))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
