// Package dataservice provides the HTTP client for the upstream market data
// provider.
package dataservice

import (
	"os"
	"strconv"
	"time"
)

// Config holds the provider client settings.
type Config struct {
	BaseURL        string        // e.g. "http://localhost:8000/api/v1"
	ConnectTimeout time.Duration // TCP connect budget
	ReadTimeout    time.Duration // whole-request budget
	MaxRetries     int           // declared knob; calls are single-attempt today
	Enabled        bool          // false short-circuits all calls to empty results
}

// LoadConfig reads the provider settings from environment variables,
// falling back to local-development defaults.
func LoadConfig() Config {
	return Config{
		BaseURL:        envOr("DATA_SERVICE_BASE_URL", "http://localhost:8000/api/v1"),
		ConnectTimeout: time.Duration(envIntOr("DATA_SERVICE_CONNECT_TIMEOUT_MS", 5000)) * time.Millisecond,
		ReadTimeout:    time.Duration(envIntOr("DATA_SERVICE_READ_TIMEOUT_MS", 10000)) * time.Millisecond,
		MaxRetries:     envIntOr("DATA_SERVICE_MAX_RETRIES", 3),
		Enabled:        envOr("DATA_SERVICE_ENABLED", "true") != "false",
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
