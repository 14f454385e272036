// Package config handles application configuration from environment variables
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/mbd888/paylink/internal/security"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Port     string
	Env      string // "development", "staging", "production"
	LogLevel string

	// Database
	DatabaseURL string // PostgreSQL connection string (optional, uses in-memory if not set)

	// Link settings
	WebBaseURL string // Base URL embedded in shareable payment links

	// Peanut payment network
	PeanutAPIURL string
	PeanutAPIKey string // Required for gasless claims

	// Observability
	OTLPEndpoint string // OTLP gRPC endpoint (optional, tracing disabled if unset)

	// Security
	RateLimitRPM int
}

// Defaults
const (
	DefaultPort         = "3000"
	DefaultEnv          = "development"
	DefaultLogLevel     = "info"
	DefaultWebBaseURL   = "http://localhost:3000"
	DefaultPeanutAPIURL = "https://api.peanut.to"
	DefaultRateLimit    = 120
)

// Load reads configuration from environment variables
// It loads .env file if present (for local development)
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not present)
	_ = godotenv.Load()

	cfg := &Config{
		Port:         getEnv("PORT", DefaultPort),
		Env:          getEnv("ENV", DefaultEnv),
		LogLevel:     getEnv("LOG_LEVEL", DefaultLogLevel),
		DatabaseURL:  os.Getenv("DATABASE_URL"), // Optional, uses in-memory if not set
		WebBaseURL:   getEnv("WEB_BASE_URL", DefaultWebBaseURL),
		PeanutAPIURL: getEnv("PEANUT_API_URL", DefaultPeanutAPIURL),
		PeanutAPIKey: os.Getenv("PEANUT_API_KEY"), // Required, no default
		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		RateLimitRPM: int(getEnvInt64("RATE_LIMIT_RPM", int64(DefaultRateLimit))),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration is present
func (c *Config) Validate() error {
	if c.PeanutAPIKey == "" {
		return fmt.Errorf("PEANUT_API_KEY is required")
	}

	if c.WebBaseURL == "" {
		return fmt.Errorf("WEB_BASE_URL is required")
	}
	if !strings.HasPrefix(c.WebBaseURL, "http://") && !strings.HasPrefix(c.WebBaseURL, "https://") {
		return fmt.Errorf("WEB_BASE_URL must be an absolute http(s) URL")
	}

	if c.PeanutAPIURL == "" {
		return fmt.Errorf("PEANUT_API_URL is required")
	}
	if c.IsProduction() {
		// Claims post the API key to this URL, so a misconfigured internal
		// address would leak it.
		if err := security.ValidateEndpointURL(c.PeanutAPIURL); err != nil {
			return fmt.Errorf("PEANUT_API_URL: %w", err)
		}
	}

	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}
