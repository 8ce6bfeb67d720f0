// Package config handles application configuration from environment variables
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Port     string
	Env      string // "development", "staging", "production"
	LogLevel string

	// Database
	DatabaseURL string // PostgreSQL connection string (optional, uses in-memory if not set)

	// AI provider settings
	AnthropicAPIKey  string
	AnthropicBaseURL string
	AnthropicModel   string
	MaxOutputTokens  int

	// Billing (optional; tier upgrades fall back to direct apply when unset)
	StripeSecretKey     string
	StripeWebhookSecret string
	StripePriceIDPro    string
	StripePriceIDEnt    string
	BillingReturnURL    string // where Stripe Checkout sends the merchant afterwards

	// Observability
	OTLPEndpoint string

	// Security
	RateLimitRPM int
}

// Defaults
const (
	DefaultPort            = "8000"
	DefaultEnv             = "development"
	DefaultLogLevel        = "info"
	DefaultAnthropicURL    = "https://api.anthropic.com"
	DefaultAnthropicModel  = "claude-sonnet-4-20250514"
	DefaultMaxOutputTokens = 1000
	DefaultRateLimitRPM    = 60
)

// Load reads configuration from environment variables.
// It loads .env file if present (for local development).
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:                getEnv("PORT", DefaultPort),
		Env:                 getEnv("ENV", DefaultEnv),
		LogLevel:            getEnv("LOG_LEVEL", DefaultLogLevel),
		DatabaseURL:         os.Getenv("DATABASE_URL"), // Optional, uses in-memory if not set
		AnthropicAPIKey:     os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicBaseURL:    getEnv("ANTHROPIC_BASE_URL", DefaultAnthropicURL),
		AnthropicModel:      getEnv("ANTHROPIC_MODEL", DefaultAnthropicModel),
		MaxOutputTokens:     getEnvInt("MAX_OUTPUT_TOKENS", DefaultMaxOutputTokens),
		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		StripePriceIDPro:    os.Getenv("STRIPE_PRICE_ID_PRO"),
		StripePriceIDEnt:    os.Getenv("STRIPE_PRICE_ID_ENTERPRISE"),
		BillingReturnURL:    getEnv("BILLING_RETURN_URL", "http://localhost:"+getEnv("PORT", DefaultPort)),
		OTLPEndpoint:        os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		RateLimitRPM:        getEnvInt("RATE_LIMIT_RPM", DefaultRateLimitRPM),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration is present
func (c *Config) Validate() error {
	if c.AnthropicAPIKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY is required")
	}
	if c.MaxOutputTokens <= 0 {
		return fmt.Errorf("MAX_OUTPUT_TOKENS must be positive")
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

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
