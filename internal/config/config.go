// Package config loads server, funding and notification settings from defaults,
// optional TOML files, a .env file and environment variables, in that order.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/shopspring/decimal"

	"github.com/tropicaldog17/keble/internal/models"
)

// Config holds all configuration for the backend
type Config struct {
	Environment string        `toml:"environment"`
	Server      ServerConfig  `toml:"server"`
	Funding     FundingConfig `toml:"funding"`
	Notify      NotifyConfig  `toml:"notify"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host        string   `toml:"host"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// Addr is the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// FundingConfig holds the business constants of the funding flow. Amounts are
// decimal strings so no float ever touches them.
type FundingConfig struct {
	MinimumInvestment string `toml:"minimum_investment"`
	TokenValue        string `toml:"token_value"`
	Timeout           string `toml:"timeout"`
}

// Limits parses and validates the funding constants
func (f FundingConfig) Limits() (models.FundingLimits, error) {
	var limits models.FundingLimits

	minimum, err := decimal.NewFromString(f.MinimumInvestment)
	if err != nil {
		return limits, fmt.Errorf("invalid funding.minimum_investment %q: %w", f.MinimumInvestment, err)
	}
	if minimum.IsNegative() {
		return limits, fmt.Errorf("funding.minimum_investment cannot be negative")
	}

	tokenValue, err := decimal.NewFromString(f.TokenValue)
	if err != nil {
		return limits, fmt.Errorf("invalid funding.token_value %q: %w", f.TokenValue, err)
	}
	if !tokenValue.IsPositive() {
		return limits, fmt.Errorf("funding.token_value must be positive")
	}

	timeout, err := time.ParseDuration(f.Timeout)
	if err != nil {
		return limits, fmt.Errorf("invalid funding.timeout %q: %w", f.Timeout, err)
	}

	limits.MinimumInvestment = minimum
	limits.TokenValue = tokenValue
	limits.Timeout = timeout
	return limits, nil
}

// NotifyConfig holds notification delivery configuration. An empty WebhookURL
// delivers to the log only.
type NotifyConfig struct {
	WebhookURL string `toml:"webhook_url"`
	RateLimit  int    `toml:"rate_limit"`
	QueueSize  int    `toml:"queue_size"`
	Timeout    string `toml:"timeout"`
}

// TimeoutDuration parses Timeout, falling back to 10s
func (n NotifyConfig) TimeoutDuration() time.Duration {
	if d, err := time.ParseDuration(n.Timeout); err == nil && d > 0 {
		return d
	}
	return 10 * time.Second
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8080,
			CORSOrigins: []string{"*"},
		},
		Funding: FundingConfig{
			MinimumInvestment: "100",
			TokenValue:        "10",
			Timeout:           "15s",
		},
		Notify: NotifyConfig{
			RateLimit: 5,
			QueueSize: 256,
			Timeout:   "10s",
		},
	}
}

// Load reads .env (without overriding variables already set), then merges each
// existing TOML file in order and finally applies environment overrides.
func Load(paths ...string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	config := NewDefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if _, err := config.Funding.Limits(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("KEBLE_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("KEBLE_HOST"); host != "" {
		config.Server.Host = host
	}

	// SERVER_PORT kept for existing deployments
	for _, key := range []string{"SERVER_PORT", "KEBLE_PORT"} {
		if port := os.Getenv(key); port != "" {
			if p, err := strconv.Atoi(port); err == nil {
				config.Server.Port = p
			}
		}
	}

	// comma-separated
	if v := os.Getenv("KEBLE_CORS_ORIGINS"); v != "" {
		var origins []string
		for _, part := range strings.Split(v, ",") {
			if o := strings.TrimSpace(part); o != "" {
				origins = append(origins, o)
			}
		}
		if len(origins) > 0 {
			config.Server.CORSOrigins = origins
		}
	}

	if v := os.Getenv("KEBLE_MINIMUM_INVESTMENT"); v != "" {
		config.Funding.MinimumInvestment = v
	}
	if v := os.Getenv("KEBLE_TOKEN_VALUE"); v != "" {
		config.Funding.TokenValue = v
	}
	if v := os.Getenv("KEBLE_FUNDING_TIMEOUT"); v != "" {
		config.Funding.Timeout = v
	}

	if v := os.Getenv("KEBLE_NOTIFY_WEBHOOK_URL"); v != "" {
		config.Notify.WebhookURL = v
	}
	if v := os.Getenv("KEBLE_NOTIFY_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Notify.RateLimit = n
		}
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
