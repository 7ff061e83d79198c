package config

import (
	"os"
	"strconv"

	"goanova/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Analysis AnalysisConfig
	Server   ServerConfig
	Database DatabaseConfig
}

// AnalysisConfig holds statistics engine settings
type AnalysisConfig struct {
	// SignificanceLevel is the alpha threshold applied to every p-value
	// comparison and to confidence-interval coverage (1 - alpha).
	SignificanceLevel float64
	// MaxConcurrency bounds how many effects are computed in parallel.
	MaxConcurrency int
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port string
}

// DatabaseConfig holds database connection settings.
// The database is optional; an empty URL disables persistence.
type DatabaseConfig struct {
	URL string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Analysis: AnalysisConfig{
			SignificanceLevel: getEnvFloatOrDefault("ANOVA_ALPHA", 0.05),
			MaxConcurrency:    getEnvIntOrDefault("ANOVA_MAX_CONCURRENCY", 4),
		},
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Analysis.SignificanceLevel <= 0 || cfg.Analysis.SignificanceLevel >= 1 {
		return errors.ConfigInvalid("ANOVA_ALPHA must be in (0, 1)")
	}
	if cfg.Analysis.MaxConcurrency < 1 {
		return errors.ConfigInvalid("ANOVA_MAX_CONCURRENCY must be >= 1")
	}
	if cfg.Server.Port == "" {
		return errors.ConfigInvalid("PORT cannot be empty")
	}
	return nil
}

func getEnvOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvIntOrDefault(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloatOrDefault(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return fallback
}
