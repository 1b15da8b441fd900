// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"fmt"
	"os"
)

// ProviderConfig holds one AI provider's credentials and model choice.
type ProviderConfig struct {
	APIKey  string
	Model   string
	BaseURL string // override for tests and proxies
}

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host    string
	Port    string
	Env     string // "development", "production", "testing"
	BaseURL string // public URL of this instance, used for share links

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible cache)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// AI rewrite settings
	AIProvider string // "openai", "gemini", "claude", "mistral"
	Providers  map[string]ProviderConfig

	// Stock photo search
	PexelsAPIKey string

	// S3-compatible export storage (optional)
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3PublicURL string
}

// providerNames are the AI backends wired into the registry. Each reads
// <NAME>_API_KEY, <NAME>_MODEL and <NAME>_BASE_URL.
var providerNames = []string{"OPENAI", "GEMINI", "CLAUDE", "MISTRAL"}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if critical values
// are missing in production mode.
func Load() (*Config, error) {
	cfg := &Config{
		Host:    envOrDefault("APP_HOST", "0.0.0.0"),
		Port:    envOrDefault("APP_PORT", "8080"),
		Env:     envOrDefault("APP_ENV", "development"),
		BaseURL: envOrDefault("APP_BASE_URL", "http://localhost:8080"),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "cardstudio"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:     envOrDefault("POSTGRES_DB", "cardstudio"),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		AIProvider: os.Getenv("AI_PROVIDER"),
		Providers:  make(map[string]ProviderConfig),

		PexelsAPIKey: os.Getenv("PEXELS_API_KEY"),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Region:    envOrDefault("S3_REGION", "us-east-1"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Bucket:    envOrDefault("S3_BUCKET", "cardstudio-exports"),
		S3PublicURL: os.Getenv("S3_PUBLIC_URL"),
	}

	for _, name := range providerNames {
		key := os.Getenv(name + "_API_KEY")
		if key == "" {
			continue
		}
		cfg.Providers[providerID(name)] = ProviderConfig{
			APIKey:  key,
			Model:   os.Getenv(name + "_MODEL"),
			BaseURL: os.Getenv(name + "_BASE_URL"),
		}
	}

	if cfg.Env == "production" {
		if cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
	}

	return cfg, nil
}

// providerID lowercases an env prefix into a registry name.
func providerID(name string) string {
	switch name {
	case "OPENAI":
		return "openai"
	case "GEMINI":
		return "gemini"
	case "CLAUDE":
		return "claude"
	case "MISTRAL":
		return "mistral"
	}
	return name
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
