// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// IntakeAuthMode selects how the intake shared secret is enforced.
type IntakeAuthMode string

const (
	// IntakeAuthPermissive rejects only a present-but-wrong secret header.
	// A missing header is accepted because the phone vendor cannot set custom headers.
	IntakeAuthPermissive IntakeAuthMode = "permissive"
	// IntakeAuthStrict requires the secret header whenever a secret is configured.
	IntakeAuthStrict IntakeAuthMode = "strict"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
}

// IntakeConfig provides settings for the phone-call intake endpoint.
type IntakeConfig interface {
	GetIntakeSecret() string
	GetIntakeAuthMode() IntakeAuthMode
	GetIntakeRatePerMinute() int
	GetIntakeRateBurst() int
	GetDefaultPhoneRegion() string
}

// LLMConfig provides settings for the optional text-generation provider.
type LLMConfig interface {
	GetLLMAPIKey() string
	GetLLMBaseURL() string
	GetLLMModel() string
	GetLLMTimeout() time.Duration
	IsLLMEnabled() bool
}

// ScoringConfig points at an optional weight table override.
type ScoringConfig interface {
	GetScoringConfigPath() string
}

// RedisConfig provides settings for the optional dashboard cache.
type RedisConfig interface {
	GetRedisURL() string
	IsRedisEnabled() bool
}

// DashboardConfig provides settings for the lead dashboard.
type DashboardConfig interface {
	GetDashboardLimit() int
	GetDashboardLocation() *time.Location
	GetDashboardCacheTTL() time.Duration
	GetDashboardJWTSecret() string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
// It is built once by Load and treated as read-only afterwards.
type Config struct {
	Env                 string
	HTTPAddr            string
	DatabaseURL         string
	CORSAllowAll        bool
	CORSOrigins         []string
	IntakeSecret        string
	IntakeAuthMode      IntakeAuthMode
	IntakeRatePerMinute int
	IntakeRateBurst     int
	DefaultPhoneRegion  string
	LLMAPIKey           string
	LLMBaseURL          string
	LLMModel            string
	LLMTimeout          time.Duration
	ScoringConfigPath   string
	RedisURL            string
	DashboardLimit      int
	DashboardLocation   *time.Location
	DashboardCacheTTL   time.Duration
	DashboardJWTSecret  string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }

// IntakeConfig implementation
func (c *Config) GetIntakeSecret() string           { return c.IntakeSecret }
func (c *Config) GetIntakeAuthMode() IntakeAuthMode { return c.IntakeAuthMode }
func (c *Config) GetIntakeRatePerMinute() int       { return c.IntakeRatePerMinute }
func (c *Config) GetIntakeRateBurst() int           { return c.IntakeRateBurst }
func (c *Config) GetDefaultPhoneRegion() string     { return c.DefaultPhoneRegion }

// LLMConfig implementation
func (c *Config) GetLLMAPIKey() string         { return c.LLMAPIKey }
func (c *Config) GetLLMBaseURL() string        { return c.LLMBaseURL }
func (c *Config) GetLLMModel() string          { return c.LLMModel }
func (c *Config) GetLLMTimeout() time.Duration { return c.LLMTimeout }
func (c *Config) IsLLMEnabled() bool           { return c.LLMAPIKey != "" }

// ScoringConfig implementation
func (c *Config) GetScoringConfigPath() string { return c.ScoringConfigPath }

// RedisConfig implementation
func (c *Config) GetRedisURL() string  { return c.RedisURL }
func (c *Config) IsRedisEnabled() bool { return c.RedisURL != "" }

// DashboardConfig implementation
func (c *Config) GetDashboardLimit() int              { return c.DashboardLimit }
func (c *Config) GetDashboardCacheTTL() time.Duration { return c.DashboardCacheTTL }
func (c *Config) GetDashboardJWTSecret() string       { return c.DashboardJWTSecret }
func (c *Config) GetDashboardLocation() *time.Location {
	if c.DashboardLocation == nil {
		return time.Local
	}
	return c.DashboardLocation
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	location, err := loadLocation(getEnv("DASHBOARD_TIMEZONE", ""))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Env:                 getEnv("APP_ENV", "development"),
		HTTPAddr:            getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		CORSAllowAll:        corsAllowAll,
		CORSOrigins:         corsOrigins,
		IntakeSecret:        strings.TrimSpace(getEnv("INTAKE_SECRET", "")),
		IntakeAuthMode:      IntakeAuthMode(strings.ToLower(getEnv("INTAKE_AUTH_MODE", string(IntakeAuthPermissive)))),
		IntakeRatePerMinute: mustInt(getEnv("INTAKE_RATE_PER_MINUTE", "120")),
		IntakeRateBurst:     mustInt(getEnv("INTAKE_RATE_BURST", "30")),
		DefaultPhoneRegion:  strings.ToUpper(getEnv("DEFAULT_PHONE_REGION", "US")),
		LLMAPIKey:           getEnv("LLM_API_KEY", getEnv("OPENAI_API_KEY", "")),
		LLMBaseURL:          getEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
		LLMModel:            getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMTimeout:          mustDuration(getEnv("LLM_TIMEOUT", "20s")),
		ScoringConfigPath:   getEnv("SCORING_CONFIG_PATH", ""),
		RedisURL:            getEnv("REDIS_URL", ""),
		DashboardLimit:      mustInt(getEnv("DASHBOARD_LIMIT", "50")),
		DashboardLocation:   location,
		DashboardCacheTTL:   mustDuration(getEnv("DASHBOARD_CACHE_TTL", "15s")),
		DashboardJWTSecret:  getEnv("DASHBOARD_JWT_SECRET", ""),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	switch c.IntakeAuthMode {
	case IntakeAuthPermissive, IntakeAuthStrict:
	default:
		return fmt.Errorf("INTAKE_AUTH_MODE must be %q or %q, got %q", IntakeAuthPermissive, IntakeAuthStrict, c.IntakeAuthMode)
	}
	if c.IntakeAuthMode == IntakeAuthStrict && c.IntakeSecret == "" {
		return fmt.Errorf("INTAKE_SECRET is required when INTAKE_AUTH_MODE is strict")
	}
	if c.IntakeRatePerMinute <= 0 || c.IntakeRateBurst <= 0 {
		return fmt.Errorf("INTAKE_RATE_PER_MINUTE and INTAKE_RATE_BURST must be positive")
	}
	if c.DashboardLimit < 1 || c.DashboardLimit > 100 {
		return fmt.Errorf("DASHBOARD_LIMIT must be between 1 and 100")
	}
	if c.LLMTimeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT must be a positive duration")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func loadLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("DASHBOARD_TIMEZONE: %w", err)
	}
	return loc, nil
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
