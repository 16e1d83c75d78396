package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/ajharbinger/annuity-review-api/internal/errors"
)

const (
	ProviderMock   = "mock"
	ProviderOpenAI = "openai"
)

// Config holds application configuration
type Config struct {
	Port        string
	Environment string
	DataDir     string

	// Security configuration
	AllowedOrigins  string
	TrustedProxies  string
	EnableRateLimit bool
	MaxRequestSize  int64

	// Logging
	LogLevel  string
	LogFormat string
	LogFile   string

	// Chat provider
	AIProvider  string
	AIModel     string
	AIAPIKey    string
	AIEndpoint  string
	AIMockMode  bool
	AITimeoutMs int
	AIMaxTokens int

	// Alert scoring
	ScoringConfigFile  string
	AlertReferenceDate string
	PreferredCarriers  string

	// Alert pipeline
	RefreshAlertsOnStart bool
	AlertRefreshMinutes  int
}

// New creates a new configuration instance from environment variables
func New() *Config {
	return &Config{
		Port:        getEnv("PORT", "8000"),
		Environment: getEnv("ENV", "development"),
		DataDir:     getEnv("DATA_DIR", "data"),
		// Security configuration
		AllowedOrigins:  getEnv("ALLOWED_ORIGINS", ""),
		TrustedProxies:  getEnv("TRUSTED_PROXIES", ""),
		EnableRateLimit: getEnv("ENABLE_RATE_LIMIT", "true") == "true",
		MaxRequestSize:  getEnvAsInt64("MAX_REQUEST_SIZE", 10*1024*1024), // 10MB default

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
		LogFile:   getEnv("LOG_FILE", ""),

		AIProvider:  strings.ToLower(getEnv("AI_PROVIDER", ProviderMock)),
		AIModel:     getEnv("AI_MODEL", "gpt-4"),
		AIAPIKey:    getEnv("AI_API_KEY", ""),
		AIEndpoint:  getEnv("AI_ENDPOINT", "https://api.openai.com/v1/chat/completions"),
		AIMockMode:  getEnv("AI_MOCK_MODE", "true") == "true",
		AITimeoutMs: getEnvAsInt("AI_TIMEOUT_MS", 30000),
		AIMaxTokens: getEnvAsInt("AI_MAX_TOKENS", 1000),

		ScoringConfigFile:  getEnv("SCORING_CONFIG_FILE", ""),
		AlertReferenceDate: getEnv("ALERT_REFERENCE_DATE", "2026-02-25"),
		PreferredCarriers:  getEnv("PREFERRED_CARRIERS", "Symetra,Brighthouse Financial"),

		RefreshAlertsOnStart: getEnv("REFRESH_ALERTS_ON_START", "false") == "true",
		AlertRefreshMinutes:  getEnvAsInt("ALERT_REFRESH_MINUTES", 0),
	}
}

// Validate reports configuration that must stop the process at startup
func (c *Config) Validate() error {
	switch c.AIProvider {
	case ProviderMock, ProviderOpenAI:
	default:
		return apperrors.ConfigError(fmt.Sprintf("unknown AI_PROVIDER %q", c.AIProvider), nil)
	}
	if !c.UseMockProvider() && c.AIAPIKey == "" {
		return apperrors.ConfigError("AI_API_KEY is required when AI_PROVIDER is "+c.AIProvider+" and AI_MOCK_MODE is false", nil)
	}
	if c.AlertReferenceDate != "" {
		if _, err := time.Parse("2006-01-02", c.AlertReferenceDate); err != nil {
			return apperrors.ConfigError("ALERT_REFERENCE_DATE must be YYYY-MM-DD", err)
		}
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// UseMockProvider returns true when chat requests are served by the canned responder
func (c *Config) UseMockProvider() bool {
	return c.AIProvider == ProviderMock || c.AIMockMode
}

// AITimeout is the deadline applied to each hosted chat call
func (c *Config) AITimeout() time.Duration {
	return time.Duration(c.AITimeoutMs) * time.Millisecond
}

// ReferenceDate returns the fixed "today" for acquisition scoring, or zero when unset
func (c *Config) ReferenceDate() time.Time {
	t, err := time.Parse("2006-01-02", c.AlertReferenceDate)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Clock returns the scoring clock: fixed at the reference date when one is set
func (c *Config) Clock() func() time.Time {
	ref := c.ReferenceDate()
	if ref.IsZero() {
		return time.Now
	}
	return func() time.Time { return ref }
}

// GetPreferredCarriers returns the matcher's carrier affinity list
func (c *Config) GetPreferredCarriers() []string {
	return splitList(c.PreferredCarriers)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// GetAllowedOrigins returns a slice of allowed CORS origins
func (c *Config) GetAllowedOrigins() []string {
	if c.AllowedOrigins == "" {
		// Local advisor UI dev servers
		return []string{
			"http://localhost:4200",
			"http://localhost:3000",
			"http://127.0.0.1:4200",
		}
	}
	return splitList(c.AllowedOrigins)
}

// GetTrustedProxies returns a slice of trusted proxy IPs
func (c *Config) GetTrustedProxies() []string {
	if c.TrustedProxies == "" {
		return []string{} // No trusted proxies by default
	}
	return splitList(c.TrustedProxies)
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
