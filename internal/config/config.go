package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Catalog source names accepted by CATALOG_SOURCE
const (
	SourceStatic = "static"
	SourceYAML   = "yaml"
	SourceSQLite = "sqlite"
	SourceFeed   = "feed"
)

// SecurityConfig represents security configuration
type SecurityConfig struct {
	EnableRateLimit       bool
	RateLimitPerSecond    float64
	RateLimitBurst        int
	EnableCORS            bool
	AllowedOrigins        []string
	EnableSecurityHeaders bool
	MaxRequestSize        int64
	EnableRequestID       bool
	TrustedProxies        []string
}

// CatalogConfig selects where the article store is loaded from at startup
type CatalogConfig struct {
	Source      string
	File        string
	FeedURLs    []string
	FeedTimeout time.Duration
}

// ShowcaseConfig holds the timings of the discovery view
type ShowcaseConfig struct {
	PageSize        int
	SearchDebounce  time.Duration
	LoadDelay       time.Duration
	RetryDelay      time.Duration
	LoadFailureRate float64
	SessionTTL      time.Duration
}

// NewsletterConfig holds the simulated subscription round trip settings
type NewsletterConfig struct {
	Delay       time.Duration
	SuccessRate float64
}

type Config struct {
	Port          int
	DataDir       string
	LogLevel      string
	EnableSwagger bool
	EnableMetrics bool
	Catalog       CatalogConfig
	Showcase      ShowcaseConfig
	Newsletter    NewsletterConfig
	Security      SecurityConfig
}

// LoadDotEnv reads variables from .env (or the given files) into the process
// environment without overriding what is already set. Call it before Load.
func LoadDotEnv(filenames ...string) error {
	return godotenv.Load(filenames...)
}

// Load reads the configuration from the process environment
func Load() *Config {
	return &Config{
		Port:          getEnvAsInt("PORT", 8080),
		DataDir:       getEnv("DATA_DIR", "./data"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		EnableSwagger: getEnvAsBool("ENABLE_SWAGGER", true),
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),
		Catalog:       loadCatalogConfig(),
		Showcase:      loadShowcaseConfig(),
		Newsletter:    loadNewsletterConfig(),
		Security:      loadSecurityConfig(),
	}
}

func loadCatalogConfig() CatalogConfig {
	return CatalogConfig{
		Source:      strings.ToLower(getEnv("CATALOG_SOURCE", SourceStatic)),
		File:        getEnv("CATALOG_FILE", ""),
		FeedURLs:    getEnvAsStringSlice("FEED_URLS", nil),
		FeedTimeout: getEnvAsDuration("FEED_TIMEOUT", 30*time.Second),
	}
}

func loadShowcaseConfig() ShowcaseConfig {
	return ShowcaseConfig{
		PageSize:        getEnvAsInt("PAGE_SIZE", 6),
		SearchDebounce:  getEnvAsDuration("SEARCH_DEBOUNCE", 300*time.Millisecond),
		LoadDelay:       getEnvAsDuration("LOAD_DELAY", 1200*time.Millisecond),
		RetryDelay:      getEnvAsDuration("RETRY_DELAY", 800*time.Millisecond),
		LoadFailureRate: getEnvAsFloat("LOAD_FAILURE_RATE", 0),
		SessionTTL:      getEnvAsDuration("SESSION_TTL", 30*time.Minute),
	}
}

func loadNewsletterConfig() NewsletterConfig {
	return NewsletterConfig{
		Delay:       getEnvAsDuration("NEWSLETTER_DELAY", time.Second),
		SuccessRate: getEnvAsFloat("NEWSLETTER_SUCCESS_RATE", 0.8),
	}
}

func loadSecurityConfig() SecurityConfig {
	return SecurityConfig{
		EnableRateLimit:       getEnvAsBool("ENABLE_RATE_LIMIT", true),
		RateLimitPerSecond:    getEnvAsFloat("RATE_LIMIT_PER_SECOND", 10.0),
		RateLimitBurst:        getEnvAsInt("RATE_LIMIT_BURST", 20),
		EnableCORS:            getEnvAsBool("ENABLE_CORS", true),
		AllowedOrigins:        getEnvAsStringSlice("ALLOWED_ORIGINS", []string{"*"}),
		EnableSecurityHeaders: getEnvAsBool("ENABLE_SECURITY_HEADERS", true),
		MaxRequestSize:        getEnvAsInt64("MAX_REQUEST_SIZE", 1<<20), // 1MB
		EnableRequestID:       getEnvAsBool("ENABLE_REQUEST_ID", true),
		TrustedProxies:        getEnvAsStringSlice("TRUSTED_PROXIES", nil),
	}
}

func getEnv(key string, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			return duration
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if boolVal, err := strconv.ParseBool(val); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if floatVal, err := strconv.ParseFloat(val, 64); err == nil {
			return floatVal
		}
	}
	return defaultVal
}

func getEnvAsInt64(key string, defaultVal int64) int64 {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.ParseInt(val, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsStringSlice(key string, defaultVal []string) []string {
	if val := os.Getenv(key); val != "" {
		parts := strings.Split(val, ",")
		result := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return defaultVal
}
