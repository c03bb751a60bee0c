package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	apperr "github.com/fixora/archive/domain/error"
)

// Storage backends
const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

type Config struct {
	Backend        string
	ArchiveDir     string
	DatabaseURL    string
	RedisURL       string
	RedisKeyPrefix string
	ShippingFee    float64

	ServerHost      string
	ServerPort      string
	ShutdownTimeout time.Duration
	Environment     string

	LogLevel  string
	LogFormat string

	CORSAllowedOrigins []string

	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

var (
	ErrMissingDatabaseURL = errors.New("DATABASE_URL is required for the postgres backend")
	ErrMissingRedisURL    = errors.New("REDIS_URL is required for the redis backend")
	ErrUnknownBackend     = errors.New("ARCHIVE_BACKEND must be one of file, memory, postgres, redis")
	ErrInvalidShippingFee = errors.New("SHIPPING_FEE must be a non-negative number")
	ErrInvalidRateLimit   = errors.New("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive")
)

// Load reads the configuration from the environment, after loading .env when present.
// Validation failures come back as CONFIG_4001 errors wrapping the sentinels below.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Backend:         strings.ToLower(getEnvOrDefault("ARCHIVE_BACKEND", BackendFile)),
		ArchiveDir:      getEnvOrDefault("ARCHIVE_DIR", "."),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisURL:        getEnvOrDefault("REDIS_URL", "redis://localhost:6379/0"),
		RedisKeyPrefix:  getEnvOrDefault("REDIS_KEY_PREFIX", "archive:"),
		ShippingFee:     getEnvOrDefaultFloat("SHIPPING_FEE", 2),
		ServerHost:      getEnvOrDefault("SERVER_HOST", "localhost"),
		ServerPort:      getEnvOrDefault("SERVER_PORT", "8080"),
		ShutdownTimeout: getEnvOrDefaultDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		Environment:     getEnvOrDefault("ENV", "development"),
		LogLevel:        getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       getEnvOrDefault("LOG_FORMAT", "json"),

		CORSAllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),

		RateLimitEnabled:  getEnvOrDefault("RATE_LIMIT_ENABLED", "false") == "true",
		RateLimitRequests: getEnvOrDefaultInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   getEnvOrDefaultDuration("RATE_LIMIT_WINDOW", time.Minute),
	}

	if err := cfg.Validate(); err != nil {
		return nil, apperr.ErrConfigurationError("environment", err)
	}
	return cfg, nil
}

// Validate checks the backend specific requirements
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendFile, BackendMemory:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return ErrMissingDatabaseURL
		}
	case BackendRedis:
		if c.RedisURL == "" {
			return ErrMissingRedisURL
		}
	default:
		return ErrUnknownBackend
	}

	if c.ShippingFee < 0 {
		return ErrInvalidShippingFee
	}
	if c.RateLimitEnabled && (c.RateLimitRequests <= 0 || c.RateLimitWindow <= 0) {
		return ErrInvalidRateLimit
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Addr returns the HTTP listen address
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvOrDefaultFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		// unparsable values fail validation
		return -1
	}
	return defaultValue
}

func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
		return 0
	}
	return defaultValue
}

func getEnvOrDefaultDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
