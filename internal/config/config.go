package config

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port        string
	CORSOrigins []string
	// CIDRs whose X-Forwarded-For / X-Real-IP headers are believed, on top
	// of loopback and private ranges.
	TrustedProxies []string

	// Storage
	DataBackend  string
	SQLiteDBPath string
	DatabaseURL  string

	// Auth
	AppUsername       string
	AppPassword       string
	AppPasswordHash   string
	JWTSecret         string
	TokenTTL          time.Duration
	LoginFailureDelay time.Duration
	LoginRateLimit    int

	// AMQP ledger events (disabled when URL is empty)
	AMQPURL        string
	AMQPExchange   string
	AMQPRoutingKey string

	// Overview cache
	OverviewCacheTTL  time.Duration
	OverviewCacheSize int

	LogLevel string
}

var validBackends = []string{"memory", "sqlite", "postgres"}

func Load() *Config {
	cfg := &Config{
		Port:        getEnv("PORT", "8000"),
		CORSOrigins: getEnvList("CORS_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),

		TrustedProxies: getEnvList("TRUSTED_PROXIES", nil),

		DataBackend:  getEnv("DATA_BACKEND", "memory"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/budget.db"),
		DatabaseURL:  getEnv("DATABASE_URL", ""),

		AppUsername:       getEnv("APP_USERNAME", ""),
		AppPassword:       getEnv("APP_PASSWORD", ""),
		AppPasswordHash:   getEnv("APP_PASSWORD_HASH", ""),
		JWTSecret:         getEnv("JWT_SECRET_KEY", ""),
		TokenTTL:          getEnvDuration("TOKEN_TTL", 24*time.Hour),
		LoginFailureDelay: getEnvDuration("LOGIN_FAILURE_DELAY", 400*time.Millisecond),
		LoginRateLimit:    getEnvInt("LOGIN_RATE_LIMIT", 20),

		AMQPURL:        getEnv("AMQP_URL", ""),
		AMQPExchange:   getEnv("AMQP_EXCHANGE", "budget"),
		AMQPRoutingKey: getEnv("AMQP_ROUTING_KEY", "ledger.updated"),

		OverviewCacheTTL:  getEnvDuration("OVERVIEW_CACHE_TTL", time.Minute),
		OverviewCacheSize: getEnvInt("OVERVIEW_CACHE_SIZE", 256),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	for _, cidr := range c.TrustedProxies {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			errors = append(errors, fmt.Sprintf("invalid TRUSTED_PROXIES entry '%s': must be a CIDR", cidr))
		}
	}

	// Validate data backend
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	switch c.DataBackend {
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	case "postgres":
		if c.DatabaseURL == "" {
			errors = append(errors, "DATABASE_URL is required when using postgres backend")
		} else if u, err := url.Parse(c.DatabaseURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid DATABASE_URL: %v", err))
		} else if u.Scheme != "postgres" && u.Scheme != "postgresql" {
			errors = append(errors, fmt.Sprintf("invalid DATABASE_URL scheme '%s': must be 'postgres' or 'postgresql'", u.Scheme))
		}
	}

	// Validate credentials
	if strings.TrimSpace(c.AppUsername) == "" {
		errors = append(errors, "APP_USERNAME is required")
	}
	if c.AppPassword == "" && c.AppPasswordHash == "" {
		errors = append(errors, "either APP_PASSWORD or APP_PASSWORD_HASH must be provided")
	}
	if c.AppPasswordHash != "" && !strings.HasPrefix(c.AppPasswordHash, "$2") {
		errors = append(errors, "APP_PASSWORD_HASH must be a bcrypt hash")
	}
	if c.JWTSecret != "" && len(c.JWTSecret) < 16 {
		errors = append(errors, fmt.Sprintf("JWT_SECRET_KEY too short (%d bytes): must be at least 16", len(c.JWTSecret)))
	}

	if c.TokenTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid token TTL %v: must be at least 1 minute", c.TokenTTL))
	}
	if c.LoginFailureDelay < 0 || c.LoginFailureDelay > 10*time.Second {
		errors = append(errors, fmt.Sprintf("invalid login failure delay %v: must be between 0 and 10s", c.LoginFailureDelay))
	}
	if c.LoginRateLimit < 1 {
		errors = append(errors, fmt.Sprintf("invalid login rate limit %d: must be at least 1", c.LoginRateLimit))
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPRoutingKey == "" {
			errors = append(errors, "AMQP routing key cannot be empty when AMQP URL is provided")
		}
	}

	if c.OverviewCacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid overview cache size %d: must be at least 1", c.OverviewCacheSize))
	}
	if c.OverviewCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid overview cache TTL %v: must not be negative", c.OverviewCacheTTL))
	}

	if _, err := ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, err.Error())
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// ParseLevel maps LOG_LEVEL to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level '%s': must be one of debug, info, warn, error", s)
	}
}

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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList splits a comma-separated variable, dropping blanks.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
