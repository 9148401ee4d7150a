package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the adboard service.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Log       LogConfig
	Metrics   MetricsConfig
	Sync      SyncConfig
}

type ServerConfig struct {
	Addr            string
	Env             string
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
	MinConns int
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
}

type AuthConfig struct {
	Enabled   bool
	MasterKey string
	SkipPaths []string
}

type RateLimitConfig struct {
	Enabled bool
	RPS     float64
	Burst   int
}

type LogConfig struct {
	Level  string
	Format string
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool
	Path    string
}

// SyncConfig holds defaults for the platform sync stub.
type SyncConfig struct {
	// WindowDays is the lookback window when a connection has never synced.
	WindowDays int
	// LockTTL bounds how long a per-connection sync lock may be held.
	LockTTL time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Addr:            getEnv("ADBOARD_HTTP_ADDR", ":8080"),
			Env:             getEnv("ADBOARD_ENV", "development"),
			ShutdownTimeout: getDurationEnv("ADBOARD_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("ADBOARD_DB_HOST", "localhost"),
			Port:     getIntEnv("ADBOARD_DB_PORT", 5432),
			User:     getEnv("ADBOARD_DB_USER", "adboard"),
			Password: getEnv("ADBOARD_DB_PASSWORD", "adboard_secret"),
			DBName:   getEnv("ADBOARD_DB_NAME", "adboard"),
			SSLMode:  getEnv("ADBOARD_DB_SSLMODE", "disable"),
			MaxConns: getIntEnv("ADBOARD_DB_MAX_CONNS", 25),
			MinConns: getIntEnv("ADBOARD_DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Addr:         getEnv("ADBOARD_REDIS_ADDR", "localhost:6379"),
			Password:     getEnv("ADBOARD_REDIS_PASSWORD", ""),
			DB:           getIntEnv("ADBOARD_REDIS_DB", 0),
			PoolSize:     getIntEnv("ADBOARD_REDIS_POOL_SIZE", 10),
			MinIdleConns: getIntEnv("ADBOARD_REDIS_MIN_IDLE_CONNS", 2),
		},
		Auth: AuthConfig{
			Enabled:   getBoolEnv("ADBOARD_AUTH_ENABLED", false),
			MasterKey: getEnv("ADBOARD_API_KEY_MASTER", ""),
			SkipPaths: getSliceEnv("ADBOARD_AUTH_SKIP_PATHS", []string{"/health", "/metrics"}),
		},
		RateLimit: RateLimitConfig{
			Enabled: getBoolEnv("ADBOARD_RATE_LIMIT_ENABLED", true),
			RPS:     getFloatEnv("ADBOARD_RATE_LIMIT_RPS", 100),
			Burst:   getIntEnv("ADBOARD_RATE_LIMIT_BURST", 20),
		},
		Log: LogConfig{
			Level:  getEnv("ADBOARD_LOG_LEVEL", "info"),
			Format: getEnv("ADBOARD_LOG_FORMAT", "json"),
		},
		Metrics: MetricsConfig{
			Enabled: getBoolEnv("ADBOARD_METRICS_ENABLED", true),
			Path:    getEnv("ADBOARD_METRICS_PATH", "/metrics"),
		},
		Sync: SyncConfig{
			WindowDays: getIntEnv("ADBOARD_SYNC_WINDOW_DAYS", 30),
			LockTTL:    getDurationEnv("ADBOARD_SYNC_LOCK_TTL", 2*time.Minute),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Auth.Enabled && c.Auth.MasterKey == "" {
		return fmt.Errorf("ADBOARD_API_KEY_MASTER is required when auth is enabled")
	}
	if c.Sync.WindowDays <= 0 {
		return fmt.Errorf("ADBOARD_SYNC_WINDOW_DAYS must be positive")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Helper functions for reading environment variables

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getIntEnv(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getFloatEnv(key string, def float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getDurationEnv(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getSliceEnv(key string, def []string) []string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				result = append(result, p)
			}
		}
		return result
	}
	return def
}
