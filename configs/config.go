package configs

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	Vector   VectorConfig
	OpenAI   OpenAIConfig
	Log      LogConfig
}

type DatabaseConfig struct {
	// DSN is the postgres connection URL from DATABASE_URL.
	DSN string
	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	// URL is the redis connection URL from REDIS_URL. Empty disables caching.
	URL string
	// KeyPrefix namespaces all cache entries; Clear only touches this namespace.
	KeyPrefix string
	// Timeout settings
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type VectorConfig struct {
	// DSN is the postgres connection URL from VECTOR_DB_URL. Empty disables
	// the vector store.
	DSN string
	// DefaultQueryLimit bounds query results when the caller asks for none.
	DefaultQueryLimit int
}

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

type LogConfig struct {
	Level  string
	Format string // json or text
}

func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Database: DatabaseConfig{
			DSN:             getEnv("DATABASE_URL", ""),
			MaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour),
			ConnMaxIdleTime: getDurationEnv("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL:          getEnv("REDIS_URL", ""),
			KeyPrefix:    getEnv("REDIS_KEY_PREFIX", ""),
			DialTimeout:  getDurationEnv("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDurationEnv("REDIS_READ_TIMEOUT", 5*time.Second),
			WriteTimeout: getDurationEnv("REDIS_WRITE_TIMEOUT", 5*time.Second),
		},
		Vector: VectorConfig{
			DSN:               getEnv("VECTOR_DB_URL", ""),
			DefaultQueryLimit: getIntEnv("VECTOR_QUERY_LIMIT", 5),
		},
		OpenAI: OpenAIConfig{
			APIKey:  getEnv("OPENAI_API_KEY", ""),
			BaseURL: getEnv("OPENAI_BASE_URL", ""),
			Timeout: getDurationEnv("OPENAI_TIMEOUT", 30*time.Second),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if cfg.Database.DSN != "" {
		if err := validatePostgresURL(cfg.Database.DSN); err != nil {
			return nil, fmt.Errorf("invalid DATABASE_URL: %w", err)
		}
	}
	if cfg.Vector.DSN != "" {
		if err := validatePostgresURL(cfg.Vector.DSN); err != nil {
			return nil, fmt.Errorf("invalid VECTOR_DB_URL: %w", err)
		}
	}

	return cfg, nil
}

// validatePostgresURL rejects non-postgres connection URLs up front instead of
// letting the driver fail with a less helpful message at open time.
func validatePostgresURL(dsn string) error {
	u, err := url.Parse(dsn)
	if err != nil {
		return fmt.Errorf("not a valid URL: %w", err)
	}
	switch u.Scheme {
	case "postgres", "postgresql":
		return nil
	default:
		return fmt.Errorf("unsupported scheme %q (expected postgres:// or postgresql://)", u.Scheme)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
