package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database      DatabaseConfig
	Redis         RedisConfig
	JWT           JWTConfig
	CORS          CORSConfig
	Log           LogConfig
	Scheduler     SchedulerConfig
	Reservations  ReservationsConfig
	Notifications NotificationsConfig
	Catalog       CatalogConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SchedulerConfig bounds optimizer runs triggered through the API.
type SchedulerConfig struct {
	MaxIterations int
	Timeout       time.Duration
}

// ReservationsConfig governs reservation materialization batches.
type ReservationsConfig struct {
	BookingConcurrency int
}

// NotificationsConfig configures the fire-and-forget dispatcher.
type NotificationsConfig struct {
	Enabled    bool
	WebhookURL string
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
}

// CatalogConfig controls room/module/teacher reference-data caching.
type CatalogConfig struct {
	CacheTTL time.Duration
}

// Load reads configuration from the environment, honouring a local .env file
// outside production.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "timetable")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SCHEDULER_MAX_ITERATIONS", 10000)
	v.SetDefault("SCHEDULER_TIMEOUT", "2m")

	v.SetDefault("RESERVATIONS_BOOKING_CONCURRENCY", 8)

	v.SetDefault("NOTIFICATIONS_ENABLED", false)
	v.SetDefault("NOTIFICATIONS_WEBHOOK_URL", "")
	v.SetDefault("NOTIFICATIONS_WORKERS", 2)
	v.SetDefault("NOTIFICATIONS_MAX_RETRIES", 3)
	v.SetDefault("NOTIFICATIONS_RETRY_DELAY", "2s")

	v.SetDefault("CATALOG_CACHE_TTL", "5m")

	env := v.GetString("ENV")
	if env != EnvProduction {
		_ = godotenv.Load()
	}

	cfg := &Config{
		Env:       env,
		Port:      v.GetInt("PORT"),
		APIPrefix: v.GetString("API_PREFIX"),
		Database: DatabaseConfig{
			Host:         v.GetString("DB_HOST"),
			Port:         v.GetInt("DB_PORT"),
			User:         v.GetString("DB_USER"),
			Password:     v.GetString("DB_PASSWORD"),
			Name:         v.GetString("DB_NAME"),
			SSLMode:      v.GetString("DB_SSLMODE"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("JWT_SECRET"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitAndTrim(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Scheduler: SchedulerConfig{
			MaxIterations: v.GetInt("SCHEDULER_MAX_ITERATIONS"),
			Timeout:       v.GetDuration("SCHEDULER_TIMEOUT"),
		},
		Reservations: ReservationsConfig{
			BookingConcurrency: v.GetInt("RESERVATIONS_BOOKING_CONCURRENCY"),
		},
		Notifications: NotificationsConfig{
			Enabled:    v.GetBool("NOTIFICATIONS_ENABLED"),
			WebhookURL: v.GetString("NOTIFICATIONS_WEBHOOK_URL"),
			Workers:    v.GetInt("NOTIFICATIONS_WORKERS"),
			MaxRetries: v.GetInt("NOTIFICATIONS_MAX_RETRIES"),
			RetryDelay: v.GetDuration("NOTIFICATIONS_RETRY_DELAY"),
		},
		Catalog: CatalogConfig{
			CacheTTL: v.GetDuration("CATALOG_CACHE_TTL"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Env == EnvProduction && c.JWT.Secret == "" {
		return errors.New("JWT_SECRET is required in production")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return errors.New("PORT must be a valid TCP port")
	}
	if c.Reservations.BookingConcurrency <= 0 {
		c.Reservations.BookingConcurrency = 1
	}
	return nil
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
