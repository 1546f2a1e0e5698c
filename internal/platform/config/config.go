// Package config loads the service configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the complete runtime configuration.
type Config struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	HTTP  HTTP
	DB    DB
	JWT   JWT
	Redis Redis
	Mail  Mail
}

// HTTP configures the API listener.
type HTTP struct {
	Port            int           `env:"PORT" envDefault:"8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	CORSOrigins     []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
}

// Addr returns the listen address.
func (h HTTP) Addr() string {
	return fmt.Sprintf(":%d", h.Port)
}

// DB configures the relational store.
type DB struct {
	Driver         string        `env:"DB_DRIVER" envDefault:"postgres"`
	Host           string        `env:"DB_HOST" envDefault:"localhost"`
	Port           int           `env:"DB_PORT" envDefault:"5432"`
	User           string        `env:"DB_USER" envDefault:"postgres"`
	Password       string        `env:"DB_PASSWORD"`
	Name           string        `env:"DB_NAME" envDefault:"events"`
	SSLMode        string        `env:"DB_SSLMODE" envDefault:"disable"`
	SQLitePath     string        `env:"DB_SQLITE_PATH" envDefault:"events.db"`
	ConnectTimeout time.Duration `env:"DB_CONNECT_TIMEOUT" envDefault:"60s"`
	RunMigrations  bool          `env:"RUN_MIGRATIONS" envDefault:"false"`
}

// JWT configures identity token signing.
type JWT struct {
	Secret string        `env:"JWT_SECRET,required"`
	TTL    time.Duration `env:"JWT_TTL" envDefault:"24h"`
}

// Redis configures the optional read cache. An empty host disables caching.
type Redis struct {
	Host     string        `env:"REDIS_HOST"`
	Port     int           `env:"REDIS_PORT" envDefault:"6379"`
	Password string        `env:"REDIS_PASSWORD"`
	CacheTTL time.Duration `env:"REDIS_CACHE_TTL" envDefault:"5m"`
}

// Enabled reports whether a Redis host is configured.
func (r Redis) Enabled() bool {
	return r.Host != ""
}

// Addr returns host:port.
func (r Redis) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// Mail configures outgoing notifications.
type Mail struct {
	Provider     string  `env:"MAIL_PROVIDER" envDefault:"log"`
	ResendAPIKey string  `env:"RESEND_API_KEY"`
	From         string  `env:"MAIL_FROM" envDefault:"Events <noreply@example.com>"`
	QueueSize    int     `env:"MAIL_QUEUE_SIZE" envDefault:"256"`
	Workers      int     `env:"MAIL_WORKERS" envDefault:"2"`
	RatePerSec   float64 `env:"MAIL_RATE_PER_SEC" envDefault:"5"`
}

// Load reads an optional .env file and parses the environment into a Config.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) > 0 {
		// Missing files are fine; real deployments set the environment directly.
		_ = godotenv.Load(envFiles...)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that env tags cannot express.
func (c Config) Validate() error {
	var errs []error
	switch c.DB.Driver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", c.DB.Driver))
	}
	switch c.Mail.Provider {
	case "log":
	case "resend":
		if c.Mail.ResendAPIKey == "" {
			errs = append(errs, errors.New("RESEND_API_KEY is required when MAIL_PROVIDER=resend"))
		}
	default:
		errs = append(errs, fmt.Errorf("MAIL_PROVIDER must be resend or log, got %q", c.Mail.Provider))
	}
	if c.JWT.TTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	if c.Mail.QueueSize <= 0 || c.Mail.Workers <= 0 {
		errs = append(errs, errors.New("MAIL_QUEUE_SIZE and MAIL_WORKERS must be positive"))
	}
	return errors.Join(errs...)
}
