// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the complete runtime configuration of the server.
type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	GinMode  string `env:"GIN_MODE" envDefault:"release"`

	DB        DB
	Redis     Redis
	JWT       JWT
	Password  Password
	Google    Google
	CORS      CORS
	RateLimit RateLimit
}

// DB configures the relational store.
type DB struct {
	Driver        string `env:"DB_DRIVER" envDefault:"postgres"`
	Host          string `env:"DB_HOST" envDefault:"localhost"`
	Port          string `env:"DB_PORT" envDefault:"5432"`
	User          string `env:"DB_USER" envDefault:"postgres"`
	Password      string `env:"DB_PASSWORD"`
	Name          string `env:"DB_NAME" envDefault:"auth"`
	SSLMode       string `env:"DB_SSLMODE" envDefault:"disable"`
	Path          string `env:"DB_PATH" envDefault:"./auth.db"`
	RunMigrations bool   `env:"DB_RUN_MIGRATIONS" envDefault:"true"`
}

// Redis configures the optional Redis connection. An empty host disables Redis.
type Redis struct {
	Host     string `env:"REDIS_HOST"`
	Port     string `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD"`
}

// Enabled reports whether a Redis host is configured.
func (r Redis) Enabled() bool {
	return r.Host != ""
}

// Addr returns host:port.
func (r Redis) Addr() string {
	return r.Host + ":" + r.Port
}

// JWT configures token issuance.
type JWT struct {
	Secret           string   `env:"JWT_SECRET"`
	RefreshSecret    string   `env:"JWT_REFRESH_SECRET"`
	ExpiresIn        Duration `env:"JWT_EXPIRES_IN" envDefault:"15m"`
	RefreshExpiresIn Duration `env:"JWT_REFRESH_EXPIRES_IN" envDefault:"7d"`
	Issuer           string   `env:"JWT_ISSUER" envDefault:"auth-backend"`
}

// Password configures the credential policy.
type Password struct {
	MinLength  int `env:"PASSWORD_MIN_LENGTH" envDefault:"8"`
	BcryptCost int `env:"PASSWORD_BCRYPT_COST" envDefault:"10"`
}

// Google configures the Google identity verifier.
type Google struct {
	ClientID string        `env:"GOOGLE_CLIENT_ID"`
	Timeout  time.Duration `env:"GOOGLE_TIMEOUT" envDefault:"10s"`
}

// CORS configures allowed browser origins.
type CORS struct {
	Origins []string `env:"CORS_ORIGIN" envDefault:"*" envSeparator:","`
}

// AllowAll reports whether every origin is allowed.
func (c CORS) AllowAll() bool {
	for _, o := range c.Origins {
		if strings.TrimSpace(o) == "*" {
			return true
		}
	}
	return len(c.Origins) == 0
}

// RateLimit configures per-client request limiting on the auth routes.
type RateLimit struct {
	Max    int           `env:"RATE_LIMIT_MAX" envDefault:"100"`
	Window time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"15m"`
}

// Load reads .env (when present) and parses the environment into a validated Config.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info(".env not found; using system environment variables")
	}
	return Parse()
}

// Parse parses the current environment into a validated Config without touching .env.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.JWT.RefreshSecret == "" {
		errs = append(errs, errors.New("JWT_REFRESH_SECRET is required"))
	}
	if c.JWT.Secret != "" && c.JWT.Secret == c.JWT.RefreshSecret {
		errs = append(errs, errors.New("JWT_SECRET and JWT_REFRESH_SECRET must differ"))
	}
	if c.JWT.ExpiresIn <= 0 || c.JWT.RefreshExpiresIn <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRES_IN and JWT_REFRESH_EXPIRES_IN must be positive"))
	}
	switch c.DB.Driver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER %q is not supported (postgres|sqlite)", c.DB.Driver))
	}
	if c.Password.MinLength < 1 {
		errs = append(errs, errors.New("PASSWORD_MIN_LENGTH must be positive"))
	}
	if c.RateLimit.Max < 1 || c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_MAX and RATE_LIMIT_WINDOW must be positive"))
	}
	return errors.Join(errs...)
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
