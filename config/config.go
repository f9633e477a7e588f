package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/url"
	"runtime"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Env         string `env:"ENV"          envDefault:"local" validate:"required,oneof=local staging production"`
	Port        string `env:"PORT"         envDefault:"5000"  validate:"required"`
	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`
	LogLevel    string `env:"LOG_LEVEL"    envDefault:"info"  validate:"oneof=debug info warn error"`

	// DATABASE_URL wins when set; otherwise the DSN is assembled from the DB_* parts.
	DatabaseURL string `env:"DATABASE_URL"`
	DBUser      string `env:"DB_USER" validate:"required_without=DatabaseURL"`
	DBPass      string `env:"DB_PASS"`
	DBHost      string `env:"DB_HOST" validate:"required_without=DatabaseURL"`
	DBPort      string `env:"DB_PORT" envDefault:"5432"`
	DBName      string `env:"DB_NAME" validate:"required_without=DatabaseURL"`

	JWTSecret      string        `env:"JWT_SECRET,required" validate:"required,min=32"`
	TokenTTL       time.Duration `env:"TOKEN_TTL"        envDefault:"1h" validate:"min=1m"`
	BcryptCost     int           `env:"BCRYPT_COST"      envDefault:"10" validate:"min=4,max=31"`
	HashWorkers    int           `env:"HASH_WORKERS"     validate:"min=0,max=256"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"  envDefault:"5s" validate:"min=100ms"`

	ABHABaseURL string        `env:"ABHA_BASE_URL" envDefault:"https://api.abha.gov.in" validate:"required,url"`
	ABHAAPIKey  string        `env:"ABHA_API_KEY"  validate:"required_if=Env production"`
	ABHATimeout time.Duration `env:"ABHA_TIMEOUT"  envDefault:"10s" validate:"min=100ms"`

	ResendAPIKey string `env:"RESEND_API_KEY" validate:"required_if=Env production,required_if=Env staging"`
	ResendFrom   string `env:"RESEND_FROM"    validate:"required_if=Env production,required_if=Env staging"`
}

// Load reads an optional .env file, then parses and validates the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return parse()
}

func parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if cfg.HashWorkers == 0 {
		cfg.HashWorkers = runtime.NumCPU()
	}

	return cfg, nil
}

// DSN returns the Postgres connection string.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.DBUser, c.DBPass),
		Host:   net.JoinHostPort(c.DBHost, c.DBPort),
		Path:   "/" + c.DBName,
	}
	return u.String()
}

func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
