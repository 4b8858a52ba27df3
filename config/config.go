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

type Config struct {
	LogLevel    string   `env:"LOG_LEVEL" envDefault:"info"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:","`
	BackupInbox string   `env:"BACKUP_INBOX"`

	Server struct {
		Port            string        `env:"PORT" envDefault:"8080"`
		ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
		WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
		IdleTimeout     time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
		ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	} `envPrefix:"SERVER_"`

	Storage struct {
		Driver      string `env:"DRIVER" envDefault:"file"`
		Path        string `env:"PATH" envDefault:"./data"`
		MaxBytes    int64  `env:"MAX_BYTES" envDefault:"5242880"`
		DSN         string `env:"DSN"`
		AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`
		MaxEntries  int    `env:"MAX_ENTRIES" envDefault:"0"`
	} `envPrefix:"STORAGE_"`

	Auth struct {
		Password      string        `env:"PASSWORD"`
		PasswordHash  string        `env:"PASSWORD_HASH"`
		JWTSecret     string        `env:"JWT_SECRET"`
		JWTExpiration time.Duration `env:"JWT_EXPIRATION" envDefault:"24h"`
	} `envPrefix:"AUTH_"`

	Cache struct {
		Driver        string        `env:"DRIVER" envDefault:"memory"`
		TTL           time.Duration `env:"TTL" envDefault:"5m"`
		RedisAddr     string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
		RedisPassword string        `env:"REDIS_PASSWORD"`
		RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
		RedisPrefix   string        `env:"REDIS_PREFIX" envDefault:"mesaitakip:"`
	} `envPrefix:"CACHE_"`

	SMTP struct {
		Host     string `env:"HOST"`
		Port     int    `env:"PORT" envDefault:"587"`
		Username string `env:"USERNAME"`
		Password string `env:"PASSWORD"`
		From     string `env:"FROM"`
		SSL      bool   `env:"SSL" envDefault:"false"`
	} `envPrefix:"SMTP_"`
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	// A missing .env is fine; real environment variables win either way.
	_ = godotenv.Load()
	return Parse()
}

// Parse reads configuration from the environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		var aggErr env.AggregateError
		if errors.As(err, &aggErr) && len(aggErr.Errors) > 0 {
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "file":
		if c.Storage.Path == "" {
			return errors.New("STORAGE_PATH is required for the file driver")
		}
	case "postgres":
		if c.Storage.DSN == "" {
			return errors.New("STORAGE_DSN is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}

	switch c.Cache.Driver {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown CACHE_DRIVER %q", c.Cache.Driver)
	}

	if (c.Auth.Password != "" || c.Auth.PasswordHash != "") && c.Auth.JWTSecret == "" {
		return errors.New("AUTH_JWT_SECRET is required when a password is set")
	}
	if c.Auth.JWTExpiration <= 0 {
		return errors.New("AUTH_JWT_EXPIRATION must be positive")
	}
	return nil
}

func (c *Config) MailEnabled() bool {
	return c.SMTP.Host != ""
}

func (c *Config) SlogLevel() slog.Level {
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
