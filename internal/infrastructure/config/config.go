package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=3000"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth  AuthConfig
	Mongo MongoConfig
	Audit AuditConfig
	HTTP  HTTPConfig
}

type AuthConfig struct {
	JWTSecret  string        `env:"JWT_SECRET, required"`
	JWTTTL     time.Duration `env:"JWT_TTL,     default=24h"`
	BcryptCost int           `env:"BCRYPT_COST, default=12"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI"`
	Database string `env:"MONGO_DB, default=auth_server"`

	// DatabaseURL is the legacy name for MONGO_URI.
	DatabaseURL string `env:"DATABASE_URL"`
}

type AuditConfig struct {
	Workers int `env:"AUDIT_WORKERS, default=4"`
}

type HTTPConfig struct {
	AllowOrigins []string `env:"CORS_ALLOW_ORIGINS, default=*"`
}

// IsProduction reports whether the service runs in a production-like mode.
func (c *Config) IsProduction() bool {
	switch strings.ToLower(c.Env) {
	case "production", "prod":
		return true
	}
	return false
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: l,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if cfg.Mongo.URI == "" {
		cfg.Mongo.URI = cfg.Mongo.DatabaseURL
	}
	if cfg.Mongo.URI == "" {
		return nil, errors.New("config: MONGO_URI (or DATABASE_URL) is required")
	}
	if cfg.Auth.JWTTTL < 0 {
		return nil, fmt.Errorf("config: JWT_TTL must not be negative, got %s", cfg.Auth.JWTTTL)
	}

	return &cfg, nil
}
