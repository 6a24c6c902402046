package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Catalog sources accepted by CATALOG_SOURCE.
const (
	SourceFile     = "file"
	SourceRemote   = "remote"
	SourcePostgres = "postgres"
)

// Config holds runtime configuration parsed from environment variables.
type Config struct {
	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:":8080"`
	DBConnString    string        `env:"DB_DSN"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"text"`

	CatalogSource          string        `env:"CATALOG_SOURCE" envDefault:"file"`
	CatalogFile            string        `env:"CATALOG_FILE" envDefault:"products.csv"`
	CatalogURL             string        `env:"CATALOG_URL" envDefault:"https://676a35aa863eaa5ac0ddaa64.mockapi.io/products"`
	CatalogTimeout         time.Duration `env:"CATALOG_TIMEOUT" envDefault:"10s"`
	CatalogRefreshInterval time.Duration `env:"CATALOG_REFRESH_INTERVAL" envDefault:"5m"`
	CatalogImageDir        string        `env:"CATALOG_IMAGE_DIR" envDefault:"."`
	PlaceholderImage       string        `env:"PLACEHOLDER_IMAGE" envDefault:"https://via.placeholder.com/150"`
	Currency               string        `env:"CURRENCY" envDefault:"THB"`

	RedisAddr       string        `env:"REDIS_ADDR"`
	CatalogCacheTTL time.Duration `env:"CATALOG_CACHE_TTL" envDefault:"1m"`

	SessionLifetime time.Duration `env:"SESSION_LIFETIME" envDefault:"24h"`
	CORSOrigins     []string      `env:"CORS_ORIGINS" envSeparator:","`
	// TrustedProxies lists proxy IPs or CIDRs whose forwarding headers are
	// honoured. Empty means the client IP is always the peer address.
	TrustedProxies  []string      `env:"TRUSTED_PROXIES" envSeparator:","`
	RateLimitRPS    float64       `env:"RATE_LIMIT_RPS" envDefault:"10"`
	RateLimitBurst  int           `env:"RATE_LIMIT_BURST" envDefault:"20"`
}

// FromEnv builds Config with defaults, overridden by environment variables.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.CatalogSource {
	case SourceFile, SourceRemote:
	case SourcePostgres:
		if c.DBConnString == "" {
			return fmt.Errorf("CATALOG_SOURCE=%s requires DB_DSN", c.CatalogSource)
		}
	default:
		return fmt.Errorf("unknown CATALOG_SOURCE %q", c.CatalogSource)
	}
	if c.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_BURST must be at least 1")
	}
	return nil
}
