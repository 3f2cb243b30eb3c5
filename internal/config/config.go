// Package config holds the service configuration loaded from environment
// variables.
package config

import (
	"fmt"
	"time"

	"github.com/Ngumi22/bds-sub000/pkg/config"
)

// Config is the full service configuration.
type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"storefront-search"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	HTTPPort        int `env:"HTTP_PORT" envDefault:"8084"`
	HTTPCacheMaxAge int `env:"HTTP_CACHE_MAX_AGE" envDefault:"60"`

	MongoURI string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDB  string `env:"MONGO_DB" envDefault:"storefront"`

	// RedisAddr empty selects the in-process cache.
	RedisAddr string        `env:"REDIS_ADDR"`
	CacheTTL  time.Duration `env:"CACHE_TTL" envDefault:"5m"`

	// KafkaBrokers empty disables the invalidation consumers; cached
	// entries then age out on TTL alone.
	KafkaBrokers []string `env:"KAFKA_BROKERS"`
	KafkaGroupID string   `env:"KAFKA_GROUP_ID" envDefault:"storefront-search"`
}

// Load reads and validates the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP_PORT %d", c.HTTPPort)
	}
	if c.MongoURI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}
	if c.MongoDB == "" {
		return fmt.Errorf("MONGO_DB is required")
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive")
	}
	return nil
}
