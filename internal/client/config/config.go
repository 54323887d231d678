package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Store backends understood by client.OpenStore.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config holds runtime settings for the bookshelf CLI.
//
// ServerURL is the base URL every API path is joined to; it must include a
// scheme. SpinnerInterval and RequestTimeout are time.Durations.
type Config struct {
	ServerURL       string        `env:"SERVER_URL"`
	StoreBackend    string        `env:"STORE"`
	StorePath       string        `env:"STORE_PATH"`
	RedisAddr       string        `env:"REDIS_ADDR"`
	RedisPrefix     string        `env:"REDIS_PREFIX"`
	PageSize        int           `env:"PAGE_SIZE"`
	SuggestionLimit int           `env:"SUGGESTION_LIMIT"`
	LogLevel        string        `env:"LOG_LEVEL"`
	SpinnerInterval time.Duration `env:"SPINNER_INTERVAL"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.StoreBackend = BackendSQLite
	c.StorePath = "bookshelf.db"
	c.RedisAddr = "127.0.0.1:6379"
	c.RedisPrefix = "bookshelf:"
	c.PageSize = 20
	c.SuggestionLimit = 5
	c.LogLevel = "info"
	c.SpinnerInterval = 120 * time.Millisecond
	c.RequestTimeout = 30 * time.Second
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: server url %q must be absolute", ErrInvalidConfig, c.ServerURL)
	}

	switch c.StoreBackend {
	case BackendSQLite, BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("%w: unknown store backend %q", ErrInvalidConfig, c.StoreBackend)
	}

	if c.PageSize <= 0 {
		return fmt.Errorf("%w: page size must be positive, got %d", ErrInvalidConfig, c.PageSize)
	}
	if c.SuggestionLimit <= 0 {
		return fmt.Errorf("%w: suggestion limit must be positive, got %d", ErrInvalidConfig, c.SuggestionLimit)
	}
	if c.SpinnerInterval <= 0 {
		return fmt.Errorf("%w: spinner interval must be positive", ErrInvalidConfig)
	}
	return nil
}

// LoadConfig constructs a Config from defaults, then overlays the
// environment, an optional config file and finally command-line flags.
// Later sources take precedence over earlier ones.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFile(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
