package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/dmitrijs2005/bookshelf/internal/flagx"
	"github.com/dmitrijs2005/bookshelf/internal/timex"
)

// FileConfig is the on-disk shape of the config file. Durations accept
// "3s"-style strings or integer nanoseconds. Zero values keep the
// setting from earlier sources.
type FileConfig struct {
	ServerURL       string         `json:"server_url" yaml:"server_url"`
	StoreBackend    string         `json:"store_backend" yaml:"store_backend"`
	StorePath       string         `json:"store_path" yaml:"store_path"`
	RedisAddr       string         `json:"redis_addr" yaml:"redis_addr"`
	RedisPrefix     string         `json:"redis_prefix" yaml:"redis_prefix"`
	PageSize        int            `json:"page_size" yaml:"page_size"`
	SuggestionLimit int            `json:"suggestion_limit" yaml:"suggestion_limit"`
	LogLevel        string         `json:"log_level" yaml:"log_level"`
	SpinnerInterval timex.Duration `json:"spinner_interval" yaml:"spinner_interval"`
	RequestTimeout  timex.Duration `json:"request_timeout" yaml:"request_timeout"`
}

// parseFile overlays cfg with the file named by -c/-config. Files ending in
// .yaml or .yml are decoded as YAML, anything else as JSON.
func parseFile(cfg *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("decode config file %s: %w", path, err)
	}

	fc.apply(cfg)
	return nil
}

func (fc FileConfig) apply(cfg *Config) {
	setString := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setString(&cfg.ServerURL, fc.ServerURL)
	setString(&cfg.StoreBackend, fc.StoreBackend)
	setString(&cfg.StorePath, fc.StorePath)
	setString(&cfg.RedisAddr, fc.RedisAddr)
	setString(&cfg.RedisPrefix, fc.RedisPrefix)
	setString(&cfg.LogLevel, fc.LogLevel)

	if fc.PageSize != 0 {
		cfg.PageSize = fc.PageSize
	}
	if fc.SuggestionLimit != 0 {
		cfg.SuggestionLimit = fc.SuggestionLimit
	}
	if fc.SpinnerInterval.Duration != 0 {
		cfg.SpinnerInterval = fc.SpinnerInterval.Duration
	}
	if fc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
}
