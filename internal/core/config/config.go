package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix namespaces environment overrides: CCR_DATABASE__DSN sets database.dsn.
const EnvPrefix = "CCR_"

// Config represents the top-level application config.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Upstream  UpstreamConfig  `koanf:"upstream"`
	Assistant AssistantConfig `koanf:"assistant"`
	Sync      SyncConfig      `koanf:"sync"`
}

type ServerConfig struct {
	Port          int    `koanf:"port"`
	Host          string `koanf:"host"`
	MaxBodySizeMB int    `koanf:"max_body_size_mb"`
	Mode          string `koanf:"mode"` // debug | release
}

type DatabaseConfig struct {
	DSN          string `koanf:"dsn"`
	MaxOpenConns int    `koanf:"max_open_conns"`
	MaxIdleConns int    `koanf:"max_idle_conns"`
	AutoMigrate  bool   `koanf:"auto_migrate"`
}

type UpstreamConfig struct {
	BaseURL  string        `koanf:"base_url"`
	PageSize int           `koanf:"page_size"`
	MaxPages int           `koanf:"max_pages"`
	Timeout  time.Duration `koanf:"timeout"`
}

type AssistantConfig struct {
	APIKey  string        `koanf:"api_key"`
	Model   string        `koanf:"model"`
	BaseURL string        `koanf:"base_url"`
	Timeout time.Duration `koanf:"timeout"`
	MaxRows int           `koanf:"max_rows"`
}

type SyncConfig struct {
	Coalesce                 bool          `koanf:"coalesce"`
	DirectoryRefreshInterval time.Duration `koanf:"directory_refresh_interval"`
	ServiceCallerID          string        `koanf:"service_caller_id"`
}

// String hides secrets when the config is logged.
func (c Config) String() string {
	c.Database.DSN = redact(c.Database.DSN)
	c.Assistant.APIKey = redact(c.Assistant.APIKey)
	return fmt.Sprintf("%+v", struct {
		Server    ServerConfig
		Database  DatabaseConfig
		Upstream  UpstreamConfig
		Assistant AssistantConfig
		Sync      SyncConfig
	}{c.Server, c.Database, c.Upstream, c.Assistant, c.Sync})
}

func redact(s string) string {
	if s == "" {
		return ""
	}
	return "***"
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d (must be 1-65535)", c.Server.Port)
	}
	if strings.TrimSpace(c.Server.Host) == "" {
		return fmt.Errorf("server.host is required")
	}
	if c.Server.MaxBodySizeMB <= 0 {
		return fmt.Errorf("server.max_body_size_mb must be > 0")
	}
	if c.Server.Mode != "debug" && c.Server.Mode != "release" {
		return fmt.Errorf("invalid server.mode %q (must be debug or release)", c.Server.Mode)
	}

	if strings.TrimSpace(c.Database.DSN) == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be > 0")
	}
	if c.Database.MaxIdleConns <= 0 {
		return fmt.Errorf("database.max_idle_conns must be > 0")
	}

	u, err := url.Parse(c.Upstream.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid upstream.base_url %q", c.Upstream.BaseURL)
	}
	if c.Upstream.PageSize <= 0 {
		return fmt.Errorf("upstream.page_size must be > 0")
	}
	if c.Upstream.MaxPages <= 0 {
		return fmt.Errorf("upstream.max_pages must be > 0")
	}
	if c.Upstream.Timeout <= 0 {
		return fmt.Errorf("upstream.timeout must be > 0")
	}

	if c.Assistant.Timeout <= 0 {
		return fmt.Errorf("assistant.timeout must be > 0")
	}
	if c.Assistant.MaxRows <= 0 {
		return fmt.Errorf("assistant.max_rows must be > 0")
	}

	if c.Sync.DirectoryRefreshInterval < 0 {
		return fmt.Errorf("sync.directory_refresh_interval must be >= 0")
	}
	if c.Sync.DirectoryRefreshInterval > 0 && strings.TrimSpace(c.Sync.ServiceCallerID) == "" {
		return fmt.Errorf("sync.service_caller_id is required when sync.directory_refresh_interval is set")
	}

	return nil
}

// Load reads an optional .env file, then merges defaults, the YAML file at
// configPath and CCR_ environment variables, and validates the result.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	k := koanf.New(".")

	defaults := map[string]interface{}{
		"server.port":                     8080,
		"server.host":                     "0.0.0.0",
		"server.max_body_size_mb":         1,
		"server.mode":                     "release",
		"database.dsn":                    "",
		"database.max_open_conns":         25,
		"database.max_idle_conns":         25,
		"database.auto_migrate":           true,
		"upstream.base_url":               "https://api.zoom.us/v2",
		"upstream.page_size":              300,
		"upstream.max_pages":              1000,
		"upstream.timeout":                "30s",
		"assistant.api_key":               "",
		"assistant.model":                 "gpt-4",
		"assistant.base_url":              "",
		"assistant.timeout":               "60s",
		"assistant.max_rows":              1000,
		"sync.coalesce":                   true,
		"sync.directory_refresh_interval": "0s",
		"sync.service_caller_id":          "",
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
