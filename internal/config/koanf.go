// Catalog - Item Catalog Browser
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/catalog

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists config file locations in priority order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/catalog/config.yaml",
	"/etc/catalog/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// ClientConfigPathEnvVar overrides the client config file path.
const ClientConfigPathEnvVar = "CATALOG_CONFIG"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            3001,
			Host:            "0.0.0.0",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Data: DataConfig{
			Path:         "data/items.json",
			WatchMode:    WatchModeNotify,
			PollInterval: 2 * time.Second,
		},
		API: APIConfig{
			CacheMaxAge: 0,
		},
		Security: SecurityConfig{
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

func defaultClientConfig() *ClientConfig {
	return &ClientConfig{
		APIURL:            "http://localhost:3001",
		PrefsPath:         "~/.config/catalog/prefs.toml",
		Debounce:          300 * time.Millisecond,
		Timeout:           10 * time.Second,
		RequestsPerSecond: 20,
		BreakerFailures:   5,
		BreakerTimeout:    15 * time.Second,
		PageSize:          20,
		LogLevel:          "info",
	}
}

var serverEnv = map[string]string{
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_idle_timeout":     "server.idle_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",

	"data_path":          "data.path",
	"data_watch_mode":    "data.watch_mode",
	"data_poll_interval": "data.poll_interval",

	"api_cache_max_age": "api.cache_max_age",

	"cors_origins":        "security.cors_origins",
	"rate_limit_reqs":     "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"rate_limit_disabled": "security.rate_limit_disabled",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

var clientEnv = map[string]string{
	"catalog_api_url":          "api_url",
	"catalog_prefs_path":       "prefs_path",
	"catalog_debounce":         "debounce",
	"catalog_timeout":          "timeout",
	"catalog_rps":              "requests_per_second",
	"catalog_breaker_failures": "breaker_failures",
	"catalog_breaker_timeout":  "breaker_timeout",
	"catalog_page_size":        "page_size",
	"catalog_log_file":         "log_file",
	"catalog_log_level":        "log_level",
}

// sliceConfigPaths are keys that accept comma separated env values.
var sliceConfigPaths = []string{"security.cors_origins"}

// Load builds the server configuration.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := load(defaultConfig(), findConfigFile(ConfigPathEnvVar, DefaultConfigPaths), serverEnv, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadClient builds the terminal client configuration. The YAML file is only
// read when CATALOG_CONFIG names one.
func LoadClient() (*ClientConfig, error) {
	cfg := &ClientConfig{}
	if err := load(defaultClientConfig(), findConfigFile(ClientConfigPathEnvVar, nil), clientEnv, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("client configuration validation failed: %w", err)
	}
	return cfg, nil
}

func load(defaults interface{}, configPath string, envMap map[string]string, out interface{}) error {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	transform := func(key string) string {
		return envMap[strings.ToLower(key)]
	}
	if err := k.Load(env.Provider("", ".", transform), nil); err != nil {
		return fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return fmt.Errorf("failed to process slice fields: %w", err)
	}

	if err := k.Unmarshal("", out); err != nil {
		return fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return nil
}

func findConfigFile(envVar string, candidates []string) string {
	if p := os.Getenv(envVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// processSliceFields splits comma separated strings coming from the
// environment. Values that are already lists (YAML) are left alone.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok || s == "" {
			continue
		}
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if err := k.Set(path, out); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}
