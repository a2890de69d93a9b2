// Catalog - Item Catalog Browser
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/catalog

// Package config loads catalog server and client configuration.
//
// Values are layered with koanf: struct defaults, then an optional YAML file
// (CONFIG_PATH or the first of DefaultConfigPaths that exists), then
// environment variables. Only explicitly mapped environment variables are
// read; anything else in the environment is ignored.
package config

import "time"

// Watch modes for the data file change source.
const (
	WatchModeNotify = "notify"
	WatchModePoll   = "poll"
)

// Config is the catalog server configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Data     DataConfig     `koanf:"data"`
	API      APIConfig      `koanf:"api"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// DataConfig describes the item data file and how changes to it are observed.
type DataConfig struct {
	// Path is the JSON array file of items.
	Path string `koanf:"path"`

	// WatchMode is "notify" (fsnotify) or "poll" (modification time polling).
	WatchMode string `koanf:"watch_mode"`

	// PollInterval is used in poll mode, and as the fallback rescan period in
	// notify mode.
	PollInterval time.Duration `koanf:"poll_interval"`
}

// APIConfig holds response settings.
type APIConfig struct {
	// CacheMaxAge is the Cache-Control max-age for item and stats responses.
	CacheMaxAge time.Duration `koanf:"cache_max_age"`
}

// SecurityConfig holds CORS and rate limiting settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// ClientConfig is the terminal client configuration.
type ClientConfig struct {
	// APIURL is the base URL of the catalog server.
	APIURL string `koanf:"api_url"`

	// PrefsPath is the TOML file holding the persisted theme preference.
	PrefsPath string `koanf:"prefs_path"`

	// Debounce is the quiet period before a search is sent.
	Debounce time.Duration `koanf:"debounce"`

	// Timeout bounds a single API request.
	Timeout time.Duration `koanf:"timeout"`

	// RequestsPerSecond paces outgoing requests; zero disables pacing.
	RequestsPerSecond float64 `koanf:"requests_per_second"`

	// BreakerFailures is the number of consecutive failures that opens the
	// circuit breaker.
	BreakerFailures uint32 `koanf:"breaker_failures"`

	// BreakerTimeout is how long the breaker stays open.
	BreakerTimeout time.Duration `koanf:"breaker_timeout"`

	// PageSize is the number of items per page in the browser.
	PageSize int `koanf:"page_size"`

	// LogFile receives client logs; empty discards them.
	LogFile string `koanf:"log_file"`

	LogLevel string `koanf:"log_level"`
}
