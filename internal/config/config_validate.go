// Catalog - Item Catalog Browser
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/catalog

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateData(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("HTTP_SHUTDOWN_TIMEOUT must be positive, got %v", c.Server.ShutdownTimeout)
	}
	return nil
}

func (c *Config) validateData() error {
	if strings.TrimSpace(c.Data.Path) == "" {
		return fmt.Errorf("DATA_PATH is required")
	}
	switch c.Data.WatchMode {
	case WatchModeNotify, WatchModePoll:
	default:
		return fmt.Errorf("DATA_WATCH_MODE must be %q or %q, got %q", WatchModeNotify, WatchModePoll, c.Data.WatchMode)
	}
	if c.Data.PollInterval < 100*time.Millisecond {
		return fmt.Errorf("DATA_POLL_INTERVAL must be at least 100ms, got %v", c.Data.PollInterval)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQS must be positive, got %d", c.Security.RateLimitReqs)
	}
	if c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %v", c.Security.RateLimitWindow)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

// Validate checks the client configuration.
func (c *ClientConfig) Validate() error {
	if err := validateHTTPURL(c.APIURL, "CATALOG_API_URL"); err != nil {
		return err
	}
	if c.Debounce < 0 {
		return fmt.Errorf("CATALOG_DEBOUNCE must not be negative, got %v", c.Debounce)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("CATALOG_TIMEOUT must be positive, got %v", c.Timeout)
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("CATALOG_RPS must not be negative, got %v", c.RequestsPerSecond)
	}
	if c.PageSize < 1 {
		return fmt.Errorf("CATALOG_PAGE_SIZE must be positive, got %d", c.PageSize)
	}
	return nil
}

// validateHTTPURL accepts an http(s) base URL with a host and no query.
// A path prefix is allowed so the API can sit behind a reverse proxy.
func validateHTTPURL(rawURL, field string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %q", field, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%s host is required", field)
	}
	if u.RawQuery != "" {
		return fmt.Errorf("%s should not contain query parameters", field)
	}
	return nil
}
