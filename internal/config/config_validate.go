// Vietmap - Historical Map Data Service for Vietnam
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vietmap

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateBackend(); err != nil {
		return err
	}

	if err := c.validateDirections(); err != nil {
		return err
	}

	if err := c.validateGeocoding(); err != nil {
		return err
	}

	if err := c.validateRefresh(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateBackend() error {
	if err := validateHTTPURL("BACKEND_URL", c.Backend.BaseURL); err != nil {
		return err
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("BACKEND_TIMEOUT must be positive")
	}
	for _, p := range c.Backend.Proxies {
		if !strings.Contains(p, "{url}") {
			return fmt.Errorf("BACKEND_PROXIES entry %q must contain the {url} placeholder", p)
		}
	}
	return nil
}

func (c *Config) validateDirections() error {
	if err := validateHTTPURL("DIRECTIONS_URL", c.Directions.BaseURL); err != nil {
		return err
	}
	if c.Directions.Timeout <= 0 {
		return fmt.Errorf("DIRECTIONS_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateGeocoding() error {
	if err := validateHTTPURL("GEOCODING_URL", c.Geocoding.BaseURL); err != nil {
		return err
	}
	if c.Geocoding.Timeout <= 0 {
		return fmt.Errorf("GEOCODING_TIMEOUT must be positive")
	}
	if c.Geocoding.RateLimit <= 0 {
		return fmt.Errorf("GEOCODING_RATE_LIMIT must be positive")
	}
	// Nominatim's usage policy requires an identifying User-Agent.
	if strings.TrimSpace(c.Geocoding.UserAgent) == "" {
		return fmt.Errorf("GEOCODING_USER_AGENT is required")
	}
	return nil
}

func (c *Config) validateRefresh() error {
	if c.Refresh.Interval < 0 {
		return fmt.Errorf("REFRESH_INTERVAL must not be negative")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1")
	}
	if c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

func validateHTTPURL(name, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", name)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https", name)
	}
	if u.Host == "" {
		return fmt.Errorf("%s must include a host", name)
	}
	return nil
}
