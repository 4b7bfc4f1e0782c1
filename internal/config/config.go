// Vietmap - Historical Map Data Service for Vietnam
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vietmap

// Package config loads Vietmap configuration with Koanf v2.
//
// Loading order (later layers override earlier ones):
//  1. Defaults from defaultConfig()
//  2. Optional YAML file (CONFIG_PATH, or config.yaml / /etc/vietmap/config.yaml)
//  3. Environment variables (BACKEND_URL, HTTP_PORT, LOG_LEVEL, ...)
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    logging.Fatal().Err(err).Msg("invalid configuration")
//	}
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Backend    BackendConfig    `koanf:"backend"`
	Directions DirectionsConfig `koanf:"directions"`
	Geocoding  GeocodingConfig  `koanf:"geocoding"`
	Cache      CacheConfig      `koanf:"cache"`
	Refresh    RefreshConfig    `koanf:"refresh"`
	Snapshot   SnapshotConfig   `koanf:"snapshot"`
	Security   SecurityConfig   `koanf:"security"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// BackendConfig configures the uncontrolled historical-data REST API.
type BackendConfig struct {
	// BaseURL is the backend root, e.g. https://api.example.vn/api.
	BaseURL string `koanf:"base_url"`

	// Timeout bounds every individual attempt (direct or proxied).
	Timeout time.Duration `koanf:"timeout"`

	// Proxies are CORS-proxy URL templates; "{url}" is replaced by the escaped target URL.
	Proxies []string `koanf:"proxies"`

	// ProxiesEnabled races the proxies alongside the direct request.
	ProxiesEnabled bool `koanf:"proxies_enabled"`

	// UserAgent is sent on every outbound request.
	UserAgent string `koanf:"user_agent"`
}

// DirectionsConfig configures the OSRM-compatible routing engine.
type DirectionsConfig struct {
	BaseURL string        `koanf:"base_url"`
	Timeout time.Duration `koanf:"timeout"`
}

// GeocodingConfig configures the Nominatim-compatible geocoder.
type GeocodingConfig struct {
	BaseURL   string        `koanf:"base_url"`
	Timeout   time.Duration `koanf:"timeout"`
	UserAgent string        `koanf:"user_agent"`
	// RateLimit is requests per second; Nominatim's public policy is 1.
	RateLimit float64       `koanf:"rate_limit"`
	CacheTTL  time.Duration `koanf:"cache_ttl"`
}

// CacheConfig configures the site and person caches.
type CacheConfig struct {
	TTL time.Duration `koanf:"ttl"`
}

// RefreshConfig configures the supervised background refresh.
type RefreshConfig struct {
	// Interval between full refreshes. Zero disables periodic refresh.
	Interval time.Duration `koanf:"interval"`
	// WarmOnStart runs one refresh as soon as the service starts.
	WarmOnStart bool `koanf:"warm_on_start"`
}

// SnapshotConfig configures the last-known-good payload store.
type SnapshotConfig struct {
	// Path is the BadgerDB directory. Empty disables snapshots.
	Path string `koanf:"path"`
	// InMemory runs BadgerDB without touching disk.
	InMemory bool `koanf:"in_memory"`
}

// SecurityConfig configures CORS and inbound rate limiting.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig configures zerolog output.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Load reads configuration from defaults, file and environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
