// Vietmap - Historical Map Data Service for Vietnam
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vietmap

// Package geocode searches addresses with a Nominatim geocoder.
//
// Nominatim's public usage policy allows one request per second and requires
// an identifying User-Agent, so every request waits on a shared limiter and
// answers are cached.
package geocode

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/vietmap/internal/breaker"
	"github.com/tomtom215/vietmap/internal/cache"
	"github.com/tomtom215/vietmap/internal/config"
	"github.com/tomtom215/vietmap/internal/fetch"
	"github.com/tomtom215/vietmap/internal/logging"
	"github.com/tomtom215/vietmap/internal/metrics"
	"github.com/tomtom215/vietmap/internal/models"
	"github.com/tomtom215/vietmap/internal/textnorm"
)

// Query defaults.
const (
	SearchLimit  = 5
	CountryCodes = "vn"
)

const cacheCapacity = 1000

type place struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Error       string `json:"error"`
}

// Client is a rate-limited, caching Nominatim client.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
	limiter *rate.Limiter
	breaker *breaker.Breaker[[]place]

	searches *cache.LRU[[]models.AddressSearchResult]
	reverses *cache.LRU[*models.AddressSearchResult]
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// NewClient creates a geocoding client.
func NewClient(cfg config.GeocodingConfig, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		timeout:  cfg.Timeout,
		http:     fetch.NewHTTPClient(cfg.UserAgent),
		limiter:  rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		breaker:  breaker.New[[]place]("geocode", breaker.Settings{MinRequests: 5}),
		searches: cache.NewLRU[[]models.AddressSearchResult](cacheCapacity, cfg.CacheTTL),
		reverses: cache.NewLRU[*models.AddressSearchResult](cacheCapacity, cfg.CacheTTL),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search returns up to SearchLimit places in Vietnam matching q. Failures
// yield an empty list.
func (c *Client) Search(ctx context.Context, q string) []models.AddressSearchResult {
	q = strings.TrimSpace(q)
	if q == "" {
		return []models.AddressSearchResult{}
	}

	key := cache.GenerateKey("geocode.search", map[string]string{"q": textnorm.Fold(q)})
	if hit, ok := c.searches.Get(key); ok {
		metrics.RecordCacheLookup("geocode", true)
		metrics.GeocodeRequests.WithLabelValues("search", "cached").Inc()
		return hit
	}
	metrics.RecordCacheLookup("geocode", false)

	params := url.Values{}
	params.Set("q", q)
	params.Set("format", "json")
	params.Set("limit", strconv.Itoa(SearchLimit))
	params.Set("countrycodes", CountryCodes)

	places, err := c.get(ctx, "/search?"+params.Encode(), false)
	if err != nil {
		metrics.GeocodeRequests.WithLabelValues("search", "error").Inc()
		logging.Ctx(ctx).Warn().Err(err).Str("query", q).Msg("address search failed")
		return []models.AddressSearchResult{}
	}

	results := make([]models.AddressSearchResult, 0, len(places))
	for _, p := range places {
		if r, ok := toResult(p); ok {
			results = append(results, r)
		}
	}
	metrics.GeocodeRequests.WithLabelValues("search", "ok").Inc()
	c.searches.Add(key, results)
	return results
}

// Reverse returns the place at lat, lon, or nil.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) *models.AddressSearchResult {
	key := fmt.Sprintf("geocode.reverse:%.5f,%.5f", lat, lon)
	if hit, ok := c.reverses.Get(key); ok {
		metrics.RecordCacheLookup("geocode", true)
		metrics.GeocodeRequests.WithLabelValues("reverse", "cached").Inc()
		return hit
	}
	metrics.RecordCacheLookup("geocode", false)

	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("format", "json")

	places, err := c.get(ctx, "/reverse?"+params.Encode(), true)
	if err != nil {
		metrics.GeocodeRequests.WithLabelValues("reverse", "error").Inc()
		logging.Ctx(ctx).Warn().Err(err).Float64("lat", lat).Float64("lon", lon).Msg("reverse geocoding failed")
		return nil
	}

	var result *models.AddressSearchResult
	if len(places) > 0 {
		if r, ok := toResult(places[0]); ok {
			result = &r
		}
	}
	metrics.GeocodeRequests.WithLabelValues("reverse", "ok").Inc()
	c.reverses.Add(key, result)
	return result
}

// get waits for the limiter and fetches one endpoint. single selects the
// reverse endpoint's object response over the search endpoint's array.
func (c *Client) get(ctx context.Context, path string, single bool) ([]place, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	return c.breaker.Execute(func() ([]place, error) {
		target := c.baseURL + path
		if single {
			var p place
			found, err := fetch.GetInto(ctx, c.http, target, c.timeout, &p)
			if err != nil || !found || p.Error != "" {
				return nil, err
			}
			return []place{p}, nil
		}

		var ps []place
		if _, err := fetch.GetInto(ctx, c.http, target, c.timeout, &ps); err != nil {
			return nil, err
		}
		return ps, nil
	})
}

func toResult(p place) (models.AddressSearchResult, bool) {
	lat, errLat := strconv.ParseFloat(p.Lat, 64)
	lon, errLon := strconv.ParseFloat(p.Lon, 64)
	if errLat != nil || errLon != nil {
		return models.AddressSearchResult{}, false
	}

	name := strings.TrimSpace(p.Name)
	if name == "" {
		name, _, _ = strings.Cut(p.DisplayName, ",")
		name = strings.TrimSpace(name)
	}
	return models.AddressSearchResult{
		Name:        name,
		Address:     p.DisplayName,
		Coordinates: [2]float64{lat, lon},
	}, true
}
