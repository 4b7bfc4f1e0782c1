// Vietmap - Historical Map Data Service for Vietnam
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vietmap

// Package fetch retrieves records from the historical-data backend.
//
// Every request races the direct URL against each configured CORS proxy;
// the first success wins and the rest are cancelled. Callers of Fetch never
// see an error: a race nobody wins is logged and yields an empty list.
package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/goccy/go-json"

	"github.com/tomtom215/vietmap/internal/breaker"
	"github.com/tomtom215/vietmap/internal/config"
	"github.com/tomtom215/vietmap/internal/logging"
	"github.com/tomtom215/vietmap/internal/metrics"
	"github.com/tomtom215/vietmap/internal/record"
)

// Snapshots persists last-known-good payloads per backend path.
type Snapshots interface {
	Save(ctx context.Context, key string, payload []byte) error
	Load(ctx context.Context, key string) ([]byte, bool, error)
}

// strategy is one way of reaching the backend.
type strategy struct {
	name    string
	rewrite func(target string) string
	breaker *breaker.Breaker[any]
}

// Client fetches backend paths through the direct/proxy race.
type Client struct {
	baseURL    string
	timeout    time.Duration
	http       *http.Client
	strategies []strategy
	snapshots  Snapshots
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client used by every strategy.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithSnapshots enables last-known-good fallback.
func WithSnapshots(s Snapshots) Option {
	return func(c *Client) {
		c.snapshots = s
	}
}

// NewClient builds a client for the backend described by cfg.
func NewClient(cfg config.BackendConfig, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: cfg.Timeout,
		http:    NewHTTPClient(cfg.UserAgent),
	}

	c.strategies = append(c.strategies, strategy{
		name:    "direct",
		rewrite: func(target string) string { return target },
		breaker: breaker.New[any]("backend-direct", breaker.Settings{}),
	})

	if cfg.ProxiesEnabled {
		for i, tmpl := range cfg.Proxies {
			name := fmt.Sprintf("proxy-%d", i+1)
			c.strategies = append(c.strategies, strategy{
				name:    name,
				rewrite: proxyRewriter(tmpl),
				breaker: breaker.New[any]("backend-"+name, breaker.Settings{}),
			})
		}
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

func proxyRewriter(tmpl string) func(string) string {
	return func(target string) string {
		return strings.ReplaceAll(tmpl, "{url}", url.QueryEscape(target))
	}
}

// URL returns the absolute backend URL for path.
func (c *Client) URL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

// Strategies returns the strategy names in race order.
func (c *Client) Strategies() []string {
	names := make([]string, len(c.strategies))
	for i, s := range c.strategies {
		names[i] = s.name
	}
	return names
}

// FetchRaw races every strategy for path and returns the decoded payload of
// the winner. A 404 wins with a nil payload. When every strategy fails and a
// snapshot exists it is returned instead; otherwise the error wraps
// ErrAllAttemptsFailed.
func (c *Client) FetchRaw(ctx context.Context, path string) (any, error) {
	target := c.URL(path)
	endpoint := endpointLabel(path)

	attempts := make([]Attempt[any], len(c.strategies))
	for i := range c.strategies {
		attempts[i] = c.attempt(&c.strategies[i], target)
	}

	start := time.Now()
	payload, winner, err := race(ctx, attempts)
	if err == nil {
		metrics.RecordFetchRace(endpoint, c.strategies[winner].name, time.Since(start))
		if payload != nil {
			c.saveSnapshot(ctx, path, payload)
		}
		return payload, nil
	}
	metrics.RecordFetchRace(endpoint, "", time.Since(start))

	if snap, ok := c.loadSnapshot(ctx, path); ok {
		metrics.SnapshotServed.WithLabelValues(endpoint).Inc()
		logging.Ctx(ctx).Warn().Err(err).Str("path", path).Msg("backend unreachable, serving last known good snapshot")
		return snap, nil
	}
	return nil, err
}

// Fetch returns the records at path. It never fails: when nothing can be
// retrieved it logs a warning and returns an empty list.
func (c *Client) Fetch(ctx context.Context, path string) []record.Record {
	payload, err := c.FetchRaw(ctx, path)
	if err != nil {
		logging.Ctx(ctx).Warn().
			Err(err).
			Str("path", path).
			Int("attempts", len(c.strategies)).
			Msg("all fetch strategies failed")
		return []record.Record{}
	}
	return Unwrap(payload)
}

// FetchOne returns the first record at path, for single-entity endpoints.
func (c *Client) FetchOne(ctx context.Context, path string) (record.Record, bool) {
	records := c.Fetch(ctx, path)
	if len(records) == 0 {
		return nil, false
	}
	return records[0], true
}

func (c *Client) attempt(s *strategy, target string) Attempt[any] {
	return Attempt[any]{
		Name: s.name,
		Run: func(ctx context.Context) (any, error) {
			v, err := s.breaker.Execute(func() (any, error) {
				return GetJSON(ctx, c.http, s.rewrite(target), c.timeout)
			})
			metrics.RecordFetchAttempt(s.name, attemptResult(ctx, v, err))
			if err != nil {
				logging.Ctx(ctx).Debug().Err(err).Str("strategy", s.name).Str("url", target).Msg("fetch attempt failed")
			}
			return v, err
		},
	}
}

func attemptResult(ctx context.Context, v any, err error) string {
	switch {
	case err == nil && v == nil:
		return "not_found"
	case err == nil:
		return "success"
	case ctx.Err() != nil:
		return "cancelled"
	case breaker.IsRejected(err):
		return "rejected"
	default:
		return "failure"
	}
}

func snapshotKey(path string) string {
	return "backend:" + path
}

func (c *Client) saveSnapshot(ctx context.Context, path string, payload any) {
	if c.snapshots == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Ctx(ctx).Debug().Err(err).Str("path", path).Msg("snapshot encode failed")
		return
	}
	// The request context may already be done once the race is won.
	if err := c.snapshots.Save(context.WithoutCancel(ctx), snapshotKey(path), data); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("path", path).Msg("snapshot save failed")
	}
}

func (c *Client) loadSnapshot(ctx context.Context, path string) (any, bool) {
	if c.snapshots == nil {
		return nil, false
	}
	data, ok, err := c.snapshots.Load(context.WithoutCancel(ctx), snapshotKey(path))
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("path", path).Msg("snapshot load failed")
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("path", path).Msg("snapshot decode failed")
		return nil, false
	}
	return payload, true
}

// endpointLabel replaces id-like path segments so metric labels stay bounded:
// /event/location/42 becomes /event/location/:id.
func endpointLabel(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, seg := range segments {
		if i > 0 && strings.IndexFunc(seg, unicode.IsDigit) >= 0 {
			segments[i] = ":id"
		}
	}
	return "/" + strings.Join(segments, "/")
}
