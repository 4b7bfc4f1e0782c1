// Vietmap - Historical Map Data Service for Vietnam
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vietmap

// Package refdata holds the reference collections (media, join tables,
// persons, events) that hydration and person location depend on.
//
// The store loads all five collections once, concurrently, and serves the
// result to every caller. Concurrent first callers share one in-flight load.
package refdata

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/vietmap/internal/events"
	"github.com/tomtom215/vietmap/internal/logging"
	"github.com/tomtom215/vietmap/internal/metrics"
	"github.com/tomtom215/vietmap/internal/record"
)

// Backend paths of the reference collections.
const (
	PathMedia       = "/media"
	PathEventMedia  = "/event_media"
	PathPersonEvent = "/person_event"
	PathPersons     = "/persons"
	PathEvents      = "/event"
)

// DefaultLoadTimeout bounds one full load. Each fetch is bounded separately
// by the fetcher's own timeout.
const DefaultLoadTimeout = 60 * time.Second

// Fetcher fetches one backend collection. *fetch.Client implements it.
type Fetcher interface {
	Fetch(ctx context.Context, path string) []record.Record
}

// Store is the single-flight reference data store.
type Store struct {
	fetcher   Fetcher
	publisher events.Publisher
	timeout   time.Duration

	mu   sync.RWMutex
	data *Data

	group singleflight.Group
}

// Option configures a Store.
type Option func(*Store)

// WithPublisher publishes refdata.reloaded after every load.
func WithPublisher(p events.Publisher) Option {
	return func(s *Store) { s.publisher = p }
}

// WithLoadTimeout overrides DefaultLoadTimeout.
func WithLoadTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewStore creates an empty store.
func NewStore(fetcher Fetcher, opts ...Option) *Store {
	s := &Store{fetcher: fetcher, timeout: DefaultLoadTimeout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns the current data, or nil before the first load.
func (s *Store) Snapshot() *Data {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

// Loaded reports whether a load has completed.
func (s *Store) Loaded() bool {
	return s.Snapshot() != nil
}

// Ensure returns the loaded data, loading it on first use. Callers that
// arrive during a load wait for it instead of starting another.
func (s *Store) Ensure(ctx context.Context) (*Data, error) {
	if d := s.Snapshot(); d != nil {
		return d, nil
	}
	return s.load(ctx, false)
}

// Reload loads fresh data and swaps it in. A reload that arrives while a
// load is in flight joins it.
func (s *Store) Reload(ctx context.Context) (*Data, error) {
	return s.load(ctx, true)
}

func (s *Store) load(ctx context.Context, force bool) (*Data, error) {
	ch := s.group.DoChan("load", func() (any, error) {
		if !force {
			// Another load may have finished between Snapshot and DoChan.
			if d := s.Snapshot(); d != nil {
				return d, nil
			}
		}
		// Detached so one caller giving up does not abort the shared load.
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		return s.fetchAll(loadCtx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Data), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for reference data: %w", ctx.Err())
	}
}

func (s *Store) fetchAll(ctx context.Context) (*Data, error) {
	start := time.Now()

	var media, eventMedia, personEvent, persons, evts []record.Record
	targets := []struct {
		path string
		dst  *[]record.Record
	}{
		{PathMedia, &media},
		{PathEventMedia, &eventMedia},
		{PathPersonEvent, &personEvent},
		{PathPersons, &persons},
		{PathEvents, &evts},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, t := range targets {
		g.Go(func() error {
			*t.dst = s.fetcher.Fetch(gctx, t.path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("loading reference data: %w", err)
	}

	d := build(media, eventMedia, personEvent, persons, evts, time.Now())

	s.mu.Lock()
	s.data = d
	s.mu.Unlock()

	elapsed := time.Since(start)
	counts := d.Counts()
	metrics.RecordRefdataLoad(elapsed, counts)

	logging.Ctx(ctx).Info().
		Dur("duration", elapsed).
		Int("media", counts["media"]).
		Int("persons", counts["persons"]).
		Int("events", counts["events"]).
		Msg("reference data loaded")

	s.publish(ctx, d)
	return d, nil
}

func (s *Store) publish(ctx context.Context, d *Data) {
	if s.publisher == nil {
		return
	}
	payload := events.RefdataReloaded{
		Persons:  len(d.Persons),
		Events:   len(d.Events),
		Media:    len(d.Media),
		LoadedAt: d.LoadedAt,
	}
	if err := s.publisher.Publish(ctx, events.TopicRefdataReloaded, payload); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("failed to publish refdata.reloaded")
	}
}
