// Vietmap - Historical Map Data Service for Vietnam
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vietmap

package services

import (
	"context"
	"time"

	"github.com/tomtom215/vietmap/internal/catalog"
	"github.com/tomtom215/vietmap/internal/events"
	"github.com/tomtom215/vietmap/internal/logging"
)

// Refresher is satisfied by *catalog.Service.
type Refresher interface {
	Refresh(ctx context.Context, trigger string) events.CatalogRefreshed
}

// RefreshService keeps the catalog warm. It optionally refreshes once at
// start, then every interval. With a zero interval it only warms and then
// idles until shutdown.
type RefreshService struct {
	refresher   Refresher
	interval    time.Duration
	warmOnStart bool
	name        string
}

// NewRefreshService creates a refresher for r.
func NewRefreshService(r Refresher, interval time.Duration, warmOnStart bool) *RefreshService {
	return &RefreshService{
		refresher:   r,
		interval:    interval,
		warmOnStart: warmOnStart,
		name:        "catalog-refresher",
	}
}

// Serve implements suture.Service. Refresh never fails, so Serve only
// returns on cancellation.
func (s *RefreshService) Serve(ctx context.Context) error {
	if s.warmOnStart {
		s.refresh(ctx, catalog.TriggerStartup)
	}

	if s.interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.refresh(ctx, catalog.TriggerInterval)
		}
	}
}

func (s *RefreshService) refresh(ctx context.Context, trigger string) {
	if ctx.Err() != nil {
		return
	}
	ctx = logging.ContextWithNewCorrelationID(ctx)
	summary := s.refresher.Refresh(ctx, trigger)
	if summary.Sites == 0 && summary.Persons == 0 {
		logging.Ctx(ctx).Warn().Str("trigger", trigger).Msg("catalog refresh returned no data")
	}
}

func (s *RefreshService) String() string {
	return s.name
}
