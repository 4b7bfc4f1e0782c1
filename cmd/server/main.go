// Vietmap - Historical Map Data Service for Vietnam
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vietmap

// Package main is the entry point for the Vietmap server.
//
// Vietmap serves Vietnamese historical sites and persons to the map client.
// It pulls raw records from the upstream CMS (directly or through CORS
// proxies), reconciles them against the reference data and answers map,
// directions and geocoding requests.
//
// Startup order:
//
//  1. Configuration (koanf: defaults, config file, environment)
//  2. Event bus (watermill gochannel)
//  3. Snapshot store (badger, optional)
//  4. Backend fetcher, reference data store and catalog
//  5. Directions (OSRM) and geocoding (Nominatim) clients
//  6. WebSocket hub and HTTP router
//  7. Supervisor tree, until SIGINT or SIGTERM
//
// Minimal run against a local backend:
//
//	export BACKEND_URL=http://localhost:1337/api
//	export LOG_FORMAT=console
//	./vietmap
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/vietmap/internal/api"
	"github.com/tomtom215/vietmap/internal/catalog"
	"github.com/tomtom215/vietmap/internal/config"
	"github.com/tomtom215/vietmap/internal/directions"
	"github.com/tomtom215/vietmap/internal/events"
	"github.com/tomtom215/vietmap/internal/fetch"
	"github.com/tomtom215/vietmap/internal/geocode"
	"github.com/tomtom215/vietmap/internal/logging"
	"github.com/tomtom215/vietmap/internal/refdata"
	"github.com/tomtom215/vietmap/internal/snapshot"
	"github.com/tomtom215/vietmap/internal/supervisor"
	"github.com/tomtom215/vietmap/internal/supervisor/services"
	ws "github.com/tomtom215/vietmap/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
	})

	logging.Info().
		Str("backend_url", cfg.Backend.BaseURL).
		Bool("proxies_enabled", cfg.Backend.ProxiesEnabled).
		Int("proxies", len(cfg.Backend.Proxies)).
		Dur("refresh_interval", cfg.Refresh.Interval).
		Msg("Starting Vietmap")

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Server stopped with error")
	}
	logging.Info().Msg("Application stopped gracefully")
}

func run(cfg *config.Config) error {
	bus := events.NewBus()
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Warn().Err(err).Msg("Error closing event bus")
		}
	}()

	var fetchOpts []fetch.Option
	snapshots, err := snapshot.Open(cfg.Snapshot)
	switch {
	case errors.Is(err, snapshot.ErrDisabled):
		logging.Info().Msg("Snapshot store disabled")
	case err != nil:
		// Snapshots only serve outages; run without them.
		logging.Warn().Err(err).Msg("Failed to open snapshot store")
	default:
		defer func() {
			if err := snapshots.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing snapshot store")
			}
		}()
		fetchOpts = append(fetchOpts, fetch.WithSnapshots(snapshots))
		logging.Info().Str("path", cfg.Snapshot.Path).Bool("in_memory", cfg.Snapshot.InMemory).Msg("Snapshot store opened")
	}

	fetcher := fetch.NewClient(cfg.Backend, fetchOpts...)
	store := refdata.NewStore(fetcher, refdata.WithPublisher(bus))
	catalogSvc := catalog.NewService(fetcher, store, cfg.Cache.TTL, catalog.WithPublisher(bus))
	defer catalogSvc.Close()

	wsHub := ws.NewHub()
	handler := api.NewHandler(cfg,
		catalogSvc,
		directions.NewClient(cfg.Directions),
		geocode.NewClient(cfg.Geocoding),
		wsHub,
	)
	router := api.NewRouter(handler, api.NewChiMiddlewareFromSecurity(cfg.Security))

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: cfg.Server.Timeout,
		ReadTimeout:       cfg.Server.Timeout,
		IdleTimeout:       2 * cfg.Server.Timeout,
	}

	tree, err := supervisor.New(logging.NewSlogLogger(),
		supervisor.Policy{ShutdownTimeout: cfg.Server.ShutdownTimeout},
		supervisor.Services{
			Refresher: services.NewRefreshService(catalogSvc, cfg.Refresh.Interval, cfg.Refresh.WarmOnStart),
			Hub:       services.NewWebSocketHubService(wsHub),
			Forwarder: ws.NewForwarder(bus, wsHub),
			HTTP:      services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout),
		})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	layout := tree.Layout()
	logging.Info().
		Str("addr", server.Addr).
		Strs(supervisor.LayerData, layout[supervisor.LayerData]).
		Strs(supervisor.LayerMessaging, layout[supervisor.LayerMessaging]).
		Strs(supervisor.LayerAPI, layout[supervisor.LayerAPI]).
		Msg("Starting supervisor tree")
	err = tree.Serve(ctx)

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
		}
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
