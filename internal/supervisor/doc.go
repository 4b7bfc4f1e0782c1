// Vietmap - Historical Map Data Service for Vietnam
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vietmap

/*
Package supervisor provides process supervision for Vietmap using suture v4.

New builds the whole tree from a Services value. Each service lands in a
fixed layer so that a failure restarts only that layer:

	vietmap
	├── data-layer
	│   └── Refresher (catalog warm-up and periodic refresh)
	├── messaging-layer
	│   ├── Hub
	│   └── Forwarder (bus to hub relay)
	└── api-layer
	    └── HTTP

A backend outage that keeps the refresher failing never takes down the HTTP
server, which keeps answering from the cached catalog. Only HTTP is
required; the other services are left out when nil.

# Usage

	tree, err := supervisor.New(logging.NewSlogLogger(), supervisor.DefaultPolicy(), supervisor.Services{
	    Refresher: services.NewRefreshService(catalogSvc, cfg.Refresh.Interval, true),
	    Hub:       services.NewWebSocketHubService(hub),
	    Forwarder: websocket.NewForwarder(bus, hub),
	    HTTP:      services.NewHTTPServerService(server, 10*time.Second),
	})
	if err != nil {
	    return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err = tree.Serve(ctx)

Supervisor events (service panics, restarts, backoff) are logged through
sutureslog bridged onto the zerolog logger. Restarts are also counted in
the vietmap_service_restarts_total metric by layer, service and cause.
*/
package supervisor
