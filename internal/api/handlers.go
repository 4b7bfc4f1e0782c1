// Vietmap - Historical Map Data Service for Vietnam
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vietmap

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/vietmap/internal/config"
	"github.com/tomtom215/vietmap/internal/events"
	"github.com/tomtom215/vietmap/internal/logging"
	"github.com/tomtom215/vietmap/internal/models"
	ws "github.com/tomtom215/vietmap/internal/websocket"
)

// Catalog is the reconciled data the handlers serve. *catalog.Service
// implements it.
type Catalog interface {
	Ready() bool
	CachedSites(ctx context.Context) []models.Site
	SitesInCity(ctx context.Context, cityID string) []models.Site
	CachedPersons(ctx context.Context) []models.Person
	PersonsInCity(ctx context.Context, cityID string) []models.Person
	FetchSiteDetail(ctx context.Context, id string) *models.SiteDetail
	FetchPersonDetail(ctx context.Context, id string) *models.PersonDetail
	Refresh(ctx context.Context, trigger string) events.CatalogRefreshed
}

// Directions computes driving routes. *directions.Client implements it.
type Directions interface {
	Route(ctx context.Context, from, to models.LatLon) models.RouteData
}

// Geocoder resolves addresses. *geocode.Client implements it.
type Geocoder interface {
	Search(ctx context.Context, q string) []models.AddressSearchResult
	Reverse(ctx context.Context, lat, lon float64) *models.AddressSearchResult
}

// Handler holds the dependencies of every HTTP handler.
type Handler struct {
	config     *config.Config
	catalog    Catalog
	directions Directions
	geocoder   Geocoder
	wsHub      *ws.Hub
	startTime  time.Time
}

// NewHandler creates a Handler. A nil hub disables the websocket endpoint;
// a nil config accepts websocket connections from any origin.
func NewHandler(cfg *config.Config, cat Catalog, dir Directions, geo Geocoder, hub *ws.Hub) *Handler {
	return &Handler{
		config:     cfg,
		catalog:    cat,
		directions: dir,
		geocoder:   geo,
		wsHub:      hub,
		startTime:  time.Now(),
	}
}

// getUpgrader creates a WebSocket upgrader with origin checking and a
// handshake timeout against slow clients.
func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin validates WebSocket connection origins
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")

	// Browsers always send Origin on websocket handshakes.
	if origin == "" {
		logging.Warn().Msg("WebSocket connection rejected: missing Origin header")
		return false
	}

	if h.config == nil {
		return true
	}

	for _, allowedOrigin := range h.config.Security.CORSOrigins {
		if allowedOrigin == "*" || allowedOrigin == origin {
			return true
		}
	}

	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("WebSocket connection rejected from unauthorized origin")
	return false
}

// WebSocket upgrades the connection and registers it with the hub.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.wsHub == nil {
		logging.Warn().Msg("WebSocket connection rejected: hub not initialized")
		NewResponseWriter(w, r).ServiceUnavailable("WebSocket service unavailable")
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("WebSocket upgrade error")
		return
	}

	client := ws.NewClient(h.wsHub, conn)
	if !h.wsHub.Join(client) {
		logging.Ctx(r.Context()).Debug().Msg("WebSocket connection closed: hub stopped")
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		_ = conn.Close()
		return
	}
	client.Start()
}
