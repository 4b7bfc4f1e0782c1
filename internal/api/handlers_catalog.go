// Vietmap - Historical Map Data Service for Vietnam
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vietmap

package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/vietmap/internal/catalog"
	"github.com/tomtom215/vietmap/internal/logging"
	"github.com/tomtom215/vietmap/internal/models"
)

// Sites lists the mapped sites, optionally restricted to one city.
func (h *Handler) Sites(w http.ResponseWriter, r *http.Request) {
	req := CityFilterRequest{CityID: r.URL.Query().Get("city_id")}
	if !validateRequest(w, r, &req) {
		return
	}

	var sites []models.Site
	if req.CityID != "" {
		sites = h.catalog.SitesInCity(r.Context(), req.CityID)
	} else {
		sites = h.catalog.CachedSites(r.Context())
	}
	if sites == nil {
		sites = []models.Site{}
	}
	NewResponseWriter(w, r).List(sites, len(sites))
}

// SiteDetail returns one site with its hydrated events.
func (h *Handler) SiteDetail(w http.ResponseWriter, r *http.Request) {
	req := DetailRequest{ID: chi.URLParam(r, "id")}
	if !validateRequest(w, r, &req) {
		return
	}

	detail := h.catalog.FetchSiteDetail(r.Context(), req.ID)
	if detail == nil {
		NewResponseWriter(w, r).NotFound("site not found")
		return
	}
	NewResponseWriter(w, r).Success(detail)
}

// Persons lists the persons, optionally restricted to one related city.
func (h *Handler) Persons(w http.ResponseWriter, r *http.Request) {
	req := CityFilterRequest{CityID: r.URL.Query().Get("city_id")}
	if !validateRequest(w, r, &req) {
		return
	}

	var persons []models.Person
	if req.CityID != "" {
		persons = h.catalog.PersonsInCity(r.Context(), req.CityID)
	} else {
		persons = h.catalog.CachedPersons(r.Context())
	}
	if persons == nil {
		persons = []models.Person{}
	}
	NewResponseWriter(w, r).List(persons, len(persons))
}

// PersonDetail returns one person with events, media and biography.
func (h *Handler) PersonDetail(w http.ResponseWriter, r *http.Request) {
	req := DetailRequest{ID: chi.URLParam(r, "id")}
	if !validateRequest(w, r, &req) {
		return
	}

	detail := h.catalog.FetchPersonDetail(r.Context(), req.ID)
	if detail == nil {
		NewResponseWriter(w, r).NotFound("person not found")
		return
	}
	NewResponseWriter(w, r).Success(detail)
}

// AdminReload runs a full catalog refresh and returns its summary. The
// refresh outlives the request so a disconnecting client cannot abort it.
func (h *Handler) AdminReload(w http.ResponseWriter, r *http.Request) {
	ctx := context.WithoutCancel(r.Context())
	summary := h.catalog.Refresh(ctx, catalog.TriggerAdmin)

	logging.Ctx(r.Context()).Info().
		Str("remote_addr", sanitizeLogValue(r.RemoteAddr)).
		Int("sites", summary.Sites).
		Int("persons", summary.Persons).
		Msg("admin reload completed")
	NewResponseWriter(w, r).Success(summary)
}
