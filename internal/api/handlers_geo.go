// Vietmap - Historical Map Data Service for Vietnam
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vietmap

package api

import (
	"net/http"

	"github.com/tomtom215/vietmap/internal/models"
)

// Route returns driving directions. When the routing engine is unavailable
// the response is still 200 and carries a straight-line fallback.
func (h *Handler) Route(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := RouteRequest{
		FromLat: q.Get("from_lat"),
		FromLon: q.Get("from_lon"),
		ToLat:   q.Get("to_lat"),
		ToLon:   q.Get("to_lon"),
	}
	if !validateRequest(w, r, &req) {
		return
	}

	from, to := req.Points()
	NewResponseWriter(w, r).Success(h.directions.Route(r.Context(), from, to))
}

// GeocodeSearch searches addresses in Vietnam.
func (h *Handler) GeocodeSearch(w http.ResponseWriter, r *http.Request) {
	req := GeocodeSearchRequest{Query: r.URL.Query().Get("q")}
	if !validateRequest(w, r, &req) {
		return
	}

	results := h.geocoder.Search(r.Context(), req.Query)
	if results == nil {
		results = []models.AddressSearchResult{}
	}
	NewResponseWriter(w, r).List(results, len(results))
}

// GeocodeReverse resolves a coordinate to an address. data is null when
// nothing was found or the geocoder failed.
func (h *Handler) GeocodeReverse(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := ReverseGeocodeRequest{Lat: q.Get("lat"), Lon: q.Get("lon")}
	if !validateRequest(w, r, &req) {
		return
	}

	p := req.Point()
	NewResponseWriter(w, r).Success(h.geocoder.Reverse(r.Context(), p.Lat, p.Lon))
}
