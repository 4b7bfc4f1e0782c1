// Vietmap - Historical Map Data Service for Vietnam
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vietmap

package api

import (
	"net/http"
	"time"
)

// HealthLive reports that the process is up, regardless of the backend.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]any{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady answers 200 once reference data has been loaded at least once,
// and 503 before that.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ready := h.catalog != nil && h.catalog.Ready()
	data := map[string]any{
		"refdata_loaded": ready,
		"uptime":         time.Since(h.startTime).Seconds(),
	}
	if h.wsHub != nil {
		data["websocket_clients"] = h.wsHub.GetClientCount()
	}

	rw := NewResponseWriter(w, r)
	if !ready {
		rw.ErrorWithDetails(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "reference data not loaded", data)
		return
	}
	rw.Success(data)
}
