// Vietmap - Historical Map Data Service for Vietnam
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vietmap

/*
Package middleware provides the HTTP middleware shared by the API router.

  - RequestID: X-Request-ID propagation and logging context
  - PrometheusMetrics: request counters and latency histograms
  - AccessLog: one structured log line per request

All middleware has the func(http.Handler) http.Handler shape used by chi:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog)
	r.Use(middleware.PrometheusMetrics)
*/
package middleware
