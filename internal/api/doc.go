// Vietmap - Historical Map Data Service for Vietnam
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vietmap

/*
Package api serves the reconciled map data over HTTP.

Every JSON endpoint answers in the same envelope:

	{"success": true, "data": [...], "meta": {"request_id": "...", "timestamp": "...", "count": 42}}
	{"success": false, "error": {"code": "NOT_FOUND", "message": "site not found"}, "meta": {...}}

Routes (see SetupChi):

	GET  /api/v1/health/live         process liveness
	GET  /api/v1/health/ready        503 until reference data is loaded
	GET  /api/v1/sites               mapped sites, optional ?city_id=
	GET  /api/v1/sites/{id}          site with hydrated events
	GET  /api/v1/persons             located persons, optional ?city_id=
	GET  /api/v1/persons/{id}        person with events, media and biography
	GET  /api/v1/route               driving directions between two points
	GET  /api/v1/geocode/search      address search restricted to Vietnam
	GET  /api/v1/geocode/reverse     reverse geocoding
	POST /api/v1/admin/reload        force a full catalog refresh
	GET  /api/v1/ws                  refresh notifications
	GET  /metrics                    Prometheus metrics

The backend is never trusted to be up. Catalog handlers always answer 200
with whatever data could be assembled; only malformed requests and unknown
ids produce errors.
*/
package api
