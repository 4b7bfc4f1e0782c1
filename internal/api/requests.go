// Vietmap - Historical Map Data Service for Vietnam
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vietmap

package api

import (
	"strconv"

	"github.com/tomtom215/vietmap/internal/models"
)

// Request structs are built from path and query parameters and checked with
// validateRequest. The query or path tag names the parameter in validation
// errors.

// CityFilterRequest is the optional ?city_id= filter on list endpoints.
type CityFilterRequest struct {
	CityID string `query:"city_id" validate:"omitempty,entityid"`
}

// DetailRequest is the {id} path parameter of detail endpoints.
type DetailRequest struct {
	ID string `path:"id" validate:"entityid"`
}

// RouteRequest holds the endpoints of a directions query. Coordinates stay
// strings so a missing parameter fails "required" instead of becoming 0.
type RouteRequest struct {
	FromLat string `query:"from_lat" validate:"required,latitude"`
	FromLon string `query:"from_lon" validate:"required,longitude"`
	ToLat   string `query:"to_lat" validate:"required,latitude"`
	ToLon   string `query:"to_lon" validate:"required,longitude"`
}

// Points returns the validated coordinates.
func (r RouteRequest) Points() (from, to models.LatLon) {
	return models.LatLon{Lat: parseCoord(r.FromLat), Lon: parseCoord(r.FromLon)},
		models.LatLon{Lat: parseCoord(r.ToLat), Lon: parseCoord(r.ToLon)}
}

// GeocodeSearchRequest is a free-text address search.
type GeocodeSearchRequest struct {
	Query string `query:"q" validate:"required,notblank,max=200"`
}

// ReverseGeocodeRequest is a coordinate to address lookup.
type ReverseGeocodeRequest struct {
	Lat string `query:"lat" validate:"required,latitude"`
	Lon string `query:"lon" validate:"required,longitude"`
}

// Point returns the validated coordinate.
func (r ReverseGeocodeRequest) Point() models.LatLon {
	return models.LatLon{Lat: parseCoord(r.Lat), Lon: parseCoord(r.Lon)}
}

// parseCoord parses a coordinate that already passed validation.
func parseCoord(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
