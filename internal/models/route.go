// Vietmap - Historical Map Data Service for Vietnam
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vietmap

package models

// LatLon is a WGS84 coordinate pair.
type LatLon struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lon float64 `json:"lon" validate:"longitude"`
}

// RouteSummary holds route totals in meters and seconds.
type RouteSummary struct {
	TotalDistance float64 `json:"totalDistance"`
	TotalDuration float64 `json:"totalDuration"`
}

// RouteStep is one turn-by-turn instruction.
type RouteStep struct {
	Instruction string  `json:"instruction"`
	Distance    float64 `json:"distance"`
}

// RouteData is a driving route between two points.
// RouteGeometry is ordered [lat, lon] pairs, ready for the map layer.
type RouteData struct {
	Summary       RouteSummary `json:"summary"`
	Steps         []RouteStep  `json:"steps"`
	RouteGeometry [][2]float64 `json:"routeGeometry"`
	Fallback      bool         `json:"fallback,omitempty"` // straight line, routing engine unavailable
	Message       string       `json:"message,omitempty"`
}

// AddressSearchResult is one geocoder hit. Coordinates are [lat, lon].
type AddressSearchResult struct {
	Name        string     `json:"name"`
	Address     string     `json:"address"`
	Coordinates [2]float64 `json:"coordinates"`
}
