// Vietmap - Historical Map Data Service for Vietnam
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vietmap

package models

import "github.com/tomtom215/vietmap/internal/record"

// CitySiteType is the sentinel site_type marking a city rendered as a site.
const CitySiteType = "Thành phố"

// Site is a point of historical or geographic interest. Cities are Sites too.
type Site struct {
	SiteID          string          `json:"site_id"`
	SiteName        string          `json:"site_name"`
	SiteType        string          `json:"site_type"`
	Latitude        float64         `json:"latitude"`  // 0 when the backend value is missing or unparseable
	Longitude       float64         `json:"longitude"` // 0 when the backend value is missing or unparseable
	Address         string          `json:"address"`
	Description     string          `json:"description"`
	EstablishedYear record.Opt[int] `json:"established_year"`
	Status          string          `json:"status,omitempty"`
	CityID          string          `json:"city_id,omitempty"`
	AdditionalInfo  map[string]any  `json:"additional_info,omitempty"`
}

// IsCity reports whether the site is a city marker.
func (s *Site) IsCity() bool {
	return s.SiteType == CitySiteType
}

// IsMapped reports whether the site has usable coordinates. (0,0) means unmapped.
func (s *Site) IsMapped() bool {
	return s.Latitude != 0 || s.Longitude != 0
}

// LatLon returns the site's coordinates.
func (s *Site) LatLon() LatLon {
	return LatLon{Lat: s.Latitude, Lon: s.Longitude}
}

// SiteDetail is a Site with its hydrated events.
type SiteDetail struct {
	Site
	Events []Event `json:"events"`
}
