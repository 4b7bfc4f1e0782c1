// Vietmap - Historical Map Data Service for Vietnam
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vietmap

package models

import "github.com/tomtom215/vietmap/internal/record"

// Person is a historical figure, optionally geolocated by inference.
type Person struct {
	PersonID       string              `json:"person_id"`
	FullName       string              `json:"full_name"`
	BirthYear      record.Opt[int]     `json:"birth_year"`
	DeathYear      record.Opt[int]     `json:"death_year"`
	RelatedCityIDs []string            `json:"related_city_ids,omitempty"` // ordered, no duplicates
	Latitude       record.Opt[float64] `json:"latitude"`
	Longitude      record.Opt[float64] `json:"longitude"`
	LocationName   string              `json:"location_name,omitempty"`
}

// HasLocation reports whether the person can be rendered as a map pin.
func (p *Person) HasLocation() bool {
	return p.Latitude.Valid && p.Longitude.Valid
}

// InCity reports whether cityID is one of the person's related cities.
func (p *Person) InCity(cityID string) bool {
	for _, id := range p.RelatedCityIDs {
		if id == cityID {
			return true
		}
	}
	return false
}

// PersonDetail is a Person with biography, events and aggregated media.
type PersonDetail struct {
	Person
	Biography      string         `json:"biography"`
	Events         []Event        `json:"events"`
	Media          []Media        `json:"media"`
	AdditionalInfo map[string]any `json:"additional_info,omitempty"`
}
