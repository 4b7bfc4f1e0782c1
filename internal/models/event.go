// Vietmap - Historical Map Data Service for Vietnam
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vietmap

package models

// Media types after normalization.
const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

// Event is a historical occurrence with its media and participants resolved.
type Event struct {
	EventID       string   `json:"event_id"`
	EventName     string   `json:"event_name"`
	StartDate     string   `json:"start_date,omitempty"`
	Description   string   `json:"description"`
	Media         []Media  `json:"media"`
	Persons       []Person `json:"persons"`
	RelatedSiteID string   `json:"related_site_id,omitempty"`
}

// Media is an image or video attached to an event.
type Media struct {
	MediaID   string `json:"media_id"`
	MediaURL  string `json:"media_url"`
	MediaType string `json:"media_type"` // "image" or "video"
	Caption   string `json:"caption"`
}
