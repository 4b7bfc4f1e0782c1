// Vietmap - Historical Map Data Service for Vietnam
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vietmap

// Package mapper converts raw backend records into typed entities. Mappers
// are total: malformed input yields zero values or absent optionals, never
// a panic or an error.
package mapper

import (
	"strings"

	"github.com/tomtom215/vietmap/internal/models"
	"github.com/tomtom215/vietmap/internal/record"
	"github.com/tomtom215/vietmap/internal/textnorm"
)

// IsCityShaped reports whether rec came from the cities endpoint: it has a
// city name and no site type.
func IsCityShaped(rec record.Record) bool {
	return rec.Has(CityNameKeys...) && !rec.Has(SiteTypeKeys...)
}

// Site maps a location or city record.
func Site(rec record.Record) models.Site {
	if IsCityShaped(rec) {
		return City(rec)
	}

	return models.Site{
		SiteID:          rec.ID(SiteIDKeys...),
		SiteName:        rec.StringOr("", SiteNameKeys...),
		SiteType:        rec.StringOr("", SiteTypeKeys...),
		Latitude:        rec.FloatOr(0, LatitudeKeys...),
		Longitude:       rec.FloatOr(0, LongitudeKeys...),
		Address:         rec.StringOr("", SiteAddressKeys...),
		Description:     textnorm.Normalize(rec.StringOr("", SiteDescriptionKeys...)),
		EstablishedYear: rec.Int(SiteYearKeys...),
		Status:          rec.StringOr("", SiteStatusKeys...),
		CityID:          rec.ID(SiteCityIDKeys...),
		AdditionalInfo:  AdditionalInfo(rec),
	}
}

var cityNameWithFallback = []string{"city_name", "name"}

// City maps a city record to the city-as-site form; the city's id is both
// its site id and its city id.
func City(rec record.Record) models.Site {
	id := rec.ID(CityIDKeys...)
	return models.Site{
		SiteID:         id,
		SiteName:       rec.StringOr("", cityNameWithFallback...),
		SiteType:       models.CitySiteType,
		Latitude:       rec.FloatOr(0, LatitudeKeys...),
		Longitude:      rec.FloatOr(0, LongitudeKeys...),
		Address:        rec.StringOr("", SiteAddressKeys...),
		Description:    textnorm.Normalize(rec.StringOr("", SiteDescriptionKeys...)),
		CityID:         id,
		AdditionalInfo: AdditionalInfo(rec),
	}
}

// AdditionalInfo parses additional_info/info as a JSON object. Any other
// present value is kept as text under InfoFallbackKey.
func AdditionalInfo(rec record.Record) map[string]any {
	if obj, ok := rec.JSONObject(InfoKeys...); ok {
		return obj
	}
	if raw, ok := rec.String(InfoKeys...); ok {
		return map[string]any{InfoFallbackKey: raw}
	}
	return nil
}

// Person maps a person record without location data; see package locate.
func Person(rec record.Record) models.Person {
	return models.Person{
		PersonID:  rec.ID(PersonIDKeys...),
		FullName:  rec.StringOr("", PersonNameKeys...),
		BirthYear: rec.Int(PersonBirthKeys...),
		DeathYear: rec.Int(PersonDeathKeys...),
	}
}

// Biography returns the normalized biography text.
func Biography(rec record.Record) string {
	return textnorm.Normalize(rec.StringOr("", PersonBiographyKeys...))
}

// Media maps a media record. "video" and "youtube" (any case) are videos;
// everything else is an image.
func Media(rec record.Record) models.Media {
	return models.Media{
		MediaID:   rec.ID(MediaIDKeys...),
		MediaURL:  rec.StringOr("", MediaURLKeys...),
		MediaType: MediaType(rec.StringOr("", MediaTypeKeys...)),
		Caption:   textnorm.Normalize(rec.StringOr("", MediaCaptionKeys...)),
	}
}

// MediaType normalizes a raw media type.
func MediaType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "video", "youtube":
		return models.MediaTypeVideo
	default:
		return models.MediaTypeImage
	}
}

// Event maps the scalar fields of an event record. Media and persons are
// joined by package hydrate.
func Event(rec record.Record) models.Event {
	date, _ := rec.Date(EventDateKeys...)
	return models.Event{
		EventID:       rec.ID(EventIDKeys...),
		EventName:     textnorm.Normalize(rec.StringOr("", EventNameKeys...)),
		StartDate:     date,
		Description:   textnorm.Normalize(rec.StringOr("", EventDescriptionKeys...)),
		Media:         []models.Media{},
		Persons:       []models.Person{},
		RelatedSiteID: rec.ID(EventSiteKeys...),
	}
}
