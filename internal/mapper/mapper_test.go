// Vietmap - Historical Map Data Service for Vietnam
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vietmap

package mapper

import (
	"testing"

	"github.com/tomtom215/vietmap/internal/models"
	"github.com/tomtom215/vietmap/internal/record"
)

func TestSiteFieldFallbacks(t *testing.T) {
	rec := record.Record{
		"location_id":      float64(12),
		"name":             "Cột cờ Hà Nội",
		"type":             "Di tích",
		"lat":              "21.0325",
		"lng":              105.8398,
		"description":      "  Xây   năm 1812 ",
		"established_year": float64(1812),
		"city_id":          "1",
	}

	site := Site(rec)

	if site.SiteID != "12" {
		t.Errorf("SiteID = %q, want 12", site.SiteID)
	}
	if site.SiteName != "Cột cờ Hà Nội" || site.SiteType != "Di tích" {
		t.Errorf("name/type = %q/%q", site.SiteName, site.SiteType)
	}
	if site.Latitude != 21.0325 || site.Longitude != 105.8398 {
		t.Errorf("coords = %v,%v", site.Latitude, site.Longitude)
	}
	if site.Description != "Xây năm 1812" {
		t.Errorf("Description = %q", site.Description)
	}
	if got, ok := site.EstablishedYear.Get(); !ok || got != 1812 {
		t.Errorf("EstablishedYear = %v", site.EstablishedYear)
	}
	if site.IsCity() {
		t.Error("typed site must not be a city")
	}
}

func TestSiteMissingCoordinatesDefaultToZero(t *testing.T) {
	site := Site(record.Record{"site_id": "s1", "site_name": "X", "site_type": "Bảo tàng", "latitude": "n/a"})
	if site.Latitude != 0 || site.Longitude != 0 {
		t.Errorf("coords = %v,%v, want 0,0", site.Latitude, site.Longitude)
	}
	if site.IsMapped() {
		t.Error("IsMapped() = true for 0,0")
	}
}

func TestCityShapedRecord(t *testing.T) {
	rec := record.Record{"city_id": float64(3), "city_name": "Huế", "latitude": 16.46, "longitude": 107.59}

	if !IsCityShaped(rec) {
		t.Fatal("IsCityShaped = false")
	}
	site := Site(rec)
	if site.SiteType != models.CitySiteType {
		t.Errorf("SiteType = %q, want %q", site.SiteType, models.CitySiteType)
	}
	if site.SiteID != "3" || site.CityID != "3" || site.SiteName != "Huế" {
		t.Errorf("site = %+v", site)
	}

	typed := record.Record{"city_name": "Huế", "site_type": "Chùa", "site_id": "9"}
	if IsCityShaped(typed) {
		t.Error("record with a site type is not city-shaped")
	}
}

func TestAdditionalInfo(t *testing.T) {
	tests := []struct {
		name string
		rec  record.Record
		want map[string]any
	}{
		{"object", record.Record{"additional_info": map[string]any{"Diện tích": "5ha"}}, map[string]any{"Diện tích": "5ha"}},
		{"json string", record.Record{"additional_info": `{"Kiến trúc":"Nguyễn"}`}, map[string]any{"Kiến trúc": "Nguyễn"}},
		{"plain text", record.Record{"info": "not json"}, map[string]any{InfoFallbackKey: "not json"}},
		{"absent", record.Record{}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AdditionalInfo(tt.rec)
			if len(got) != len(tt.want) {
				t.Fatalf("AdditionalInfo = %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("AdditionalInfo[%q] = %v, want %v", k, got[k], v)
				}
			}
		})
	}
}

func TestPerson(t *testing.T) {
	p := Person(record.Record{"id": float64(7), "name": "Phan Bội Châu", "birth_year": "1867", "death_year": nil})

	if p.PersonID != "7" || p.FullName != "Phan Bội Châu" {
		t.Errorf("person = %+v", p)
	}
	if got, ok := p.BirthYear.Get(); !ok || got != 1867 {
		t.Errorf("BirthYear = %v", p.BirthYear)
	}
	if p.DeathYear.Valid {
		t.Errorf("DeathYear = %v, want absent", p.DeathYear)
	}
	if p.HasLocation() {
		t.Error("mapper must not assign a location")
	}
}

func TestMediaType(t *testing.T) {
	tests := map[string]string{
		"video":   models.MediaTypeVideo,
		"YouTube": models.MediaTypeVideo,
		" image ": models.MediaTypeImage,
		"":        models.MediaTypeImage,
		"audio":   models.MediaTypeImage,
	}
	for raw, want := range tests {
		if got := MediaType(raw); got != want {
			t.Errorf("MediaType(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestEvent(t *testing.T) {
	ev := Event(record.Record{
		"event_id":    "e1",
		"event_name":  "Cách mạng tháng Tám",
		"start_date":  float64(1945),
		"location_id": float64(4),
	})

	if ev.EventID != "e1" || ev.StartDate != "1945" || ev.RelatedSiteID != "4" {
		t.Errorf("event = %+v", ev)
	}
	if ev.Media == nil || ev.Persons == nil {
		t.Error("Media and Persons must be non-nil")
	}
}
