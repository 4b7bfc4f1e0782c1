// Vietmap - Historical Map Data Service for Vietnam
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vietmap

package hydrate

import (
	"context"
	"testing"

	"github.com/tomtom215/vietmap/internal/models"
	"github.com/tomtom215/vietmap/internal/record"
	"github.com/tomtom215/vietmap/internal/refdata"
)

type staticFetcher map[string][]record.Record

func (f staticFetcher) Fetch(_ context.Context, path string) []record.Record {
	return f[path]
}

func loadData(t *testing.T, f staticFetcher) *refdata.Data {
	t.Helper()
	d, err := refdata.NewStore(f).Ensure(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestHydrateJoins(t *testing.T) {
	data := loadData(t, staticFetcher{
		refdata.PathMedia: {
			{"media_id": "m1", "media_url": "a.jpg"},
			{"media_id": "m2", "media_url": "b.mp4", "media_type": "video"},
		},
		refdata.PathEventMedia: {
			{"event_id": float64(10), "media_id": "m1"},
			{"event_id": float64(10), "media_id": "missing"},
			{"event_id": float64(10), "media_id": "m1"},
			{"event_id": float64(10), "media_id": "m2"},
		},
		refdata.PathPersonEvent: {
			{"person_id": "p1", "event_id": "10"},
			{"person_id": "ghost", "event_id": "10"},
		},
		refdata.PathPersons: {
			{"person_id": "p1", "full_name": "Hồ Chí Minh"},
			{"person_id": "p2", "full_name": "Võ Nguyên Giáp"},
		},
	})

	raws := []record.Record{
		{"event_id": float64(10), "event_name": "Tuyên ngôn độc lập", "event_date": "1945-09-02",
			"description": "Đọc tại Ba Đình [1]", "location_id": "s1", "main_person_id": "p2"},
		{"event_id": "11", "name": "Không liên kết"},
	}

	got := New(nil).Hydrate(data, raws)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}

	ev := got[0]
	if ev.EventID != "10" || ev.StartDate != "1945-09-02" || ev.RelatedSiteID != "s1" {
		t.Errorf("event = %+v", ev)
	}
	if ev.Description != "Đọc tại Ba Đình" {
		t.Errorf("Description = %q", ev.Description)
	}
	if len(ev.Media) != 2 || ev.Media[0].MediaID != "m1" || ev.Media[1].MediaType != models.MediaTypeVideo {
		t.Errorf("Media = %+v", ev.Media)
	}
	if len(ev.Persons) != 2 || ev.Persons[0].PersonID != "p1" || ev.Persons[1].PersonID != "p2" {
		t.Errorf("Persons = %+v", ev.Persons)
	}

	if got[1].EventID != "11" || len(got[1].Media) != 0 || got[1].Persons == nil {
		t.Errorf("unlinked event = %+v", got[1])
	}
}

func TestHydrateUsesPersonFunc(t *testing.T) {
	data := loadData(t, staticFetcher{
		refdata.PathPersons: {{"person_id": "p1", "full_name": "Lý Thường Kiệt"}},
	})

	h := New(func(rec record.Record) models.Person {
		return models.Person{PersonID: rec.ID("person_id"), LocationName: "located"}
	})
	got := h.Hydrate(data, []record.Record{{"event_id": "e", "main_person_id": "p1"}})

	if len(got[0].Persons) != 1 || got[0].Persons[0].LocationName != "located" {
		t.Errorf("Persons = %+v", got[0].Persons)
	}
}

func TestHydrateNilData(t *testing.T) {
	got := New(nil).Hydrate(nil, []record.Record{{"event_id": "e"}})
	if len(got) != 1 || got[0].Media == nil || len(got[0].Media) != 0 {
		t.Errorf("got %+v", got)
	}
}

func TestAggregateMedia(t *testing.T) {
	evts := []models.Event{
		{Media: []models.Media{{MediaID: "a"}, {MediaID: "b"}}},
		{Media: []models.Media{{MediaID: "b"}, {MediaID: "c"}}},
	}
	got := AggregateMedia(evts)
	if len(got) != 3 || got[0].MediaID != "a" || got[2].MediaID != "c" {
		t.Errorf("AggregateMedia = %+v", got)
	}
	if AggregateMedia(nil) == nil {
		t.Error("AggregateMedia(nil) must be non-nil")
	}
}
