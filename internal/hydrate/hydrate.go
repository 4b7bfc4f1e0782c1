// Vietmap - Historical Map Data Service for Vietnam
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vietmap

// Package hydrate joins raw event records with the reference data to produce
// fully populated events.
package hydrate

import (
	"github.com/tomtom215/vietmap/internal/mapper"
	"github.com/tomtom215/vietmap/internal/models"
	"github.com/tomtom215/vietmap/internal/record"
	"github.com/tomtom215/vietmap/internal/refdata"
)

// PersonFunc maps a person record for embedding in an event. The catalog
// passes one that also resolves locations.
type PersonFunc func(record.Record) models.Person

// Hydrator builds models.Event values.
type Hydrator struct {
	person PersonFunc
}

// New creates a Hydrator. A nil person func uses mapper.Person.
func New(person PersonFunc) *Hydrator {
	if person == nil {
		person = mapper.Person
	}
	return &Hydrator{person: person}
}

// Hydrate maps raws in order. Join links that point at unknown media or
// persons are dropped; each event lists a media or person id at most once.
// A nil data yields events with empty joins.
func (h *Hydrator) Hydrate(data *refdata.Data, raws []record.Record) []models.Event {
	out := make([]models.Event, 0, len(raws))
	for _, raw := range raws {
		out = append(out, h.hydrateOne(data, raw))
	}
	return out
}

func (h *Hydrator) hydrateOne(data *refdata.Data, raw record.Record) models.Event {
	ev := mapper.Event(raw)
	if data == nil {
		return ev
	}

	for _, id := range data.MediaIDsByEvent[ev.EventID] {
		if m, ok := data.Media[id]; ok {
			ev.Media = append(ev.Media, m)
		}
	}

	for _, id := range data.EventPersonIDs(raw) {
		if rec, ok := data.PersonByID[id]; ok {
			ev.Persons = append(ev.Persons, h.person(rec))
		}
	}

	return ev
}

// AggregateMedia collects the media of events in order, keeping the first
// occurrence of each media id.
func AggregateMedia(evts []models.Event) []models.Media {
	seen := make(map[string]bool)
	out := []models.Media{}
	for _, ev := range evts {
		for _, m := range ev.Media {
			if seen[m.MediaID] {
				continue
			}
			seen[m.MediaID] = true
			out = append(out, m)
		}
	}
	return out
}
