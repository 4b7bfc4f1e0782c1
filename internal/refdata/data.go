// Vietmap - Historical Map Data Service for Vietnam
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vietmap

package refdata

import (
	"time"

	"github.com/tomtom215/vietmap/internal/mapper"
	"github.com/tomtom215/vietmap/internal/models"
	"github.com/tomtom215/vietmap/internal/record"
)

// Data is one immutable generation of reference data. A reload builds a new
// Data and swaps it in; readers holding the old one are unaffected.
type Data struct {
	// Media is keyed by trimmed media id.
	Media map[string]models.Media

	EventMedia  []record.Record
	PersonEvent []record.Record

	// Persons keeps backend order; PersonByID holds the first record per id.
	Persons    []record.Record
	PersonByID map[string]record.Record

	// Events keeps backend order.
	Events    []record.Record
	EventByID map[string]record.Record

	// Join indexes, each list ordered by first appearance and deduplicated.
	MediaIDsByEvent  map[string][]string
	EventIDsByPerson map[string][]string
	PersonIDsByEvent map[string][]string

	LoadedAt time.Time
}

// Counts returns the number of records per collection.
func (d *Data) Counts() map[string]int {
	return map[string]int{
		"media":        len(d.Media),
		"event_media":  len(d.EventMedia),
		"person_event": len(d.PersonEvent),
		"persons":      len(d.Persons),
		"events":       len(d.Events),
	}
}

// EventPersonIDs returns the persons linked to event: join-table links first,
// then the event's main person when not already listed.
func (d *Data) EventPersonIDs(event record.Record) []string {
	ids := append([]string(nil), d.PersonIDsByEvent[event.ID(mapper.EventIDKeys...)]...)
	if main := event.ID(mapper.EventMainPersonKeys...); main != "" && !contains(ids, main) {
		ids = append(ids, main)
	}
	return ids
}

// LinkedToPerson reports whether event involves personID through the join
// table or its main-person field.
func (d *Data) LinkedToPerson(event record.Record, personID string) bool {
	if personID == "" {
		return false
	}
	if event.ID(mapper.EventMainPersonKeys...) == personID {
		return true
	}
	return contains(d.EventIDsByPerson[personID], event.ID(mapper.EventIDKeys...))
}

// EventsForPerson returns the cached events linked to personID, in cache order.
func (d *Data) EventsForPerson(personID string) []record.Record {
	out := []record.Record{}
	for _, ev := range d.Events {
		if d.LinkedToPerson(ev, personID) {
			out = append(out, ev)
		}
	}
	return out
}

// build indexes the five raw collections.
func build(media, eventMedia, personEvent, persons, events []record.Record, loadedAt time.Time) *Data {
	d := &Data{
		Media:            make(map[string]models.Media, len(media)),
		EventMedia:       eventMedia,
		PersonEvent:      personEvent,
		Persons:          persons,
		PersonByID:       make(map[string]record.Record, len(persons)),
		Events:           events,
		EventByID:        make(map[string]record.Record, len(events)),
		MediaIDsByEvent:  make(map[string][]string),
		EventIDsByPerson: make(map[string][]string),
		PersonIDsByEvent: make(map[string][]string),
		LoadedAt:         loadedAt,
	}

	for _, rec := range media {
		m := mapper.Media(rec)
		if m.MediaID == "" {
			continue
		}
		if _, dup := d.Media[m.MediaID]; !dup {
			d.Media[m.MediaID] = m
		}
	}

	for _, rec := range persons {
		if id := rec.ID(mapper.PersonIDKeys...); id != "" {
			if _, dup := d.PersonByID[id]; !dup {
				d.PersonByID[id] = rec
			}
		}
	}

	for _, rec := range events {
		if id := rec.ID(mapper.EventIDKeys...); id != "" {
			if _, dup := d.EventByID[id]; !dup {
				d.EventByID[id] = rec
			}
		}
	}

	for _, rel := range eventMedia {
		eventID, mediaID := rel.ID(mapper.JoinEventKeys...), rel.ID(mapper.JoinMediaKeys...)
		if eventID == "" || mediaID == "" {
			continue
		}
		d.MediaIDsByEvent[eventID] = appendUnique(d.MediaIDsByEvent[eventID], mediaID)
	}

	for _, rel := range personEvent {
		personID, eventID := rel.ID(mapper.JoinPersonKeys...), rel.ID(mapper.JoinEventKeys...)
		if personID == "" || eventID == "" {
			continue
		}
		d.EventIDsByPerson[personID] = appendUnique(d.EventIDsByPerson[personID], eventID)
		d.PersonIDsByEvent[eventID] = appendUnique(d.PersonIDsByEvent[eventID], personID)
	}

	return d
}

func appendUnique(list []string, v string) []string {
	if contains(list, v) {
		return list
	}
	return append(list, v)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
