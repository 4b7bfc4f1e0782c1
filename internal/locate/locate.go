// Vietmap - Historical Map Data Service for Vietnam
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vietmap

// Package locate derives a person's related cities and map location.
//
// Two sources are combined. Event linkage: the sites of the person's events
// and the cities those sites belong to. Text match: site names found in the
// person's birthplace, hometown or address, or in the biography right after a
// cue such as "sinh tại". Event-linked cities come first in the result.
package locate

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/tomtom215/vietmap/internal/cache"
	"github.com/tomtom215/vietmap/internal/mapper"
	"github.com/tomtom215/vietmap/internal/models"
	"github.com/tomtom215/vietmap/internal/record"
	"github.com/tomtom215/vietmap/internal/refdata"
	"github.com/tomtom215/vietmap/internal/textnorm"
)

// MinNameRunes is the shortest site name considered for text matching.
const MinNameRunes = 3

// BiographyCues introduce a place of origin in biography text.
var BiographyCues = []string{"sinh tại", "sinh ở", "người", "quê"}

// cueSeparators may sit between a cue and the place name.
const cueSeparators = " :,"

// Result is the outcome of resolving one person.
type Result struct {
	// RelatedCityIDs is ordered and free of duplicates.
	RelatedCityIDs []string
	// Location is the text-matched site, or nil.
	Location *models.Site
}

// Resolver is built once per site list and reference data generation and is
// safe for concurrent use.
type Resolver struct {
	data *refdata.Data

	// sites is sorted by name length, longest first.
	sites    []models.Site
	byID     map[string]int
	cityByID map[string]int

	matcher *cache.AhoCorasick[int]
	cues    []string
}

// NewResolver indexes sites. data may be nil, which disables event linkage.
func NewResolver(sites []models.Site, data *refdata.Data) *Resolver {
	sorted := make([]models.Site, len(sites))
	copy(sorted, sites)
	sort.SliceStable(sorted, func(i, j int) bool {
		return utf8.RuneCountInString(sorted[i].SiteName) > utf8.RuneCountInString(sorted[j].SiteName)
	})

	r := &Resolver{
		data:     data,
		sites:    sorted,
		byID:     make(map[string]int, len(sorted)),
		cityByID: make(map[string]int),
		matcher:  cache.NewAhoCorasick[int](),
	}

	for i := range sorted {
		s := &sorted[i]
		if s.SiteID != "" {
			r.indexID(i)
		}

		if name := textnorm.Fold(s.SiteName); utf8.RuneCountInString(name) >= MinNameRunes {
			r.matcher.AddPattern(name, i)
		}
	}
	r.matcher.Build()

	for _, cue := range BiographyCues {
		r.cues = append(r.cues, textnorm.Fold(cue))
	}
	return r
}

// indexID registers sorted[i] by id. Id-less sites stay matchable by name
// but never take part in joins.
func (r *Resolver) indexID(i int) {
	s := &r.sites[i]
	if s.IsCity() {
		if _, dup := r.cityByID[s.SiteID]; !dup {
			r.cityByID[s.SiteID] = i
		}
	}
	// Location ids take precedence over city ids when they collide.
	if prev, dup := r.byID[s.SiteID]; !dup || (r.sites[prev].IsCity() && !s.IsCity()) {
		r.byID[s.SiteID] = i
	}
}

// Resolve computes the related cities and map location of a person record.
func (r *Resolver) Resolve(person record.Record) Result {
	cities := newOrderedSet()

	for _, id := range r.eventCities(person.ID(mapper.PersonIDKeys...)) {
		cities.add(id)
	}

	matched := r.textMatches(person)
	var location *models.Site
	for _, i := range matched {
		s := r.sites[i]
		if location == nil {
			location = &s
		}
		cities.add(r.cityOf(&s))
	}

	return Result{RelatedCityIDs: cities.items, Location: location}
}

// Apply resolves rec and writes the result into p.
func (r *Resolver) Apply(p *models.Person, rec record.Record) Result {
	res := r.Resolve(rec)
	p.RelatedCityIDs = res.RelatedCityIDs

	if res.Location != nil {
		p.Latitude = record.Some(res.Location.Latitude)
		p.Longitude = record.Some(res.Location.Longitude)
		p.LocationName = res.Location.SiteName
		return res
	}

	for _, id := range res.RelatedCityIDs {
		i, ok := r.cityByID[id]
		if !ok || !r.sites[i].IsMapped() {
			continue
		}
		city := r.sites[i]
		p.Latitude = record.Some(city.Latitude)
		p.Longitude = record.Some(city.Longitude)
		p.LocationName = city.SiteName
		return res
	}
	return res
}

// Person maps rec and applies the resolved location.
func (r *Resolver) Person(rec record.Record) models.Person {
	p := mapper.Person(rec)
	r.Apply(&p, rec)
	return p
}

// eventCities walks the person's events in cache order.
func (r *Resolver) eventCities(personID string) []string {
	if r.data == nil || personID == "" {
		return nil
	}

	var out []string
	for _, ev := range r.data.Events {
		if !r.data.LinkedToPerson(ev, personID) {
			continue
		}
		if siteID := ev.ID(mapper.EventSiteKeys...); siteID != "" {
			if i, ok := r.byID[siteID]; ok {
				if id := r.cityOf(&r.sites[i]); id != "" {
					out = append(out, id)
				}
			}
		}
		if id := ev.ID(mapper.EventCityKeys...); id != "" {
			out = append(out, id)
		}
	}
	return out
}

func (r *Resolver) cityOf(s *models.Site) string {
	if s.IsCity() {
		return s.SiteID
	}
	return s.CityID
}

// textMatches returns the indexes of matched sites in sorted order.
func (r *Resolver) textMatches(person record.Record) []int {
	hit := make(map[int]bool)

	for _, keys := range [][]string{mapper.PersonBirthplace, mapper.PersonHometown, mapper.PersonAddressKeys} {
		text, ok := person.String(keys...)
		if !ok {
			continue
		}
		for _, m := range r.matcher.Search(textnorm.Fold(text)) {
			hit[m.Data] = true
		}
	}

	if bio, ok := person.String(mapper.PersonBiographyKeys...); ok {
		folded := textnorm.Fold(bio)
		for _, m := range r.matcher.Search(folded) {
			if r.followsCue(folded[:m.Start]) {
				hit[m.Data] = true
			}
		}
	}

	out := make([]int, 0, len(hit))
	for i := range hit {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

func (r *Resolver) followsCue(prefix string) bool {
	prefix = strings.TrimRight(prefix, cueSeparators)
	for _, cue := range r.cues {
		if strings.HasSuffix(prefix, cue) {
			return true
		}
	}
	return false
}

type orderedSet struct {
	seen  map[string]bool
	items []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]bool), items: []string{}}
}

func (s *orderedSet) add(v string) {
	if v == "" || s.seen[v] {
		return
	}
	s.seen[v] = true
	s.items = append(s.items, v)
}
