// Vietmap - Historical Map Data Service for Vietnam
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vietmap

// Package catalog assembles the sites, persons and detail views served to the
// map. Every operation degrades to empty or partial results with a logged
// warning; none returns an error.
package catalog

import (
	"context"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/vietmap/internal/cache"
	"github.com/tomtom215/vietmap/internal/events"
	"github.com/tomtom215/vietmap/internal/hydrate"
	"github.com/tomtom215/vietmap/internal/locate"
	"github.com/tomtom215/vietmap/internal/logging"
	"github.com/tomtom215/vietmap/internal/mapper"
	"github.com/tomtom215/vietmap/internal/metrics"
	"github.com/tomtom215/vietmap/internal/models"
	"github.com/tomtom215/vietmap/internal/record"
	"github.com/tomtom215/vietmap/internal/refdata"
	"github.com/tomtom215/vietmap/internal/textnorm"
)

// Backend paths.
const (
	PathLocations = "/locations"
	PathCities    = "/cities"
)

// Refresh triggers.
const (
	TriggerStartup  = "startup"
	TriggerInterval = "interval"
	TriggerAdmin    = "admin"
)

const cacheKeyAll = "all"

// Fetcher is the backend fetcher. *fetch.Client implements it.
type Fetcher interface {
	Fetch(ctx context.Context, path string) []record.Record
	FetchOne(ctx context.Context, path string) (record.Record, bool)
}

// ReferenceData is the reference data store. *refdata.Store implements it.
type ReferenceData interface {
	Ensure(ctx context.Context) (*refdata.Data, error)
	Reload(ctx context.Context) (*refdata.Data, error)
	Loaded() bool
}

// Service owns the catalog caches.
type Service struct {
	fetcher   Fetcher
	store     ReferenceData
	publisher events.Publisher

	sites   *cache.Cache[[]models.Site]
	persons *cache.Cache[[]models.Person]

	refreshes singleflight.Group
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher publishes catalog.refreshed after every Refresh.
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// NewService creates a Service whose caches expire after ttl.
func NewService(fetcher Fetcher, store ReferenceData, ttl time.Duration, opts ...Option) *Service {
	s := &Service{
		fetcher: fetcher,
		store:   store,
		sites:   cache.New[[]models.Site](ttl),
		persons: cache.New[[]models.Person](ttl),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close stops the cache cleanup loops.
func (s *Service) Close() {
	s.sites.Close()
	s.persons.Close()
}

// Ready reports whether reference data has been loaded.
func (s *Service) Ready() bool {
	return s.store.Loaded()
}

// FetchSites loads locations and cities, drops unmapped entries and adds the
// cities not already present. The result replaces the site cache.
func (s *Service) FetchSites(ctx context.Context) []models.Site {
	var locations, cities []record.Record
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		locations = s.fetcher.Fetch(gctx, PathLocations)
		return nil
	})
	g.Go(func() error {
		cities = s.fetcher.Fetch(gctx, PathCities)
		return nil
	})
	_ = g.Wait() // Fetch never fails

	sites := mapSites(locations)
	for _, rec := range cities {
		city := mapper.City(rec)
		if city.IsMapped() && !hasCity(sites, city) {
			sites = append(sites, city)
		}
	}

	s.sites.Set(cacheKeyAll, sites)
	metrics.CatalogEntities.WithLabelValues("sites").Set(float64(len(sites)))
	if len(sites) == 0 {
		logging.Ctx(ctx).Warn().Msg("no sites available")
	}
	return sites
}

// CachedSites returns the cached site list, fetching it on a cold cache.
func (s *Service) CachedSites(ctx context.Context) []models.Site {
	if sites, ok := s.sites.Get(cacheKeyAll); ok {
		metrics.RecordCacheLookup("sites", true)
		return sites
	}
	metrics.RecordCacheLookup("sites", false)
	return s.FetchSites(ctx)
}

// SitesInCity returns the cached sites belonging to cityID, including the
// city itself.
func (s *Service) SitesInCity(ctx context.Context, cityID string) []models.Site {
	out := []models.Site{}
	for _, site := range s.CachedSites(ctx) {
		if site.CityID == cityID || (site.IsCity() && site.SiteID == cityID) {
			out = append(out, site)
		}
	}
	return out
}

func mapSites(recs []record.Record) []models.Site {
	sites := make([]models.Site, 0, len(recs))
	for _, rec := range recs {
		if site := mapper.Site(rec); site.IsMapped() {
			sites = append(sites, site)
		}
	}
	return sites
}

// hasCity reports whether sites already holds city, by id or by folded name
// among city-typed sites.
func hasCity(sites []models.Site, city models.Site) bool {
	name := textnorm.Fold(city.SiteName)
	for i := range sites {
		if !sites[i].IsCity() {
			continue
		}
		if sites[i].SiteID == city.SiteID || textnorm.Fold(sites[i].SiteName) == name {
			return true
		}
	}
	return false
}

// lookupSites returns the sites used for resolution: the cache, possibly
// stale, or else a standalone locations fetch.
func (s *Service) lookupSites(ctx context.Context) []models.Site {
	if sites, ok := s.sites.Get(cacheKeyAll); ok {
		return sites
	}
	if sites, ok := s.sites.GetStale(cacheKeyAll); ok {
		return sites
	}
	return mapSites(s.fetcher.Fetch(ctx, PathLocations))
}

// referenceData returns the loaded data or nil with a warning.
func (s *Service) referenceData(ctx context.Context) *refdata.Data {
	data, err := s.store.Ensure(ctx)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("reference data unavailable")
		return nil
	}
	return data
}

// FetchPersons maps every reference person and resolves their locations.
// The result replaces the person cache.
func (s *Service) FetchPersons(ctx context.Context) []models.Person {
	data := s.referenceData(ctx)
	if data == nil {
		return []models.Person{}
	}

	resolver := locate.NewResolver(s.lookupSites(ctx), data)
	persons := make([]models.Person, 0, len(data.Persons))
	for _, rec := range data.Persons {
		p := mapper.Person(rec)
		res := resolver.Apply(&p, rec)
		metrics.PersonsLocated.WithLabelValues(locatedSource(res, &p)).Inc()
		persons = append(persons, p)
	}

	s.persons.Set(cacheKeyAll, persons)
	metrics.CatalogEntities.WithLabelValues("persons").Set(float64(len(persons)))
	return persons
}

func locatedSource(res locate.Result, p *models.Person) string {
	switch {
	case res.Location != nil:
		return "text"
	case p.HasLocation():
		return "city"
	default:
		return "none"
	}
}

// CachedPersons returns the cached person list, fetching it on a cold cache.
func (s *Service) CachedPersons(ctx context.Context) []models.Person {
	if persons, ok := s.persons.Get(cacheKeyAll); ok {
		metrics.RecordCacheLookup("persons", true)
		return persons
	}
	metrics.RecordCacheLookup("persons", false)
	return s.FetchPersons(ctx)
}

// PersonsInCity returns the cached persons related to cityID.
func (s *Service) PersonsInCity(ctx context.Context, cityID string) []models.Person {
	out := []models.Person{}
	for _, p := range s.CachedPersons(ctx) {
		if p.InCity(cityID) {
			out = append(out, p)
		}
	}
	return out
}

// FetchSiteDetail returns a site with its hydrated events, or nil when the
// site cannot be found.
func (s *Service) FetchSiteDetail(ctx context.Context, id string) *models.SiteDetail {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	log := logging.Ctx(ctx).With().Str("site_id", id).Logger()

	site, ok := s.findSite(ctx, id)
	if !ok {
		log.Warn().Msg("site not found")
		return nil
	}

	data := s.referenceData(ctx)
	raws := s.fetcher.Fetch(ctx, "/event/location/"+url.PathEscape(id))
	if len(raws) == 0 && data != nil {
		raws = eventsAtSite(data.Events, id, site.SiteID)
	}

	resolver := locate.NewResolver(s.lookupSites(ctx), data)
	return &models.SiteDetail{
		Site:   site,
		Events: hydrate.New(resolver.Person).Hydrate(data, raws),
	}
}

func (s *Service) findSite(ctx context.Context, id string) (models.Site, bool) {
	if rec, ok := s.fetcher.FetchOne(ctx, PathLocations+"/"+url.PathEscape(id)); ok {
		site := mapper.Site(rec)
		if site.SiteID == "" {
			site.SiteID = id
		}
		return site, true
	}
	for _, site := range s.lookupSites(ctx) {
		if site.SiteID == id {
			return site, true
		}
	}
	return models.Site{}, false
}

func eventsAtSite(evts []record.Record, ids ...string) []record.Record {
	out := []record.Record{}
	for _, ev := range evts {
		siteID := ev.ID(mapper.EventSiteKeys...)
		if siteID == "" {
			continue
		}
		for _, id := range ids {
			if siteID == id {
				out = append(out, ev)
				break
			}
		}
	}
	return out
}

// FetchPersonDetail returns a person with events, media and merged biography,
// or nil when the person is unknown to both the backend and the reference data.
func (s *Service) FetchPersonDetail(ctx context.Context, id string) *models.PersonDetail {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	log := logging.Ctx(ctx).With().Str("person_id", id).Logger()

	data := s.referenceData(ctx)
	direct, hasDirect := s.fetcher.FetchOne(ctx, "/persons/"+url.PathEscape(id))

	var ref record.Record
	if data != nil {
		ref = data.PersonByID[id]
	}
	if !hasDirect && ref == nil {
		log.Warn().Msg("person not found")
		return nil
	}

	merged := mergeRecords(ref, direct)
	resolver := locate.NewResolver(s.lookupSites(ctx), data)

	person := resolver.Person(merged)
	if person.PersonID == "" {
		person.PersonID = id
	}

	var raws []record.Record
	if data != nil {
		raws = data.EventsForPerson(id)
	}
	evts := hydrate.New(resolver.Person).Hydrate(data, raws)

	return &models.PersonDetail{
		Person:         person,
		Biography:      mapper.Biography(merged),
		Events:         evts,
		Media:          hydrate.AggregateMedia(evts),
		AdditionalInfo: mergeInfo(mapper.AdditionalInfo(ref), mapper.AdditionalInfo(direct)),
	}
}

// mergeRecords overlays the present fields of override onto base.
func mergeRecords(base, override record.Record) record.Record {
	out := make(record.Record, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		if override.Has(k) {
			out[k] = v
		}
	}
	return out
}

func mergeInfo(base, override map[string]any) map[string]any {
	if base == nil && override == nil {
		return nil
	}
	out := make(map[string]any, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}

// Refresh reloads reference data, then sites, then persons. Concurrent
// calls share one refresh.
func (s *Service) Refresh(ctx context.Context, trigger string) events.CatalogRefreshed {
	v, _, _ := s.refreshes.Do("refresh", func() (any, error) {
		return s.refresh(ctx, trigger), nil
	})
	return v.(events.CatalogRefreshed)
}

func (s *Service) refresh(ctx context.Context, trigger string) events.CatalogRefreshed {
	start := time.Now()
	metrics.CatalogRefreshes.WithLabelValues(trigger).Inc()

	if _, err := s.store.Reload(ctx); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("trigger", trigger).Msg("reference data reload failed")
	}
	sites := s.FetchSites(ctx)
	persons := s.FetchPersons(ctx)

	summary := events.CatalogRefreshed{
		Trigger:    trigger,
		Sites:      len(sites),
		Persons:    len(persons),
		DurationMs: time.Since(start).Milliseconds(),
		FinishedAt: time.Now().UTC(),
	}

	logging.Ctx(ctx).Info().
		Str("trigger", trigger).
		Int("sites", summary.Sites).
		Int("persons", summary.Persons).
		Int64("duration_ms", summary.DurationMs).
		Msg("catalog refreshed")

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, events.TopicCatalogRefreshed, summary); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("failed to publish catalog.refreshed")
		}
	}
	return summary
}
