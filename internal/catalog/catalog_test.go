// Vietmap - Historical Map Data Service for Vietnam
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vietmap

package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/vietmap/internal/config"
	"github.com/tomtom215/vietmap/internal/events"
	"github.com/tomtom215/vietmap/internal/fetch"
	"github.com/tomtom215/vietmap/internal/record"
	"github.com/tomtom215/vietmap/internal/refdata"
)

// fakeBackend serves canned collections by path.
type fakeBackend struct {
	mu    sync.Mutex
	paths map[string][]record.Record
	hits  map[string]int
}

func newFakeBackend(paths map[string][]record.Record) *fakeBackend {
	return &fakeBackend{paths: paths, hits: make(map[string]int)}
}

func (f *fakeBackend) Fetch(_ context.Context, path string) []record.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hits[path]++
	if recs, ok := f.paths[path]; ok {
		return recs
	}
	return []record.Record{}
}

func (f *fakeBackend) FetchOne(ctx context.Context, path string) (record.Record, bool) {
	recs := f.Fetch(ctx, path)
	if len(recs) == 0 {
		return nil, false
	}
	return recs[0], true
}

func (f *fakeBackend) hitCount(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[path]
}

func newService(t *testing.T, f *fakeBackend, opts ...Option) *Service {
	t.Helper()
	svc := NewService(f, refdata.NewStore(f), time.Minute, opts...)
	t.Cleanup(svc.Close)
	return svc
}

func TestFetchSitesEndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/locations":
			_, _ = w.Write([]byte(`{"data":[
				{"site_id":1,"site_name":"Văn Miếu","site_type":"Di tích","latitude":21.02,"longitude":105.83},
				{"site_id":2,"site_name":"Chưa định vị","site_type":"Di tích","latitude":0,"longitude":0}
			]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := fetch.NewClient(config.BackendConfig{BaseURL: srv.URL + "/api", Timeout: time.Second, UserAgent: "test"})
	svc := NewService(client, refdata.NewStore(client), time.Minute)
	defer svc.Close()

	sites := svc.FetchSites(context.Background())
	if len(sites) != 1 || sites[0].SiteID != "1" {
		t.Fatalf("FetchSites = %+v, want exactly the mapped site", sites)
	}
}

func TestOrchestratorsSurviveTotalBackendFailure(t *testing.T) {
	var hits sync.Map
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		prefix := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/"), "/", 2)[0]
		n, _ := hits.LoadOrStore(prefix, new(atomic.Int32))
		n.(*atomic.Int32).Add(1)
		http.Error(w, "upstream down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := fetch.NewClient(config.BackendConfig{
		BaseURL: srv.URL + "/api",
		Timeout: time.Second,
		Proxies: []string{
			srv.URL + "/p1/get?url={url}",
			srv.URL + "/p2/?{url}",
			srv.URL + "/p3/{url}",
		},
		ProxiesEnabled: true,
		UserAgent:      "test",
	})
	svc := NewService(client, refdata.NewStore(client), time.Minute)
	defer svc.Close()
	ctx := context.Background()

	if sites := svc.FetchSites(ctx); sites == nil || len(sites) != 0 {
		t.Errorf("FetchSites = %#v, want empty non-nil slice", sites)
	}
	if persons := svc.FetchPersons(ctx); persons == nil || len(persons) != 0 {
		t.Errorf("FetchPersons = %#v, want empty non-nil slice", persons)
	}
	if d := svc.FetchSiteDetail(ctx, "1"); d != nil {
		t.Errorf("FetchSiteDetail = %+v, want nil", d)
	}
	if d := svc.FetchPersonDetail(ctx, "1"); d != nil {
		t.Errorf("FetchPersonDetail = %+v, want nil", d)
	}

	for _, prefix := range []string{"api", "p1", "p2", "p3"} {
		if _, ok := hits.Load(prefix); !ok {
			t.Errorf("strategy %q was never attempted", prefix)
		}
	}
}

func TestFetchSitesMergesCities(t *testing.T) {
	f := newFakeBackend(map[string][]record.Record{
		PathLocations: {
			{"site_id": "s1", "site_name": "Đại Nội", "site_type": "Di tích", "latitude": 16.47, "longitude": 107.58, "city_id": "c1"},
			{"city_id": "c1", "city_name": "Huế", "latitude": 16.46, "longitude": 107.59},
		},
		PathCities: {
			{"city_id": "c1", "city_name": "Huế", "latitude": 16.46, "longitude": 107.59},
			{"city_id": "c9", "city_name": "huế", "latitude": 16.46, "longitude": 107.59},
			{"city_id": "c2", "city_name": "Hà Nội", "latitude": 21.03, "longitude": 105.85},
			{"city_id": "c3", "city_name": "Chưa có tọa độ"},
		},
	})
	svc := newService(t, f)

	sites := svc.FetchSites(context.Background())
	if len(sites) != 3 {
		t.Fatalf("len = %d, want 3: %+v", len(sites), sites)
	}
	if sites[2].SiteID != "c2" || !sites[2].IsCity() {
		t.Errorf("merged city = %+v", sites[2])
	}

	if got := svc.SitesInCity(context.Background(), "c1"); len(got) != 2 {
		t.Errorf("SitesInCity(c1) = %+v", got)
	}
	if f.hitCount(PathLocations) != 1 {
		t.Errorf("SitesInCity refetched with a warm cache")
	}
}

func TestFetchPersonsResolvesLocations(t *testing.T) {
	f := newFakeBackend(map[string][]record.Record{
		PathCities: {
			{"city_id": "c1", "city_name": "Nghệ An", "latitude": 18.67, "longitude": 105.69},
		},
		refdata.PathPersons: {
			{"person_id": "p1", "full_name": "Phan Bội Châu", "birth_place": "Nam Đàn, Nghệ An"},
			{"person_id": "p2", "full_name": "Không rõ"},
		},
	})
	svc := newService(t, f)
	svc.FetchSites(context.Background())

	persons := svc.FetchPersons(context.Background())
	if len(persons) != 2 {
		t.Fatalf("len = %d", len(persons))
	}
	if !persons[0].HasLocation() || persons[0].LocationName != "Nghệ An" || !persons[0].InCity("c1") {
		t.Errorf("p1 = %+v", persons[0])
	}
	if persons[1].HasLocation() {
		t.Errorf("p2 = %+v", persons[1])
	}

	if got := svc.PersonsInCity(context.Background(), "c1"); len(got) != 1 || got[0].PersonID != "p1" {
		t.Errorf("PersonsInCity = %+v", got)
	}
}

func TestFetchSiteDetail(t *testing.T) {
	f := newFakeBackend(map[string][]record.Record{
		"/locations/s1": {
			{"site_id": "s1", "site_name": "Điện Biên Phủ", "site_type": "Chiến trường", "latitude": 21.38, "longitude": 103.01},
		},
		refdata.PathMedia: {
			{"media_id": "m1", "media_url": "a.jpg"},
			{"media_id": "m2", "media_url": "b.jpg"},
		},
		refdata.PathEventMedia: {
			{"event_id": "e2", "media_id": "m2"},
			{"event_id": "e1", "media_id": "m1"},
			{"event_id": "e1", "media_id": "m404"},
		},
		refdata.PathEvents: {
			{"event_id": "e1", "event_name": "Mở màn", "location_id": "s1"},
			{"event_id": "e2", "event_name": "Kết thúc", "location_id": "s1"},
			{"event_id": "e3", "event_name": "Nơi khác", "location_id": "s7"},
		},
	})
	svc := newService(t, f)

	detail := svc.FetchSiteDetail(context.Background(), "s1")
	if detail == nil {
		t.Fatal("detail = nil")
	}
	if detail.SiteName != "Điện Biên Phủ" {
		t.Errorf("SiteName = %q", detail.SiteName)
	}
	if len(detail.Events) != 2 {
		t.Fatalf("events = %+v, want the two events at s1", detail.Events)
	}
	if detail.Events[0].EventID != "e1" || detail.Events[1].EventID != "e2" {
		t.Errorf("event order = %s,%s", detail.Events[0].EventID, detail.Events[1].EventID)
	}
	if len(detail.Events[0].Media) != 1 || detail.Events[0].Media[0].MediaID != "m1" {
		t.Errorf("dangling media join not dropped: %+v", detail.Events[0].Media)
	}
}

func TestFetchSiteDetailPrefersBackendEvents(t *testing.T) {
	f := newFakeBackend(map[string][]record.Record{
		"/locations/s1":      {{"site_id": "s1", "site_name": "A", "site_type": "B"}},
		"/event/location/s1": {{"event_id": "e9", "event_name": "Từ backend"}},
		refdata.PathEvents:   {{"event_id": "e1", "location_id": "s1"}},
	})
	svc := newService(t, f)

	detail := svc.FetchSiteDetail(context.Background(), "s1")
	if detail == nil || len(detail.Events) != 1 || detail.Events[0].EventID != "e9" {
		t.Fatalf("detail = %+v", detail)
	}
}

func TestFetchSiteDetailFallsBackToCache(t *testing.T) {
	f := newFakeBackend(map[string][]record.Record{
		PathLocations: {{"site_id": "s5", "site_name": "Hội An", "site_type": "Phố cổ", "latitude": 15.88, "longitude": 108.33}},
	})
	svc := newService(t, f)
	svc.FetchSites(context.Background())

	if d := svc.FetchSiteDetail(context.Background(), "s5"); d == nil || d.SiteName != "Hội An" {
		t.Errorf("detail = %+v", d)
	}
	if d := svc.FetchSiteDetail(context.Background(), "missing"); d != nil {
		t.Errorf("unknown site detail = %+v, want nil", d)
	}
}

func TestFetchPersonDetail(t *testing.T) {
	f := newFakeBackend(map[string][]record.Record{
		"/persons/p1": {
			{"person_id": "p1", "full_name": "Nguyễn Trãi", "biography": "Tiểu sử đầy đủ [2]", "additional_info": `{"Hiệu":"Ức Trai"}`},
		},
		refdata.PathPersons: {
			{"person_id": "p1", "full_name": "Nguyễn Trãi", "biography": "Ngắn", "additional_info": `{"Hiệu":"?","Quê":"Hải Dương"}`},
		},
		refdata.PathMedia: {
			{"media_id": "m1", "media_url": "1.jpg"},
			{"media_id": "m2", "media_url": "2.jpg"},
			{"media_id": "m3", "media_url": "3.jpg"},
		},
		refdata.PathEventMedia: {
			{"event_id": "e1", "media_id": "m1"},
			{"event_id": "e1", "media_id": "m2"},
			{"event_id": "e2", "media_id": "m2"},
			{"event_id": "e2", "media_id": "m3"},
		},
		refdata.PathPersonEvent: {
			{"person_id": "p1", "event_id": "e2"},
		},
		refdata.PathEvents: {
			{"event_id": "e1", "event_name": "Bình Ngô", "main_person_id": "p1"},
			{"event_id": "e2", "event_name": "Lệ Chi Viên"},
			{"event_id": "e3", "event_name": "Khác"},
		},
	})
	svc := newService(t, f)

	d := svc.FetchPersonDetail(context.Background(), "p1")
	if d == nil {
		t.Fatal("detail = nil")
	}
	if d.Biography != "Tiểu sử đầy đủ" {
		t.Errorf("Biography = %q, direct record should override", d.Biography)
	}
	if d.AdditionalInfo["Hiệu"] != "Ức Trai" || d.AdditionalInfo["Quê"] != "Hải Dương" {
		t.Errorf("AdditionalInfo = %v", d.AdditionalInfo)
	}
	if len(d.Events) != 2 || d.Events[0].EventID != "e1" || d.Events[1].EventID != "e2" {
		t.Fatalf("Events = %+v", d.Events)
	}
	want := []string{"m1", "m2", "m3"}
	if len(d.Media) != len(want) {
		t.Fatalf("Media = %+v", d.Media)
	}
	for i, id := range want {
		if d.Media[i].MediaID != id {
			t.Errorf("Media[%d] = %s, want %s", i, d.Media[i].MediaID, id)
		}
	}
}

func TestFetchPersonDetailTwoEventsTwoMedia(t *testing.T) {
	f := newFakeBackend(map[string][]record.Record{
		refdata.PathPersons: {{"person_id": "p1", "full_name": "Lê Lợi"}},
		refdata.PathMedia: {
			{"media_id": "a", "media_url": "a.jpg"},
			{"media_id": "b", "media_url": "b.jpg"},
		},
		refdata.PathEventMedia: {
			{"event_id": "e2", "media_id": "b"},
			{"event_id": "e1", "media_id": "a"},
		},
		refdata.PathPersonEvent: {
			{"person_id": "p1", "event_id": "e1"},
			{"person_id": "p1", "event_id": "e2"},
		},
		refdata.PathEvents: {
			{"event_id": "e1"},
			{"event_id": "e2"},
		},
	})
	svc := newService(t, f)

	d := svc.FetchPersonDetail(context.Background(), "p1")
	if d == nil || len(d.Media) != 2 || d.Media[0].MediaID != "a" || d.Media[1].MediaID != "b" {
		t.Fatalf("detail = %+v, want media a,b in event order", d)
	}
}

func TestFetchPersonDetailUnknown(t *testing.T) {
	svc := newService(t, newFakeBackend(nil))
	if d := svc.FetchPersonDetail(context.Background(), "ghost"); d != nil {
		t.Errorf("detail = %+v, want nil", d)
	}
	if d := svc.FetchPersonDetail(context.Background(), " "); d != nil {
		t.Errorf("blank id detail = %+v", d)
	}
}

type capturePublisher struct {
	mu      sync.Mutex
	payload []any
}

func (p *capturePublisher) Publish(_ context.Context, topic string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if topic == events.TopicCatalogRefreshed {
		p.payload = append(p.payload, payload)
	}
	return nil
}

func TestRefresh(t *testing.T) {
	f := newFakeBackend(map[string][]record.Record{
		PathLocations:       {{"site_id": "s1", "site_name": "X", "site_type": "Y", "latitude": 1.0, "longitude": 1.0}},
		refdata.PathPersons: {{"person_id": "p1"}, {"person_id": "p2"}},
	})
	pub := &capturePublisher{}
	svc := newService(t, f, WithPublisher(pub))

	summary := svc.Refresh(context.Background(), TriggerAdmin)
	if summary.Sites != 1 || summary.Persons != 2 || summary.Trigger != TriggerAdmin {
		t.Errorf("summary = %+v", summary)
	}
	if !svc.Ready() {
		t.Error("Ready() = false after refresh")
	}
	if len(pub.payload) != 1 {
		t.Fatalf("published %d refresh events", len(pub.payload))
	}
	if got, ok := pub.payload[0].(events.CatalogRefreshed); !ok || got.Persons != 2 {
		t.Errorf("payload = %#v", pub.payload[0])
	}

	cached := svc.CachedPersons(context.Background())
	if len(cached) != 2 {
		t.Errorf("CachedPersons = %d", len(cached))
	}
}
