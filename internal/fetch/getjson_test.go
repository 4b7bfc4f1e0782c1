// Vietmap - Historical Map Data Service for Vietnam
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vietmap

package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestGetJSON(t *testing.T) {
	var gotUA atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA.Store(r.Header.Get("User-Agent"))
		switch r.URL.Path {
		case "/ok":
			_, _ = w.Write([]byte(`{"data":[{"site_id":1}]}`))
		case "/missing":
			http.NotFound(w, r)
		case "/boom":
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("upstream exploded"))
		case "/empty":
			w.WriteHeader(http.StatusOK)
		case "/garbage":
			_, _ = w.Write([]byte("<html>"))
		case "/slow":
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write([]byte(`[]`))
		}
	}))
	defer srv.Close()

	hc := NewHTTPClient("vietmap-test")
	ctx := context.Background()

	t.Run("ok", func(t *testing.T) {
		payload, err := GetJSON(ctx, hc, srv.URL+"/ok", time.Second)
		if err != nil {
			t.Fatalf("GetJSON: %v", err)
		}
		obj, ok := payload.(map[string]any)
		if !ok || obj["data"] == nil {
			t.Errorf("payload = %#v", payload)
		}
		if ua, _ := gotUA.Load().(string); ua != "vietmap-test" {
			t.Errorf("User-Agent = %q", ua)
		}
	})

	t.Run("404 is no data", func(t *testing.T) {
		payload, err := GetJSON(ctx, hc, srv.URL+"/missing", time.Second)
		if err != nil || payload != nil {
			t.Errorf("GetJSON = %v, %v; want nil, nil", payload, err)
		}
	})

	t.Run("typed", func(t *testing.T) {
		var dst struct {
			Data []struct {
				SiteID int `json:"site_id"`
			} `json:"data"`
		}
		found, err := GetInto(ctx, hc, srv.URL+"/ok", time.Second, &dst)
		if err != nil || !found || len(dst.Data) != 1 || dst.Data[0].SiteID != 1 {
			t.Errorf("GetInto = %v, %v, %+v", found, err, dst)
		}

		found, err = GetInto(ctx, hc, srv.URL+"/missing", time.Second, &dst)
		if err != nil || found {
			t.Errorf("GetInto 404 = %v, %v", found, err)
		}
	})

	t.Run("non-2xx", func(t *testing.T) {
		_, err := GetJSON(ctx, hc, srv.URL+"/boom", time.Second)
		var se *StatusError
		if !errors.As(err, &se) {
			t.Fatalf("err = %v, want *StatusError", err)
		}
		if se.Code != http.StatusBadGateway || se.Excerpt != "upstream exploded" {
			t.Errorf("StatusError = %+v", se)
		}
	})

	t.Run("empty body", func(t *testing.T) {
		if _, err := GetJSON(ctx, hc, srv.URL+"/empty", time.Second); !errors.Is(err, ErrEmptyBody) {
			t.Errorf("err = %v, want ErrEmptyBody", err)
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		if _, err := GetJSON(ctx, hc, srv.URL+"/garbage", time.Second); err == nil {
			t.Error("expected decode error")
		}
	})

	t.Run("timeout", func(t *testing.T) {
		_, err := GetJSON(ctx, hc, srv.URL+"/slow", 20*time.Millisecond)
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("err = %v, want deadline exceeded", err)
		}
	})
}
