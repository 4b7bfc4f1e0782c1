// Vietmap - Historical Map Data Service for Vietnam
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vietmap

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/vietmap/internal/config"
	ws "github.com/tomtom215/vietmap/internal/websocket"
)

func newWebSocketServer(t *testing.T, hub *ws.Hub) *httptest.Server {
	t.Helper()
	cfg := &config.Config{Security: config.SecurityConfig{CORSOrigins: []string{"https://map.example.vn"}}}
	mwCfg := DefaultChiMiddlewareConfig()
	mwCfg.RateLimitDisabled = true

	h := NewHandler(cfg, &fakeCatalog{ready: true}, &fakeDirections{}, &fakeGeocoder{}, hub)
	server := httptest.NewServer(NewRouter(h, NewChiMiddleware(mwCfg)).SetupChi())
	t.Cleanup(server.Close)
	return server
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http") + "/api/v1/ws"
}

func TestWebSocket_Origins(t *testing.T) {
	tests := []struct {
		name    string
		origin  string
		wantErr bool
	}{
		{"allowed origin", "https://map.example.vn", false},
		{"unknown origin", "https://evil.example", true},
		{"missing origin", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub := ws.NewHub()
			ctx, cancel := context.WithCancel(context.Background())
			t.Cleanup(cancel)
			go func() { _ = hub.RunWithContext(ctx) }()
			server := newWebSocketServer(t, hub)

			header := http.Header{}
			if tt.origin != "" {
				header.Set("Origin", tt.origin)
			}
			conn, resp, err := websocket.DefaultDialer.Dial(wsURL(server), header)
			if resp != nil && resp.Body != nil {
				_ = resp.Body.Close()
			}

			if tt.wantErr {
				if err == nil {
					_ = conn.Close()
					t.Fatal("expected handshake to fail")
				}
				if resp == nil || resp.StatusCode != http.StatusForbidden {
					t.Errorf("response = %v, want 403", resp)
				}
				return
			}

			if err != nil {
				t.Fatalf("dial: %v", err)
			}
			defer conn.Close()

			deadline := time.Now().Add(time.Second)
			for hub.GetClientCount() != 1 {
				if time.Now().After(deadline) {
					t.Fatal("client was not registered")
				}
				time.Sleep(5 * time.Millisecond)
			}

			hub.Broadcast(ws.MessageTypeCatalogRefreshed, map[string]string{"trigger": "admin"})
			_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
			var msg ws.Message
			if err := conn.ReadJSON(&msg); err != nil {
				t.Fatalf("read: %v", err)
			}
			if msg.Type != ws.MessageTypeCatalogRefreshed {
				t.Errorf("Type = %q", msg.Type)
			}
		})
	}
}

func TestWebSocket_NoHub(t *testing.T) {
	server := newWebSocketServer(t, nil)

	req, err := http.NewRequest(http.MethodGet, server.URL+"/api/v1/ws", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
}
