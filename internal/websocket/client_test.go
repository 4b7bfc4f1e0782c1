// Vietmap - Historical Map Data Service for Vietnam
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vietmap

package websocket

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// setupWebSocketServer serves a running hub over httptest.
func setupWebSocketServer(t *testing.T) (*httptest.Server, *Hub) {
	t.Helper()
	hub := runHub(t)
	upgrader := websocket.Upgrader{
		CheckOrigin: func(*http.Request) bool { return true },
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		client := NewClient(hub, conn)
		if hub.Join(client) {
			client.Start()
		}
	}))
	t.Cleanup(server.Close)
	return server, hub
}

func dialWebSocket(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatal(err)
	}
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	return msg
}

func TestNewClient(t *testing.T) {
	hub := NewHub()
	a := NewClient(hub, nil)
	b := NewClient(hub, nil)

	if cap(a.send) != 64 {
		t.Errorf("send buffer = %d, want 64", cap(a.send))
	}
	if cap(a.pongs) != 1 {
		t.Errorf("pongs buffer = %d, want 1", cap(a.pongs))
	}
	if b.ID() <= a.ID() {
		t.Errorf("ids not increasing: %d then %d", a.ID(), b.ID())
	}
}

func TestClient_PingPong(t *testing.T) {
	server, hub := setupWebSocketServer(t)
	conn := dialWebSocket(t, server)
	waitFor(t, func() bool { return hub.GetClientCount() == 1 }, "registration")

	if err := conn.WriteJSON(Message{Type: MessageTypePing}); err != nil {
		t.Fatal(err)
	}
	if msg := readMessage(t, conn); msg.Type != MessageTypePong {
		t.Errorf("Type = %q, want pong", msg.Type)
	}
}

func TestClient_ReceivesBroadcast(t *testing.T) {
	server, hub := setupWebSocketServer(t)
	conn := dialWebSocket(t, server)
	waitFor(t, func() bool { return hub.GetClientCount() == 1 }, "registration")

	hub.Broadcast(MessageTypeCatalogRefreshed, map[string]any{"trigger": "admin", "sites": 12})

	msg := readMessage(t, conn)
	if msg.Type != MessageTypeCatalogRefreshed {
		t.Fatalf("Type = %q", msg.Type)
	}
	data, ok := msg.Data.(map[string]any)
	if !ok || data["trigger"] != "admin" {
		t.Errorf("Data = %#v", msg.Data)
	}
}

func TestClient_IgnoresUnknownMessages(t *testing.T) {
	server, hub := setupWebSocketServer(t)
	conn := dialWebSocket(t, server)
	waitFor(t, func() bool { return hub.GetClientCount() == 1 }, "registration")

	if err := conn.WriteJSON(Message{Type: "subscribe"}); err != nil {
		t.Fatal(err)
	}
	if err := conn.WriteJSON(Message{Type: MessageTypePing}); err != nil {
		t.Fatal(err)
	}
	if msg := readMessage(t, conn); msg.Type != MessageTypePong {
		t.Errorf("Type = %q, want pong", msg.Type)
	}
}

func TestClient_DisconnectUnregisters(t *testing.T) {
	server, hub := setupWebSocketServer(t)
	conn := dialWebSocket(t, server)
	waitFor(t, func() bool { return hub.GetClientCount() == 1 }, "registration")

	_ = conn.Close()
	waitFor(t, func() bool { return hub.GetClientCount() == 0 }, "unregistration")
}

func TestClient_OversizedMessageCloses(t *testing.T) {
	server, hub := setupWebSocketServer(t)
	conn := dialWebSocket(t, server)
	waitFor(t, func() bool { return hub.GetClientCount() == 1 }, "registration")

	big := strings.Repeat("x", maxMessageSize+1)
	if err := conn.WriteJSON(Message{Type: MessageTypePing, Data: big}); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return hub.GetClientCount() == 0 }, "oversized client removal")
}

func TestClient_HubShutdownClosesConnection(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stopped := make(chan struct{})
	go func() {
		_ = hub.RunWithContext(ctx)
		close(stopped)
	}()

	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(hub, conn)
		if hub.Join(client) {
			client.Start()
		}
	}))
	defer server.Close()

	conn := dialWebSocket(t, server)
	waitFor(t, func() bool { return hub.GetClientCount() == 1 }, "registration")

	cancel()
	<-stopped

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	if err == nil {
		t.Fatal("ReadMessage succeeded after hub shutdown, want close")
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		t.Fatalf("connection still open after hub shutdown: %v", err)
	}
}
