// Vietmap - Historical Map Data Service for Vietnam
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vietmap

package websocket

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/vietmap/internal/logging"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{
		Level:  "info",
		Format: "console",
		Output: io.Discard,
	})
}

// runHub starts a hub and stops it when the test ends.
func runHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = hub.RunWithContext(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return hub
}

// createTestClient creates a client without a connection.
func createTestClient(hub *Hub, buffer int) *Client {
	return &Client{
		id:    clientIDCounter.Add(1),
		hub:   hub,
		send:  make(chan Message, buffer),
		pongs: make(chan struct{}, 1),
	}
}

// waitFor polls cond until it holds or a second passes.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", msg)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case msg := <-c.send:
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message received")
		return Message{}
	}
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := runHub(t)
	client := createTestClient(hub, 4)

	hub.Register <- client
	waitFor(t, func() bool { return hub.GetClientCount() == 1 }, "registration")

	hub.Unregister <- client
	waitFor(t, func() bool { return hub.GetClientCount() == 0 }, "unregistration")

	if _, ok := <-client.send; ok {
		t.Error("send channel should be closed after unregister")
	}
}

func TestHub_UnregisterUnknownClient(t *testing.T) {
	hub := runHub(t)
	hub.Unregister <- createTestClient(hub, 1)

	if got := hub.GetClientCount(); got != 0 {
		t.Errorf("GetClientCount() = %d", got)
	}
}

func TestHub_Broadcast(t *testing.T) {
	hub := runHub(t)
	a, b := createTestClient(hub, 4), createTestClient(hub, 4)
	hub.Register <- a
	hub.Register <- b
	waitFor(t, func() bool { return hub.GetClientCount() == 2 }, "registration")

	hub.Broadcast(MessageTypeCatalogRefreshed, map[string]int{"sites": 3})

	for _, c := range []*Client{a, b} {
		msg := receive(t, c)
		if msg.Type != MessageTypeCatalogRefreshed {
			t.Errorf("Type = %q", msg.Type)
		}
	}
}

func TestHub_DropsSlowClient(t *testing.T) {
	hub := runHub(t)
	slow := createTestClient(hub, 1)
	fast := createTestClient(hub, 4)
	hub.Register <- slow
	hub.Register <- fast
	waitFor(t, func() bool { return hub.GetClientCount() == 2 }, "registration")

	hub.Broadcast(MessageTypeRefdataReloaded, nil)
	receive(t, fast)
	hub.Broadcast(MessageTypeRefdataReloaded, nil)
	receive(t, fast)

	waitFor(t, func() bool { return hub.GetClientCount() == 1 }, "slow client removal")
}

func TestHub_BroadcastChannelFull(t *testing.T) {
	hub := NewHub() // not running, so the queue fills

	for i := 0; i < cap(hub.broadcast)+10; i++ {
		hub.Broadcast(MessageTypeCatalogRefreshed, i)
	}
	if len(hub.broadcast) != cap(hub.broadcast) {
		t.Errorf("queue length = %d, want %d", len(hub.broadcast), cap(hub.broadcast))
	}
}

func TestHub_RunWithContextClosesClients(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- hub.RunWithContext(ctx) }()

	clients := make([]*Client, 3)
	for i := range clients {
		clients[i] = createTestClient(hub, 1)
		hub.Join(clients[i])
	}
	waitFor(t, func() bool { return hub.GetClientCount() == 3 }, "registration")

	cancel()
	select {
	case err := <-errCh:
		if err != context.Canceled {
			t.Errorf("RunWithContext() = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}

	if hub.GetClientCount() != 0 {
		t.Errorf("clients left after shutdown: %d", hub.GetClientCount())
	}
	for _, c := range clients {
		if _, ok := <-c.send; ok {
			t.Error("client send channel still open")
		}
	}
}

func TestHub_StoppedHubReleasesClients(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- hub.RunWithContext(ctx) }()

	client := createTestClient(hub, 1)
	if !hub.Join(client) {
		t.Fatal("Join() = false on a running hub")
	}
	waitFor(t, func() bool { return hub.GetClientCount() == 1 }, "registration")

	cancel()
	<-errCh

	select {
	case <-hub.Done():
	default:
		t.Fatal("Done() not closed after RunWithContext returned")
	}

	left := make(chan struct{})
	go func() {
		hub.leave(client)
		close(left)
	}()
	select {
	case <-left:
	case <-time.After(time.Second):
		t.Fatal("leave blocked on a stopped hub")
	}

	if hub.Join(createTestClient(hub, 1)) {
		t.Error("Join() = true on a stopped hub")
	}
}

func TestHub_ConcurrentBroadcasts(t *testing.T) {
	hub := runHub(t)
	client := createTestClient(hub, 256)
	hub.Register <- client
	waitFor(t, func() bool { return hub.GetClientCount() == 1 }, "registration")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			hub.Broadcast(MessageTypeCatalogRefreshed, i)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 20; i++ {
		receive(t, client)
	}
}

func TestGetShutdownReason(t *testing.T) {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	if got := getShutdownReason(canceled); got != ShutdownReasonContextCanceled {
		t.Errorf("canceled reason = %q", got)
	}

	expired, cancel2 := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel2()
	<-expired.Done()
	if got := getShutdownReason(expired); got != ShutdownReasonContextDeadline {
		t.Errorf("deadline reason = %q", got)
	}
}

func TestMarshalMessage(t *testing.T) {
	data, err := MarshalMessage(Message{Type: MessageTypePong})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"type":"pong"`) || !strings.Contains(string(data), `"data":null`) {
		t.Errorf("MarshalMessage = %s", data)
	}
}
