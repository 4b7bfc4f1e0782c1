// Vietmap - Historical Map Data Service for Vietnam
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vietmap

package events

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/tomtom215/vietmap/internal/logging"
)

func TestPublishSubscribe(t *testing.T) {
	bus := NewBusWithLogger(watermill.NopLogger{})
	defer func() { _ = bus.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	msgs, err := bus.Subscribe(ctx, TopicCatalogRefreshed)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	pubCtx := logging.ContextWithCorrelationID(context.Background(), "abc12345")
	want := CatalogRefreshed{Trigger: "admin", Sites: 12, Persons: 30}
	if err := bus.Publish(pubCtx, TopicCatalogRefreshed, want); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case msg := <-msgs:
		got, err := Decode[CatalogRefreshed](msg)
		msg.Ack()
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if got.Trigger != "admin" || got.Sites != 12 || got.Persons != 30 {
			t.Errorf("decoded = %+v", got)
		}
		if msg.Metadata.Get(MetadataCorrelationID) != "abc12345" {
			t.Errorf("correlation id = %q", msg.Metadata.Get(MetadataCorrelationID))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestPublishAfterClose(t *testing.T) {
	bus := NewBusWithLogger(watermill.NopLogger{})
	if err := bus.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	err := bus.Publish(context.Background(), TopicRefdataReloaded, RefdataReloaded{})
	if !errors.Is(err, ErrBusClosed) {
		t.Errorf("err = %v, want ErrBusClosed", err)
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	bus := NewBusWithLogger(watermill.NopLogger{})
	defer func() { _ = bus.Close() }()

	if err := bus.Publish(context.Background(), TopicRefdataReloaded, RefdataReloaded{Persons: 1}); err != nil {
		t.Errorf("Publish without subscribers: %v", err)
	}
}

func TestWatermillLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewWatermillLogger(logging.NewTestLogger(&buf)).With(watermill.LogFields{"topic": "catalog.refreshed"})
	l.Error("publish failed", errors.New("closed"), watermill.LogFields{"uuid": "u1"})

	out := buf.String()
	for _, want := range []string{`"topic":"catalog.refreshed"`, `"uuid":"u1"`, `"error":"closed"`, `"message":"publish failed"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s: %s", want, out)
		}
	}
}
