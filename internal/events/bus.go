// Vietmap - Historical Map Data Service for Vietnam
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vietmap

// Package events is the in-process event bus. It runs on Watermill's
// gochannel Pub/Sub: the reference store and the catalog publish, and the
// websocket forwarder subscribes.
package events

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"

	"github.com/tomtom215/vietmap/internal/logging"
)

// Topics.
const (
	TopicRefdataReloaded  = "refdata.reloaded"
	TopicCatalogRefreshed = "catalog.refreshed"
)

// Metadata keys set on every message.
const (
	MetadataCorrelationID = "correlation_id"
	MetadataPublishedAt   = "published_at"
)

// ErrBusClosed is returned by Publish after Close.
var ErrBusClosed = errors.New("event bus closed")

// Publisher publishes domain events.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}

// RefdataReloaded is published after every reference data load.
type RefdataReloaded struct {
	Persons  int       `json:"persons"`
	Events   int       `json:"events"`
	Media    int       `json:"media"`
	LoadedAt time.Time `json:"loaded_at"`
}

// CatalogRefreshed is published after a full catalog refresh.
type CatalogRefreshed struct {
	Trigger    string    `json:"trigger"`
	Sites      int       `json:"sites"`
	Persons    int       `json:"persons"`
	DurationMs int64     `json:"duration_ms"`
	FinishedAt time.Time `json:"finished_at"`
}

// Bus is a Watermill gochannel Pub/Sub with JSON payloads.
type Bus struct {
	pubsub *gochannel.GoChannel
	closed atomic.Bool
}

// NewBus creates a bus. Messages published with no subscriber are dropped.
func NewBus() *Bus {
	return NewBusWithLogger(NewWatermillLogger(logging.WithComponent("events")))
}

// NewBusWithLogger creates a bus logging through logger.
func NewBusWithLogger(logger watermill.LoggerAdapter) *Bus {
	if logger == nil {
		logger = watermill.NewStdLogger(false, false)
	}
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 64,
		}, logger),
	}
}

// Publish encodes payload as JSON and publishes it on topic.
func (b *Bus) Publish(ctx context.Context, topic string, payload any) error {
	if b.closed.Load() {
		return ErrBusClosed
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", topic, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.Metadata.Set(MetadataPublishedAt, time.Now().UTC().Format(time.RFC3339Nano))
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		msg.Metadata.Set(MetadataCorrelationID, id)
	}

	if err := b.pubsub.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// Subscribe returns messages for topic until ctx ends. Consumers must Ack
// every message; gochannel waits for the ack before delivering the next one.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	msgs, err := b.pubsub.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", topic, err)
	}
	return msgs, nil
}

// Close shuts the bus down and closes every subscription channel.
func (b *Bus) Close() error {
	if !b.closed.CompareAndSwap(false, true) {
		return nil
	}
	return b.pubsub.Close()
}

// Decode unmarshals a message payload.
func Decode[T any](msg *message.Message) (T, error) {
	var v T
	if err := json.Unmarshal(msg.Payload, &v); err != nil {
		return v, fmt.Errorf("decode message %s: %w", msg.UUID, err)
	}
	return v, nil
}
