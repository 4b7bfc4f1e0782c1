// Vietmap - Historical Map Data Service for Vietnam
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vietmap

package websocket

import (
	"context"
	"errors"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/vietmap/internal/events"
	"github.com/tomtom215/vietmap/internal/logging"
)

var errSubscriptionClosed = errors.New("event subscription closed")

// Subscriber is satisfied by *events.Bus.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
}

// Broadcaster is satisfied by *Hub.
type Broadcaster interface {
	Broadcast(messageType string, data any)
}

// Forwarder relays bus events to websocket clients. It is a suture service.
type Forwarder struct {
	bus Subscriber
	hub Broadcaster
}

// NewForwarder creates a Forwarder.
func NewForwarder(bus Subscriber, hub Broadcaster) *Forwarder {
	return &Forwarder{bus: bus, hub: hub}
}

// Serve forwards until ctx ends or a subscription closes.
func (f *Forwarder) Serve(ctx context.Context) error {
	refreshed, err := f.bus.Subscribe(ctx, events.TopicCatalogRefreshed)
	if err != nil {
		return err
	}
	reloaded, err := f.bus.Subscribe(ctx, events.TopicRefdataReloaded)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case msg, ok := <-refreshed:
			if !ok {
				return f.closed(ctx)
			}
			forward[events.CatalogRefreshed](f.hub, MessageTypeCatalogRefreshed, msg)

		case msg, ok := <-reloaded:
			if !ok {
				return f.closed(ctx)
			}
			forward[events.RefdataReloaded](f.hub, MessageTypeRefdataReloaded, msg)
		}
	}
}

func (f *Forwarder) closed(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return errSubscriptionClosed
}

// String names the service in supervisor logs.
func (f *Forwarder) String() string {
	return "websocket-forwarder"
}

// forward decodes msg as T and broadcasts it. Undecodable messages are
// acked and dropped so they are not redelivered forever.
func forward[T any](hub Broadcaster, messageType string, msg *message.Message) {
	defer msg.Ack()

	payload, err := events.Decode[T](msg)
	if err != nil {
		logging.Warn().Err(err).Str("message_type", messageType).Msg("dropping undecodable event")
		return
	}
	hub.Broadcast(messageType, payload)
}
