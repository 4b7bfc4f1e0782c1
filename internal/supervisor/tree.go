// Vietmap - Historical Map Data Service for Vietnam
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vietmap

package supervisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"

	"github.com/tomtom215/vietmap/internal/metrics"
)

// Layer supervisor names. They double as the "layer" metric label.
const (
	LayerData      = "data-layer"
	LayerMessaging = "messaging-layer"
	LayerAPI       = "api-layer"
)

// ErrNoHTTPServer is returned by New when Services has no HTTP server.
var ErrNoHTTPServer = errors.New("supervisor: no HTTP server to supervise")

// Services are the long-running parts of a vietmap process. Only HTTP is
// required; a nil Refresher, Hub or Forwarder is left out of the tree.
type Services struct {
	Refresher suture.Service // catalog warm-up and periodic refresh
	Hub       suture.Service // websocket hub
	Forwarder suture.Service // bus to hub relay
	HTTP      suture.Service
}

// Policy is the restart policy shared by the root and every layer.
type Policy struct {
	// FailureThreshold is the number of failures before a layer backs off.
	FailureThreshold float64

	// FailureDecay is the failure half-life in seconds.
	FailureDecay float64

	// FailureBackoff is how long a layer waits once over the threshold.
	FailureBackoff time.Duration

	// ShutdownTimeout bounds how long each service gets to stop.
	ShutdownTimeout time.Duration
}

// DefaultPolicy returns suture's built-in defaults.
func DefaultPolicy() Policy {
	return Policy{
		FailureThreshold: 5.0,
		FailureDecay:     30.0,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}
}

// withDefaults fills zero fields from DefaultPolicy.
func (p Policy) withDefaults() Policy {
	d := DefaultPolicy()
	if p.FailureThreshold <= 0 {
		p.FailureThreshold = d.FailureThreshold
	}
	if p.FailureDecay <= 0 {
		p.FailureDecay = d.FailureDecay
	}
	if p.FailureBackoff <= 0 {
		p.FailureBackoff = d.FailureBackoff
	}
	if p.ShutdownTimeout <= 0 {
		p.ShutdownTimeout = d.ShutdownTimeout
	}
	return p
}

func (p Policy) spec(hook suture.EventHook) suture.Spec {
	return suture.Spec{
		EventHook:        hook,
		FailureThreshold: p.FailureThreshold,
		FailureDecay:     p.FailureDecay,
		FailureBackoff:   p.FailureBackoff,
		Timeout:          p.ShutdownTimeout,
	}
}

// Tree supervises a vietmap process in three layers. The refresher runs
// in the data layer, the hub and forwarder in the messaging layer and the
// HTTP server in the api layer. Restarts stay inside a layer, so a backend
// outage that keeps the refresher failing leaves the API answering from
// the cached catalog.
type Tree struct {
	root   *suture.Supervisor
	policy Policy
	layout map[string][]string
}

// New builds the tree for svcs. Supervisor events are logged through logger
// and every restart is counted in metrics.ServiceRestarts.
func New(logger *slog.Logger, policy Policy, svcs Services) (*Tree, error) {
	if svcs.HTTP == nil {
		return nil, ErrNoHTTPServer
	}
	policy = policy.withDefaults()

	// MustHook has a pointer receiver.
	logHook := (&sutureslog.Handler{Logger: logger}).MustHook()

	t := &Tree{
		// Layers inherit the root hook when added.
		root:   suture.New("vietmap", policy.spec(restartHook(logHook))),
		policy: policy,
		layout: make(map[string][]string, 3),
	}
	t.addLayer(LayerData, svcs.Refresher)
	t.addLayer(LayerMessaging, svcs.Hub, svcs.Forwarder)
	t.addLayer(LayerAPI, svcs.HTTP)
	return t, nil
}

// addLayer adds a layer supervisor holding the non-nil services. A layer
// with nothing to run is skipped.
func (t *Tree) addLayer(name string, svcs ...suture.Service) {
	var layer *suture.Supervisor
	for _, svc := range svcs {
		if svc == nil {
			continue
		}
		if layer == nil {
			layer = suture.New(name, t.policy.spec(nil))
			t.root.Add(layer)
		}
		layer.Add(svc)
		t.layout[name] = append(t.layout[name], serviceName(svc))
	}
}

// restartHook forwards every event to next and counts terminations and
// panics that suture is about to restart.
func restartHook(next suture.EventHook) suture.EventHook {
	return func(e suture.Event) {
		switch ev := e.(type) {
		case suture.EventServiceTerminate:
			if ev.Restarting {
				metrics.RecordServiceRestart(ev.SupervisorName, ev.ServiceName, "error")
			}
		case suture.EventServicePanic:
			if ev.Restarting {
				metrics.RecordServiceRestart(ev.SupervisorName, ev.ServiceName, "panic")
			}
		}
		if next != nil {
			next(e)
		}
	}
}

func serviceName(svc suture.Service) string {
	if s, ok := svc.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", svc)
}

// Layout returns the service names wired into each layer, keyed by layer
// name. Layers with no services are absent.
func (t *Tree) Layout() map[string][]string {
	out := make(map[string][]string, len(t.layout))
	for layer, names := range t.layout {
		out[layer] = append([]string(nil), names...)
	}
	return out
}

// Serve runs the tree until ctx is canceled.
func (t *Tree) Serve(ctx context.Context) error {
	return t.root.Serve(ctx)
}

// ServeBackground runs the tree in a goroutine. The returned channel
// receives Serve's result.
func (t *Tree) ServeBackground(ctx context.Context) <-chan error {
	return t.root.ServeBackground(ctx)
}

// UnstoppedServiceReport lists services that did not stop within the
// shutdown timeout.
func (t *Tree) UnstoppedServiceReport() ([]suture.UnstoppedService, error) {
	return t.root.UnstoppedServiceReport()
}
