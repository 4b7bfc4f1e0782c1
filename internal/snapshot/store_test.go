// Vietmap - Historical Map Data Service for Vietnam
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vietmap

package snapshot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/vietmap/internal/config"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		t.Fatalf("failed to open badger: %v", err)
	}
	s := New(db)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveLoad(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, ok, err := s.Load(ctx, "backend:/cities"); err != nil || ok {
		t.Fatalf("Load before Save = %v, %v; want miss", ok, err)
	}

	before := time.Now().Add(-time.Second)
	if err := s.Save(ctx, "backend:/cities", []byte(`[{"city_id":"c1"}]`)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, ok, err := s.Load(ctx, "backend:/cities")
	if err != nil || !ok {
		t.Fatalf("Load = %v, %v", ok, err)
	}
	if string(got) != `[{"city_id":"c1"}]` {
		t.Errorf("payload = %s", got)
	}

	at, ok, err := s.SavedAt(ctx, "backend:/cities")
	if err != nil || !ok || at.Before(before) {
		t.Errorf("SavedAt = %v, %v, %v", at, ok, err)
	}
}

func TestSaveOverwrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_ = s.Save(ctx, "k", []byte(`1`))
	_ = s.Save(ctx, "k", []byte(`2`))

	got, _, _ := s.Load(ctx, "k")
	if string(got) != "2" {
		t.Errorf("payload = %s, want 2", got)
	}
}

func TestKeys(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, k := range []string{"backend:/a", "backend:/b"} {
		if err := s.Save(ctx, k, []byte(`{}`)); err != nil {
			t.Fatal(err)
		}
	}

	keys, err := s.Keys(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 2 || keys[0] != "backend:/a" {
		t.Errorf("Keys() = %v", keys)
	}
}

func TestOpenDisabled(t *testing.T) {
	if _, err := Open(config.SnapshotConfig{}); !errors.Is(err, ErrDisabled) {
		t.Errorf("err = %v, want ErrDisabled", err)
	}
}

func TestOpenInMemory(t *testing.T) {
	s, err := Open(config.SnapshotConfig{InMemory: true})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = s.Close() }()

	if err := s.Save(context.Background(), "k", []byte(`[]`)); err != nil {
		t.Errorf("Save: %v", err)
	}
}
