// Vietmap - Historical Map Data Service for Vietnam
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vietmap

// Package snapshot keeps the last successful backend payload per path in
// BadgerDB, so the catalog can keep serving while the backend and every
// proxy are unreachable.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/vietmap/internal/config"
	"github.com/tomtom215/vietmap/internal/logging"
)

const keyPrefix = "snapshot:"

// ErrDisabled is returned by Open when no path is configured and in-memory
// mode is off.
var ErrDisabled = errors.New("snapshot store disabled")

type entry struct {
	SavedAt time.Time       `json:"saved_at"`
	Payload json.RawMessage `json:"payload"`
}

// Store is a BadgerDB-backed snapshot store.
type Store struct {
	db *badger.DB
}

// Open opens the store described by cfg.
func Open(cfg config.SnapshotConfig) (*Store, error) {
	var opts badger.Options
	switch {
	case cfg.InMemory:
		opts = badger.DefaultOptions("").WithInMemory(true)
	case cfg.Path != "":
		opts = badger.DefaultOptions(cfg.Path)
	default:
		return nil, ErrDisabled
	}
	opts = opts.WithLogger(badgerLogger{log: logging.WithComponent("badger")})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}
	return &Store{db: db}, nil
}

// New wraps an already open database.
func New(db *badger.DB) *Store {
	return &Store{db: db}
}

// Save stores payload under key, replacing any previous snapshot.
func (s *Store) Save(_ context.Context, key string, payload []byte) error {
	data, err := json.Marshal(entry{SavedAt: time.Now().UTC(), Payload: payload})
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+key), data)
	})
}

// Load returns the payload stored under key.
func (s *Store) Load(ctx context.Context, key string) ([]byte, bool, error) {
	e, ok, err := s.get(ctx, key)
	if err != nil || !ok {
		return nil, ok, err
	}
	return e.Payload, true, nil
}

// SavedAt returns when key was last saved.
func (s *Store) SavedAt(ctx context.Context, key string) (time.Time, bool, error) {
	e, ok, err := s.get(ctx, key)
	if err != nil || !ok {
		return time.Time{}, ok, err
	}
	return e.SavedAt, true, nil
}

func (s *Store) get(_ context.Context, key string) (entry, bool, error) {
	var e entry
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &e)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return entry{}, false, nil
	}
	if err != nil {
		return entry{}, false, fmt.Errorf("load snapshot %s: %w", key, err)
	}
	return e, true, nil
}

// Keys lists stored snapshot keys.
func (s *Store) Keys(_ context.Context) ([]string, error) {
	var keys []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, strings.TrimPrefix(string(it.Item().Key()), keyPrefix))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return keys, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// badgerLogger routes badger's internal logging through zerolog.
type badgerLogger struct {
	log zerolog.Logger
}

func (l badgerLogger) Errorf(format string, args ...any) {
	l.log.Error().Msgf(strings.TrimSpace(format), args...)
}

func (l badgerLogger) Warningf(format string, args ...any) {
	l.log.Warn().Msgf(strings.TrimSpace(format), args...)
}

func (l badgerLogger) Infof(format string, args ...any) {
	l.log.Debug().Msgf(strings.TrimSpace(format), args...)
}

func (l badgerLogger) Debugf(format string, args ...any) {
	l.log.Trace().Msgf(strings.TrimSpace(format), args...)
}
