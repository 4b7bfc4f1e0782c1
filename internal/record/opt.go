// Vietmap - Historical Map Data Service for Vietnam
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vietmap

package record

import (
	"github.com/goccy/go-json"
)

// Opt is a present-or-absent value. It encodes to JSON as the value or null.
type Opt[T any] struct {
	Value T
	Valid bool
}

// Some returns a present Opt.
func Some[T any](v T) Opt[T] {
	return Opt[T]{Value: v, Valid: true}
}

// None returns an absent Opt.
func None[T any]() Opt[T] {
	return Opt[T]{}
}

// Get returns the value and whether it is present.
func (o Opt[T]) Get() (T, bool) {
	return o.Value, o.Valid
}

// Or returns the value, or fallback when absent.
func (o Opt[T]) Or(fallback T) T {
	if o.Valid {
		return o.Value
	}
	return fallback
}

// MarshalJSON implements json.Marshaler.
func (o Opt[T]) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *Opt[T]) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = Opt[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}
