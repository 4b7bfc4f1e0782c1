// Vietmap - Historical Map Data Service for Vietnam
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vietmap

// Package record provides the fuzzy-record abstraction used to read loosely typed
// backend payloads.
//
// The backend REST API does not guarantee field names: a site name may arrive as
// "site_name" on one deployment and "name" on another. Every read therefore goes
// through Field, which tries candidate keys in priority order, and through the total
// parse helpers (String, Float, Int, Date, JSONObject) which never panic and report
// presence explicitly instead of relying on zero values.
package record

import (
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Record is one raw object returned by the backend.
type Record map[string]any

// Field returns the value of the first key that is present and not absent.
// A value is absent when it is nil, the empty string, or a whitespace-only string.
func (r Record) Field(keys ...string) (any, bool) {
	if r == nil {
		return nil, false
	}
	for _, key := range keys {
		v, ok := r[key]
		if !ok || isAbsent(v) {
			continue
		}
		return v, true
	}
	return nil, false
}

// Has reports whether any of the keys resolves to a present value.
func (r Record) Has(keys ...string) bool {
	_, ok := r.Field(keys...)
	return ok
}

func isAbsent(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	default:
		return false
	}
}

// String resolves keys and renders the value as a trimmed string.
// Numbers and booleans are stringified; objects and arrays are absent.
func (r Record) String(keys ...string) (string, bool) {
	v, ok := r.Field(keys...)
	if !ok {
		return "", false
	}
	return scalarString(v)
}

// StringOr is String with a fallback for absent values.
func (r Record) StringOr(fallback string, keys ...string) string {
	if s, ok := r.String(keys...); ok {
		return s
	}
	return fallback
}

// ID resolves an identifier and returns it as a trimmed string, or "" when absent.
// Identifiers are compared as strings everywhere so that 12, 12.0 and "12" join.
func (r Record) ID(keys ...string) string {
	s, _ := r.String(keys...)
	return s
}

// Float resolves a numeric value. Numeric strings are parsed; everything else is absent.
func (r Record) Float(keys ...string) (float64, bool) {
	v, ok := r.Field(keys...)
	if !ok {
		return 0, false
	}
	return toFloat(v)
}

// FloatOr is Float with a default for absent or unparseable values.
func (r Record) FloatOr(fallback float64, keys ...string) float64 {
	if f, ok := r.Float(keys...); ok {
		return f
	}
	return fallback
}

// Int resolves an integral value. Numbers and numeric strings are accepted and
// truncated toward zero, so 1890.5 yields 1890. Anything else yields an invalid Opt.
func (r Record) Int(keys ...string) Opt[int] {
	f, ok := r.Float(keys...)
	if !ok {
		return None[int]()
	}
	f = math.Trunc(f)
	if math.Abs(f) > math.MaxInt32 {
		return None[int]()
	}
	return Some(int(f))
}

// JSONObject resolves an object value. A string holding a JSON object is decoded.
func (r Record) JSONObject(keys ...string) (map[string]any, bool) {
	v, ok := r.Field(keys...)
	if !ok {
		return nil, false
	}
	switch val := v.(type) {
	case map[string]any:
		return val, true
	case Record:
		return map[string]any(val), true
	case string:
		var obj map[string]any
		if err := json.Unmarshal([]byte(strings.TrimSpace(val)), &obj); err != nil || obj == nil {
			return nil, false
		}
		return obj, true
	default:
		return nil, false
	}
}

// Date resolves a date-like value as a string. Strings pass through trimmed, numbers
// (a bare year is common) are rendered without a fraction. Objects, arrays and
// booleans are absent so callers can pattern-match the result safely.
func (r Record) Date(keys ...string) (string, bool) {
	v, ok := r.Field(keys...)
	if !ok {
		return "", false
	}
	if _, isBool := v.(bool); isBool {
		return "", false
	}
	return scalarString(v)
}

func scalarString(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		s := strings.TrimSpace(val)
		return s, s != ""
	case bool:
		return strconv.FormatBool(val), true
	case json.Number:
		return val.String(), true
	case float64:
		return formatFloat(val), true
	case float32:
		return formatFloat(float64(val)), true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case int32:
		return strconv.FormatInt(int64(val), 10), true
	case uint64:
		return strconv.FormatUint(val, 10), true
	default:
		return "", false
	}
}

func formatFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case float32:
		f = float64(val)
	case int:
		f = float64(val)
	case int64:
		f = float64(val)
	case int32:
		f = float64(val)
	case json.Number:
		parsed, err := val.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// FromMap converts a decoded JSON object into a Record. Non-object values yield nil.
func FromMap(v any) Record {
	switch val := v.(type) {
	case map[string]any:
		return Record(val)
	case Record:
		return val
	default:
		return nil
	}
}
