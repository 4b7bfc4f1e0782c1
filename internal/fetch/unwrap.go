// Vietmap - Historical Map Data Service for Vietnam
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vietmap

package fetch

import (
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/vietmap/internal/record"
)

// maxUnwrapDepth bounds nested envelopes such as a proxy wrapping a proxy.
const maxUnwrapDepth = 8

// Unwrap normalizes a decoded response into a list of records. Shapes are
// tried in order:
//
//	{"data": [...]}         the backend envelope
//	[...]                   a bare array; non-object elements are dropped
//	{"contents": ...}       a proxy envelope; string contents are parsed as JSON
//	{...}                   any other non-empty object is a single record
//
// Anything else (nil, scalars, {}) yields an empty, non-nil list.
func Unwrap(payload any) []record.Record {
	return unwrap(payload, 0)
}

func unwrap(payload any, depth int) []record.Record {
	if depth > maxUnwrapDepth {
		return []record.Record{}
	}

	switch v := payload.(type) {
	case []any:
		return objects(v)
	case map[string]any:
		if data, ok := v["data"]; ok {
			switch inner := data.(type) {
			case []any:
				return objects(inner)
			case map[string]any:
				return unwrap(inner, depth+1)
			}
		}
		if contents, ok := v["contents"]; ok {
			return unwrap(parseContents(contents), depth+1)
		}
		if len(v) == 0 {
			return []record.Record{}
		}
		return []record.Record{record.Record(v)}
	default:
		return []record.Record{}
	}
}

// parseContents decodes string contents; other values pass through.
func parseContents(contents any) any {
	s, ok := contents.(string)
	if !ok {
		return contents
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	var parsed any
	if err := json.Unmarshal([]byte(s), &parsed); err != nil {
		return nil
	}
	return parsed
}

func objects(items []any) []record.Record {
	out := make([]record.Record, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, record.Record(obj))
		}
	}
	return out
}
