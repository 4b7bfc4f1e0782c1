// Vietmap - Historical Map Data Service for Vietnam
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vietmap

package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/tomtom215/vietmap/internal/logging"
	"github.com/tomtom215/vietmap/internal/validation"
)

// sanitizeLogValue escapes control characters so client-supplied values
// cannot forge log lines.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// validateRequest validates v and writes a 400 response when it fails.
// It reports whether the handler may continue.
//
//	req := DetailRequest{ID: chi.URLParam(r, "id")}
//	if !validateRequest(w, r, &req) {
//	    return
//	}
func validateRequest(w http.ResponseWriter, r *http.Request, v any) bool {
	probs := validation.Check(v)
	if probs == nil {
		return true
	}

	logging.Ctx(r.Context()).Debug().
		Str("path", r.URL.Path).
		Str("error", sanitizeLogValue(probs.Message())).
		Msg("request validation failed")
	NewResponseWriter(w, r).ValidationError(probs.Message(), probs.Details())
	return false
}
