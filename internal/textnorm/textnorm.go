// Vietmap - Historical Map Data Service for Vietnam
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vietmap

// Package textnorm cleans free-text fields coming from the backend.
package textnorm

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// citationPattern matches citation markers such as [1], [ 2, 3 ] and [4-6].
var citationPattern = regexp.MustCompile(`\[\s*\d+(?:\s*[,;\-]\s*\d+)*\s*\]`)

// Normalize strips citation markers, collapses whitespace runs to a single space and
// trims the result. Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	// Removing one marker can expose another ("[[1]2]"), so strip to a fixed point.
	for citationPattern.MatchString(s) {
		s = citationPattern.ReplaceAllString(s, "")
	}
	return strings.Join(strings.Fields(s), " ")
}

// Fold prepares text for case-insensitive place-name matching. Vietnamese text arrives
// in both precomposed and decomposed forms, so it is NFC-normalized before lowering.
func Fold(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(norm.NFC.String(s))), " ")
}
