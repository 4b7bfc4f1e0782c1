// Vietmap - Historical Map Data Service for Vietnam
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vietmap

// Package services adapts Vietmap components to suture's context-aware
// Serve pattern: the HTTP server, the websocket hub and the periodic
// catalog refresher. Each wrapper returns ctx.Err() on a clean shutdown and
// a wrapped error when suture should restart it.
package services
