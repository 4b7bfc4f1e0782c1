// Vietmap - Historical Map Data Service for Vietnam
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vietmap

/*
Package models defines the reconciled entities served to the map client.

Key types:

  - Site: a historical site or a city (SiteType "Thành phố")
  - Person: a historical figure with optional resolved location
  - Event: a historical event with its media and participants
  - SiteDetail, PersonDetail: hydrated detail views
  - RouteData, AddressSearchResult: directions and geocoding results

All ids are strings. Optional numbers use record.Opt so that a missing
value encodes as JSON null rather than zero.
*/
package models
