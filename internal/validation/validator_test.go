// Vietmap - Historical Map Data Service for Vietnam
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vietmap

package validation

import (
	"strings"
	"testing"
)

func TestValidator_Shared(t *testing.T) {
	v1 := Validator()
	v2 := Validator()

	if v1 == nil {
		t.Fatal("Validator() = nil")
	}
	if v1 != v2 {
		t.Error("Validator() should return the same instance")
	}
}

type routeParams struct {
	FromLat string `query:"from_lat" validate:"required,latitude"`
	FromLon string `query:"from_lon" validate:"required,longitude"`
	ToLat   string `query:"to_lat" validate:"required,latitude"`
	ToLon   string `query:"to_lon" validate:"required,longitude"`
}

func validRoute() routeParams {
	return routeParams{FromLat: "21.03", FromLon: "105.85", ToLat: "10.77", ToLon: "106.70"}
}

type searchParams struct {
	Query string `query:"q" validate:"required,notblank,max=200"`
}

type detailParams struct {
	ID string `path:"id" validate:"entityid"`
}

type untaggedParams struct {
	CityID string `validate:"omitempty,entityid"`
}

func TestCheck_Valid(t *testing.T) {
	atLimits := routeParams{FromLat: "-90", FromLon: "-180", ToLat: "90", ToLon: "180"}
	route := validRoute()

	tests := []struct {
		name  string
		input any
	}{
		{"route inside Vietnam", &route},
		{"route at limits", &atLimits},
		{"search", &searchParams{Query: "Văn Miếu"}},
		{"vietnamese query at rune limit", &searchParams{Query: strings.Repeat("ệ", 200)}},
		{"numeric id", &detailParams{ID: "42"}},
		{"uuid id", &detailParams{ID: "9b2f7c1e-6d5a-4f1b-9c3e-1a2b3c4d5e6f"}},
		{"id at length limit", &detailParams{ID: strings.Repeat("9", MaxEntityIDLength)}},
		{"omitted optional id", &untaggedParams{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if probs := Check(tt.input); probs != nil {
				t.Errorf("Check() = %v, want nil", probs)
			}
		})
	}
}

func TestCheck_Invalid(t *testing.T) {
	badLat := validRoute()
	badLat.FromLat = "91"
	badLon := validRoute()
	badLon.ToLon = "-181"
	textLat := validRoute()
	textLat.ToLat = "north"
	missing := validRoute()
	missing.FromLon = ""

	tests := []struct {
		name      string
		input     any
		wantParam string
		wantRule  string
	}{
		{"latitude out of range", &badLat, "from_lat", "latitude"},
		{"longitude out of range", &badLon, "to_lon", "longitude"},
		{"latitude not a number", &textLat, "to_lat", "latitude"},
		{"missing coordinate", &missing, "from_lon", "required"},
		{"missing query", &searchParams{}, "q", "required"},
		{"blank query", &searchParams{Query: "   "}, "q", "notblank"},
		{"long query", &searchParams{Query: strings.Repeat("a", 201)}, "q", "max"},
		{"blank id", &detailParams{ID: " "}, "id", "entityid"},
		{"id with slash", &detailParams{ID: "1/../admin"}, "id", "entityid"},
		{"id with query", &detailParams{ID: "1?x=2"}, "id", "entityid"},
		{"id too long", &detailParams{ID: strings.Repeat("9", MaxEntityIDLength+1)}, "id", "entityid"},
		{"untagged field keeps go name", &untaggedParams{CityID: "a#b"}, "CityID", "entityid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			probs := Check(tt.input)
			if probs == nil {
				t.Fatal("Check() = nil, want problems")
			}
			if !probs.Has(tt.wantParam, tt.wantRule) {
				t.Errorf("want %s failing %s, got %v", tt.wantParam, tt.wantRule, probs)
			}
		})
	}
}

func TestProblems_SingleMessage(t *testing.T) {
	route := validRoute()
	route.FromLat = "100"

	probs := Check(&route)
	if len(probs) != 1 {
		t.Fatalf("Check() = %v, want one problem", probs)
	}
	if got, want := probs.Message(), "from_lat must be a valid latitude (-90 to 90)"; got != want {
		t.Errorf("Message() = %q, want %q", got, want)
	}
	if probs.Error() != probs.Message() {
		t.Errorf("Error() = %q, want Message()", probs.Error())
	}

	details := probs.Details()
	if details["field"] != "from_lat" || details["tag"] != "latitude" || details["value"] != "100" {
		t.Errorf("Details() = %v", details)
	}
}

func TestProblems_SeveralMessages(t *testing.T) {
	route := validRoute()
	route.FromLat = "100"
	route.ToLon = "200"

	probs := Check(&route)
	if len(probs) != 2 {
		t.Fatalf("Check() = %v, want two problems", probs)
	}
	msg := probs.Message()
	if !strings.Contains(msg, "from_lat: ") || !strings.Contains(msg, "to_lon: ") {
		t.Errorf("Message() = %q", msg)
	}

	fields, ok := probs.Details()["fields"].([]map[string]any)
	if !ok || len(fields) != 2 {
		t.Fatalf("Details() = %v", probs.Details())
	}
	if fields[0]["field"] != "from_lat" || fields[1]["field"] != "to_lon" {
		t.Errorf("fields = %v", fields)
	}
}

func TestProblems_MaxCountsCharacters(t *testing.T) {
	probs := Check(&searchParams{Query: strings.Repeat("a", 201)})
	if len(probs) != 1 {
		t.Fatalf("Check() = %v", probs)
	}
	if probs[0].Arg != "200" {
		t.Errorf("Arg = %q, want 200", probs[0].Arg)
	}
	if got, want := probs.Message(), "q must be at most 200 characters"; got != want {
		t.Errorf("Message() = %q, want %q", got, want)
	}
}

func TestCheck_NotAStruct(t *testing.T) {
	probs := Check("not a struct")
	if len(probs) != 1 || probs[0].Param != "request" || probs[0].Rule != "invalid" {
		t.Errorf("Check(string) = %v", probs)
	}
}
