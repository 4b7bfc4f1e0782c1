// Vietmap - Historical Map Data Service for Vietnam
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vietmap

package directions

import (
	"unicode"
	"unicode/utf8"
)

var modifiers = map[string]string{
	"left":         "rẽ trái",
	"right":        "rẽ phải",
	"slight left":  "chếch sang trái",
	"slight right": "chếch sang phải",
	"sharp left":   "rẽ gắt sang trái",
	"sharp right":  "rẽ gắt sang phải",
	"straight":     "đi thẳng",
	"uturn":        "quay đầu",
}

var maneuvers = map[string]string{
	"depart":          "Xuất phát",
	"arrive":          "Đến nơi",
	"merge":           "Nhập làn",
	"on ramp":         "Vào đường nhánh",
	"off ramp":        "Ra khỏi đường nhánh",
	"fork":            "Đi theo nhánh",
	"roundabout":      "Vào vòng xuyến",
	"rotary":          "Vào vòng xuyến",
	"exit roundabout": "Ra khỏi vòng xuyến",
	"exit rotary":     "Ra khỏi vòng xuyến",
	"continue":        "Tiếp tục",
	"new name":        "Tiếp tục",
	"end of road":     "Cuối đường",
}

// Instruction renders an OSRM maneuver in Vietnamese, naming the road when
// there is one.
func Instruction(maneuverType, modifier, road string) string {
	var text string
	switch maneuverType {
	case "turn":
		text = capitalize(modifiers[modifier])
		if text == "" {
			text = "Rẽ"
		}
	case "arrive":
		return maneuvers[maneuverType]
	default:
		text = maneuvers[maneuverType]
		if text == "" {
			text = "Tiếp tục"
		}
		if m, ok := modifiers[modifier]; ok && maneuverType != "depart" && modifier != "straight" {
			text += ", " + m
		}
	}

	if road != "" {
		text += " vào " + road
	}
	return text
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
