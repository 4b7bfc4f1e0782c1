// Vietmap - Historical Map Data Service for Vietnam
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vietmap

// Package directions computes driving routes with an OSRM routing engine and
// falls back to a straight line when the engine is unavailable.
package directions

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/vietmap/internal/breaker"
	"github.com/tomtom215/vietmap/internal/config"
	"github.com/tomtom215/vietmap/internal/fetch"
	"github.com/tomtom215/vietmap/internal/logging"
	"github.com/tomtom215/vietmap/internal/metrics"
	"github.com/tomtom215/vietmap/internal/models"
)

// FallbackMessage accompanies every straight-line route.
const FallbackMessage = "Dịch vụ chỉ đường không khả dụng"

// fallbackSpeed is the assumed average speed of a straight-line route, in m/s (40 km/h).
const fallbackSpeed = 40.0 * 1000 / 3600

const earthRadiusMeters = 6371000.0

var (
	errNoRoute = errors.New("no route")
	errNotOK   = errors.New("routing engine returned an error")
)

type osrmResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Routes  []osrmRoute `json:"routes"`
}

type osrmRoute struct {
	Distance float64 `json:"distance"`
	Duration float64 `json:"duration"`
	Geometry struct {
		Coordinates [][]float64 `json:"coordinates"`
	} `json:"geometry"`
	Legs []struct {
		Steps []osrmStep `json:"steps"`
	} `json:"legs"`
}

type osrmStep struct {
	Distance float64 `json:"distance"`
	Name     string  `json:"name"`
	Maneuver struct {
		Type     string `json:"type"`
		Modifier string `json:"modifier"`
	} `json:"maneuver"`
}

// Client queries the routing engine.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
	breaker *breaker.Breaker[*osrmResponse]
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// NewClient creates a routing client.
func NewClient(cfg config.DirectionsConfig, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: cfg.Timeout,
		http:    fetch.NewHTTPClient("vietmap"),
		breaker: breaker.New[*osrmResponse]("directions", breaker.Settings{MinRequests: 5}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Route returns a driving route from one point to another. It always
// returns a usable route: on any failure a straight line is returned with
// Fallback set.
func (c *Client) Route(ctx context.Context, from, to models.LatLon) models.RouteData {
	resp, err := c.breaker.Execute(func() (*osrmResponse, error) {
		return c.query(ctx, from, to)
	})
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).
			Float64("from_lat", from.Lat).Float64("from_lon", from.Lon).
			Float64("to_lat", to.Lat).Float64("to_lon", to.Lon).
			Msg("routing engine unavailable, using straight line")
		metrics.DirectionsFallbacks.Inc()
		return Fallback(from, to)
	}
	return toRouteData(resp.Routes[0])
}

func (c *Client) query(ctx context.Context, from, to models.LatLon) (*osrmResponse, error) {
	url := fmt.Sprintf("%s/route/v1/driving/%s,%s;%s,%s?steps=true&geometries=geojson&overview=full",
		c.baseURL, coord(from.Lon), coord(from.Lat), coord(to.Lon), coord(to.Lat))

	var resp osrmResponse
	found, err := fetch.GetInto(ctx, c.http, url, c.timeout, &resp)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errNoRoute
	}
	if resp.Code != "Ok" {
		return nil, fmt.Errorf("%w: %s %s", errNotOK, resp.Code, resp.Message)
	}
	if len(resp.Routes) == 0 {
		return nil, errNoRoute
	}
	return &resp, nil
}

func coord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func toRouteData(r osrmRoute) models.RouteData {
	data := models.RouteData{
		Summary: models.RouteSummary{
			TotalDistance: r.Distance,
			TotalDuration: r.Duration,
		},
		Steps:         []models.RouteStep{},
		RouteGeometry: make([][2]float64, 0, len(r.Geometry.Coordinates)),
	}

	for _, leg := range r.Legs {
		for _, s := range leg.Steps {
			data.Steps = append(data.Steps, models.RouteStep{
				Instruction: Instruction(s.Maneuver.Type, s.Maneuver.Modifier, s.Name),
				Distance:    s.Distance,
			})
		}
	}

	// GeoJSON is [lon, lat]; the map wants [lat, lon].
	for _, c := range r.Geometry.Coordinates {
		if len(c) < 2 {
			continue
		}
		data.RouteGeometry = append(data.RouteGeometry, [2]float64{c[1], c[0]})
	}
	return data
}

// Fallback is the straight-line route between two points.
func Fallback(from, to models.LatLon) models.RouteData {
	distance := Haversine(from, to)
	return models.RouteData{
		Summary: models.RouteSummary{
			TotalDistance: distance,
			TotalDuration: distance / fallbackSpeed,
		},
		Steps: []models.RouteStep{
			{Instruction: "Đi thẳng đến điểm đến", Distance: distance},
		},
		RouteGeometry: [][2]float64{
			{from.Lat, from.Lon},
			{to.Lat, to.Lon},
		},
		Fallback: true,
		Message:  FallbackMessage,
	}
}

// Haversine returns the great-circle distance in meters.
func Haversine(a, b models.LatLon) float64 {
	lat1, lat2 := a.Lat*math.Pi/180, b.Lat*math.Pi/180
	dLat := lat2 - lat1
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}
