// Vietmap - Historical Map Data Service for Vietnam
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vietmap

package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

const (
	// maxBodyBytes caps how much of a response is read.
	maxBodyBytes = 32 << 20
	// maxErrorExcerpt caps the body excerpt carried by StatusError.
	maxErrorExcerpt = 256
)

// ErrEmptyBody is returned for a 2xx response without a body.
var ErrEmptyBody = errors.New("empty response body")

// StatusError is a non-2xx, non-404 response.
type StatusError struct {
	URL     string
	Code    int
	Excerpt string
}

func (e *StatusError) Error() string {
	if e.Excerpt == "" {
		return fmt.Sprintf("GET %s: status %d", e.URL, e.Code)
	}
	return fmt.Sprintf("GET %s: status %d: %s", e.URL, e.Code, e.Excerpt)
}

// GetJSON performs one GET bounded by timeout and decodes the JSON body
// into generic values (objects, arrays, float64 numbers). A 404 returns
// (nil, nil): the resource has no data, which is not a failure.
func GetJSON(ctx context.Context, hc *http.Client, url string, timeout time.Duration) (any, error) {
	var payload any
	found, err := GetInto(ctx, hc, url, timeout, &payload)
	if err != nil || !found {
		return nil, err
	}
	return payload, nil
}

// GetInto is GetJSON for a typed destination. It reports false, with a nil
// error, when the server answered 404.
func GetInto(ctx context.Context, hc *http.Client, url string, timeout time.Duration, dst any) (bool, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		return false, fmt.Errorf("GET %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body := io.LimitReader(resp.Body, maxBodyBytes)

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, body)
		return false, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, _ := io.ReadAll(io.LimitReader(body, maxErrorExcerpt))
		return false, &StatusError{
			URL:     url,
			Code:    resp.StatusCode,
			Excerpt: strings.TrimSpace(string(excerpt)),
		}
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", url, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return false, ErrEmptyBody
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", url, err)
	}
	return true, nil
}

// userAgentTransport sets a User-Agent on every outbound request.
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.userAgent)
	}
	return t.base.RoundTrip(req)
}

// NewHTTPClient returns a client that identifies itself with userAgent.
// Timeouts are applied per request by GetJSON, not on the client.
func NewHTTPClient(userAgent string) *http.Client {
	return &http.Client{
		Transport: &userAgentTransport{
			base:      http.DefaultTransport,
			userAgent: userAgent,
		},
	}
}
