// Vietmap - Historical Map Data Service for Vietnam
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vietmap

package fetch

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrAllAttemptsFailed wraps the joined errors of a race nobody won.
	ErrAllAttemptsFailed = errors.New("all fetch attempts failed")

	// ErrNoAttempts is returned by a race started without attempts.
	ErrNoAttempts = errors.New("no fetch attempts")
)

// Attempt is one strategy in a race.
type Attempt[T any] struct {
	Name string
	Run  func(ctx context.Context) (T, error)
}

// Race starts every attempt at once and returns the first success. The
// context passed to the attempts is cancelled as soon as one succeeds, so
// losers are aborted rather than left running. When every attempt fails the
// error wraps ErrAllAttemptsFailed and each attempt's error.
func Race[T any](ctx context.Context, attempts ...Attempt[T]) (T, error) {
	v, _, err := race(ctx, attempts)
	return v, err
}

// race is Race that also reports the index of the winner, or -1.
func race[T any](ctx context.Context, attempts []Attempt[T]) (T, int, error) {
	var zero T
	if len(attempts) == 0 {
		return zero, -1, ErrNoAttempts
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type outcome struct {
		index int
		value T
		err   error
	}

	// Buffered so losers can always deliver and exit after we return.
	results := make(chan outcome, len(attempts))
	for i, a := range attempts {
		go func() {
			v, err := a.Run(ctx)
			results <- outcome{index: i, value: v, err: err}
		}()
	}

	errs := make([]error, len(attempts))
	for range attempts {
		select {
		case o := <-results:
			if o.err == nil {
				return o.value, o.index, nil
			}
			errs[o.index] = fmt.Errorf("%s: %w", attempts[o.index].Name, o.err)
		case <-ctx.Done():
			return zero, -1, fmt.Errorf("%w: %w", ErrAllAttemptsFailed, ctx.Err())
		}
	}

	return zero, -1, fmt.Errorf("%w: %w", ErrAllAttemptsFailed, errors.Join(errs...))
}
