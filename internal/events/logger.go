// Vietmap - Historical Map Data Service for Vietnam
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vietmap

package events

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"
)

// WatermillLogger adapts zerolog to watermill.LoggerAdapter.
type WatermillLogger struct {
	log    zerolog.Logger
	fields watermill.LogFields
}

// NewWatermillLogger wraps l.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewWatermillLogger(l zerolog.Logger) *WatermillLogger {
	return &WatermillLogger{log: l}
}

func (w *WatermillLogger) Error(msg string, err error, fields watermill.LogFields) {
	w.emit(w.log.Error().Err(err), msg, fields)
}

func (w *WatermillLogger) Info(msg string, fields watermill.LogFields) {
	w.emit(w.log.Info(), msg, fields)
}

// Debug logs at debug level. gochannel is chatty here, one line per message.
func (w *WatermillLogger) Debug(msg string, fields watermill.LogFields) {
	w.emit(w.log.Debug(), msg, fields)
}

func (w *WatermillLogger) Trace(msg string, fields watermill.LogFields) {
	w.emit(w.log.Trace(), msg, fields)
}

func (w *WatermillLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &WatermillLogger{log: w.log, fields: w.fields.Add(fields)}
}

func (w *WatermillLogger) emit(e *zerolog.Event, msg string, fields watermill.LogFields) {
	for k, v := range w.fields {
		e = e.Interface(k, v)
	}
	for k, v := range fields {
		e = e.Interface(k, v)
	}
	e.Msg(msg)
}
