// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/olegiv/ocms-render/internal/model"
)

// discardHandler is a slog.Handler that discards all logs.
type discardHandler struct{}

func (h discardHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (h discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return h }
func (h discardHandler) WithGroup(string) slog.Handler             { return h }

type recordingWriter struct {
	mu     sync.Mutex
	events []model.Event
}

func (w *recordingWriter) CreateEvent(_ context.Context, e model.Event) (model.Event, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.events = append(w.events, e)
	return e, nil
}

func (w *recordingWriter) all() []model.Event {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]model.Event(nil), w.events...)
}

func TestEventLogHandler_ErrorLevel(t *testing.T) {
	w := &recordingWriter{}
	logger := slog.New(NewEventLogHandler(discardHandler{}, w))

	logger.Error("database connection failed", "host", "localhost", "port", 5432)

	events := w.all()
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	e := events[0]
	if e.Level != model.EventLevelError {
		t.Errorf("Level = %q, want %q", e.Level, model.EventLevelError)
	}
	if e.Category != model.EventCategorySystem {
		t.Errorf("Category = %q, want %q", e.Category, model.EventCategorySystem)
	}
	var meta map[string]string
	if err := json.Unmarshal([]byte(e.Metadata), &meta); err != nil {
		t.Fatalf("metadata is not JSON: %v", err)
	}
	if meta["host"] != "localhost" || meta["port"] != "5432" {
		t.Errorf("metadata = %v", meta)
	}
	if e.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set from the record time")
	}
}

func TestEventLogHandler_BelowThreshold(t *testing.T) {
	w := &recordingWriter{}
	logger := slog.New(NewEventLogHandler(discardHandler{}, w))

	logger.Info("page rendered")
	logger.Debug("cache hit")

	if n := len(w.all()); n != 0 {
		t.Errorf("got %d events, want 0", n)
	}
}

func TestEventLogHandler_CustomLevel(t *testing.T) {
	w := &recordingWriter{}
	logger := slog.New(NewEventLogHandlerWithLevel(discardHandler{}, w, slog.LevelInfo))

	logger.Info("page rendered")

	events := w.all()
	if len(events) != 1 || events[0].Level != model.EventLevelInfo {
		t.Errorf("events = %+v, want one info event", events)
	}
}

func TestEventLogHandler_Category(t *testing.T) {
	tests := []struct {
		msg   string
		attrs []any
		want  string
	}{
		{"redirect rules reload failed", nil, model.EventCategoryRedirect},
		{"failed to cache page", nil, model.EventCategoryCache},
		{"master page cycle detected", nil, model.EventCategoryConfig},
		{"content resolution failed", nil, model.EventCategoryRender},
		{"disk full", nil, model.EventCategorySystem},
		{"anything", []any{"category", "custom"}, "custom"},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			w := &recordingWriter{}
			slog.New(NewEventLogHandler(discardHandler{}, w)).Warn(tt.msg, tt.attrs...)

			events := w.all()
			if len(events) != 1 {
				t.Fatalf("got %d events, want 1", len(events))
			}
			if events[0].Category != tt.want {
				t.Errorf("Category = %q, want %q", events[0].Category, tt.want)
			}
			if strings.Contains(events[0].Metadata, `"category"`) {
				t.Errorf("metadata should not repeat the category: %s", events[0].Metadata)
			}
		})
	}
}

func TestEventLogHandler_WithAttrs(t *testing.T) {
	w := &recordingWriter{}
	logger := slog.New(NewEventLogHandler(discardHandler{}, w)).With("component", "scheduler")

	logger.Warn("job failed", "job", "warmup")

	events := w.all()
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	var meta map[string]string
	if err := json.Unmarshal([]byte(events[0].Metadata), &meta); err != nil {
		t.Fatalf("metadata is not JSON: %v", err)
	}
	if meta["component"] != "scheduler" || meta["job"] != "warmup" {
		t.Errorf("metadata = %v", meta)
	}
}

func TestEventLogHandler_EscapesMetadata(t *testing.T) {
	w := &recordingWriter{}
	slog.New(NewEventLogHandler(discardHandler{}, w)).Error("oops", "detail", "line1\n\"quoted\"")

	var meta map[string]string
	if err := json.Unmarshal([]byte(w.all()[0].Metadata), &meta); err != nil {
		t.Fatalf("metadata is not JSON: %v", err)
	}
	if meta["detail"] != "line1\n\"quoted\"" {
		t.Errorf("detail = %q", meta["detail"])
	}
}

func TestEventLogHandler_NoAttrs(t *testing.T) {
	w := &recordingWriter{}
	slog.New(NewEventLogHandler(discardHandler{}, w)).Warn("plain")

	if got := w.all()[0].Metadata; got != "{}" {
		t.Errorf("Metadata = %q, want {}", got)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		" error ": slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	w := &recordingWriter{}
	logger := NewLogger(&buf, slog.LevelInfo, w)

	logger.Debug("hidden")
	logger.Warn("cache backend unavailable")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug record should be filtered")
	}
	if !strings.Contains(out, "cache backend unavailable") {
		t.Errorf("output = %q", out)
	}
	if len(w.all()) != 1 {
		t.Errorf("got %d events, want 1", len(w.all()))
	}
}
