// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"net/http"
	"runtime"
	"time"

	"github.com/olegiv/ocms-render/internal/middleware"
	"github.com/olegiv/ocms-render/internal/version"
)

// Pinger is a dependency whose connectivity is reported by /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	db        *sql.DB
	cache     Pinger
	version   version.Info
	startTime time.Time
}

// NewHealthHandler creates a new health handler. cache may be nil.
func NewHealthHandler(db *sql.DB, cache Pinger, info version.Info) *HealthHandler {
	return &HealthHandler{
		db:        db,
		cache:     cache,
		version:   info.OrDev(),
		startTime: time.Now(),
	}
}

// HealthStatusPublic is the minimal health response for anonymous callers.
type HealthStatusPublic struct {
	Status string `json:"status"`
}

// HealthStatus is the detailed health response for administrators.
type HealthStatus struct {
	Status       string           `json:"status"`
	Timestamp    time.Time        `json:"timestamp"`
	Uptime       string           `json:"uptime"`
	Version      version.Info     `json:"version"`
	Checks       map[string]Check `json:"checks"`
	GoVersion    string           `json:"go_version"`
	NumGoroutine int              `json:"num_goroutines"`
}

// Check represents a single health check result.
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// Health handles GET /health. Administrators get check details.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]Check{"database": h.check(ctx, h.db.PingContext)}
	if h.cache != nil {
		checks["cache"] = h.check(ctx, h.cache.Ping)
	}

	overall := "healthy"
	code := http.StatusOK
	for _, c := range checks {
		if c.Status != "healthy" {
			overall = "degraded"
			code = http.StatusServiceUnavailable
		}
	}

	if !middleware.GetViewer(r).IsAdmin() {
		writeJSON(w, code, HealthStatusPublic{Status: overall})
		return
	}

	writeJSON(w, code, HealthStatus{
		Status:       overall,
		Timestamp:    time.Now().UTC(),
		Uptime:       time.Since(h.startTime).Round(time.Second).String(),
		Version:      h.version,
		Checks:       checks,
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
	})
}

// Liveness handles GET /health/live.
func (h *HealthHandler) Liveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

func (h *HealthHandler) check(ctx context.Context, ping func(context.Context) error) Check {
	start := time.Now()
	err := ping(ctx)
	latency := time.Since(start).String()
	if err != nil {
		return Check{Status: "unhealthy", Message: err.Error(), Latency: latency}
	}
	return Check{Status: "healthy", Latency: latency}
}
