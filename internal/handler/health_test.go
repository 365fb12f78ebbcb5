// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/olegiv/ocms-render/internal/middleware"
	"github.com/olegiv/ocms-render/internal/model"
	"github.com/olegiv/ocms-render/internal/testutil"
	"github.com/olegiv/ocms-render/internal/version"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func healthRequest(admin bool) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	if admin {
		req = req.WithContext(middleware.WithViewer(req.Context(), model.NewViewer("root", []string{model.RoleAdmin})))
	}
	return req
}

func TestHealth_Public(t *testing.T) {
	h := NewHealthHandler(testutil.TestDB(t), nil, version.Info{Version: "v1.2.3"})

	rec := httptest.NewRecorder()
	h.Health(rec, healthRequest(false))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("status = %v, want healthy", body["status"])
	}
	if _, ok := body["checks"]; ok {
		t.Error("anonymous callers should not see check details")
	}
}

func TestHealth_AdminDetails(t *testing.T) {
	h := NewHealthHandler(testutil.TestDB(t), nil, version.Info{Version: "v1.2.3"})

	rec := httptest.NewRecorder()
	h.Health(rec, healthRequest(true))

	var body HealthStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body.Version.Version != "v1.2.3" {
		t.Errorf("version = %q, want v1.2.3", body.Version.Version)
	}
	if body.Checks["database"].Status != "healthy" {
		t.Errorf("database check = %+v", body.Checks["database"])
	}
	if _, ok := body.Checks["cache"]; ok {
		t.Error("cache check should be absent without a pinger")
	}
}

func TestHealth_CacheDown(t *testing.T) {
	down := pingerFunc(func(context.Context) error { return errors.New("connection refused") })
	h := NewHealthHandler(testutil.TestDB(t), down, version.Info{})

	rec := httptest.NewRecorder()
	h.Health(rec, healthRequest(true))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
	var body HealthStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body.Status != "degraded" {
		t.Errorf("status = %q, want degraded", body.Status)
	}
	if body.Checks["cache"].Message != "connection refused" {
		t.Errorf("cache check = %+v", body.Checks["cache"])
	}
	if body.Version.Version != "dev" {
		t.Errorf("version = %q, want dev", body.Version.Version)
	}
}

func TestLiveness(t *testing.T) {
	h := NewHealthHandler(testutil.TestDB(t), nil, version.Info{})
	rec := httptest.NewRecorder()
	h.Liveness(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}
