// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocms-render/internal/middleware"
	"github.com/olegiv/ocms-render/internal/model"
	"github.com/olegiv/ocms-render/internal/scheduler"
	"github.com/olegiv/ocms-render/internal/testutil"
	"github.com/olegiv/ocms-render/internal/version"
)

type fakeInvalidator struct {
	calls int
	err   error
}

func (f *fakeInvalidator) Invalidate(context.Context) error {
	f.calls++
	return f.err
}

type fakeLoader struct {
	loads int
	rules int
	err   error
}

func (f *fakeLoader) Load(context.Context) error {
	f.loads++
	return f.err
}

func (f *fakeLoader) RuleCount() int { return f.rules }

type auditEntry struct {
	category, message string
	metadata          map[string]any
}

type fakeAuditor struct {
	entries []auditEntry
}

func (f *fakeAuditor) LogCacheEvent(_ context.Context, _, message string, metadata map[string]any) error {
	f.entries = append(f.entries, auditEntry{model.EventCategoryCache, message, metadata})
	return nil
}

func (f *fakeAuditor) LogSystemEvent(_ context.Context, _, message string, metadata map[string]any) error {
	f.entries = append(f.entries, auditEntry{model.EventCategorySystem, message, metadata})
	return nil
}

func adminRequest(method, target string, roles ...string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	return req.WithContext(middleware.WithViewer(req.Context(), model.NewViewer("someone", roles)))
}

func TestAdmin_ClearPageCache(t *testing.T) {
	inv := &fakeInvalidator{}
	audit := &fakeAuditor{}
	h := NewAdminHandler(AdminDeps{Pages: inv, Redirects: &fakeLoader{}, Audit: audit}, testutil.TestLoggerSilent())
	handler := RequireAdmin(http.HandlerFunc(h.ClearPageCache))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, adminRequest(http.MethodPost, "/_admin/cache/clear", model.RoleEditor))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, 0, inv.calls)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, adminRequest(http.MethodPost, "/_admin/cache/clear", model.RoleAdmin))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, inv.calls)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, model.EventCategoryCache, audit.entries[0].category)
	assert.Equal(t, "someone", audit.entries[0].metadata["user"])

	inv.err = errors.New("redis down")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, adminRequest(http.MethodPost, "/_admin/cache/clear", model.RoleAdmin))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAdmin_ReloadRedirects(t *testing.T) {
	loader := &fakeLoader{rules: 3}
	h := NewAdminHandler(AdminDeps{Pages: &fakeInvalidator{}, Redirects: loader}, testutil.TestLoggerSilent())

	rec := httptest.NewRecorder()
	h.ReloadRedirects(rec, adminRequest(http.MethodPost, "/_admin/redirects/reload", model.RoleAdmin))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, loader.loads)
	assert.JSONEq(t, `{"success":true,"rules":3}`, rec.Body.String())
}

func TestRouter_AdminRequiresSession(t *testing.T) {
	router := NewRouter(RouterConfig{
		Render:   NewRenderHandler(&fakeRenderer{res: aboutResult()}, nil, testutil.TestLoggerSilent()),
		Health:   NewHealthHandler(testutil.TestDB(t), nil, version.Info{}),
		Admin:    NewAdminHandler(AdminDeps{Pages: &fakeInvalidator{}, Redirects: &fakeLoader{}}, testutil.TestLoggerSilent()),
		Sessions: scs.New(),
	})

	rec := serve(t, router, http.MethodPost, "/_admin/cache/clear")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdmin_Jobs(t *testing.T) {
	sched := scheduler.New(testutil.TestLoggerSilent())
	runs := 0
	require.NoError(t, sched.Add("redirects.reload", "Reload redirect rules", "@every 5m", time.Second, func(context.Context) error {
		runs++
		return nil
	}))
	require.NoError(t, sched.Add("broken", "Always fails", "@hourly", time.Second, func(context.Context) error {
		return errors.New("boom")
	}))

	audit := &fakeAuditor{}
	sessions := scs.New()
	router := NewRouter(RouterConfig{
		Render:   NewRenderHandler(&fakeRenderer{res: aboutResult()}, nil, testutil.TestLoggerSilent()),
		Health:   NewHealthHandler(testutil.TestDB(t), nil, version.Info{}),
		Admin:    NewAdminHandler(AdminDeps{Pages: &fakeInvalidator{}, Redirects: &fakeLoader{}, Jobs: sched, Audit: audit}, testutil.TestLoggerSilent()),
		Sessions: sessions,
	})
	cookie := loginCookie(t, sessions, "root", model.RoleAdmin)

	do := func(method, target string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, target, nil)
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := do(http.MethodGet, "/_admin/jobs")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"broken"`)
	assert.Contains(t, rec.Body.String(), `"schedule":"@every 5m"`)

	rec = do(http.MethodPost, "/_admin/jobs/redirects.reload/run")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"job":"redirects.reload"}`, rec.Body.String())
	assert.Equal(t, 1, runs)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, "redirects.reload", audit.entries[0].metadata["job"])

	assert.Equal(t, http.StatusInternalServerError, do(http.MethodPost, "/_admin/jobs/broken/run").Code)
	assert.Equal(t, http.StatusNotFound, do(http.MethodPost, "/_admin/jobs/missing/run").Code)
}

// loginCookie signs a user in on sm and returns the session cookie.
func loginCookie(t *testing.T, sm *scs.SessionManager, user string, roles string) *http.Cookie {
	t.Helper()
	login := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sm.Put(r.Context(), middleware.SessionKeyUserName, user)
		sm.Put(r.Context(), middleware.SessionKeyUserRoles, roles)
		w.WriteHeader(http.StatusNoContent)
	}))
	rec := httptest.NewRecorder()
	login.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies[0]
}

type fakeEvents struct {
	limit int
	err   error
}

func (f *fakeEvents) ListEvents(_ context.Context, limit int) ([]model.Event, error) {
	f.limit = limit
	if f.err != nil {
		return nil, f.err
	}
	return []model.Event{{ID: 7, Level: model.EventLevelWarning, Category: model.EventCategoryCache, Message: "Page cache cleared"}}, nil
}

func TestAdmin_ListEvents(t *testing.T) {
	events := &fakeEvents{}
	h := NewAdminHandler(AdminDeps{Pages: &fakeInvalidator{}, Redirects: &fakeLoader{}, Events: events}, testutil.TestLoggerSilent())

	tests := []struct {
		name      string
		query     string
		wantCode  int
		wantLimit int
	}{
		{name: "default limit", query: "", wantCode: http.StatusOK, wantLimit: defaultEventLimit},
		{name: "explicit limit", query: "?limit=5", wantCode: http.StatusOK, wantLimit: 5},
		{name: "capped limit", query: "?limit=100000", wantCode: http.StatusOK, wantLimit: maxEventLimit},
		{name: "invalid limit", query: "?limit=-1", wantCode: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events.limit = 0
			rec := httptest.NewRecorder()
			h.ListEvents(rec, adminRequest(http.MethodGet, "/_admin/events"+tt.query, model.RoleAdmin))
			require.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode == http.StatusOK {
				assert.Equal(t, tt.wantLimit, events.limit)
				assert.Contains(t, rec.Body.String(), `"message":"Page cache cleared"`)
			}
		})
	}

	events.err = errors.New("db locked")
	rec := httptest.NewRecorder()
	h.ListEvents(rec, adminRequest(http.MethodGet, "/_admin/events", model.RoleAdmin))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
