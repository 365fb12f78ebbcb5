// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ocms-render/internal/middleware"
	"github.com/olegiv/ocms-render/internal/model"
	"github.com/olegiv/ocms-render/internal/scheduler"
)

// PageCacheInvalidator drops every cached page graph.
type PageCacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// RedirectLoader reloads the redirect rule snapshot.
type RedirectLoader interface {
	Load(ctx context.Context) error
	RuleCount() int
}

// JobRunner lists and triggers scheduled jobs.
type JobRunner interface {
	List() []scheduler.JobInfo
	TriggerNow(ctx context.Context, name string) error
}

// Auditor records administrative actions in the event log.
type Auditor interface {
	LogCacheEvent(ctx context.Context, level, message string, metadata map[string]any) error
	LogSystemEvent(ctx context.Context, level, message string, metadata map[string]any) error
}

// EventLister reads the event log.
type EventLister interface {
	ListEvents(ctx context.Context, limit int) ([]model.Event, error)
}

// AdminDeps are the collaborators of AdminHandler. Jobs, Audit and Events
// may be nil.
type AdminDeps struct {
	Pages     PageCacheInvalidator
	Redirects RedirectLoader
	Jobs      JobRunner
	Audit     Auditor
	Events    EventLister
}

// Event listing bounds.
const (
	defaultEventLimit = 50
	maxEventLimit     = 500
)

// AdminHandler lets administrators flush caches after content changes and
// run maintenance jobs on demand.
type AdminHandler struct {
	AdminDeps
	logger *slog.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(deps AdminDeps, logger *slog.Logger) *AdminHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminHandler{AdminDeps: deps, logger: logger}
}

// RequireAdmin rejects viewers without the admin role.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !middleware.GetViewer(r).IsAdmin() {
			writeJSONError(w, http.StatusForbidden, "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ClearPageCache handles POST /_admin/cache/clear.
func (h *AdminHandler) ClearPageCache(w http.ResponseWriter, r *http.Request) {
	if err := h.Pages.Invalidate(r.Context()); err != nil {
		h.logger.Error("page cache clear failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "cache could not be cleared")
		return
	}
	user := middleware.GetViewer(r).UserName
	h.logger.Info("page cache cleared", "user", user)
	if h.Audit != nil {
		h.audited(h.Audit.LogCacheEvent(r.Context(), model.EventLevelInfo, "Page cache cleared", map[string]any{"user": user}))
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// ReloadRedirects handles POST /_admin/redirects/reload.
func (h *AdminHandler) ReloadRedirects(w http.ResponseWriter, r *http.Request) {
	if err := h.Redirects.Load(r.Context()); err != nil {
		h.logger.Error("redirect reload failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "redirects could not be reloaded")
		return
	}
	rules := h.Redirects.RuleCount()
	if h.Audit != nil {
		h.audited(h.Audit.LogSystemEvent(r.Context(), model.EventLevelInfo, "Redirect rules reloaded", map[string]any{
			"user":  middleware.GetViewer(r).UserName,
			"rules": rules,
		}))
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "rules": rules})
}

// ListJobs handles GET /_admin/jobs.
func (h *AdminHandler) ListJobs(w http.ResponseWriter, _ *http.Request) {
	jobs := []scheduler.JobInfo{}
	if h.Jobs != nil {
		jobs = append(jobs, h.Jobs.List()...)
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
}

// RunJob handles POST /_admin/jobs/{name}/run. The job runs synchronously
// within its configured timeout.
func (h *AdminHandler) RunJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if h.Jobs == nil {
		writeJSONError(w, http.StatusNotFound, "job not found")
		return
	}

	err := h.Jobs.TriggerNow(r.Context(), name)
	switch {
	case errors.Is(err, scheduler.ErrJobNotFound):
		writeJSONError(w, http.StatusNotFound, "job not found")
		return
	case err != nil:
		h.logger.Error("manual job run failed", "job", name, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "job failed")
		return
	}

	if h.Audit != nil {
		h.audited(h.Audit.LogSystemEvent(r.Context(), model.EventLevelInfo, "Scheduled job run manually", map[string]any{
			"user": middleware.GetViewer(r).UserName,
			"job":  name,
		}))
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "job": name})
}

// ListEvents handles GET /_admin/events?limit=N, newest first.
func (h *AdminHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	limit := defaultEventLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeJSONError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = min(n, maxEventLimit)
	}

	events := []model.Event{}
	if h.Events != nil {
		list, err := h.Events.ListEvents(r.Context(), limit)
		if err != nil {
			h.logger.Error("listing events failed", "error", err)
			writeJSONError(w, http.StatusInternalServerError, "events could not be listed")
			return
		}
		events = append(events, list...)
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

func (h *AdminHandler) audited(err error) {
	if err != nil {
		h.logger.Warn("failed to record admin event", "error", err)
	}
}
