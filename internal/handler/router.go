// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/ocms-render/internal/metrics"
	"github.com/olegiv/ocms-render/internal/middleware"
)

// RouterConfig collects the handlers and middleware dependencies of the
// HTTP surface. Sessions, Metrics, PreviewLimiter and Admin may be nil.
type RouterConfig struct {
	Render         *RenderHandler
	Health         *HealthHandler
	Admin          *AdminHandler
	Sessions       *scs.SessionManager
	Metrics        *metrics.Metrics
	PreviewLimiter *middleware.PreviewRateLimiter
	IsDevelopment  bool
	TrustProxy     bool
	RequestTimeout time.Duration
}

// NewRouter builds the chi router.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	if cfg.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics(cfg.Metrics))
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(chimw.Timeout(cfg.RequestTimeout))

	securityConfig := middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment)
	securityConfig.ExcludePaths = []string{"/metrics"}
	r.Use(middleware.SecurityHeaders(securityConfig))

	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics.Handler())
	}
	r.Get("/health/live", cfg.Health.Liveness)

	r.Group(func(r chi.Router) {
		if cfg.Sessions != nil {
			r.Use(cfg.Sessions.LoadAndSave)
			r.Use(middleware.LoadViewer(cfg.Sessions))
		}
		r.Get("/health", cfg.Health.Health)

		if cfg.Admin != nil {
			r.Route("/_admin", func(r chi.Router) {
				r.Use(RequireAdmin)
				r.Post("/cache/clear", cfg.Admin.ClearPageCache)
				r.Post("/redirects/reload", cfg.Admin.ReloadRedirects)
				r.Get("/jobs", cfg.Admin.ListJobs)
				r.Post("/jobs/{name}/run", cfg.Admin.RunJob)
				r.Get("/events", cfg.Admin.ListEvents)
			})
		}

		r.Group(func(r chi.Router) {
			r.Use(middleware.PrivateNoStore)
			if cfg.PreviewLimiter != nil {
				r.Use(cfg.PreviewLimiter.Middleware())
			}
			r.Get("/_page/{id}", cfg.Render.ByID)
			r.Get("/*", cfg.Render.ByURL)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSONError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}
