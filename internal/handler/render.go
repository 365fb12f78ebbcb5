// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler provides the HTTP surface of the render service: render
// trees by URL or page ID, health, and cache administration.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/olegiv/ocms-render/internal/compose"
	"github.com/olegiv/ocms-render/internal/middleware"
	"github.com/olegiv/ocms-render/internal/model"
	"github.com/olegiv/ocms-render/internal/options"
	"github.com/olegiv/ocms-render/internal/service"
)

// PageRenderer renders one request into a tree or a redirect.
type PageRenderer interface {
	Render(ctx context.Context, req model.RenderRequest, hook compose.RetrievalHook) (*service.Result, error)
}

// RenderResponse is the JSON document handed to the page renderer.
type RenderResponse struct {
	PageID     uuid.UUID     `json:"page_id"`
	URL        string        `json:"url"`
	Title      string        `json:"title"`
	LayoutPath string        `json:"layout_path"`
	Preview    bool          `json:"preview"`
	Options    options.Set   `json:"options"`
	Root       *compose.Node `json:"root"`
}

// RenderHandler serves composed page trees.
type RenderHandler struct {
	renderer PageRenderer
	hook     compose.RetrievalHook
	logger   *slog.Logger
	now      func() time.Time
}

// NewRenderHandler creates a RenderHandler. hook may be nil.
func NewRenderHandler(renderer PageRenderer, hook compose.RetrievalHook, logger *slog.Logger) *RenderHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RenderHandler{
		renderer: renderer,
		hook:     hook,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ByURL handles GET /* and renders the page stored under the request path.
func (h *RenderHandler) ByURL(w http.ResponseWriter, r *http.Request) {
	req, ok := h.request(w, r)
	if !ok {
		return
	}
	req.URL = r.URL.Path
	h.serve(w, r, req)
}

// ByID handles GET /_page/{id}.
func (h *RenderHandler) ByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid page id")
		return
	}
	req, ok := h.request(w, r)
	if !ok {
		return
	}
	req.PageID = id
	h.serve(w, r, req)
}

// request builds the viewer and preview part of a render request.
func (h *RenderHandler) request(w http.ResponseWriter, r *http.Request) (model.RenderRequest, bool) {
	req := model.RenderRequest{
		Viewer: middleware.GetViewer(r),
		Now:    h.now(),
	}
	if raw := r.URL.Query().Get("preview"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid preview id")
			return req, false
		}
		req.PreviewContentID = id
	}
	return req, true
}

func (h *RenderHandler) serve(w http.ResponseWriter, r *http.Request, req model.RenderRequest) {
	res, err := h.renderer.Render(r.Context(), req, h.hook)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if res.IsRedirect() {
		http.Redirect(w, r, withQuery(res.RedirectURL, r.URL.RawQuery), res.RedirectStatus)
		return
	}

	root := res.Tree.Root
	writeJSON(w, http.StatusOK, RenderResponse{
		PageID:     root.PageID,
		URL:        root.URL,
		Title:      root.Title,
		LayoutPath: res.Tree.LayoutPath(),
		Preview:    req.IsPreview(),
		Options:    res.Tree.Options(),
		Root:       root,
	})
}

// writeError maps render errors to HTTP status codes. Details of server
// errors are logged, not returned.
func (h *RenderHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, compose.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, "page not found")
	case errors.Is(err, compose.ErrAccessDenied):
		writeJSONError(w, http.StatusForbidden, "access denied")
	case errors.Is(err, context.Canceled):
		h.logger.Debug("render canceled", "path", r.URL.Path)
	default:
		h.logger.Error("render failed", "path", r.URL.Path, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "page could not be rendered")
	}
}

// withQuery appends the request query to a redirect target that has none.
func withQuery(target, rawQuery string) string {
	if rawQuery == "" || strings.Contains(target, "?") {
		return target
	}
	return target + "?" + rawQuery
}
