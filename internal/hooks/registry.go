// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package hooks holds prioritized page-retrieval listeners and exposes them
// as a single compose.RetrievalHook.
package hooks

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/olegiv/ocms-render/internal/compose"
	"github.com/olegiv/ocms-render/internal/model"
)

// Handler wraps a retrieval listener with metadata.
type Handler struct {
	Name     string           // Name of the handler for debugging
	Priority int              // Lower priority runs first (default: 0)
	Fn       compose.HookFunc // The actual handler function
}

// Registry manages retrieval handlers. It implements compose.RetrievalHook.
type Registry struct {
	handlers []Handler
	logger   *slog.Logger
	mu       sync.RWMutex
}

var _ compose.RetrievalHook = (*Registry)(nil)

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{logger: logger}
}

// Register adds a handler. Handlers with equal priority keep registration
// order.
func (r *Registry) Register(h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	handlers := append(slices.Clone(r.handlers), h)
	slices.SortStableFunc(handlers, func(a, b Handler) int { return a.Priority - b.Priority })
	r.handlers = handlers

	r.logger.Debug("retrieval hook registered", "handler", h.Name, "priority", h.Priority)
}

// OnPageRetrieved runs handlers in priority order. The first handler asking
// for not-found wins and later handlers are not called.
func (r *Registry) OnPageRetrieved(ctx context.Context, tree *compose.Tree, page *model.Page) compose.HookResult {
	r.mu.RLock()
	handlers := r.handlers
	r.mu.RUnlock()

	for _, h := range handlers {
		if res := h.Fn(ctx, tree, page); res == compose.HookForceNotFound {
			r.logger.Debug("page hidden by retrieval hook",
				"page_id", page.ID,
				"handler", h.Name,
			)
			return res
		}
	}
	return compose.HookNormal
}

// HideArchived hides archived pages from viewers who cannot manage content.
func HideArchived(_ context.Context, tree *compose.Tree, page *model.Page) compose.HookResult {
	if page.IsArchived && !tree.Root.CanManageContent {
		return compose.HookForceNotFound
	}
	return compose.HookNormal
}
