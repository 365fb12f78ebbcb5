// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service resolves and composes pages for render requests.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/olegiv/ocms-render/internal/cache"
	"github.com/olegiv/ocms-render/internal/compose"
	"github.com/olegiv/ocms-render/internal/metrics"
	"github.com/olegiv/ocms-render/internal/model"
	"github.com/olegiv/ocms-render/internal/util"
)

// PageRepository loads page graphs and their content slots.
type PageRepository interface {
	// ResolvePage returns (nil, nil) when no page matches.
	ResolvePage(ctx context.Context, lookup model.PageLookup, visibility model.Visibility, withAccessRules bool) (*model.Page, error)
	FetchPageContents(ctx context.Context, pageIDs []uuid.UUID, filter model.ContentFilter) ([]model.PageContent, error)
}

// PageCache caches resolved page graphs. Implementations are best effort.
type PageCache interface {
	Get(ctx context.Context, key string) (*model.Page, bool)
	Put(ctx context.Context, key string, page *model.Page)
}

// PageResolver finds the page a request asks for.
type PageResolver struct {
	repo          PageRepository
	cache         PageCache
	accessControl bool
	metrics       *metrics.Metrics
	logger        *slog.Logger
}

// NewPageResolver creates a PageResolver. pageCache and m may be nil.
func NewPageResolver(repo PageRepository, pageCache PageCache, accessControl bool, m *metrics.Metrics, logger *slog.Logger) *PageResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &PageResolver{
		repo:          repo,
		cache:         pageCache,
		accessControl: accessControl,
		metrics:       m,
		logger:        logger,
	}
}

// LookupFor returns the lookup key of a request: its page ID when set,
// else the hash of its normalized URL.
func LookupFor(req model.RenderRequest) model.PageLookup {
	if req.PageID != uuid.Nil {
		return model.PageLookup{ID: req.PageID}
	}
	return model.PageLookup{URLHash: util.URLHash(req.URL)}
}

// Resolve returns the page graph for the request, or compose.ErrNotFound
// when no page visible to the requester matches. Unauthenticated requests
// without a preview only see published pages. Broken references in the
// stored graph are reported as configuration errors.
func (r *PageResolver) Resolve(ctx context.Context, req model.RenderRequest) (*model.Page, error) {
	lookup := LookupFor(req)
	visibility := req.Visibility()
	key := cache.PageKey(lookup, visibility, r.accessControl)

	if r.cache != nil {
		if page, ok := r.cache.Get(ctx, key); ok {
			r.metrics.RecordPageCache(true)
			return page, nil
		}
		r.metrics.RecordPageCache(false)
	}

	page, err := r.repo.ResolvePage(ctx, lookup, visibility, r.accessControl)
	switch {
	case errors.Is(err, model.ErrMissingMaster), errors.Is(err, model.ErrMissingLayout):
		return nil, &compose.ConfigurationError{
			PageID: req.PageID,
			URL:    req.URL,
			Reason: "broken template reference",
			Err:    err,
		}
	case err != nil:
		return nil, fmt.Errorf("resolving page: %w", err)
	case page == nil:
		return nil, compose.ErrNotFound
	}

	if r.cache != nil {
		r.cache.Put(ctx, key, page)
	}
	return page, nil
}

// Warm resolves the given URLs as an anonymous viewer so their page graphs
// land in the cache. It returns how many pages were resolved.
func (r *PageResolver) Warm(ctx context.Context, urls []string) int {
	n := 0
	for _, u := range urls {
		if ctx.Err() != nil {
			break
		}
		if _, err := r.Resolve(ctx, model.RenderRequest{URL: u}); err != nil {
			r.logger.Debug("cache warmup skipped page", "url", u, "error", err)
			continue
		}
		n++
	}
	return n
}
