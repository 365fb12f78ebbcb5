// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/ocms-render/internal/model"
)

// pageKeyPrefix namespaces resolved page graphs.
const pageKeyPrefix = "page:"

// PageKey builds the cache key of a resolved page graph. The key covers the
// lookup, the status visibility and whether access rules were loaded, so
// differently privileged requests never share an entry.
func PageKey(lookup model.PageLookup, visibility model.Visibility, withAccessRules bool) string {
	target := "url:" + lookup.URLHash
	if lookup.ByID() {
		target = "id:" + lookup.ID.String()
	}
	return fmt.Sprintf("%s%s:%s:acl=%t", pageKeyPrefix, target, visibility, withAccessRules)
}

// PageCache stores resolved page graphs (page, master chain, layout, options
// and access rules). Reads may be stale until the entry expires or
// Invalidate is called.
type PageCache struct {
	pages   *TypedCache[model.Page]
	backend Cacher
	logger  *slog.Logger
}

// NewPageCache creates a page cache on top of a backend.
func NewPageCache(backend Cacher, ttl time.Duration, logger *slog.Logger) *PageCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &PageCache{
		pages:   NewTypedCache[model.Page](backend, ttl),
		backend: backend,
		logger:  logger,
	}
}

// Get returns a cached page graph.
func (c *PageCache) Get(ctx context.Context, key string) (*model.Page, bool) {
	return c.pages.Get(ctx, key)
}

// Put stores a page graph. Failures are logged and otherwise ignored. Graphs
// with a master page cycle cannot be encoded and are not cached.
func (c *PageCache) Put(ctx context.Context, key string, page *model.Page) {
	if page == nil || page.HasMasterCycle() {
		return
	}
	if err := c.pages.Set(ctx, key, page); err != nil {
		c.logger.Warn("failed to cache page", "key", key, "error", err)
	}
}

// Invalidate drops every cached page graph.
func (c *PageCache) Invalidate(ctx context.Context) error {
	if err := c.backend.DeleteByPrefix(ctx, pageKeyPrefix); err != nil {
		return fmt.Errorf("invalidating page cache: %w", err)
	}
	return nil
}
