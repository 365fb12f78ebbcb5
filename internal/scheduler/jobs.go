// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/ocms-render/internal/metrics"
	"github.com/olegiv/ocms-render/internal/store"
)

// Job names.
const (
	JobRedirectReload = "redirects.reload"
	JobCacheWarmup    = "cache.warmup"
	JobEventCleanup   = "events.cleanup"
)

// RedirectReloader replaces the redirect rule snapshot.
type RedirectReloader interface {
	Load(ctx context.Context) error
	RuleCount() int
}

// PublishedPageLister lists pages worth warming.
type PublishedPageLister interface {
	ListPublishedPages(ctx context.Context, limit int) ([]store.PageRef, error)
}

// PageWarmer loads pages into the page cache.
type PageWarmer interface {
	Warm(ctx context.Context, urls []string) int
}

// EventCleaner deletes old event log entries.
type EventCleaner interface {
	DeleteOldEvents(ctx context.Context, olderThan time.Duration) (int64, error)
}

// RedirectReloadJob reloads redirect rules and publishes the rule count.
func RedirectReloadJob(r RedirectReloader, m *metrics.Metrics) JobFunc {
	return func(ctx context.Context) error {
		if err := r.Load(ctx); err != nil {
			return err
		}
		m.SetRedirectRules(r.RuleCount())
		return nil
	}
}

// CacheWarmupJob resolves up to limit recently updated published pages so
// anonymous visitors hit a warm cache.
func CacheWarmupJob(pages PublishedPageLister, warmer PageWarmer, limit int, logger *slog.Logger) JobFunc {
	return func(ctx context.Context) error {
		refs, err := pages.ListPublishedPages(ctx, limit)
		if err != nil {
			return fmt.Errorf("listing published pages: %w", err)
		}
		urls := make([]string, 0, len(refs))
		for _, ref := range refs {
			urls = append(urls, ref.URL)
		}
		warmed := warmer.Warm(ctx, urls)
		logger.Info("page cache warmed", "category", "cache", "pages", warmed, "candidates", len(urls))
		return nil
	}
}

// EventCleanupJob deletes events older than retention.
func EventCleanupJob(events EventCleaner, retention time.Duration, logger *slog.Logger) JobFunc {
	return func(ctx context.Context) error {
		n, err := events.DeleteOldEvents(ctx, retention)
		if err != nil {
			return err
		}
		if n > 0 {
			logger.Info("old events deleted", "category", "system", "count", n, "retention", retention)
		}
		return nil
	}
}
