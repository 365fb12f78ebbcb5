// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package redirect resolves URLs that have no page to redirect targets using
// stored exact and wildcard rules.
package redirect

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/olegiv/ocms-render/internal/model"
	"github.com/olegiv/ocms-render/internal/util"
)

// DefaultTTL is how long a loaded rule snapshot is used before reloading.
const DefaultTTL = 5 * time.Minute

// Source lists the enabled redirect rules.
type Source interface {
	ListEnabledRedirects(ctx context.Context) ([]model.Redirect, error)
}

// Resolver matches URLs against a cached snapshot of redirect rules.
type Resolver struct {
	src    Source
	logger *slog.Logger
	ttl    time.Duration

	mu       sync.RWMutex
	rules    []model.Redirect
	lastLoad time.Time
}

// NewResolver creates a resolver. Rules are loaded lazily on first use.
func NewResolver(src Source, ttl time.Duration, logger *slog.Logger) *Resolver {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{src: src, ttl: ttl, logger: logger}
}

// Load replaces the rule snapshot with the rules currently stored.
func (r *Resolver) Load(ctx context.Context) error {
	rules, err := r.src.ListEnabledRedirects(ctx)
	if err != nil {
		return fmt.Errorf("loading redirects: %w", err)
	}

	r.mu.Lock()
	r.rules = rules
	r.lastLoad = time.Now()
	r.mu.Unlock()

	r.logger.Debug("redirects loaded", "count", len(rules))
	return nil
}

// Invalidate forces a reload on next lookup.
func (r *Resolver) Invalidate() {
	r.mu.Lock()
	r.lastLoad = time.Time{}
	r.mu.Unlock()
}

// RuleCount returns the number of rules in the current snapshot.
func (r *Resolver) RuleCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rules)
}

// snapshot returns the cached rules, reloading them when the TTL has passed.
// A failed reload keeps serving the previous snapshot.
func (r *Resolver) snapshot(ctx context.Context) []model.Redirect {
	r.mu.RLock()
	if time.Since(r.lastLoad) < r.ttl {
		rules := r.rules
		r.mu.RUnlock()
		return rules
	}
	r.mu.RUnlock()

	if err := r.Load(ctx); err != nil {
		r.logger.Error("failed to load redirects", "error", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rules
}

// Resolve returns the redirect target and HTTP status for url, if any rule
// matches. Rules are tried in stored order; a rule pointing at the requested
// URL itself is skipped.
func (r *Resolver) Resolve(ctx context.Context, url string) (string, int, bool) {
	path := util.NormalizeURL(url)
	for _, rd := range r.snapshot(ctx) {
		matched, captures := matchPathWithCaptures(path, rd.SourcePath, rd.IsWildcard)
		if !matched {
			continue
		}
		target := buildTargetURL(rd, captures)
		if isLocal(target) && util.NormalizeURL(target) == path {
			continue
		}

		status := rd.StatusCode
		if status == 0 {
			status = http.StatusMovedPermanently
		}
		r.logger.Debug("redirect matched",
			"source", path,
			"target", target,
			"status", status,
			"wildcard", rd.IsWildcard,
		)
		return target, status, true
	}
	return "", 0, false
}

func isLocal(target string) bool {
	return !strings.Contains(target, "://")
}

// matchPathWithCaptures matches a normalized request path against a source
// pattern and returns captured wildcard segments. Exact patterns are compared
// in normalized form. In wildcard patterns:
//   - "*" captures exactly one path segment
//   - "**" captures zero or more path segments (joined with "/")
func matchPathWithCaptures(requestPath, sourcePath string, isWildcard bool) (bool, []string) {
	if !isWildcard {
		return requestPath == util.NormalizeURL(sourcePath), nil
	}

	sourceParts := splitPath(strings.ToLower(sourcePath))
	requestParts := splitPath(requestPath)

	var captures []string
	matched := matchParts(sourceParts, requestParts, 0, 0, &captures)
	return matched, captures
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// matchParts recursively matches path parts and records captured segments.
func matchParts(sourceParts, requestParts []string, si, ri int, captures *[]string) bool {
	if si >= len(sourceParts) && ri >= len(requestParts) {
		return true
	}
	if si >= len(sourceParts) {
		return false
	}

	// Request exhausted: only trailing ** may remain, each matching nothing.
	if ri >= len(requestParts) {
		for i := si; i < len(sourceParts); i++ {
			if sourceParts[i] != "**" {
				return false
			}
			*captures = append(*captures, "")
		}
		return true
	}

	switch part := sourceParts[si]; part {
	case "*":
		*captures = append(*captures, requestParts[ri])
		return matchParts(sourceParts, requestParts, si+1, ri+1, captures)

	case "**":
		for end := ri; end <= len(requestParts); end++ {
			before := len(*captures)
			*captures = append(*captures, strings.Join(requestParts[ri:end], "/"))
			if matchParts(sourceParts, requestParts, si+1, end, captures) {
				return true
			}
			*captures = (*captures)[:before]
		}
		return false

	default:
		if part == requestParts[ri] {
			return matchParts(sourceParts, requestParts, si+1, ri+1, captures)
		}
		return false
	}
}

// buildTargetURL substitutes captured segments for the wildcards of the
// target, left to right.
func buildTargetURL(rd model.Redirect, captures []string) string {
	if !rd.IsWildcard || len(captures) == 0 {
		return rd.TargetURL
	}

	target := rd.TargetURL
	offset := 0
	for _, capture := range captures {
		idx := strings.Index(target[offset:], "*")
		if idx == -1 {
			break
		}
		idx += offset
		width := 1
		if idx+1 < len(target) && target[idx+1] == '*' {
			width = 2
		}
		target = target[:idx] + capture + target[idx+width:]
		offset = idx + len(capture)
	}
	return target
}
