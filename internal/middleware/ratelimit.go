// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

// maxLimiters bounds the per-client limiter map.
const maxLimiters = 10000

// limiterCache is a generic rate limiter cache with double-check locking.
type limiterCache[K comparable] struct {
	limiters map[K]*rate.Limiter
	mu       sync.RWMutex
	rate     rate.Limit
	burst    int
}

func newLimiterCache[K comparable](rps float64, burst int) *limiterCache[K] {
	return &limiterCache[K]{
		limiters: make(map[K]*rate.Limiter),
		rate:     rate.Limit(rps),
		burst:    burst,
	}
}

// get returns the rate limiter for a specific key, creating one if needed.
func (lc *limiterCache[K]) get(key K) *rate.Limiter {
	lc.mu.RLock()
	limiter, exists := lc.limiters[key]
	lc.mu.RUnlock()

	if exists {
		return limiter
	}

	lc.mu.Lock()
	defer lc.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists = lc.limiters[key]; exists {
		return limiter
	}

	if len(lc.limiters) >= maxLimiters {
		lc.limiters = make(map[K]*rate.Limiter)
	}
	limiter = rate.NewLimiter(lc.rate, lc.burst)
	lc.limiters[key] = limiter
	return limiter
}

// size returns the number of tracked clients.
func (lc *limiterCache[K]) size() int {
	lc.mu.RLock()
	defer lc.mu.RUnlock()
	return len(lc.limiters)
}

// PreviewRateLimiter throttles requests that bypass the page cache: content
// previews and renders by users who manage content.
type PreviewRateLimiter struct {
	cache  *limiterCache[string]
	logger *slog.Logger
}

// NewPreviewRateLimiter creates a limiter allowing rps requests per second
// per client with the given burst.
func NewPreviewRateLimiter(rps float64, burst int, logger *slog.Logger) *PreviewRateLimiter {
	if logger == nil {
		logger = slog.Default()
	}
	return &PreviewRateLimiter{
		cache:  newLimiterCache[string](rps, burst),
		logger: logger,
	}
}

// Middleware returns the rate limiting middleware. It must run after
// LoadViewer. Anonymous requests without a preview parameter pass through.
func (rl *PreviewRateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			viewer := GetViewer(r)
			if r.URL.Query().Get("preview") == "" && !viewer.CanManageContent {
				next.ServeHTTP(w, r)
				return
			}

			key := viewer.UserName
			if key == "" {
				key = getClientIP(r)
			}
			if !rl.cache.get(key).Allow() {
				rl.logger.Warn("preview rate limit exceeded", "client", key, "path", r.URL.Path)
				http.Error(w, "Too many requests. Please wait a moment and try again.", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// getClientIP returns the host part of RemoteAddr. Proxy headers are
// resolved into RemoteAddr by chi's RealIP middleware before this runs.
func getClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
