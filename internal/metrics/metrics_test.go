// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scrape returns the text exposition of m.
func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestRenderCounters(t *testing.T) {
	m := New()

	m.ObserveRender(OutcomeOK, 10*time.Millisecond)
	m.ObserveRender(OutcomeOK, 20*time.Millisecond)
	m.ObserveRender(OutcomeNotFound, time.Millisecond)

	body := scrape(t, m)
	assert.Contains(t, body, `render_requests_total{outcome="ok"} 2`)
	assert.Contains(t, body, `render_requests_total{outcome="not_found"} 1`)
}

func TestPageCacheAndRedirectGauge(t *testing.T) {
	m := New()

	m.RecordPageCache(true)
	m.RecordPageCache(false)
	m.RecordPageCache(false)
	m.SetRedirectRules(7)

	body := scrape(t, m)
	assert.Contains(t, body, `page_cache_lookups_total{result="hit"} 1`)
	assert.Contains(t, body, `page_cache_lookups_total{result="miss"} 2`)
	assert.Contains(t, body, "redirect_rules_loaded 7")
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.ObserveRender(OutcomeRedirect, time.Millisecond)
	m.ObserveChainDepth(3)
	m.ObserveHTTPRequest(http.MethodGet, "/*", http.StatusOK, time.Millisecond)

	body := scrape(t, m)
	for _, name := range []string{
		"render_requests_total",
		"render_master_chain_depth",
		"http_request_duration_seconds",
		"go_goroutines",
	} {
		assert.True(t, strings.Contains(body, name), "missing %s", name)
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics

	m.ObserveRender(OutcomeOK, time.Millisecond)
	m.ObserveChainDepth(1)
	m.RecordPageCache(true)
	m.SetRedirectRules(1)
	m.ObserveHTTPRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
