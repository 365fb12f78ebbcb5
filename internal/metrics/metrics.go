// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package metrics holds the Prometheus collectors of the render service.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Render outcomes used as the "outcome" label.
const (
	OutcomeOK                 = "ok"
	OutcomeNotFound           = "not_found"
	OutcomeAccessDenied       = "access_denied"
	OutcomeRedirect           = "redirect"
	OutcomeConfigurationError = "configuration_error"
	OutcomeContentError       = "content_error"
	OutcomeError              = "error"
)

// Metrics registers and updates the service collectors on a private
// registry.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	renderDuration  *prometheus.HistogramVec
	renderTotal     *prometheus.CounterVec
	chainDepth      prometheus.Histogram
	pageCache       *prometheus.CounterVec
	redirectRules   prometheus.Gauge
	requestDuration *prometheus.HistogramVec
}

// New creates Metrics with Go runtime and process collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		renderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "render_duration_seconds",
			Help:    "Time to resolve and compose a page",
			Buckets: prometheus.DefBuckets,
		}, []string{"outcome"}),
		renderTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "render_requests_total",
			Help: "Page render requests by outcome",
		}, []string{"outcome"}),
		chainDepth: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "render_master_chain_depth",
			Help:    "Number of pages in the composed master chain",
			Buckets: []float64{1, 2, 3, 4, 6, 8, 16, 32},
		}),
		pageCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "page_cache_lookups_total",
			Help: "Page cache lookups by result",
		}, []string{"result"}),
		redirectRules: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "redirect_rules_loaded",
			Help: "Enabled redirect rules in the current snapshot",
		}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	registry.MustRegister(
		m.renderDuration, m.renderTotal, m.chainDepth, m.pageCache, m.redirectRules, m.requestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Handler exposes the Prometheus HTTP handler.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveRender records one render request.
func (m *Metrics) ObserveRender(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.renderDuration.WithLabelValues(outcome).Observe(d.Seconds())
	m.renderTotal.WithLabelValues(outcome).Inc()
}

// ObserveChainDepth records the number of pages in a composed tree.
func (m *Metrics) ObserveChainDepth(depth int) {
	if m == nil {
		return
	}
	m.chainDepth.Observe(float64(depth))
}

// RecordPageCache records a page cache lookup.
func (m *Metrics) RecordPageCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.pageCache.WithLabelValues(result).Inc()
}

// SetRedirectRules records the size of the redirect rule snapshot.
func (m *Metrics) SetRedirectRules(n int) {
	if m == nil {
		return
	}
	m.redirectRules.Set(float64(n))
}

// ObserveHTTPRequest records one HTTP request. route is the matched route
// pattern, not the raw path.
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}
