// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package metrics holds the Prometheus instruments shared across packages.
// All collectors are registered with the default registry at init, so
// serving promhttp.Handler() is enough to expose them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blockpress_http_requests_total",
			Help: "HTTP requests by route pattern, method and status code.",
		}, []string{"route", "method", "code"})

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "blockpress_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"})

	// TenantLookups counts site resolutions by result: hit, miss, not_found, error.
	TenantLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blockpress_tenant_lookups_total",
			Help: "Site resolutions by cache result.",
		}, []string{"result"})

	ThemeScans = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blockpress_theme_scans_total",
			Help: "Theme directory scans by outcome (ok, fallback).",
		}, []string{"outcome"})

	ComponentThemesCached = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "blockpress_component_themes_cached",
			Help: "Number of manifest themes currently compiled in memory.",
		})

	BlockRenderErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blockpress_block_render_errors_total",
			Help: "Blocks replaced by a placeholder because rendering failed.",
		}, []string{"theme", "component"})

	PageCacheResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blockpress_page_cache_total",
			Help: "Rendered page cache lookups by result (hit, miss).",
		}, []string{"result"})

	SnapshotRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blockpress_snapshot_runs_total",
			Help: "Static snapshot generations by outcome (success, failure).",
		}, []string{"outcome"})

	SnapshotDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "blockpress_snapshot_duration_seconds",
			Help:    "Time spent generating one site snapshot.",
			Buckets: prometheus.DefBuckets,
		})
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		TenantLookups,
		ThemeScans,
		ComponentThemesCached,
		BlockRenderErrors,
		PageCacheResults,
		SnapshotRuns,
		SnapshotDuration,
	)
}
