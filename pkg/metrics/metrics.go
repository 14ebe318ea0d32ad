// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics wraps a dedicated prometheus.Registry so the proxy's counters
// never collide with whatever default registry an embedding process uses.
type Metrics struct {
	registry *prometheus.Registry

	refreshTicks      *prometheus.CounterVec
	refreshEntries    *prometheus.CounterVec
	activeConnections prometheus.Gauge
	proxiedRequests   *prometheus.CounterVec
	eventsApplied     *prometheus.CounterVec
	lastRefresh       prometheus.Gauge
}

// New constructs and registers all collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		refreshTicks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mcp_proxy",
			Subsystem: "registry",
			Name:      "refresh_ticks_total",
			Help:      "Count of registry refresh ticks by outcome.",
		}, []string{"result"}),
		refreshEntries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mcp_proxy",
			Subsystem: "registry",
			Name:      "refresh_entries_total",
			Help:      "Count of registry entries processed per refresh tick, by outcome.",
		}, []string{"result"}),
		activeConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "mcp_proxy",
			Subsystem: "connection",
			Name:      "active_streams",
			Help:      "Number of currently open client SSE streams.",
		}),
		proxiedRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mcp_proxy",
			Subsystem: "proxy",
			Name:      "requests_total",
			Help:      "Count of proxied requests by route and response status code.",
		}, []string{"route", "status"}),
		eventsApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mcp_proxy",
			Subsystem: "registry",
			Name:      "events_applied_total",
			Help:      "Count of registry mutation events applied, by kind and outcome.",
		}, []string{"kind", "result"}),
		lastRefresh: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "mcp_proxy",
			Subsystem: "registry",
			Name:      "last_refresh_timestamp_seconds",
			Help:      "Unix timestamp of the most recently completed registry refresh tick.",
		}),
	}

	reg.MustRegister(
		m.refreshTicks,
		m.refreshEntries,
		m.activeConnections,
		m.proxiedRequests,
		m.eventsApplied,
		m.lastRefresh,
	)

	return m
}

// Handler exposes the Prometheus scrape endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRefreshTick records a completed refresh tick's outcome counts.
func (m *Metrics) ObserveRefreshTick(updated, unchanged, skipped int) {
	if updated > 0 {
		m.refreshTicks.WithLabelValues("updated").Inc()
	} else {
		m.refreshTicks.WithLabelValues("unchanged").Inc()
	}
	m.refreshEntries.WithLabelValues("updated").Add(float64(updated))
	m.refreshEntries.WithLabelValues("unchanged").Add(float64(unchanged))
	m.refreshEntries.WithLabelValues("skipped").Add(float64(skipped))

	m.lastRefresh.Set(float64(time.Now().Unix()))
}

// ObserveRefreshError records a tick that was skipped entirely because the
// backend source failed.
func (m *Metrics) ObserveRefreshError() {
	m.refreshTicks.WithLabelValues("error").Inc()
}

// ObserveEventApplied records an event-bus mutation outcome.
func (m *Metrics) ObserveEventApplied(kind, result string) {
	m.eventsApplied.WithLabelValues(kind, result).Inc()
}

// IncConnections increments the active SSE stream gauge.
func (m *Metrics) IncConnections() {
	m.activeConnections.Inc()
}

// DecConnections decrements the active SSE stream gauge.
func (m *Metrics) DecConnections() {
	m.activeConnections.Dec()
}

// ObserveProxiedRequest records one proxied request's outcome.
func (m *Metrics) ObserveProxiedRequest(route string, status string) {
	m.proxiedRequests.WithLabelValues(route, status).Inc()
}
