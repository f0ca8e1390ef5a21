// Package metrics defines the Prometheus collectors shared by the site
// server and the API client.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestsTotal counts requests served by the site, by route and status code.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transportease_http_requests_total",
			Help: "Total number of HTTP requests served by the site.",
		},
		[]string{"route", "method", "code"},
	)

	// HTTPRequestDuration records site request latency.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "transportease_http_request_duration_seconds",
			Help:    "Latency of HTTP requests served by the site.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	// UpstreamDuration records calls to the rental API. status is the HTTP
	// code or "error" for transport failures.
	UpstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "transportease_upstream_request_duration_seconds",
			Help:    "Latency of requests to the rental API.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op", "status"},
	)

	// CatalogFallbackTotal counts catalog reads served from the Mongo mirror.
	CatalogFallbackTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "transportease_catalog_fallback_total",
			Help: "Catalog reads served from the mirror because the API was unavailable.",
		},
	)

	// RateLimitedTotal counts requests rejected by the auth rate limiter.
	RateLimitedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "transportease_rate_limited_total",
			Help: "Requests rejected by the per-IP auth rate limiter.",
		},
	)
)

// Registry holds every collector above. It is separate from the default
// registry so tests can gather it without global side effects.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(HTTPRequestsTotal)
	Registry.MustRegister(HTTPRequestDuration)
	Registry.MustRegister(UpstreamDuration)
	Registry.MustRegister(CatalogFallbackTotal)
	Registry.MustRegister(RateLimitedTotal)
}

// ObserveUpstream records one rental API call.
func ObserveUpstream(op, status string, d time.Duration) {
	UpstreamDuration.WithLabelValues(op, status).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
