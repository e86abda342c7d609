// internal/utils/metrics/collector.go
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "lp_reader"

// Collector owns the service metrics on its own registry.
type Collector struct {
	registry *prometheus.Registry

	upstreamRequests *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec
	upstreamRetries  *prometheus.CounterVec
	httpRequests     *prometheus.CounterVec
	httpLatency      *prometheus.HistogramVec
	memoHits         *prometheus.CounterVec
}

// NewCollector creates and registers all metrics.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		upstreamRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upstream_requests_total",
				Help:      "Outbound calls by upstream and outcome",
			},
			[]string{"upstream", "outcome"},
		),
		upstreamLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "upstream_latency_seconds",
				Help:      "Outbound call latency including retries",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
			},
			[]string{"upstream"},
		),
		upstreamRetries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upstream_retries_total",
				Help:      "Retried outbound attempts",
			},
			[]string{"upstream"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Inbound requests by route and status",
			},
			[]string{"route", "status"},
		),
		httpLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Inbound request duration",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 14),
			},
			[]string{"route"},
		),
		memoHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "position_memo_total",
				Help:      "Position memo lookups by result",
			},
			[]string{"result"},
		),
	}
	c.registry.MustRegister(
		c.upstreamRequests,
		c.upstreamLatency,
		c.upstreamRetries,
		c.httpRequests,
		c.httpLatency,
		c.memoHits,
	)
	return c
}

// RecordUpstream records one logical outbound call. Nil receivers are ignored.
func (c *Collector) RecordUpstream(upstream string, duration time.Duration, err error) {
	if c == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	c.upstreamRequests.WithLabelValues(upstream, outcome).Inc()
	c.upstreamLatency.WithLabelValues(upstream).Observe(duration.Seconds())
}

// RecordRetry counts one retried attempt.
func (c *Collector) RecordRetry(upstream string) {
	if c == nil {
		return
	}
	c.upstreamRetries.WithLabelValues(upstream).Inc()
}

// RecordHTTP records one inbound request.
func (c *Collector) RecordHTTP(route string, status int, duration time.Duration) {
	if c == nil {
		return
	}
	c.httpRequests.WithLabelValues(route, http.StatusText(status)).Inc()
	c.httpLatency.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordMemo counts a memo hit or miss.
func (c *Collector) RecordMemo(hit bool) {
	if c == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	c.memoHits.WithLabelValues(result).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry is exposed for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
