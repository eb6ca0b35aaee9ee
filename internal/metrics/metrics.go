// Package metrics collects Prometheus metrics for stores, providers and the relay.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "classichub"

// Collector records service metrics. A nil *Collector is a valid no-op.
type Collector struct {
	storeOutcomes   *prometheus.CounterVec
	providerCalls   *prometheus.CounterVec
	providerLatency *prometheus.HistogramVec
	breakerState    *prometheus.GaugeVec
	relayRequests   *prometheus.CounterVec
	warmerRuns      *prometheus.CounterVec
}

// NewCollector creates a Collector and registers it with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		storeOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_outcomes_total",
			Help:      "Store lookups by store and outcome.",
		}, []string{"store", "outcome"}),
		providerCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_calls_total",
			Help:      "Upstream provider calls by provider and result.",
		}, []string{"provider", "result"}),
		providerLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_call_duration_seconds",
			Help:      "Upstream provider call latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider"}),
		breakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "provider_breaker_state",
			Help:      "Circuit breaker state per provider (0 closed, 1 half-open, 2 open).",
		}, []string{"provider"}),
		relayRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relay_requests_total",
			Help:      "Relay requests by provider and upstream status.",
		}, []string{"provider", "status"}),
		warmerRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "warmer_runs_total",
			Help:      "Cache warmer runs by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		c.storeOutcomes,
		c.providerCalls,
		c.providerLatency,
		c.breakerState,
		c.relayRequests,
		c.warmerRuns,
	)

	return c
}

// RecordStoreOutcome counts one store lookup outcome.
func (c *Collector) RecordStoreOutcome(store, outcome string) {
	if c == nil {
		return
	}
	c.storeOutcomes.WithLabelValues(store, outcome).Inc()
}

// ObserveProviderCall records an upstream call and its latency.
func (c *Collector) ObserveProviderCall(provider, result string, d time.Duration) {
	if c == nil {
		return
	}
	c.providerCalls.WithLabelValues(provider, result).Inc()
	c.providerLatency.WithLabelValues(provider).Observe(d.Seconds())
}

// SetBreakerState publishes the circuit breaker state of a provider.
func (c *Collector) SetBreakerState(provider string, state int) {
	if c == nil {
		return
	}
	c.breakerState.WithLabelValues(provider).Set(float64(state))
}

// RecordRelay counts a relay request. status 0 means the upstream was unreachable.
func (c *Collector) RecordRelay(provider string, status int) {
	if c == nil {
		return
	}
	label := strconv.Itoa(status)
	if status == 0 {
		label = "transport_error"
	}
	c.relayRequests.WithLabelValues(provider, label).Inc()
}

// RecordWarmerRun counts a cache warmer run.
func (c *Collector) RecordWarmerRun(result string) {
	if c == nil {
		return
	}
	c.warmerRuns.WithLabelValues(result).Inc()
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
