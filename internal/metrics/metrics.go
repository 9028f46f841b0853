// Package metrics provides the centralized Prometheus metrics registry for
// the odds aggregation service.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	PassesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "oddsmesh",
		Name:      "aggregation_passes_total",
		Help:      "Total number of completed aggregation passes",
	})
	PassesPartialTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "oddsmesh",
		Name:      "aggregation_passes_partial_total",
		Help:      "Total number of passes where at least one provider failed",
	})
	PassesExhaustedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "oddsmesh",
		Name:      "aggregation_passes_exhausted_total",
		Help:      "Total number of passes where every enabled provider failed",
	})
	TicksSkippedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "oddsmesh",
		Name:      "scheduler_ticks_skipped_total",
		Help:      "Total number of scheduler ticks skipped because a pass was in progress",
	})
	ProviderFetchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "oddsmesh",
		Name:      "provider_fetches_total",
		Help:      "Total number of provider fetches by result",
	}, []string{"provider", "result"})
	QuotesCollectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "oddsmesh",
		Name:      "quotes_collected_total",
		Help:      "Total number of odds quotes collected per provider",
	}, []string{"provider"})
	QuotesDroppedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "oddsmesh",
		Name:      "quotes_dropped_total",
		Help:      "Total number of quotes rejected during normalization",
	}, []string{"provider", "reason"})
)

// Gauge metrics
var (
	SnapshotEvents = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "oddsmesh",
		Name:      "snapshot_events",
		Help:      "Number of events in the current snapshot",
	})
	SnapshotOutcomes = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "oddsmesh",
		Name:      "snapshot_outcomes",
		Help:      "Number of outcomes carrying a consensus value in the current snapshot",
	})
	LastRefreshTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "oddsmesh",
		Name:      "last_refresh_timestamp_seconds",
		Help:      "Unix timestamp of the last successful snapshot swap",
	})
	ProviderWeight = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "oddsmesh",
		Name:      "provider_weight",
		Help:      "Configured weight per provider",
	}, []string{"provider"})
	ProviderEnabled = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "oddsmesh",
		Name:      "provider_enabled",
		Help:      "Whether a provider is enabled (1) or disabled (0)",
	}, []string{"provider"})
	WebsocketClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "oddsmesh",
		Name:      "websocket_clients",
		Help:      "Number of connected websocket clients",
	})
)

// Histogram metrics
var (
	PassDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "oddsmesh",
		Name:      "aggregation_pass_duration_seconds",
		Help:      "Duration of a full aggregation pass in seconds",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15, 30},
	})
	ProviderFetchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "oddsmesh",
		Name:      "provider_fetch_duration_seconds",
		Help:      "Duration of a single provider fetch in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"provider"})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(PassesTotal)
		registry.MustRegister(PassesPartialTotal)
		registry.MustRegister(PassesExhaustedTotal)
		registry.MustRegister(TicksSkippedTotal)
		registry.MustRegister(ProviderFetchesTotal)
		registry.MustRegister(QuotesCollectedTotal)
		registry.MustRegister(QuotesDroppedTotal)

		registry.MustRegister(SnapshotEvents)
		registry.MustRegister(SnapshotOutcomes)
		registry.MustRegister(LastRefreshTimestamp)
		registry.MustRegister(ProviderWeight)
		registry.MustRegister(ProviderEnabled)
		registry.MustRegister(WebsocketClients)

		registry.MustRegister(PassDuration)
		registry.MustRegister(ProviderFetchDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordProviderFetch records the result and duration of one provider fetch.
func RecordProviderFetch(provider, result string, durationSeconds float64) {
	ProviderFetchesTotal.WithLabelValues(provider, result).Inc()
	ProviderFetchDuration.WithLabelValues(provider).Observe(durationSeconds)
}

// RecordQuoteDropped records a quote rejected during normalization.
func RecordQuoteDropped(provider, reason string) {
	QuotesDroppedTotal.WithLabelValues(provider, reason).Inc()
}

// UpdateProviderState updates the per-provider weight and enabled gauges.
func UpdateProviderState(provider string, weight int, enabled bool) {
	ProviderWeight.WithLabelValues(provider).Set(float64(weight))
	v := 0.0
	if enabled {
		v = 1.0
	}
	ProviderEnabled.WithLabelValues(provider).Set(v)
}
