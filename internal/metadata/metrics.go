package metadata

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace = "scores_fixture"
)

// runMetrics lives on a private registry so that parallel recorders (tests)
// never collide on the default one.
type runMetrics struct {
	registry      *prometheus.Registry
	fetches       *prometheus.CounterVec
	fetchDuration prometheus.Histogram
	errors        *prometheus.CounterVec
	artifacts     *prometheus.CounterVec
	units         *prometheus.CounterVec
	runDuration   prometheus.Gauge
}

func newRunMetrics() *runMetrics {
	registry := prometheus.NewRegistry()
	auto := promauto.With(registry)

	return &runMetrics{
		registry: registry,
		fetches: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "fetches_total",
			Help:      "Resources handled by the fetcher, by outcome.",
		}, []string{"outcome"}),
		fetchDuration: auto.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "fetch_duration_seconds",
			Help:      "Wall time of fetches that reached the network.",
			Buckets:   prometheus.DefBuckets,
		}),
		errors: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "errors_total",
			Help:      "Recorded pipeline errors, by package and cause.",
		}, []string{"package", "cause"}),
		artifacts: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "artifacts_total",
			Help:      "Artifacts produced, by kind.",
		}, []string{"kind"}),
		units: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "units_total",
			Help:      "Units processed by the assembler, by outcome.",
		}, []string{"outcome"}),
		runDuration: auto.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of the last run.",
		}),
	}
}
