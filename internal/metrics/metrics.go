package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the Prometheus instruments for the validation pipeline.
type Collector struct {
	registry               *prometheus.Registry
	validationsPassed      prometheus.Counter
	validationsFailed      prometheus.Counter
	validationDuration     prometheus.Histogram
	confidenceDistribution prometheus.Histogram
}

// NewCollector creates a Collector with its own registry.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	return &Collector{
		registry: registry,
		validationsPassed: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "invoice_validations_passed_total",
			Help: "Total number of invoice validations that passed",
		}),
		validationsFailed: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "invoice_validations_failed_total",
			Help: "Total number of invoice validations that failed",
		}),
		validationDuration: promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
			Name:    "invoice_validation_duration_seconds",
			Help:    "Time taken to run the full validation pipeline",
			Buckets: prometheus.DefBuckets,
		}),
		confidenceDistribution: promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
			Name:    "invoice_validation_confidence",
			Help:    "Distribution of validation confidence scores",
			Buckets: []float64{0, 20, 40, 60, 80, 100},
		}),
	}
}

// RecordValidation records the outcome of one validation run.
// Safe to call on a nil Collector.
func (m *Collector) RecordValidation(duration time.Duration, confidence float64, passed bool) {
	if m == nil {
		return
	}
	if passed {
		m.validationsPassed.Inc()
	} else {
		m.validationsFailed.Inc()
	}
	m.validationDuration.Observe(duration.Seconds())
	m.confidenceDistribution.Observe(confidence)
}

// Handler returns the /metrics HTTP handler for this collector's registry.
func (m *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
