package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ExtractionsTotal counts extraction requests by requested provider.
	// Labels: provider, outcome (ok, fallback, fallback_failed, failed)
	ExtractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "invoices",
			Name:      "extractions_total",
			Help:      "Total number of extraction requests by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	// ExtractionFallbacksTotal counts fallback attempts against a second provider.
	ExtractionFallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "invoices",
			Name:      "extraction_fallbacks_total",
			Help:      "Total number of fallback extraction attempts",
		},
	)

	// ProviderCallDuration tracks single provider round trips.
	// Labels: provider, result (success, error)
	ProviderCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "invoices",
			Name:      "provider_call_duration_seconds",
			Help:      "Duration of extraction provider calls in seconds",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 120},
		},
		[]string{"provider", "result"},
	)
)
