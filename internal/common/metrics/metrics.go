// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PipelineRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_runs_total",
			Help: "Total number of proposal pipeline runs",
		},
		[]string{"status"},
	)

	PhaseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "pipeline_phase_duration_seconds",
			Help: "Duration of each pipeline phase in seconds",
		},
		[]string{"phase"},
	)

	ExtractionRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "extraction_retries_total",
			Help: "Total number of extraction service retries",
		},
	)

	ProposalsPriced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "proposals_priced_total",
			Help: "Total number of bills of materials priced",
		},
	)

	RequirementsExtracted = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "requirements_extracted",
			Help:    "Number of requirements extracted per request",
			Buckets: prometheus.LinearBuckets(0, 5, 10),
		},
	)
)
