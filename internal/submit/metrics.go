package submit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the submitter's Prometheus instruments.
type Metrics struct {
	// Submissions counts submission attempts by outcome.
	Submissions *prometheus.CounterVec

	// SubmitDuration measures the full submit path, template load
	// through job creation.
	SubmitDuration prometheus.Histogram

	// ValidationFailures counts rejected request bodies.
	ValidationFailures prometheus.Counter
}

// NewMetrics creates and registers all submitter metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		Submissions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vodsubmit_submissions_total",
				Help: "Total number of transcoding job submissions",
			},
			[]string{"status"}, // submitted, failed
		),

		SubmitDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "vodsubmit_submit_duration_seconds",
				Help:    "Time taken to submit a transcoding job",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
			},
		),

		ValidationFailures: f.NewCounter(
			prometheus.CounterOpts{
				Name: "vodsubmit_validation_failures_total",
				Help: "Total number of requests rejected by validation",
			},
		),
	}
}
