package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		jobsTotal,
		jobLatencySeconds,
	)
}

var (
	jobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transcription_jobs_total",
			Help: "Transcription jobs by media kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)

	jobLatencySeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "transcription_job_seconds",
			Help:    "End-to-end job latency (download + inference) in seconds.",
			Buckets: []float64{1, 2.5, 5, 10, 20, 40, 80, 160, 320},
		},
		[]string{"kind"},
	)
)

func ObserveJob(kind, outcome string, elapsed time.Duration) {
	jobsTotal.WithLabelValues(norm(kind), norm(outcome)).Inc()
	jobLatencySeconds.WithLabelValues(norm(kind)).Observe(elapsed.Seconds())
}
