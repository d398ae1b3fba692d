package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(updatesTotal, repliesChunked)
}

var (
	updatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_updates_total",
			Help: "Inbound updates by route (start/text/media/inline/other).",
		},
		[]string{"route"},
	)

	repliesChunked = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reply_chunks",
			Help:    "Number of chunks per transcript reply.",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
		},
	)
)

func IncUpdate(route string) {
	updatesTotal.WithLabelValues(norm(route)).Inc()
}

func ObserveReplyChunks(n int) {
	repliesChunked.Observe(float64(n))
}
