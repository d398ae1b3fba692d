package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(userUpsertsTotal)
}

var userUpsertsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "user_upserts_total",
		Help: "Registry upserts by outcome (ok/connection_error/error).",
	},
	[]string{"outcome"},
)

func IncUserUpsert(outcome string) {
	userUpsertsTotal.WithLabelValues(norm(outcome)).Inc()
}
