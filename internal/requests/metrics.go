package requests

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	reqCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "paylink",
		Subsystem: "requests",
		Name:      "created_total",
		Help:      "Total payment requests registered.",
	})

	reqClaims = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "paylink",
		Subsystem: "requests",
		Name:      "claims_total",
		Help:      "Total claim attempts by outcome.",
	}, []string{"outcome"}) // "success", "invalid_body", "not_found", "already_claimed", "mismatch", "upstream_error", "store_error"

	reqSettlementLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "paylink",
		Subsystem: "requests",
		Name:      "settlement_latency_seconds",
		Help:      "End-to-end claim latency including gateway calls.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})

	reqMismatches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "paylink",
		Subsystem: "requests",
		Name:      "mismatches_total",
		Help:      "Total claim rejections by mismatched field.",
	}, []string{"field"}) // "chain", "token", "amount"
)

func init() {
	prometheus.MustRegister(
		reqCreated,
		reqClaims,
		reqSettlementLatency,
		reqMismatches,
	)
}
