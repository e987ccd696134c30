package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	outcomeSuccess  = "success"
	outcomeFallback = "fallback"
	outcomeError    = "error"
)

var (
	gatewayCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listing_gateway_calls_total",
			Help: "Listing gateway calls by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	gatewayCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "listing_gateway_call_duration_seconds",
			Help:    "Listing gateway call latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)
