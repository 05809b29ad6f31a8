package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(aiCallsTotal, aiCallLatencyMs) }

var (
	aiCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_calls_total",
			Help: "Completion provider calls by model and success.",
		},
		[]string{"model", "success"},
	)

	aiCallLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_call_latency_ms",
			Help:    "Completion call latency distribution in milliseconds.",
			Buckets: []float64{50, 100, 200, 400, 800, 1600, 3000, 5000, 10000, 30000},
		},
		[]string{"model", "success"},
	)
)

func ObserveAICall(model string, success bool, elapsed time.Duration) {
	s := strconv.FormatBool(success)
	aiCallsTotal.WithLabelValues(norm(model), s).Inc()
	aiCallLatencyMs.WithLabelValues(norm(model), s).Observe(float64(elapsed.Milliseconds()))
}
