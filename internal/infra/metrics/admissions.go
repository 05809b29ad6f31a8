package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(admissionsTotal) }

var admissionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "admissions_total",
		Help: "Admission decisions by reason (subscribed/rollover/within_quota/quota_exhausted).",
	},
	[]string{"reason"},
)

func IncAdmission(reason string) {
	admissionsTotal.WithLabelValues(norm(reason)).Inc()
}
