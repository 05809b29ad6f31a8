package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(dailyResetsTotal, dailyResetRowsTotal) }

var (
	dailyResetsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "daily_resets_total",
			Help: "Bulk quota reset passes by result (ok/error).",
		},
		[]string{"result"},
	)

	dailyResetRowsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "daily_reset_rows_total",
			Help: "User rows zeroed by the bulk quota reset.",
		},
	)
)

func IncDailyReset(result string)  { dailyResetsTotal.WithLabelValues(norm(result)).Inc() }
func AddDailyResetRows(rows int64) { dailyResetRowsTotal.Add(float64(rows)) }
