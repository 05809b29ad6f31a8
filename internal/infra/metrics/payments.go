package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		invoicesCreatedTotal,
		invoicePollsTotal,
		subscriptionsActivatedTotal,
	)
}

var (
	invoicesCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "invoices_created_total",
			Help: "Invoices successfully created with the payment provider.",
		},
	)

	invoicePollsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invoice_polls_total",
			Help: "Invoice status polls by outcome (paid/pending/create_failed).",
		},
		[]string{"outcome"},
	)

	subscriptionsActivatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "subscriptions_activated_total",
			Help: "Subscriptions granted on confirmed payment.",
		},
	)
)

func IncInvoiceCreated() { invoicesCreatedTotal.Inc() }

func IncInvoicePoll(outcome string) {
	invoicePollsTotal.WithLabelValues(norm(outcome)).Inc()
}

func IncSubscriptionActivated() { subscriptionsActivatedTotal.Inc() }
