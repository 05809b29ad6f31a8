package adapter

import "context"

// CreatedInvoice is the provider's answer to a successful invoice
// creation: an opaque identifier plus the link the user pays at.
type CreatedInvoice struct {
	ID      string
	PayLink string
}

// PaymentGateway is the port for the external payment provider.
type PaymentGateway interface {
	Name() string

	// CreateInvoice issues a payment request for amountUSD. orderID
	// must be unique per attempt to avoid provider-side collisions.
	// Expected provider error responses come back as domain errors,
	// never as panics.
	CreateInvoice(ctx context.Context, amountUSD float64, orderID string) (CreatedInvoice, error)

	// InvoiceStatus returns the provider's literal status string for
	// the invoice. Transport or API failures yield the literal "error"
	// so callers treat them as not-yet-confirmed.
	InvoiceStatus(ctx context.Context, invoiceID string) string
}
