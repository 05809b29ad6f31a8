package model

import "time"

type InvoiceStatus string

const (
	InvoiceStatusCreated   InvoiceStatus = "created"   // invoice issued by the provider, awaiting payment
	InvoiceStatusPaid      InvoiceStatus = "paid"      // provider reports the invoice settled
	InvoiceStatusActivated InvoiceStatus = "activated" // subscription granted for this invoice
)

// SubscriptionPriceUSD is the fixed price of one subscription month.
const SubscriptionPriceUSD = 3.0

// Invoice records an external payment request issued for a user.
// The status field doubles as the activation idempotency marker:
// a subscription is granted at most once per invoice, on the
// created/paid -> activated transition.
type Invoice struct {
	ID          string // provider-assigned opaque identifier
	UserID      int64
	AmountUSD   float64
	PayLink     string
	Status      InvoiceStatus
	CreatedAt   time.Time
	ActivatedAt *time.Time
}

func (i *Invoice) Activated() bool { return i.Status == InvoiceStatusActivated }
