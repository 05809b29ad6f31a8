package repository

import (
	"context"

	"github.com/SERG-KRUK/tgbot/internal/domain/model"
)

// InvoiceRepository persists payment invoices. Its status column is the
// durable guard against re-activating a subscription for an invoice
// that was already honoured.
type InvoiceRepository interface {
	Save(ctx context.Context, tx Tx, inv *model.Invoice) error

	// FindByID returns the invoice or domain.ErrNotFound.
	FindByID(ctx context.Context, tx Tx, id string) (*model.Invoice, error)

	// MarkActivated transitions the invoice to activated iff it is not
	// activated yet, locking the row for the duration of tx. Returns
	// domain.ErrAlreadyActivated when the transition already happened.
	MarkActivated(ctx context.Context, tx Tx, id string) error
}
