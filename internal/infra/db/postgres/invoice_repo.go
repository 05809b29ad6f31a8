package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/SERG-KRUK/tgbot/internal/domain"
	"github.com/SERG-KRUK/tgbot/internal/domain/model"
	"github.com/SERG-KRUK/tgbot/internal/domain/ports/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

type InvoiceRepo struct {
	pool *pgxpool.Pool
}

func NewInvoiceRepo(pool *pgxpool.Pool) *InvoiceRepo {
	return &InvoiceRepo{pool: pool}
}

func (r *InvoiceRepo) Save(ctx context.Context, tx repository.Tx, inv *model.Invoice) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO invoices (invoice_id, user_id, amount_usd, pay_link, status, created_at, activated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (invoice_id) DO UPDATE SET
  status=$5, activated_at=$7;`
	if _, err := ex.Exec(ctx, q, inv.ID, inv.UserID, inv.AmountUSD, inv.PayLink, inv.Status, inv.CreatedAt, inv.ActivatedAt); err != nil {
		return fmt.Errorf("save invoice: %w", err)
	}
	return nil
}

func (r *InvoiceRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Invoice, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	const q = `
SELECT invoice_id, user_id, amount_usd, pay_link, status, created_at, activated_at
  FROM invoices WHERE invoice_id=$1;`
	var inv model.Invoice
	if err := ex.QueryRow(ctx, q, id).Scan(&inv.ID, &inv.UserID, &inv.AmountUSD, &inv.PayLink, &inv.Status, &inv.CreatedAt, &inv.ActivatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// MarkActivated flips the invoice to activated exactly once. The WHERE
// clause is the idempotency guard: a second caller sees zero rows and
// gets domain.ErrAlreadyActivated.
func (r *InvoiceRepo) MarkActivated(ctx context.Context, tx repository.Tx, id string) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	const q = `
UPDATE invoices SET status=$2, activated_at=now()
 WHERE invoice_id=$1 AND status<>$2;`
	tag, err := ex.Exec(ctx, q, id, model.InvoiceStatusActivated)
	if err != nil {
		return fmt.Errorf("mark invoice activated: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Either unknown or already honoured; disambiguate for the caller.
		if _, ferr := r.FindByID(ctx, tx, id); ferr != nil {
			return ferr
		}
		return domain.ErrAlreadyActivated
	}
	return nil
}
