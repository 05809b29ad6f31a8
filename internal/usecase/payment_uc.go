// File: internal/usecase/payment_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"github.com/SERG-KRUK/tgbot/internal/domain"
	"github.com/SERG-KRUK/tgbot/internal/domain/model"
	"github.com/SERG-KRUK/tgbot/internal/domain/ports/adapter"
	"github.com/SERG-KRUK/tgbot/internal/domain/ports/repository"
	"github.com/SERG-KRUK/tgbot/internal/infra/metrics"
)

// PollStatus is the domain-level answer to an invoice status poll.
type PollStatus string

const (
	PollPaid    PollStatus = "paid"
	PollPending PollStatus = "pending"
)

// providerPaidMarker is the only provider status accepted as proof of
// payment. Every other value, including transport errors, is treated as
// not confirmed yet.
const providerPaidMarker = "paid"

// PaymentUseCase drives the invoice lifecycle: created -> paid ->
// activated. Activation extends the subscription exactly once per
// invoice; the invoices table carries the durable idempotency marker.
type PaymentUseCase struct {
	invoices repository.InvoiceRepository
	users    repository.UserRecordRepository
	gateway  adapter.PaymentGateway
	subs     *SubscriptionUseCase
	txm      repository.TransactionManager
	now      func() time.Time
	log      *zerolog.Logger
}

func NewPaymentUseCase(
	invoices repository.InvoiceRepository,
	users repository.UserRecordRepository,
	gateway adapter.PaymentGateway,
	subs *SubscriptionUseCase,
	txm repository.TransactionManager,
	logger *zerolog.Logger,
) *PaymentUseCase {
	l := logger.With().Str("component", "PaymentUC").Logger()
	return &PaymentUseCase{
		invoices: invoices,
		users:    users,
		gateway:  gateway,
		subs:     subs,
		txm:      txm,
		now:      time.Now,
		log:      &l,
	}
}

// Create issues a new invoice for amountUSD with the provider and
// persists it in the created state. The order id is unique per attempt.
func (uc *PaymentUseCase) Create(ctx context.Context, userID int64, amountUSD float64) (*model.Invoice, error) {
	orderID := fmt.Sprintf("sub_%d_%d_%s", userID, uc.now().Unix(), uuid.NewString()[:8])
	created, err := uc.gateway.CreateInvoice(ctx, amountUSD, orderID)
	if err != nil {
		metrics.IncInvoicePoll("create_failed")
		uc.log.Warn().Err(err).Int64("user_id", userID).Msg("invoice creation failed")
		return nil, err
	}

	inv := &model.Invoice{
		ID:        created.ID,
		UserID:    userID,
		AmountUSD: amountUSD,
		PayLink:   created.PayLink,
		Status:    model.InvoiceStatusCreated,
		CreatedAt: uc.now(),
	}
	err = uc.txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if _, err := uc.users.GetOrCreate(ctx, tx, userID, uc.now()); err != nil {
			return err
		}
		if err := uc.invoices.Save(ctx, tx, inv); err != nil {
			return err
		}
		return uc.users.SetPendingInvoice(ctx, tx, userID, &inv.ID)
	})
	if err != nil {
		return nil, fmt.Errorf("persist invoice %s: %w", inv.ID, err)
	}
	metrics.IncInvoiceCreated()
	uc.log.Info().Int64("user_id", userID).Str("invoice_id", inv.ID).
		Float64("amount_usd", amountUSD).Msg("invoice created")
	return inv, nil
}

// Poll asks the provider for the invoice status. Only the literal
// "paid" marker counts as settled; on the first paid observation the
// invoice is activated and the subscription extended by one month,
// inside a single transaction. Re-polling a settled invoice reports
// paid without extending again.
func (uc *PaymentUseCase) Poll(ctx context.Context, invoiceID string) (PollStatus, error) {
	inv, err := uc.invoices.FindByID(ctx, nil, invoiceID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return PollPending, domain.ErrInvoiceNotFound
		}
		return PollPending, fmt.Errorf("find invoice %s: %w", invoiceID, err)
	}
	if inv.Activated() {
		return PollPaid, nil
	}

	status := uc.gateway.InvoiceStatus(ctx, invoiceID)
	if status != providerPaidMarker {
		metrics.IncInvoicePoll("pending")
		uc.log.Debug().Str("invoice_id", invoiceID).Str("provider_status", status).Msg("invoice not settled yet")
		return PollPending, nil
	}

	err = uc.txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := uc.invoices.MarkActivated(ctx, tx, invoiceID); err != nil {
			return err
		}
		if _, err := uc.subs.Extend(ctx, tx, inv.UserID, 1); err != nil {
			return err
		}
		return uc.users.SetPendingInvoice(ctx, tx, inv.UserID, nil)
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyActivated) {
			// Lost the race to another poll; the subscription is granted.
			return PollPaid, nil
		}
		return PollPending, fmt.Errorf("activate invoice %s: %w", invoiceID, err)
	}
	metrics.IncInvoicePoll("paid")
	metrics.IncSubscriptionActivated()
	uc.log.Info().Str("invoice_id", invoiceID).Int64("user_id", inv.UserID).Msg("invoice activated")
	return PollPaid, nil
}
