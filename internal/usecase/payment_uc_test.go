//go:build !integration

package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SERG-KRUK/tgbot/internal/domain"
	"github.com/SERG-KRUK/tgbot/internal/domain/model"
)

func newPaymentFixture(gw *stubGateway, stacking bool) (*PaymentUseCase, *memUserRecordRepo, *memInvoiceRepo) {
	users := newMemUserRecordRepo()
	invoices := newMemInvoiceRepo()
	subs := NewSubscriptionUseCase(users, stacking, newTestLogger())
	uc := NewPaymentUseCase(invoices, users, gw, subs, noopTxManager{}, newTestLogger())
	return uc, users, invoices
}

func TestPaymentUseCase_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("persists the invoice and pending reference", func(t *testing.T) {
		gw := &stubGateway{invoiceID: "abc", payLink: "https://pay.example/abc"}
		uc, users, invoices := newPaymentFixture(gw, false)

		inv, err := uc.Create(ctx, 10, 3.0)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if inv.ID != "abc" || inv.PayLink != "https://pay.example/abc" {
			t.Errorf("unexpected invoice %+v", inv)
		}
		if inv.Status != model.InvoiceStatusCreated {
			t.Errorf("expected created status, got %q", inv.Status)
		}

		stored, err := invoices.FindByID(ctx, nil, "abc")
		if err != nil {
			t.Fatalf("invoice not persisted: %v", err)
		}
		if stored.UserID != 10 || stored.AmountUSD != 3.0 {
			t.Errorf("unexpected persisted invoice %+v", stored)
		}

		rec, err := users.Find(ctx, nil, 10)
		if err != nil {
			t.Fatalf("user record not created: %v", err)
		}
		if rec.PendingInvoiceID == nil || *rec.PendingInvoiceID != "abc" {
			t.Errorf("expected pending invoice abc, got %v", rec.PendingInvoiceID)
		}
	})

	t.Run("provider rejection surfaces as domain error", func(t *testing.T) {
		gw := &stubGateway{createErr: domain.ErrPaymentFailed}
		uc, _, invoices := newPaymentFixture(gw, false)

		if _, err := uc.Create(ctx, 10, 3.0); !errors.Is(err, domain.ErrPaymentFailed) {
			t.Fatalf("expected ErrPaymentFailed, got %v", err)
		}
		if _, err := invoices.FindByID(ctx, nil, "abc"); !errors.Is(err, domain.ErrNotFound) {
			t.Error("no invoice row may exist after a rejected create")
		}
	})
}

func TestPaymentUseCase_Poll(t *testing.T) {
	ctx := context.Background()

	t.Run("unpaid invoice polls as pending", func(t *testing.T) {
		gw := &stubGateway{invoiceID: "abc", payLink: "https://pay.example/abc", status: "created"}
		uc, users, _ := newPaymentFixture(gw, false)
		if _, err := uc.Create(ctx, 10, 3.0); err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		status, err := uc.Poll(ctx, "abc")
		if err != nil {
			t.Fatalf("Poll failed: %v", err)
		}
		if status != PollPending {
			t.Errorf("expected pending, got %q", status)
		}
		rec, _ := users.Find(ctx, nil, 10)
		if rec.SubscribedUntil != nil {
			t.Error("unpaid poll must not grant a subscription")
		}
	})

	t.Run("provider error string stays pending, never paid", func(t *testing.T) {
		gw := &stubGateway{invoiceID: "abc", status: "error"}
		uc, _, _ := newPaymentFixture(gw, false)
		if _, err := uc.Create(ctx, 10, 3.0); err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		status, err := uc.Poll(ctx, "abc")
		if err != nil {
			t.Fatalf("Poll failed: %v", err)
		}
		if status != PollPending {
			t.Errorf("expected pending on provider error, got %q", status)
		}
	})

	t.Run("paid invoice activates the subscription exactly once", func(t *testing.T) {
		gw := &stubGateway{invoiceID: "abc", status: "paid"}
		uc, users, invoices := newPaymentFixture(gw, false)
		if _, err := uc.Create(ctx, 10, 3.0); err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		status, err := uc.Poll(ctx, "abc")
		if err != nil {
			t.Fatalf("Poll failed: %v", err)
		}
		if status != PollPaid {
			t.Fatalf("expected paid, got %q", status)
		}

		rec, _ := users.Find(ctx, nil, 10)
		if rec.SubscribedUntil == nil {
			t.Fatal("expected a subscription window")
		}
		firstUntil := *rec.SubscribedUntil
		want := time.Now().Add(30 * 24 * time.Hour)
		if diff := firstUntil.Sub(want); diff < -5*time.Second || diff > 5*time.Second {
			t.Errorf("expected window ~%v, got %v", want, firstUntil)
		}
		if rec.PendingInvoiceID != nil {
			t.Error("pending invoice reference must be cleared on activation")
		}
		inv, _ := invoices.FindByID(ctx, nil, "abc")
		if !inv.Activated() {
			t.Error("invoice must be marked activated")
		}

		// Re-poll: still paid, no second extension even much later.
		time.Sleep(10 * time.Millisecond)
		status, err = uc.Poll(ctx, "abc")
		if err != nil {
			t.Fatalf("re-Poll failed: %v", err)
		}
		if status != PollPaid {
			t.Errorf("expected paid on re-poll, got %q", status)
		}
		rec, _ = users.Find(ctx, nil, 10)
		if !rec.SubscribedUntil.Equal(firstUntil) {
			t.Errorf("re-poll re-extended the window: %v -> %v", firstUntil, rec.SubscribedUntil)
		}
	})

	t.Run("unknown invoice aborts without mutation", func(t *testing.T) {
		gw := &stubGateway{status: "paid"}
		uc, users, _ := newPaymentFixture(gw, false)

		status, err := uc.Poll(ctx, "nope")
		if !errors.Is(err, domain.ErrInvoiceNotFound) {
			t.Fatalf("expected ErrInvoiceNotFound, got %v", err)
		}
		if status != PollPending {
			t.Errorf("unknown invoice must read as pending, got %q", status)
		}
		if len(users.store) != 0 {
			t.Error("unknown invoice must not create user state")
		}
		if gw.statusCalls != 0 {
			t.Error("provider must not be polled for an unknown invoice")
		}
	})
}
