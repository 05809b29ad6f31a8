package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SERG-KRUK/tgbot/internal/domain"
	"github.com/SERG-KRUK/tgbot/internal/domain/model"
	"github.com/SERG-KRUK/tgbot/internal/domain/ports/repository"
	"github.com/SERG-KRUK/tgbot/internal/usecase"
)

// lowQuotaHintThreshold: below this many remaining free requests the
// bot starts reminding the user about the subscription.
const lowQuotaHintThreshold = 3

const (
	msgOverloaded  = "The assistant is overloaded right now. Please try again later."
	msgFailure     = "Something went wrong while processing your request. Please try again later."
	msgRetryable   = "A temporary error occurred. Please try again in a moment."
	msgActivated   = "Subscription activated! You now have unlimited access."
	msgNotPaidYet  = "Payment not found yet. If you have paid, try again in a minute."
	msgBadInvoice  = "Unknown payment reference. Please start the purchase again."
	msgPaymentFail = "Could not create the payment: %s"
)

// BotFacade composes use cases into high-level bot replies. Facade
// methods return plain strings so the Telegram adapter just forwards
// them to the chat.
type BotFacade struct {
	Access *usecase.AccessUseCase
	Subs   *usecase.SubscriptionUseCase
	Pay    *usecase.PaymentUseCase
	Chat   *usecase.ChatUseCase
}

func NewBotFacade(access *usecase.AccessUseCase, subs *usecase.SubscriptionUseCase, pay *usecase.PaymentUseCase, chat *usecase.ChatUseCase) *BotFacade {
	return &BotFacade{Access: access, Subs: subs, Pay: pay, Chat: chat}
}

// HandleStart greets the user with the remaining free quota.
func (b *BotFacade) HandleStart(ctx context.Context, userID int64) (string, error) {
	remaining, err := b.Access.RemainingFreeRequests(ctx, userID)
	if err != nil {
		return msgRetryable, err
	}
	return fmt.Sprintf(
		"Hi! I am an AI assistant bot.\n\n"+
			"You have %d free requests left today.\n"+
			"Buy a subscription for unlimited access.", remaining), nil
}

// HandleBuySubscription creates an invoice for one subscription month.
func (b *BotFacade) HandleBuySubscription(ctx context.Context, userID int64) (*model.Invoice, string, error) {
	inv, err := b.Pay.Create(ctx, userID, model.SubscriptionPriceUSD)
	if err != nil {
		reason := "please try again later"
		if errors.Is(err, domain.ErrPaymentFailed) {
			if msg := strings.TrimPrefix(err.Error(), domain.ErrPaymentFailed.Error()+": "); msg != err.Error() {
				reason = msg
			}
		}
		return nil, fmt.Sprintf(msgPaymentFail, reason), err
	}
	text := fmt.Sprintf(
		"To pay for the subscription use the button below.\n"+
			"Amount: %.0f USD\n"+
			"The invoice is valid for 24 hours.", inv.AmountUSD)
	return inv, text, nil
}

// HandleCheckPayment polls the invoice and reports the outcome.
func (b *BotFacade) HandleCheckPayment(ctx context.Context, invoiceID string) (string, error) {
	if invoiceID == "" {
		return msgBadInvoice, domain.ErrInvalidArgument
	}
	status, err := b.Pay.Poll(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, domain.ErrInvoiceNotFound) {
			return msgBadInvoice, err
		}
		return msgRetryable, err
	}
	if status == usecase.PollPaid {
		return msgActivated, nil
	}
	return msgNotPaidYet, nil
}

// HandlePrompt admits the user, forwards the prompt to the completion
// provider and returns the reply plus an optional low-quota hint.
// Provider overload and failure degrade to apologies instead of errors.
func (b *BotFacade) HandlePrompt(ctx context.Context, userID int64, prompt string) (reply, hint string, err error) {
	out, err := b.Access.Admit(ctx, userID)
	if err != nil {
		return msgRetryable, "", err
	}
	if !out.Admitted {
		return b.denialMessage(), "", nil
	}

	text, err := b.Chat.Ask(ctx, prompt)
	if err != nil {
		if errors.Is(err, domain.ErrProviderOverloaded) {
			return msgOverloaded, "", nil
		}
		return msgFailure, "", nil
	}

	if out.Reason != repository.ReasonSubscribed && out.Remaining <= lowQuotaHintThreshold {
		hint = fmt.Sprintf("You have %d free requests left today.", out.Remaining)
	}
	return text, hint, nil
}

func (b *BotFacade) denialMessage() string {
	return fmt.Sprintf(
		"You have used up your %d free requests for today.\n"+
			"Buy a subscription for unlimited access.\n"+
			"New free requests in %s.",
		model.MaxFreeRequestsPerDay, formatRollover(b.Access.TimeUntilRollover()))
}

func formatRollover(d time.Duration) string {
	d = d.Round(time.Minute)
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	return fmt.Sprintf("%dh %dm", h, m)
}
