package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/SERG-KRUK/tgbot/internal/domain/model"
)

const (
	cbBuySubscription = "buy_subscription"
	cbCheckPrefix     = "check_payment_"
)

func (r *RealTelegramBotAdapter) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}
	switch msg.Command() {
	case "start":
		return r.handleStartCommand(ctx, msg)
	default:
		return r.SendMessage(ctx, msg.Chat.ID, "Unknown command. Send me any text to chat, or /start for your quota.")
	}
}

func (r *RealTelegramBotAdapter) handleStartCommand(ctx context.Context, msg *tgbotapi.Message) error {
	text, err := r.facade.HandleStart(ctx, msg.From.ID)
	if err != nil {
		return r.SendMessage(ctx, msg.Chat.ID, text)
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(buyButtonText(), cbBuySubscription),
		),
	)
	return r.sendWithKeyboard(msg.Chat.ID, text, kb)
}

func (r *RealTelegramBotAdapter) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb.From == nil || cb.Message == nil {
		return nil
	}
	// Ack the button press so the client stops the spinner.
	if _, err := r.bot.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		r.log.Debug().Err(err).Msg("callback ack failed")
	}
	chatID := cb.Message.Chat.ID

	switch {
	case cb.Data == cbBuySubscription:
		return r.buySubscriptionCB(ctx, cb.From.ID, chatID)
	case strings.HasPrefix(cb.Data, cbCheckPrefix):
		invoiceID := strings.TrimPrefix(cb.Data, cbCheckPrefix)
		text, _ := r.facade.HandleCheckPayment(ctx, invoiceID)
		return r.SendMessage(ctx, chatID, text)
	default:
		r.log.Debug().Str("data", cb.Data).Msg("unknown callback ignored")
		return nil
	}
}

func (r *RealTelegramBotAdapter) buySubscriptionCB(ctx context.Context, userID, chatID int64) error {
	if err := r.SendMessage(ctx, chatID, "Creating a payment link..."); err != nil {
		return err
	}
	inv, text, err := r.facade.HandleBuySubscription(ctx, userID)
	if err != nil {
		return r.SendMessage(ctx, chatID, text)
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("Pay now", inv.PayLink),
			tgbotapi.NewInlineKeyboardButtonData("Check payment", cbCheckPrefix+inv.ID),
		),
	)
	return r.sendWithKeyboard(chatID, text, kb)
}

func (r *RealTelegramBotAdapter) handleText(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}
	if !r.allowed(ctx, msg.From.ID, "text") {
		return r.SendMessage(ctx, msg.Chat.ID, "Too many messages, please slow down.")
	}

	r.sendTyping(msg.Chat.ID)
	reply, hint, err := r.facade.HandlePrompt(ctx, msg.From.ID, msg.Text)
	if err != nil {
		r.log.Warn().Err(err).Int64("tg_id", msg.From.ID).Msg("prompt handling failed")
	}
	if err := r.SendMessage(ctx, msg.Chat.ID, reply); err != nil {
		return err
	}
	if hint != "" {
		return r.SendMessage(ctx, msg.Chat.ID, hint)
	}
	return nil
}

func buyButtonText() string {
	return fmt.Sprintf("Buy subscription (%.0f USD)", model.SubscriptionPriceUSD)
}
