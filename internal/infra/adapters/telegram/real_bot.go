package telegram

import (
	"context"
	"errors"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/SERG-KRUK/tgbot/internal/application"
	"github.com/SERG-KRUK/tgbot/internal/config"
	red "github.com/SERG-KRUK/tgbot/internal/infra/redis"
)

// RealTelegramBotAdapter polls updates with tgbotapi and delegates to
// the BotFacade through a small worker pool. One logical task per
// inbound message; ordering across different users is not guaranteed.
type RealTelegramBotAdapter struct {
	bot         *tgbotapi.BotAPI
	facade      *application.BotFacade
	rateLimiter *red.RateLimiter
	floodLimit  int
	floodWindow time.Duration

	updateWorkers int
	cancelPolling context.CancelFunc
	log           *zerolog.Logger
}

func NewRealTelegramBotAdapter(cfg *config.Config, facade *application.BotFacade, rateLimiter *red.RateLimiter, logger *zerolog.Logger) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if facade == nil {
		return nil, errors.New("bot facade is nil")
	}
	workers := cfg.Bot.Workers
	if workers <= 0 {
		workers = 5
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Bot.Token)
	if err != nil {
		return nil, err
	}

	l := logger.With().Str("component", "TelegramBot").Logger()
	return &RealTelegramBotAdapter{
		bot:           bot,
		facade:        facade,
		rateLimiter:   rateLimiter,
		floodLimit:    cfg.Quota.FloodLimit,
		floodWindow:   cfg.Quota.FloodWindow,
		updateWorkers: workers,
		log:           &l,
	}, nil
}

func (r *RealTelegramBotAdapter) StartPolling(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := r.bot.GetUpdatesChan(u)

	ctx, cancel := context.WithCancel(ctx)
	r.cancelPolling = cancel

	var wg sync.WaitGroup
	updateChan := make(chan tgbotapi.Update, 100)

	for i := 0; i < r.updateWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case up := <-updateChan:
					if err := r.handleUpdate(ctx, up); err != nil {
						r.log.Warn().Err(err).Int("worker", id).Msg("update handling failed")
					}
				}
			}
		}(i)
	}

	r.log.Info().Int("workers", r.updateWorkers).Msg("telegram polling started")
	for {
		select {
		case <-ctx.Done():
			close(updateChan)
			wg.Wait()
			return ctx.Err()
		case up := <-updates:
			updateChan <- up
		}
	}
}

func (r *RealTelegramBotAdapter) StopPolling() {
	if r.cancelPolling != nil {
		r.cancelPolling()
	}
}

func (r *RealTelegramBotAdapter) handleUpdate(ctx context.Context, up tgbotapi.Update) error {
	switch {
	case up.CallbackQuery != nil:
		return r.handleCallback(ctx, up.CallbackQuery)
	case up.Message != nil && up.Message.IsCommand():
		return r.handleCommand(ctx, up.Message)
	case up.Message != nil && up.Message.Text != "":
		return r.handleText(ctx, up.Message)
	default:
		return nil
	}
}

// allowed consults the flood guard; a limiter outage fails open so a
// redis hiccup never blocks chat.
func (r *RealTelegramBotAdapter) allowed(ctx context.Context, userID int64, command string) bool {
	if r.rateLimiter == nil {
		return true
	}
	ok, err := r.rateLimiter.Allow(ctx, red.UserCommandKey(userID, command), r.floodLimit, r.floodWindow)
	if err != nil {
		r.log.Warn().Err(err).Int64("tg_id", userID).Msg("rate limiter unavailable")
		return true
	}
	return ok
}

func (r *RealTelegramBotAdapter) SendMessage(ctx context.Context, chatID int64, text string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := r.bot.Send(msg)
	return err
}

func (r *RealTelegramBotAdapter) sendWithKeyboard(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = kb
	_, err := r.bot.Send(msg)
	return err
}

func (r *RealTelegramBotAdapter) sendTyping(chatID int64) {
	if _, err := r.bot.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		r.log.Debug().Err(err).Msg("chat action failed")
	}
}
