// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SERG-KRUK/tgbot/internal/application"
	"github.com/SERG-KRUK/tgbot/internal/config"
	aiAdapters "github.com/SERG-KRUK/tgbot/internal/infra/adapters/ai"
	payAdapters "github.com/SERG-KRUK/tgbot/internal/infra/adapters/payment"
	tele "github.com/SERG-KRUK/tgbot/internal/infra/adapters/telegram"
	pg "github.com/SERG-KRUK/tgbot/internal/infra/db/postgres"
	httpapi "github.com/SERG-KRUK/tgbot/internal/infra/http"
	"github.com/SERG-KRUK/tgbot/internal/infra/logging"
	red "github.com/SERG-KRUK/tgbot/internal/infra/redis"
	"github.com/SERG-KRUK/tgbot/internal/infra/sched"
	"github.com/SERG-KRUK/tgbot/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer pool.Close()
	if err := pg.EnsureSchema(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("schema init failed")
	}

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connect failed")
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)

	// ---- Repositories ----
	userRepo := pg.NewUserRecordRepo(pool)
	invoiceRepo := pg.NewInvoiceRepo(pool)
	txm := pg.NewTxManager(pool)

	// ---- External adapters ----
	ai, err := aiAdapters.NewMistralAdapter(cfg.AI.MistralKey, cfg.AI.Model, cfg.AI.BaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("mistral adapter init failed")
	}
	gateway, err := payAdapters.NewCryptoCloudGateway(cfg.Payment.CryptoCloud.APIKey, cfg.Payment.CryptoCloud.ShopID, cfg.Payment.CryptoCloud.BaseURL, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("cryptocloud gateway init failed")
	}

	// ---- Use cases ----
	accessUC := usecase.NewAccessUseCase(userRepo, logger)
	subUC := usecase.NewSubscriptionUseCase(userRepo, cfg.Subscription.Stacking, logger)
	payUC := usecase.NewPaymentUseCase(invoiceRepo, userRepo, gateway, subUC, txm, logger)
	chatUC := usecase.NewChatUseCase(ai, logger)

	// ---- Facade ----
	facade := application.NewBotFacade(accessUC, subUC, payUC, chatUC)

	// ---- Telegram ----
	botAdapter, err := tele.NewRealTelegramBotAdapter(cfg, facade, rateLimiter, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("telegram init failed")
	}
	go func() {
		if err := botAdapter.StartPolling(ctx); err != nil && err != context.Canceled {
			logger.Error().Err(err).Msg("telegram polling stopped")
		}
	}()

	// ---- Daily quota reset ----
	resetWorker := sched.NewDailyResetWorker(userRepo, logger)
	go func() {
		if err := resetWorker.Run(ctx); err != nil && err != context.Canceled {
			logger.Error().Err(err).Msg("daily reset worker stopped")
		}
	}()

	// ---- Admin HTTP (health + metrics) ----
	adminSrv := httpapi.NewServer(cfg.Admin.Port, logger)
	go func() {
		if err := adminSrv.Start(); err != nil {
			logger.Error().Err(err).Msg("admin http server error")
		}
	}()

	// ---- Shutdown ----
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info().Msg("shutting down")

	botAdapter.StopPolling()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := adminSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("admin http shutdown failed")
	}
}
