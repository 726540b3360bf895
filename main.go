package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ravell-app/tg-bridge/internal/backend"
	"github.com/ravell-app/tg-bridge/internal/bridge"
	"github.com/ravell-app/tg-bridge/internal/config"
	"github.com/ravell-app/tg-bridge/internal/handlers"
	"github.com/ravell-app/tg-bridge/internal/linker"
	"github.com/ravell-app/tg-bridge/internal/logging"
	"github.com/ravell-app/tg-bridge/internal/middleware"
	"github.com/ravell-app/tg-bridge/internal/scheduler"
	"github.com/ravell-app/tg-bridge/store"
)

func main() {
	_ = godotenv.Load("config.env")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	pgStore, err := store.NewPostgresStore(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal("failed to connect to Postgres", zap.Error(err))
	}
	defer pgStore.Close()

	rdb, err := store.NewRedisClient(cfg.RedisAddr(), cfg.RedisPassword, cfg.RedisDB, "ravell_bridge")
	if err != nil {
		logger.Fatal("failed to connect to Redis", zap.Error(err))
	}
	defer rdb.Close()
	bindQueue := store.NewRedisBindQueue(rdb)

	httpClient := &http.Client{
		Timeout: 10 * time.Minute,
	}
	b, err := bot.New(
		cfg.BotToken,
		bot.WithHTTPClient(cfg.PollTimeout, httpClient),
	)
	if err != nil {
		logger.Fatal("failed to create bot", zap.Error(err))
	}

	backendClient := backend.NewClient(cfg.BackendBindURL, cfg.BackendTimeout)
	lnk := linker.New(pgStore, backendClient, bindQueue, logger)

	syncer := scheduler.New(bindQueue, backendClient, logger, scheduler.Config{
		Workers: cfg.BindSyncWorkers,
	})
	syncer.Start()
	defer syncer.Stop()

	h := handlers.NewHandlers(pgStore, lnk, cfg.SubPriceStars, logger)

	mw := middleware.New(logger)
	handlerChain := mw.Recover(mw.AnalyzeMessageMiddleware(h.MainHandler))

	b.RegisterHandlerMatchFunc(func(update *models.Update) bool {
		return update.Message != nil
	}, handlerChain)

	b.RegisterHandlerMatchFunc(func(update *models.Update) bool {
		return update.PreCheckoutQuery != nil
	}, handlerChain)

	bridgeSrv := bridge.New(cfg.HTTPAddr, b, logger)
	go func() {
		if err := bridgeSrv.Start(); err != nil {
			logger.Error("notification bridge stopped", zap.Error(err))
		}
	}()

	logger.Info("bot and notification bridge started",
		zap.String("http_addr", cfg.HTTPAddr))
	b.Start(ctx)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := bridgeSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("notification bridge shutdown failed", zap.Error(err))
	}
}
