package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v8"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/dodopay/contas/internal/config"
	"github.com/dodopay/contas/internal/consumer"
	"github.com/dodopay/contas/internal/conversation"
	"github.com/dodopay/contas/internal/repository"
	"github.com/dodopay/contas/internal/server"
	"github.com/dodopay/contas/internal/service"
)

const shutdownTimeout = 5 * time.Second

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := godotenv.Load(); err != nil {
		logrus.Info("no .env file found, reading environment")
	}

	cfg := config.Config{}
	if err := env.Parse(&cfg); err != nil {
		logrus.Fatalf("parse config: %v", err)
	}

	if err := repository.Migrate(cfg.DatabaseURL); err != nil {
		logrus.Fatalf("migrate database: %v", err)
	}

	pool, err := repository.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logrus.Fatalf("connect to database: %v", err)
	}
	defer pool.Close()

	store := repository.NewEntries(pool)
	entries := service.NewEntries(store)
	report := service.NewReport(store)
	rollover := service.NewRollover(store)

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		logrus.Fatalf("create telegram bot: %v", err)
	}

	bot := consumer.NewBot(api, cfg.Telegram.ChatID, cfg.Telegram.Timeout, conversation.NewStore(), entries)
	go bot.Consume(ctx)

	handler := server.NewHandler(entries, report, rollover)
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: server.NewRouter(handler),
	}
	go func() {
		logrus.Infof("http server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Errorf("http server stopped: %v", err)
			cancel()
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, os.Interrupt)
	select {
	case <-quit:
	case <-ctx.Done():
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("http server shutdown: %v", err)
	}
}
