package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/batangdelosreyes03-bit/sidehustle-telegram-bot/api"
	dbfs "github.com/batangdelosreyes03-bit/sidehustle-telegram-bot/db"
	"github.com/batangdelosreyes03-bit/sidehustle-telegram-bot/internal/activity"
	"github.com/batangdelosreyes03-bit/sidehustle-telegram-bot/internal/bot"
	"github.com/batangdelosreyes03-bit/sidehustle-telegram-bot/internal/config"
	"github.com/batangdelosreyes03-bit/sidehustle-telegram-bot/internal/db"
	"github.com/batangdelosreyes03-bit/sidehustle-telegram-bot/internal/dispatch"
	"github.com/batangdelosreyes03-bit/sidehustle-telegram-bot/internal/metrics"
	"github.com/batangdelosreyes03-bit/sidehustle-telegram-bot/internal/report"
	"github.com/batangdelosreyes03-bit/sidehustle-telegram-bot/internal/repository/sqlite"
	"github.com/batangdelosreyes03-bit/sidehustle-telegram-bot/pkg/telegram"
	"github.com/joho/godotenv"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	// .env is optional; real deployments set environment directly
	_ = godotenv.Load()

	var configPath = flag.String("config", "", "Path to config YAML file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)
	api.SetLogger(logger)
	telegram.SetLogger(logger)

	logger.Info("starting sidehustle bot",
		slog.String("version", version),
		slog.String("build_time", buildTime),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Open database connection and apply migrations
	conn, err := db.New(ctx, cfg.DatabasePath, logger)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	if err := db.Migrate(ctx, conn, dbfs.Migrations); err != nil {
		log.Fatalf("Failed to migrate DB: %v", err)
	}

	store := sqlite.New(conn, logger)
	recorder := activity.NewRecorder(store, logger)
	reports := report.NewService(store)

	client, err := telegram.NewDefaultClient(cfg.BotToken, cfg.Telegram)
	if err != nil {
		log.Fatalf("Failed to create telegram client: %v", err)
	}

	dispatcher := dispatch.New(client, cfg.Dispatch, logger)
	engine := bot.NewEngine(cfg, store, recorder, client, dispatcher, reports, nil, logger)

	// Daily metrics aggregation in the background
	aggregator := metrics.New(store, cfg.Metrics.RunAt, logger)
	go aggregator.Run(ctx)

	// Operator HTTP API
	handler := api.SetupRoutes(cfg, version, buildTime, reports)
	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.APITimeout,
		WriteTimeout: cfg.APITimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("operator API listening", slog.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Long-poll loop blocks until the context is cancelled
	poller := telegram.NewPoller(client, engine.HandleUpdate, 5*time.Second)
	poller.Run(ctx)

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", slog.Any("err", err))
	}

	if err := client.Close(); err != nil {
		logger.Error("error closing telegram client", slog.Any("err", err))
	}

	if err := conn.Close(); err != nil {
		logger.Error("error closing DB", slog.Any("err", err))
	}

	logger.Info("bot exited")
}
