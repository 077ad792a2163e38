// Command gastobot-server runs the expense-ingestion HTTP service.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"gastobot/internal/config"
	"gastobot/internal/migrate"
	"gastobot/internal/server"
	"gastobot/internal/storage/postgres"
)

func main() {
	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found; relying on existing environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := migrate.Up(ctx, cfg.DatabaseURL); err != nil {
		logger.Fatal("apply migrations", zap.Error(err))
	}

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("init database", zap.Error(err))
	}
	defer pool.Close()

	store := postgres.New(pool, logger)
	srv := server.New(cfg, store, logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("gastobot listening", zap.String("addr", cfg.HTTPAddress()))
		errCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctxShutdown); err != nil {
			logger.Error("graceful shutdown", zap.Error(err))
		}
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", zap.Error(err))
			os.Exit(1)
		}
	}

	logger.Info("shutdown complete")
}
