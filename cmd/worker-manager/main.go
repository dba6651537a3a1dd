// cmd/worker-manager/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"vacancy-workers/internal/bootstrap"
	"vacancy-workers/internal/common/config"
	"vacancy-workers/internal/common/logger"
	"vacancy-workers/internal/common/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := bootstrap.RunWorkers(ctx, cfg, log, obs); err != nil {
		zapLog.Fatal("worker manager failed", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully", zap.Duration("uptime", time.Since(startedAt)))
}

var startedAt = time.Now()
