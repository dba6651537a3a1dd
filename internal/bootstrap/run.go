// internal/bootstrap/run.go
package bootstrap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vacancy-workers/internal/api"
	"vacancy-workers/internal/common/camunda"
	"vacancy-workers/internal/common/config"
	"vacancy-workers/internal/common/logger"
	"vacancy-workers/internal/common/observability"
	"vacancy-workers/internal/scheduler"
)

// RunWorkers connects to Zeebe, opens every enabled job worker and blocks
// until ctx is cancelled.
func RunWorkers(ctx context.Context, cfg *config.Config, log logger.Logger, obs *observability.Observability) error {
	app, err := New(ctx, cfg, log, DefaultRetry)
	if err != nil {
		return err
	}
	defer app.Close()

	zcfg := camunda.ConfigFrom(cfg.Camunda)
	var zeebeClient zbc.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebeClient, err = camunda.Connect(ctx, zcfg)
		return err
	}, DefaultRetry, log, "Zeebe client initialization")
	if err != nil {
		return err
	}
	app.Checks["zeebe"] = func(ctx context.Context) error {
		return camunda.HealthCheck(ctx, zeebeClient, zcfg.ConnectionTimeout)
	}
	log.Info("Zeebe client connected successfully", map[string]interface{}{
		"gateway": cfg.Camunda.BrokerAddress,
	})

	workers := app.StartWorkers(zeebeClient, obs)

	metricsSrv := app.metricsServer(cfg.Metrics.Port)
	go serveMetrics(metricsSrv, log)

	<-ctx.Done()
	log.Info("Shutdown signal received, stopping workers...", nil)

	for _, w := range workers {
		w.Close()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_ = metricsSrv.Shutdown(shutdownCtx)

	if err := zeebeClient.Close(); err != nil {
		log.Error("Error closing Zeebe client", map[string]interface{}{"error": err.Error()})
	}
	return nil
}

// RunServer serves the HTTP API and the pending-review sweep until ctx is
// cancelled.
func RunServer(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	app, err := New(ctx, cfg, log, DefaultRetry)
	if err != nil {
		return err
	}
	defer app.Close()

	opts := make([]api.Option, 0, len(app.Checks))
	for name, check := range app.Checks {
		opts = append(opts, api.WithReadinessCheck(name, check))
	}
	server, err := api.New(app.Service, log, opts...)
	if err != nil {
		return err
	}

	sweep := scheduler.NewPendingSweep(app.Service, app.Publisher, cfg.Schedules.PendingSweep, cfg.Schedules.PendingLimit,
		scheduler.WithLogger(log))
	if err := sweep.Start(); err != nil {
		return err
	}

	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		metricsSrv = app.metricsServer(cfg.Metrics.Port)
		go serveMetrics(metricsSrv, log)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- server.Listen(cfg.App.Address()) }()

	select {
	case err = <-errCh:
	case <-ctx.Done():
		log.Info("Shutdown signal received, stopping server...", nil)
		err = server.Shutdown()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	sweep.Stop(shutdownCtx)
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	return err
}

func (a *App) metricsServer(port int) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		status, code := "ready", http.StatusOK
		for name, check := range a.Checks {
			if err := check(r.Context()); err != nil {
				a.Log.Warn("readiness check failed", map[string]interface{}{"check": name, "error": err.Error()})
				status, code = "unavailable", http.StatusServiceUnavailable
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]string{
			"status": status,
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.Handle("/metrics", promhttp.Handler())

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func serveMetrics(srv *http.Server, log logger.Logger) {
	log.Info("Health/Metrics server listening", map[string]interface{}{"address": srv.Addr})
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("Health/Metrics server failed", map[string]interface{}{"error": err.Error()})
	}
}
