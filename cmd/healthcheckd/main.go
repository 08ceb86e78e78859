package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kflynn/healthcheckd/internal/config"
	"github.com/kflynn/healthcheckd/internal/healthcheck"
	"github.com/kflynn/healthcheckd/internal/metrics"
	"github.com/kflynn/healthcheckd/internal/statuspage"
)

func main() {
	logger, err := newLogger(os.Getenv("LOG_LEVEL"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	logger.Info("starting healthcheckd",
		zap.Int("workers", cfg.Workers),
		zap.String("status_addr", cfg.StatusAddr),
		zap.String("metrics_addr", cfg.MetricsAddr),
		zap.Int("peer_count", len(cfg.Peers)))

	m := metrics.NewMetrics("healthcheck")

	registry := healthcheck.NewRegistry(logger, m)
	for _, peer := range cfg.Peers {
		registry.RegisterPeer(peer)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	workers := make([]*healthcheck.Worker, 0, cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		id := fmt.Sprintf("worker-%d", i)
		workers = append(workers, registry.WorkerInit(ctx, id))
		logger.Info("worker started", zap.String("worker", id))
	}

	statusServer := statuspage.NewServer(cfg.StatusAddr, registry, logger)
	go func() {
		logger.Info("status server listening", zap.String("addr", cfg.StatusAddr))
		if err := statusServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("status server failed", zap.Error(err))
		}
	}()

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{Addr: cfg.MetricsAddr, Handler: metricsMux}

	go func() {
		logger.Info("metrics server listening", zap.String("addr", cfg.MetricsAddr))
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("metrics server failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down gracefully")
	cancel()
	for _, w := range workers {
		w.Shutdown()
	}
	_ = statusServer.Close()
	_ = metricsServer.Close()
	logger.Info("shutdown complete")
}

func newLogger(level string) (*zap.Logger, error) {
	switch level {
	case "debug":
		cfg := zap.NewDevelopmentConfig()
		return cfg.Build()
	default:
		return zap.NewProduction()
	}
}
