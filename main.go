package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/seo-optimizer/auditor/analyzer"
	"github.com/seo-optimizer/auditor/config"
	"github.com/seo-optimizer/auditor/logging"
	"github.com/seo-optimizer/auditor/middleware"
	"github.com/seo-optimizer/auditor/stats"
)

const (
	shutdownTimeout = 15 * time.Second
	retainMonths    = 12
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	config.LoadEnv()

	cfg, err := config.Load("")
	if err != nil {
		return err
	}

	logger := logging.New(cfg.Logging)
	slog.SetDefault(logger)
	gin.SetMode(cfg.Server.GinMode)

	storage, err := stats.NewStorage(cfg.Server.DataDir, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := storage.Shutdown(); err != nil {
			logger.Error("failed to flush statistics", "error", err)
		}
	}()
	storage.Cleanup(retainMonths)

	srv := &server{
		auditor: analyzer.NewFromConfig(cfg, logger),
		storage: storage,
		traffic: stats.NewTraffic(),
		limiter: middleware.NewRateLimiter(cfg.Server.RateLimit.RequestsPerSecond, cfg.Server.RateLimit.Burst),
		logger:  logger,
		devMode: cfg.Server.DevMode,
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", "http://localhost:"+cfg.Server.Port, "insights", cfg.Insight.Enabled)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
