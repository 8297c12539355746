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

	"github.com/sourcegraph/conc"

	"github.com/draftedge/draftedge/internal/app"
	"github.com/draftedge/draftedge/internal/config"
	"github.com/draftedge/draftedge/internal/observability"
	"github.com/draftedge/draftedge/internal/platform/logging"
	"github.com/draftedge/draftedge/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	accessLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slogLevel(cfg.LogLevel),
	}))
	slog.SetDefault(accessLogger)

	shutdownUptrace, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("init uptrace", "error", err)
		os.Exit(1)
	}

	stopPyroscope, err := observability.InitPyroscope(cfg, accessLogger)
	if err != nil {
		logger.Error("init pyroscope", "error", err)
		os.Exit(1)
	}

	pprofSrv, err := observability.StartPprofServer(cfg, accessLogger)
	if err != nil {
		logger.Error("start pprof server", "error", err)
		os.Exit(1)
	}

	application, err := app.New(cfg, logger, accessLogger)
	if err != nil {
		logger.Error("compose application", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg conc.WaitGroup
	wg.Go(func() {
		runRefreshLoop(ctx, application.Refresh, cfg.RefreshInterval, logger)
	})

	go func() {
		logger.Info("http server starting",
			"addr", cfg.HTTPAddr,
			"env", cfg.AppEnv,
			"version", cfg.ServiceVersion,
		)
		if err := application.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := application.Server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown", "error", err)
	}
	wg.Wait()
	application.Pool.Release()

	if err := observability.StopPprofServer(pprofSrv, accessLogger, shutdownTimeout); err != nil {
		logger.Error("pprof server shutdown", "error", err)
	}
	if err := stopPyroscope(); err != nil {
		logger.Error("pyroscope shutdown", "error", err)
	}
	if err := shutdownUptrace(shutdownCtx); err != nil {
		logger.Error("uptrace shutdown", "error", err)
	}

	logger.Info("server stopped")
}

// runRefreshLoop performs the initial data load and keeps the snapshot fresh
// until the process shuts down. A failed cycle leaves the previous snapshot
// serving and retries on the next tick.
func runRefreshLoop(ctx context.Context, svc *usecase.RefreshService, interval time.Duration, logger *logging.Logger) {
	if report, err := svc.Refresh(ctx); err != nil {
		logger.ErrorContext(ctx, "initial data refresh failed", "error", err)
	} else {
		logger.InfoContext(ctx, "initial data refresh complete",
			"players", report.PlayerCount,
			"degraded", len(report.Degraded),
		)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if report, err := svc.Refresh(ctx); err != nil {
				logger.ErrorContext(ctx, "scheduled data refresh failed", "error", err)
			} else {
				logger.InfoContext(ctx, "scheduled data refresh complete",
					"players", report.PlayerCount,
					"degraded", len(report.Degraded),
				)
			}
		}
	}
}

func slogLevel(level logging.Level) slog.Level {
	switch level {
	case logging.LevelDebug:
		return slog.LevelDebug
	case logging.LevelWarn:
		return slog.LevelWarn
	case logging.LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
