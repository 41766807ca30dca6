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

	"github.com/felixgeelhaar/quadra/internal/app"
	"github.com/felixgeelhaar/quadra/pkg/config"
	"github.com/felixgeelhaar/quadra/pkg/observability"
	"golang.org/x/sync/errgroup"
)

func main() {
	logger := observability.LoggerFromEnv()
	logger.Info("starting quadra worker")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}

	err = run(ctx, container, logger)
	container.Close()
	if err != nil {
		logger.Error("worker stopped with error", "error", err)
		cancel()
		os.Exit(1)
	}
	logger.Info("worker stopped")
}

// run starts every background loop and blocks until ctx is cancelled or
// one of them fails.
func run(ctx context.Context, c *app.Container, logger *slog.Logger) error {
	cfg := c.Config
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return ignoreCanceled(c.RefreshWorker.Run(ctx))
	})

	if cfg.OutboxProcessorEnabled {
		g.Go(func() error {
			return c.OutboxProcessor.Run(ctx)
		})
		g.Go(func() error {
			cleanupLoop(ctx, c, logger)
			return nil
		})
		g.Go(func() error {
			statsLoop(ctx, c, logger)
			return nil
		})
	} else {
		logger.Info("outbox processor disabled")
	}

	if cfg.WorkerHealthAddr != "" {
		healthSrv := &http.Server{
			Addr:              cfg.WorkerHealthAddr,
			Handler:           newHealthMux(c),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			logger.Info("health server starting", "addr", cfg.WorkerHealthAddr)
			if err := healthSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			return healthSrv.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}

func cleanupLoop(ctx context.Context, c *app.Container, logger *slog.Logger) {
	interval := c.Config.OutboxCleanupInterval
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	retention := time.Duration(c.Config.OutboxRetentionDays) * 24 * time.Hour

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := c.OutboxProcessor.Cleanup(ctx, retention); err != nil {
				logger.Error("outbox cleanup failed", "error", err)
			}
		}
	}
}

func statsLoop(ctx context.Context, c *app.Container, logger *slog.Logger) {
	interval := c.Config.OutboxStatsInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := c.OutboxProcessor.GetStats()
			logger.Info("outbox stats",
				"running", stats.IsRunning,
				"published", stats.PublishedCount,
				"failed", stats.FailedCount,
				"dead", stats.DeadCount,
				"last_processed_at", stats.LastProcessedAt,
				"last_error_at", stats.LastErrorAt,
				"last_error", stats.LastError,
			)
		}
	}
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
