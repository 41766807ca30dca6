package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/felixgeelhaar/quadra/adapter/api"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

var (
	serveAddr      string
	withScheduler  bool
	withOutboxLoop bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Long: `Serve the task API. With --scheduler the daily quadrant refresh runs
in-process; with --outbox pending events are published from here too.
Production deployments run both in the separate worker instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := RequireApp()
		if err != nil {
			return err
		}
		if app.Container == nil {
			return ErrNotInitialized
		}

		cfg := api.DefaultServerConfig()
		switch {
		case serveAddr != "":
			cfg.Addr = serveAddr
		case app.Container.Config.APIAddr != "":
			cfg.Addr = app.Container.Config.APIAddr
		}
		server := api.NewFromContainer(app.Container, cfg)

		g, ctx := errgroup.WithContext(cmd.Context())
		g.Go(func() error {
			if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("api server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
		if withScheduler {
			g.Go(func() error {
				return ignoreCanceled(app.RefreshWorker.Run(ctx))
			})
		}
		if withOutboxLoop {
			g.Go(func() error {
				return ignoreCanceled(app.Container.OutboxProcessor.Run(ctx))
			})
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Serving on http://%s (scheduler: %t)\n", cfg.Addr, withScheduler)
		return g.Wait()
	},
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default API_ADDR)")
	serveCmd.Flags().BoolVar(&withScheduler, "scheduler", false, "run the daily quadrant refresh in this process")
	serveCmd.Flags().BoolVar(&withOutboxLoop, "outbox", false, "publish outbox events from this process")
	rootCmd.AddCommand(serveCmd)
}
