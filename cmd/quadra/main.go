package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/quadra/adapter/cli"
	"github.com/felixgeelhaar/quadra/adapter/cli/task"
	"github.com/felixgeelhaar/quadra/internal/app"
	"github.com/felixgeelhaar/quadra/pkg/config"
	"github.com/felixgeelhaar/quadra/pkg/observability"
)

func main() {
	logger := observability.LoggerFromEnv()

	// Create context with cancellation
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}
	cli.SetLogger(logger)

	var cliApp *cli.App
	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		if !cfg.IsDevelopment() {
			logger.Error("failed to initialize container", "error", err)
			os.Exit(1)
		}
		// In development, allow version and help to run without a database
		logger.Warn("failed to initialize container, running in limited mode", "error", err)
	} else {
		actor, err := container.EnsureLocalUser(ctx)
		if err != nil {
			logger.Error("failed to resolve local user", "error", err)
			container.Close()
			os.Exit(1)
		}

		cliApp = cli.NewApp(container)
		cliApp.SetCurrentActor(actor)
	}
	cli.SetApp(cliApp)

	// Register commands
	cli.AddCommand(task.Cmd)

	code := cli.Execute(ctx)
	if container != nil {
		container.Close()
	}
	cancel()
	os.Exit(code)
}
