package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/botgpt/botgpt/api"
	"github.com/botgpt/botgpt/internal/app"
	"github.com/botgpt/botgpt/internal/config"
	"github.com/botgpt/botgpt/internal/log"
)

// runServe initializes the application and runs the HTTP API server until
// SIGINT or SIGTERM.
func runServe(cfg *config.Config, logger log.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("starting botgpt", "version", AppVersion)

	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			logger.Warn("shutdown error", "error", closeErr)
		}
	}()

	server := api.NewServer(a.DBPool, a.Store, a.Engine, a.Indexer, a.Extractor, logger.With("component", "api"))
	return server.Run(ctx, cfg.ListenAddr)
}
