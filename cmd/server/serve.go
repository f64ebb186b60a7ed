package main

import (
	"context"
	"fmt"

	"github.com/phrazzld/melodysnap-api/internal/config"
	"github.com/phrazzld/melodysnap-api/internal/platform/logger"
	"github.com/phrazzld/melodysnap-api/internal/version"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server and the background song pipeline.

Configuration is read from MELODY_* environment variables, an optional .env
file, and config.yaml (or the file given with --config).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, err := config.LoadFile(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"env", cfg.App.Env,
		"version", version.Version)

	app, err := newApplication(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	if err := app.taskRunner.Start(); err != nil {
		app.cleanup()
		return fmt.Errorf("failed to start task runner: %w", err)
	}
	log.Info("Task runner started",
		"workers", cfg.Task.WorkerCount,
		"queue_size", cfg.Task.QueueSize)

	return app.startHTTPServer(ctx, app.router())
}
