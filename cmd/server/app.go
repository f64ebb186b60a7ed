package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/melodysnap-api/internal/api"
	"github.com/phrazzld/melodysnap-api/internal/config"
	"github.com/phrazzld/melodysnap-api/internal/events"
	"github.com/phrazzld/melodysnap-api/internal/metrics"
	"github.com/phrazzld/melodysnap-api/internal/platform/gemini"
	"github.com/phrazzld/melodysnap-api/internal/platform/suno"
	"github.com/phrazzld/melodysnap-api/internal/poll"
	"github.com/phrazzld/melodysnap-api/internal/task"
	"github.com/phrazzld/melodysnap-api/internal/version"
	"github.com/phrazzld/melodysnap-api/internal/video"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	taskStore    *task.MemoryTaskStore
	taskRunner   *task.TaskRunner
	orchestrator *task.Orchestrator
	eventEmitter *events.Dispatcher
	renderer     *video.Renderer
}

// newApplication creates a new application instance with all dependencies initialized.
// The task runner is created but not started.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	analyzer, err := gemini.NewAnalyzer(ctx, logger, cfg.LLM, cfg.Suno.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize image analyzer: %w", err)
	}
	logger.Info("Image analyzer initialized", "model", cfg.LLM.ModelName)

	sunoClient, err := suno.NewClient(cfg.Suno, nil, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize music client: %w", err)
	}
	logger.Info("Music client initialized",
		"model", cfg.Suno.Model,
		"callback_configured", cfg.Suno.CallbackURL != "")

	poller := poll.New(sunoClient, poll.Config{
		Interval:    cfg.Task.PollInterval(),
		MaxAttempts: cfg.Task.PollMaxAttempts,
	}, logger)

	app.eventEmitter = events.NewDispatcher(logger)
	app.eventEmitter.Subscribe("metrics", metrics.TaskEventHandler{})

	app.taskStore = task.NewMemoryTaskStore()
	app.taskRunner = task.NewTaskRunner(app.taskStore, task.TaskRunnerConfig{
		WorkerCount: cfg.Task.WorkerCount,
		QueueSize:   cfg.Task.QueueSize,
		JobTimeout:  cfg.Task.PipelineTimeout(),
		Retention:   cfg.Task.Retention(),
	}, logger)

	app.orchestrator, err = task.NewOrchestrator(task.Dependencies{
		Store:     app.taskStore,
		Runner:    app.taskRunner,
		Analyzer:  analyzer,
		Submitter: sunoClient,
		Poller:    poller,
		Emitter:   app.eventEmitter,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize task orchestrator: %w", err)
	}
	app.taskRunner.SetErrorHandler(app.orchestrator.HandleJobError)

	app.renderer = video.NewRenderer(cfg.Video, nil, nil, logger)

	return app, nil
}

func (app *application) modelInfo() api.ModelInfo {
	return api.ModelInfo{Gemini: app.config.LLM.ModelName, Suno: app.config.Suno.Model}
}

// router creates the HTTP handler for the configured application.
func (app *application) router() http.Handler {
	return api.NewRouter(api.RouterDeps{
		Tasks:    app.orchestrator,
		Renderer: app.renderer,
		Models:   app.modelInfo(),
		Configuration: api.ConfigurationStatus{
			GeminiConfigured: app.config.LLM.GeminiAPIKey != "",
			SunoConfigured:   app.config.Suno.APIToken != "",
		},
		Version:      version.Version,
		MaxImageSize: app.config.App.MaxImageSize,
		VideoDir:     app.renderer.OutputDir(),
		Logger:       app.logger,
	})
}

// cleanup stops background work. Queued and in-flight tasks are failed.
func (app *application) cleanup() {
	app.logger.Info("Stopping task runner")
	app.taskRunner.Stop()
}
