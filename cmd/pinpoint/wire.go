package main

import (
	"log/slog"
	"time"

	"pinpoint/internal/browser"
	"pinpoint/internal/config"
	"pinpoint/internal/guesses"
	"pinpoint/internal/notifications"
	"pinpoint/internal/pipeline"
	"pinpoint/internal/production"
	"pinpoint/internal/publish"
	"pinpoint/internal/services/llm"
	"pinpoint/internal/services/puzzleapi"
	"pinpoint/internal/session"
	"pinpoint/internal/timing"
)

// buildRunner wires the production collaborators for one run. Dry runs get no
// publisher; otherwise YouTube credentials are resolved when Publish runs.
func buildRunner(cfg *config.Config, logger *slog.Logger, dryRun bool) *pipeline.Runner {
	llmClient := llm.NewClient(llm.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
	})

	surface := browser.New(browser.OptionsFromConfig(cfg), logger)
	driver := session.NewDriver(surface, timing.New(nil, nil), logger, session.Options{
		NavigationTimeout: cfg.NavigationTimeout(),
		InputTimeout:      cfg.InputTimeout(),
	})

	deps := pipeline.Dependencies{
		Puzzles:  puzzleapi.New(cfg.Puzzle.URL, cfg.PuzzleTimeout()),
		Decoys:   guesses.New(llmClient, logger),
		Player:   driver,
		Producer: production.NewAssembler(production.FFmpeg{Binary: cfg.Media.FFmpegBinary}, production.SettingsFromConfig(cfg), logger),
		Notifier: notifications.NewService(cfg),
	}
	if !dryRun {
		deps.Publisher = publish.NewDeferredUploader(publish.CredentialsFromConfig(cfg),
			time.Duration(cfg.YouTube.TimeoutSeconds)*time.Second, logger)
	}

	return pipeline.NewRunner(deps, pipeline.Options{
		DryRun:        dryRun,
		RecordingPath: cfg.RawRecordingPath(),
		OutputPath:    cfg.FinalVideoPath(),
		Metadata:      publish.MetadataSettingsFromConfig(cfg),
	}, logger)
}
