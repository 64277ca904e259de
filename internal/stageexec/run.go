package stageexec

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"pinpoint/internal/logging"
	"pinpoint/internal/notifications"
	"pinpoint/internal/services"
	"pinpoint/internal/stage"
)

// Tracker records stage status transitions.
type Tracker interface {
	SetStatus(name string, status stage.Status, elapsed time.Duration, detail string)
}

// Options controls stage execution.
type Options struct {
	Logger    *slog.Logger
	Notifier  notifications.Service
	Tracker   Tracker
	Handler   stage.Handler
	StageName string
	Job       *stage.Job
	// Now is injectable for tests.
	Now func() time.Time
}

// Run executes a stage. A handler returning stage.ErrSkipped is recorded as
// skipped and Run returns nil; any other error is recorded, logged, published
// to the notifier and returned.
func Run(ctx context.Context, opts Options) error {
	if opts.Handler == nil {
		return fmt.Errorf("stage handler unavailable: %s", opts.StageName)
	}
	if opts.Job == nil {
		return fmt.Errorf("stage job is required")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	stageCtx := services.WithStage(ctx, opts.StageName)
	if date := strings.TrimSpace(opts.Job.Task.Date); date != "" {
		stageCtx = services.WithPuzzleDate(stageCtx, date)
	}
	stageLogger := logging.WithContext(stageCtx, opts.Logger)
	if aware, ok := opts.Handler.(stage.LoggerAware); ok {
		aware.SetLogger(stageLogger)
	}

	stageLogger.Info(
		"stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.Bool("dry_run", opts.Job.DryRun),
	)
	started := now()
	track(opts.Tracker, opts.StageName, stage.StatusRunning, 0, "")

	err := opts.Handler.Prepare(stageCtx, opts.Job)
	if err == nil {
		err = opts.Handler.Execute(stageCtx, opts.Job)
	}
	elapsed := now().Sub(started)

	if errors.Is(err, stage.ErrSkipped) {
		reason := strings.TrimSpace(strings.TrimPrefix(err.Error(), stage.ErrSkipped.Error()+":"))
		if err == stage.ErrSkipped {
			reason = ""
		}
		track(opts.Tracker, opts.StageName, stage.StatusSkipped, elapsed, reason)
		stageLogger.Info(
			"stage skipped",
			logging.String(logging.FieldEventType, "stage_skipped"),
			logging.String("reason", reason),
			logging.Duration("elapsed", elapsed),
		)
		return nil
	}
	if err != nil {
		return handleFailure(stageCtx, stageLogger, opts, elapsed, err)
	}

	track(opts.Tracker, opts.StageName, stage.StatusCompleted, elapsed, "")
	stageLogger.Info(
		"stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("elapsed", elapsed),
	)
	return nil
}

func handleFailure(ctx context.Context, logger *slog.Logger, opts Options, elapsed time.Duration, stageErr error) error {
	details := services.Details(stageErr)
	message := strings.TrimSpace(details.Message)
	if message == "" {
		message = strings.TrimSpace(stageErr.Error())
	}
	track(opts.Tracker, opts.StageName, stage.StatusFailed, elapsed, message)

	logger.Error(
		"stage failed",
		logging.String(logging.FieldEventType, "stage_failure"),
		logging.String("error_kind", details.Kind),
		logging.String("error_message", message),
		logging.Duration("elapsed", elapsed),
		logging.Error(stageErr),
	)

	if opts.Notifier != nil {
		if err := opts.Notifier.Publish(ctx, notifications.EventError, notifications.Payload{
			"error":   message,
			"context": opts.StageName,
		}); err != nil {
			logger.Debug("stage error notification failed", logging.Error(err))
		}
	}
	return stageErr
}

func track(tracker Tracker, name string, status stage.Status, elapsed time.Duration, detail string) {
	if tracker != nil {
		tracker.SetStatus(name, status, elapsed, detail)
	}
}
