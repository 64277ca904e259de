package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"pinpoint/internal/logging"
	"pinpoint/internal/notifications"
	"pinpoint/internal/publish"
	"pinpoint/internal/services"
	"pinpoint/internal/stage"
	"pinpoint/internal/stageexec"
)

// Dependencies are the collaborators a run drives. Publisher may be nil on a
// dry run.
type Dependencies struct {
	Puzzles   PuzzleSource
	Decoys    DecoySource
	Player    Player
	Producer  Producer
	Publisher Publisher
	Notifier  notifications.Service
}

// Options configure one run.
type Options struct {
	DryRun        bool
	RecordingPath string
	OutputPath    string
	Metadata      publish.MetadataSettings
	// NewRunID overrides the uuid generator in tests.
	NewRunID func() string
	Now      func() time.Time
}

// Runner executes the pipeline once.
type Runner struct {
	deps   Dependencies
	opts   Options
	logger *slog.Logger
}

// NewRunner builds a runner.
func NewRunner(deps Dependencies, opts Options, logger *slog.Logger) *Runner {
	if opts.NewRunID == nil {
		opts.NewRunID = func() string { return uuid.NewString() }
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if deps.Notifier == nil {
		deps.Notifier = nopNotifier{}
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{deps: deps, opts: opts, logger: logger}
}

type namedHandler struct {
	name    string
	handler stage.Handler
}

func (r *Runner) handlers() []namedHandler {
	return []namedHandler{
		{StageFetch, &fetchStage{source: r.deps.Puzzles}},
		{StageEnrich, &enrichStage{source: r.deps.Decoys}},
		{StagePlay, &playStage{player: r.deps.Player}},
		{StageProduce, &produceStage{producer: r.deps.Producer}},
		{StagePublish, &publishStage{publisher: r.deps.Publisher, settings: r.opts.Metadata}},
	}
}

// HealthChecks reports the readiness of every stage without running it.
func (r *Runner) HealthChecks(ctx context.Context) []stage.Health {
	handlers := r.handlers()
	out := make([]stage.Health, 0, len(handlers))
	for _, h := range handlers {
		if h.name == StagePublish && r.opts.DryRun {
			out = append(out, stage.Health{Name: StagePublish, Ready: true, Detail: "dry run"})
			continue
		}
		out = append(out, h.handler.HealthCheck(ctx))
	}
	return out
}

// Run executes the stages in order and stops at the first required failure.
func (r *Runner) Run(ctx context.Context) Result {
	runID := r.opts.NewRunID()
	state := newRunState(runID, r.opts.DryRun)
	job := &stage.Job{
		RunID:         runID,
		DryRun:        r.opts.DryRun,
		RecordingPath: r.opts.RecordingPath,
		OutputPath:    r.opts.OutputPath,
	}
	started := r.opts.Now()

	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, r.logger)
	logger.Info("run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.Bool("dry_run", r.opts.DryRun),
	)
	r.notify(ctx, logger, notifications.EventRunStarted, notifications.Payload{
		"date":   started.Format("2006-01-02"),
		"dryRun": r.opts.DryRun,
	})

	result := Result{}
	for _, h := range r.handlers() {
		if h.name == StagePublish && r.opts.DryRun {
			state.SetStatus(StagePublish, stage.StatusSkipped, 0, "dry run")
			logger.Info("dry run: publish skipped",
				logging.String(logging.FieldEventType, "publish_skipped"),
				logging.String("artifact", job.Artifact.Path),
			)
			continue
		}

		err := stageexec.Run(ctx, stageexec.Options{
			Logger:    logger,
			Notifier:  r.deps.Notifier,
			Tracker:   state,
			Handler:   h.handler,
			StageName: h.name,
			Job:       job,
			Now:       r.opts.Now,
		})
		if err == nil {
			continue
		}
		reason, fatal := reasonFor(h.name)
		if !fatal {
			logging.WarnWithContext(logger, "optional stage failed", "stage_failure_absorbed",
				logging.String(logging.FieldStage, h.name),
				logging.Error(err),
			)
			continue
		}
		state.Reason = reason
		result.Reason = reason
		result.Err = err
		break
	}

	result.State = *state
	result.Task = job.Task
	result.Outcome = job.Outcome
	result.Artifact = job.Artifact
	result.VideoID = job.VideoID
	result.Elapsed = r.opts.Now().Sub(started)

	if result.Succeeded() {
		logger.Info("run completed",
			logging.String(logging.FieldEventType, "run_complete"),
			logging.String("artifact", result.Artifact.Path),
			logging.String("video_id", result.VideoID),
			logging.Duration("elapsed", result.Elapsed),
		)
		r.notify(ctx, logger, notifications.EventRunCompleted, notifications.Payload{
			"date":      job.Task.Date,
			"videoID":   job.VideoID,
			"videoPath": job.Artifact.Path,
			"duration":  result.Elapsed,
		})
	} else {
		logger.Error("run failed",
			logging.String(logging.FieldEventType, "run_failed"),
			logging.String("reason", result.Reason.String()),
			logging.Error(result.Err),
		)
	}
	return result
}

func (r *Runner) notify(ctx context.Context, logger *slog.Logger, event notifications.Event, payload notifications.Payload) {
	if err := r.deps.Notifier.Publish(ctx, event, payload); err != nil {
		logger.Debug("notification failed", logging.String("event", string(event)), logging.Error(err))
	}
}

type nopNotifier struct{}

func (nopNotifier) Publish(context.Context, notifications.Event, notifications.Payload) error {
	return nil
}
