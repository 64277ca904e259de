package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"pinpoint/internal/guesses"
	"pinpoint/internal/logging"
	"pinpoint/internal/production"
	"pinpoint/internal/publish"
	"pinpoint/internal/puzzle"
	"pinpoint/internal/services"
	"pinpoint/internal/session"
	"pinpoint/internal/stage"
)

// PuzzleSource fetches today's puzzle.
type PuzzleSource interface {
	Today(ctx context.Context) (puzzle.Task, error)
}

// DecoySource suggests wrong guesses to play before the answer.
type DecoySource interface {
	Suggest(ctx context.Context, task puzzle.Task) (guesses.Suggestion, error)
}

// Player plays one puzzle session and relocates its recording to outputPath.
type Player interface {
	Play(ctx context.Context, task puzzle.Task, outputPath string) session.Outcome
}

// Producer assembles the finished video from the gameplay recording.
type Producer interface {
	Assemble(ctx context.Context, gameplay, output string) (production.Artifact, error)
}

// Publisher uploads the finished video and returns its ID.
type Publisher interface {
	Upload(ctx context.Context, path string, meta publish.Metadata) (string, error)
}

type loggerHolder struct {
	logger *slog.Logger
}

func (h *loggerHolder) SetLogger(logger *slog.Logger) { h.logger = logger }

func (h *loggerHolder) log() *slog.Logger {
	if h.logger == nil {
		return logging.NewNop()
	}
	return h.logger
}

type fetchStage struct {
	loggerHolder
	source PuzzleSource
}

func (s *fetchStage) Prepare(context.Context, *stage.Job) error {
	if s.source == nil {
		return services.Wrap(services.ErrConfiguration, StageFetch, "prepare", "Puzzle source not configured", nil)
	}
	return nil
}

func (s *fetchStage) Execute(ctx context.Context, job *stage.Job) error {
	task, err := s.source.Today(ctx)
	if err != nil {
		marker := services.ErrTransient
		if errors.Is(err, context.DeadlineExceeded) {
			marker = services.ErrTimeout
		}
		return services.Wrap(marker, StageFetch, "today", "Puzzle data unavailable", err)
	}
	job.Task = task
	s.log().Info("puzzle fetched",
		logging.String(logging.FieldPuzzleDate, task.Date),
		logging.Int("clues", len(task.Clues)),
	)
	return nil
}

func (s *fetchStage) HealthCheck(context.Context) stage.Health {
	if s.source == nil {
		return stage.Unhealthy(StageFetch, "puzzle source not configured")
	}
	return stage.Healthy(StageFetch)
}

type enrichStage struct {
	loggerHolder
	source DecoySource
}

func (s *enrichStage) Prepare(_ context.Context, job *stage.Job) error {
	return stage.RequireTask(job, StageEnrich)
}

// Execute never fails the run: every problem becomes a skip with no decoys.
func (s *enrichStage) Execute(ctx context.Context, job *stage.Job) error {
	if s.source == nil {
		return stage.Skip("decoy source not configured")
	}
	suggestion, err := s.source.Suggest(ctx, job.Task)
	if err != nil || !suggestion.OK {
		reason := "no decoys suggested"
		if err != nil {
			reason = err.Error()
		}
		logging.WarnWithContext(s.log(), "continuing without decoys", "enrich_skipped",
			logging.String("reason", reason),
			logging.String(logging.FieldImpact, "answer is typed without wrong guesses first"),
			logging.String(logging.FieldErrorHint, "check llm.api_key and llm.base_url"),
		)
		job.Task = job.Task.WithDecoys(nil)
		return stage.Skip(reason)
	}
	job.Task = job.Task.WithDecoys(suggestion.Decoys)
	s.log().Info("decoys ready", logging.Int("count", len(job.Task.DecoyGuesses)))
	return nil
}

func (s *enrichStage) HealthCheck(context.Context) stage.Health {
	return stage.Healthy(StageEnrich)
}

type playStage struct {
	loggerHolder
	player Player
}

func (s *playStage) Prepare(_ context.Context, job *stage.Job) error {
	if s.player == nil {
		return services.Wrap(services.ErrConfiguration, StagePlay, "prepare", "Session player not configured", nil)
	}
	if strings.TrimSpace(job.RecordingPath) == "" {
		return services.Wrap(services.ErrConfiguration, StagePlay, "prepare", "Recording path not configured", nil)
	}
	return stage.RequireTask(job, StagePlay)
}

func (s *playStage) Execute(ctx context.Context, job *stage.Job) error {
	outcome := s.player.Play(ctx, job.Task, job.RecordingPath)
	job.Outcome = outcome
	if outcome.Succeeded {
		s.log().Info("session recorded",
			logging.String("recording", outcome.RecordingPath),
			logging.Int("submits", outcome.Submits),
		)
		return nil
	}
	return services.Wrap(sessionMarker(outcome), StagePlay, "session", outcome.Failure.String(), outcome.Err)
}

func (s *playStage) HealthCheck(context.Context) stage.Health {
	if s.player == nil {
		return stage.Unhealthy(StagePlay, "session player not configured")
	}
	return stage.Healthy(StagePlay)
}

func sessionMarker(outcome session.Outcome) error {
	if errors.Is(outcome.Err, context.DeadlineExceeded) {
		return services.ErrTimeout
	}
	switch outcome.Failure {
	case session.InputNotFound:
		return services.ErrNotFound
	case session.NavigationError:
		return services.ErrTransient
	default:
		return services.ErrExternalTool
	}
}

type produceStage struct {
	loggerHolder
	producer Producer
}

func (s *produceStage) Prepare(_ context.Context, job *stage.Job) error {
	if s.producer == nil {
		return services.Wrap(services.ErrConfiguration, StageProduce, "prepare", "Video producer not configured", nil)
	}
	return stage.RequireRecording(job, StageProduce)
}

func (s *produceStage) Execute(ctx context.Context, job *stage.Job) error {
	artifact, err := s.producer.Assemble(ctx, job.Outcome.RecordingPath, job.OutputPath)
	if err != nil {
		marker := services.ErrExternalTool
		if errors.Is(err, production.ErrMissingGameplay) {
			marker = services.ErrNotFound
		}
		return services.Wrap(marker, StageProduce, "assemble", "Video assembly failed", err)
	}
	job.Artifact = artifact
	s.log().Info("video produced",
		logging.String("path", artifact.Path),
		logging.Duration("duration", artifact.Duration),
	)
	return nil
}

func (s *produceStage) HealthCheck(context.Context) stage.Health {
	if s.producer == nil {
		return stage.Unhealthy(StageProduce, "video producer not configured")
	}
	return stage.Healthy(StageProduce)
}

type publishStage struct {
	loggerHolder
	publisher Publisher
	settings  publish.MetadataSettings
}

func (s *publishStage) Prepare(_ context.Context, job *stage.Job) error {
	if s.publisher == nil {
		return services.Wrap(services.ErrConfiguration, StagePublish, "prepare", "YouTube uploader not configured", nil)
	}
	if strings.TrimSpace(job.Artifact.Path) == "" {
		return services.Wrap(services.ErrNotFound, StagePublish, "prepare", "No video to publish", nil)
	}
	return nil
}

func (s *publishStage) Execute(ctx context.Context, job *stage.Job) error {
	meta := publish.BuildMetadata(job.Task, s.settings)
	id, err := s.publisher.Upload(ctx, job.Artifact.Path, meta)
	if errors.Is(err, publish.ErrMissingCredentials) {
		return services.Wrap(services.ErrConfiguration, StagePublish, "upload", "YouTube credentials missing", err)
	}
	if err != nil {
		message := "Upload rejected"
		var apiErr *publish.Error
		if errors.As(err, &apiErr) {
			message = fmt.Sprintf("Upload rejected with http %d", apiErr.Status)
		}
		return services.Wrap(services.ErrExternalTool, StagePublish, "upload", message, err)
	}
	job.VideoID = id
	s.log().Info("video published", logging.String("video_id", id), logging.String("title", meta.Title))
	return nil
}

func (s *publishStage) HealthCheck(context.Context) stage.Health {
	if s.publisher == nil {
		return stage.Unhealthy(StagePublish, "youtube uploader not configured")
	}
	return stage.Healthy(StagePublish)
}
