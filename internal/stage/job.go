package stage

import (
	"pinpoint/internal/production"
	"pinpoint/internal/puzzle"
	"pinpoint/internal/session"
)

// Job carries the artifacts of one pipeline run from stage to stage.
type Job struct {
	RunID  string
	DryRun bool

	// RecordingPath is where Play relocates the session recording.
	RecordingPath string
	// OutputPath is where Produce writes the finished video.
	OutputPath string

	Task     puzzle.Task
	Outcome  session.Outcome
	Artifact production.Artifact
	VideoID  string
}

// Status is the lifecycle position of one stage within a run.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// Terminal reports whether the status is final for this run.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusSkipped || s == StatusFailed
}
