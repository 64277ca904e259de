package pipeline

import (
	"fmt"
	"strings"
	"time"

	"pinpoint/internal/production"
	"pinpoint/internal/puzzle"
	"pinpoint/internal/services"
	"pinpoint/internal/session"
	"pinpoint/internal/stage"
)

// Stage names in execution order.
const (
	StageFetch   = "fetch"
	StageEnrich  = "enrich"
	StagePlay    = "play"
	StageProduce = "produce"
	StagePublish = "publish"
)

// Order lists the stages as they run.
var Order = []string{StageFetch, StageEnrich, StagePlay, StageProduce, StagePublish}

// ExitReason names the stage that ended a run early. Empty means success.
type ExitReason string

const (
	ReasonNone       ExitReason = ""
	FetchFailed      ExitReason = "fetch_failed"
	SessionFailed    ExitReason = "session_failed"
	ProductionFailed ExitReason = "production_failed"
	PublishFailed    ExitReason = "publish_failed"
)

func (r ExitReason) String() string {
	if r == ReasonNone {
		return "none"
	}
	return string(r)
}

// reasonFor maps a failed stage to its exit reason. Enrich has none because it
// never ends a run.
func reasonFor(stageName string) (ExitReason, bool) {
	switch stageName {
	case StageFetch:
		return FetchFailed, true
	case StagePlay:
		return SessionFailed, true
	case StageProduce:
		return ProductionFailed, true
	case StagePublish:
		return PublishFailed, true
	default:
		return ReasonNone, false
	}
}

// StageState is the status of one stage within a run.
type StageState struct {
	Name    string
	Status  stage.Status
	Elapsed time.Duration
	Detail  string
}

// RunState tracks every stage of one process invocation. It is never persisted.
type RunState struct {
	RunID  string
	DryRun bool
	Stages []StageState
	Reason ExitReason
}

func newRunState(runID string, dryRun bool) *RunState {
	state := &RunState{RunID: runID, DryRun: dryRun, Stages: make([]StageState, 0, len(Order))}
	for _, name := range Order {
		state.Stages = append(state.Stages, StageState{Name: name, Status: stage.StatusPending})
	}
	return state
}

// SetStatus implements stageexec.Tracker.
func (s *RunState) SetStatus(name string, status stage.Status, elapsed time.Duration, detail string) {
	for i := range s.Stages {
		if s.Stages[i].Name == name {
			s.Stages[i].Status = status
			s.Stages[i].Elapsed = elapsed
			s.Stages[i].Detail = detail
			return
		}
	}
}

// Stage returns the state of the named stage.
func (s RunState) Stage(name string) (StageState, bool) {
	for _, st := range s.Stages {
		if st.Name == name {
			return st, true
		}
	}
	return StageState{}, false
}

// Result is the terminal outcome of Runner.Run.
type Result struct {
	State    RunState
	Reason   ExitReason
	Err      error
	Task     puzzle.Task
	Outcome  session.Outcome
	Artifact production.Artifact
	VideoID  string
	Elapsed  time.Duration
}

// Succeeded reports whether the run finished every required stage.
func (r Result) Succeeded() bool {
	return r.Reason == ReasonNone && r.Err == nil
}

// ExitCode is 0 on success (including dry-run success) and 1 otherwise.
func (r Result) ExitCode() int {
	if r.Succeeded() {
		return 0
	}
	return 1
}

// FailureMessage renders the single user-facing line for a failed run.
func (r Result) FailureMessage() string {
	if r.Succeeded() {
		return ""
	}
	stageName := "run"
	for _, st := range r.State.Stages {
		if st.Status == stage.StatusFailed {
			stageName = st.Name
			break
		}
	}
	parts := []string{r.Reason.String()}
	if r.Reason == SessionFailed && r.Outcome.Failure != session.FailureNone {
		parts = append(parts, r.Outcome.Failure.String())
	}
	if r.Err != nil {
		parts = append(parts, services.Details(r.Err).Message)
	}
	return fmt.Sprintf("run failed: %s: %s", stageName, strings.Join(parts, ": "))
}
