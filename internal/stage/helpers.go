package stage

import (
	"errors"
	"fmt"
	"strings"

	"pinpoint/internal/fileutil"
	"pinpoint/internal/services"
)

// ErrSkipped marks a stage that finished without producing its optional
// output. The run continues.
var ErrSkipped = errors.New("stage skipped")

// Skip returns an ErrSkipped error carrying reason.
func Skip(reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrSkipped
	}
	return fmt.Errorf("%w: %s", ErrSkipped, reason)
}

// RequireTask rejects a job whose puzzle has no answer.
func RequireTask(job *Job, stageName string) error {
	if job == nil || !job.Task.Valid() {
		return services.Wrap(
			services.ErrValidation, stageName, "require task",
			"No puzzle loaded; the fetch stage must succeed first", nil)
	}
	return nil
}

// RequireRecording rejects a job without a usable gameplay recording.
func RequireRecording(job *Job, stageName string) error {
	if job == nil || !job.Outcome.Succeeded || !fileutil.NonEmptyFile(job.Outcome.RecordingPath) {
		return services.Wrap(
			services.ErrNotFound, stageName, "require recording",
			"Gameplay recording missing or empty", nil)
	}
	return nil
}
