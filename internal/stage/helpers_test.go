package stage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"pinpoint/internal/puzzle"
	"pinpoint/internal/services"
	"pinpoint/internal/session"
)

func TestRequireTask(t *testing.T) {
	if err := RequireTask(&Job{Task: puzzle.Task{Answer: "Coffee"}}, "play"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := RequireTask(&Job{}, "play")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := RequireTask(nil, "play"); err == nil {
		t.Fatal("expected error for nil job")
	}
}

func TestRequireRecording(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gameplay_raw.webm")
	if err := os.WriteFile(path, []byte("webm"), 0o644); err != nil {
		t.Fatal(err)
	}
	job := &Job{Outcome: session.Outcome{Succeeded: true, RecordingPath: path}}
	if err := RequireRecording(job, "produce"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	job.Outcome.Succeeded = false
	if err := RequireRecording(job, "produce"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found for failed session, got %v", err)
	}

	empty := filepath.Join(t.TempDir(), "empty.webm")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	job = &Job{Outcome: session.Outcome{Succeeded: true, RecordingPath: empty}}
	if err := RequireRecording(job, "produce"); err == nil {
		t.Fatal("expected error for empty recording")
	}
}

func TestSkip(t *testing.T) {
	err := Skip("no decoys")
	if !errors.Is(err, ErrSkipped) || err.Error() != "stage skipped: no decoys" {
		t.Fatalf("unexpected skip error: %v", err)
	}
	if Skip("  ") != ErrSkipped {
		t.Fatal("blank reason should return the sentinel")
	}
}

func TestStatusTerminal(t *testing.T) {
	for status, want := range map[Status]bool{
		StatusPending:   false,
		StatusRunning:   false,
		StatusCompleted: true,
		StatusSkipped:   true,
		StatusFailed:    true,
	} {
		if status.Terminal() != want {
			t.Errorf("%s.Terminal() = %v", status, !want)
		}
	}
}
