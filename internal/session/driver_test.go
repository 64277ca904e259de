package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"pinpoint/internal/puzzle"
	"pinpoint/internal/timing"
)

type fakeSurface struct {
	t *testing.T

	navigateErr   error
	startFound    bool
	startErr      error
	inputFailures map[int]bool // 1-based WaitForInput call numbers that fail
	submitErr     error
	panicOnType   bool
	noRecording   bool

	waits     int
	typed     strings.Builder
	submitted []string
	clears    int
	closed    int
	calls     []string
	tempDir   string
}

func newFakeSurface(t *testing.T) *fakeSurface {
	return &fakeSurface{t: t, inputFailures: map[int]bool{}, tempDir: t.TempDir()}
}

func (f *fakeSurface) Navigate(context.Context) error {
	f.calls = append(f.calls, "navigate")
	return f.navigateErr
}

func (f *fakeSurface) DismissStart(context.Context) (bool, error) {
	f.calls = append(f.calls, "start")
	return f.startFound, f.startErr
}

func (f *fakeSurface) WaitForInput(_ context.Context, timeout time.Duration) error {
	f.waits++
	f.calls = append(f.calls, "wait")
	if timeout <= 0 {
		f.t.Errorf("expected bounded input wait, got %v", timeout)
	}
	if f.inputFailures[f.waits] {
		return errors.New("selector not visible")
	}
	return nil
}

func (f *fakeSurface) ClearInput(context.Context) error {
	f.clears++
	f.calls = append(f.calls, "clear")
	f.typed.Reset()
	return nil
}

func (f *fakeSurface) Type(_ context.Context, text string) error {
	if f.panicOnType {
		panic("element detached")
	}
	f.typed.WriteString(text)
	return nil
}

func (f *fakeSurface) Submit(context.Context) error {
	f.calls = append(f.calls, "submit")
	if f.submitErr != nil {
		return f.submitErr
	}
	f.submitted = append(f.submitted, f.typed.String())
	f.typed.Reset()
	return nil
}

func (f *fakeSurface) Close(context.Context) (string, error) {
	f.closed++
	f.calls = append(f.calls, "close")
	if f.noRecording {
		return "", nil
	}
	path := filepath.Join(f.tempDir, "capture.webm")
	if err := os.WriteFile(path, []byte("webm-bytes"), 0o644); err != nil {
		f.t.Fatalf("write recording: %v", err)
	}
	return path, nil
}

func play(t *testing.T, surface *fakeSurface, task puzzle.Task) (Outcome, string) {
	t.Helper()
	output := filepath.Join(t.TempDir(), "work", "gameplay_raw.webm")
	driver := NewDriver(surface, timing.Instant{}, nil, Options{})
	return driver.Play(context.Background(), task, output), output
}

func TestPlayWithoutDecoysCompletes(t *testing.T) {
	surface := newFakeSurface(t)
	outcome, output := play(t, surface, puzzle.Task{Answer: "Coffee"})

	if !outcome.Succeeded || outcome.FinalState != StateCompleted {
		t.Fatalf("expected completed success, got %+v", outcome)
	}
	if outcome.RecordingPath != output {
		t.Fatalf("expected recording at %s, got %s", output, outcome.RecordingPath)
	}
	info, err := os.Stat(output)
	if err != nil || info.Size() == 0 {
		t.Fatalf("expected non-empty recording at output path: %v", err)
	}
	if outcome.Submits != 1 {
		t.Fatalf("expected 1 submit, got %d", outcome.Submits)
	}
}

func TestSubmitCountMatchesDecoys(t *testing.T) {
	for n := 0; n <= puzzle.MaxDecoys; n++ {
		decoys := []string{"Tea", "Espresso"}[:n]
		surface := newFakeSurface(t)
		outcome, _ := play(t, surface, puzzle.Task{Answer: "Coffee", DecoyGuesses: decoys})
		if !outcome.Succeeded {
			t.Fatalf("%d decoys: expected success, got %+v", n, outcome)
		}
		if outcome.Submits != n+1 {
			t.Fatalf("%d decoys: expected %d submits, got %d", n, n+1, outcome.Submits)
		}
	}
}

func TestCoffeeScenarioSubmitsInOrder(t *testing.T) {
	surface := newFakeSurface(t)
	outcome, _ := play(t, surface, puzzle.Task{Answer: "Coffee", DecoyGuesses: []string{"Tea", "Espresso"}})

	if !outcome.Succeeded {
		t.Fatalf("expected success, got %+v", outcome)
	}
	want := []string{"Tea", "Espresso", "Coffee"}
	if !reflect.DeepEqual(surface.submitted, want) {
		t.Fatalf("submitted %v, want %v", surface.submitted, want)
	}
	if surface.clears != 1 {
		t.Fatalf("expected input cleared once before the answer, got %d", surface.clears)
	}
}

func TestDecoyWithoutInputIsSkipped(t *testing.T) {
	surface := newFakeSurface(t)
	surface.inputFailures[1] = true
	outcome, _ := play(t, surface, puzzle.Task{Answer: "Coffee", DecoyGuesses: []string{"Tea", "Espresso"}})

	if !outcome.Succeeded {
		t.Fatalf("expected success despite skipped decoy, got %+v", outcome)
	}
	if want := []string{"Espresso", "Coffee"}; !reflect.DeepEqual(surface.submitted, want) {
		t.Fatalf("submitted %v, want %v", surface.submitted, want)
	}
	if outcome.Submits != 2 {
		t.Fatalf("expected 2 submits, got %d", outcome.Submits)
	}
}

func TestMissingAnswerInputIsFatal(t *testing.T) {
	surface := newFakeSurface(t)
	surface.inputFailures[1] = true
	outcome, output := play(t, surface, puzzle.Task{Answer: "Coffee"})

	if outcome.Succeeded || outcome.Failure != InputNotFound {
		t.Fatalf("expected InputNotFound, got %+v", outcome)
	}
	if outcome.FinalState != StateFatal {
		t.Fatalf("expected fatal state, got %s", outcome.FinalState)
	}
	if surface.closed != 1 {
		t.Fatalf("expected surface closed once, got %d", surface.closed)
	}
	if outcome.RecordingPath != output {
		t.Fatalf("expected diagnostic recording persisted, got %q", outcome.RecordingPath)
	}
}

func TestNavigationFailure(t *testing.T) {
	surface := newFakeSurface(t)
	surface.navigateErr = errors.New("net::ERR_NAME_NOT_RESOLVED")
	outcome, _ := play(t, surface, puzzle.Task{Answer: "Coffee"})

	if outcome.Succeeded || outcome.Failure != NavigationError {
		t.Fatalf("expected NavigationError, got %+v", outcome)
	}
	if surface.waits != 0 {
		t.Fatalf("expected no input waits after navigation failure, got %d", surface.waits)
	}
	if surface.closed != 1 {
		t.Fatalf("expected surface closed once, got %d", surface.closed)
	}
}

func TestMissingRecordingOverridesSuccess(t *testing.T) {
	surface := newFakeSurface(t)
	surface.noRecording = true
	outcome, _ := play(t, surface, puzzle.Task{Answer: "Coffee"})

	if outcome.Succeeded || outcome.Failure != NoRecording {
		t.Fatalf("expected NoRecording, got %+v", outcome)
	}
	if outcome.RecordingPath != "" {
		t.Fatalf("expected no recording path, got %q", outcome.RecordingPath)
	}
}

func TestMissingRecordingKeepsGameplayFailure(t *testing.T) {
	surface := newFakeSurface(t)
	surface.noRecording = true
	surface.navigateErr = errors.New("timeout")
	outcome, _ := play(t, surface, puzzle.Task{Answer: "Coffee"})

	if outcome.Failure != NavigationError {
		t.Fatalf("expected NavigationError to take precedence, got %s", outcome.Failure)
	}
}

func TestSurfaceErrorsBecomeRuntimeError(t *testing.T) {
	surface := newFakeSurface(t)
	surface.submitErr = errors.New("keyboard dispatch failed")
	outcome, _ := play(t, surface, puzzle.Task{Answer: "Coffee"})

	if outcome.Succeeded || outcome.Failure != RuntimeError {
		t.Fatalf("expected RuntimeError, got %+v", outcome)
	}
	if surface.closed != 1 {
		t.Fatalf("expected surface closed once, got %d", surface.closed)
	}
}

func TestPanicBecomesRuntimeError(t *testing.T) {
	surface := newFakeSurface(t)
	surface.panicOnType = true
	outcome, _ := play(t, surface, puzzle.Task{Answer: "Coffee"})

	if outcome.Failure != RuntimeError {
		t.Fatalf("expected RuntimeError, got %+v", outcome)
	}
	if surface.closed != 1 {
		t.Fatalf("expected surface closed after panic, got %d", surface.closed)
	}
}

func TestStartControlFailureIsNotFatal(t *testing.T) {
	surface := newFakeSurface(t)
	surface.startErr = errors.New("click intercepted")
	outcome, _ := play(t, surface, puzzle.Task{Answer: "Coffee"})

	if !outcome.Succeeded {
		t.Fatalf("expected success, got %+v", outcome)
	}
}

func TestPacingWindows(t *testing.T) {
	surface := newFakeSurface(t)
	surface.startFound = true
	pacer := &timing.Recorder{}
	driver := NewDriver(surface, pacer, nil, Options{})
	outcome := driver.Play(context.Background(), puzzle.Task{Answer: "Cup", DecoyGuesses: []string{"Mug"}}, filepath.Join(t.TempDir(), "out.webm"))
	if !outcome.Succeeded {
		t.Fatalf("expected success, got %+v", outcome)
	}

	w := DefaultWindows()
	want := [][2]time.Duration{w.AfterLoad, w.AfterStart, w.BeforeSubmit, w.AfterDecoy, w.BeforeAnswer, w.Settle}
	if !reflect.DeepEqual(pacer.Thinks, want) {
		t.Fatalf("thinks = %v, want %v", pacer.Thinks, want)
	}
	if pacer.Keystrokes != len("Mug")+len("Cup") {
		t.Fatalf("expected one keystroke delay per character, got %d", pacer.Keystrokes)
	}
}

func TestCancelledContextStillTearsDown(t *testing.T) {
	surface := newFakeSurface(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	driver := NewDriver(surface, timing.Instant{}, nil, Options{})
	outcome := driver.Play(ctx, puzzle.Task{Answer: "Coffee"}, filepath.Join(t.TempDir(), "out.webm"))

	if outcome.Succeeded {
		t.Fatal("expected failure on cancelled context")
	}
	if surface.closed != 1 {
		t.Fatalf("expected surface closed once, got %d", surface.closed)
	}
}

func TestFailureRecordsStateItOccurredIn(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(*fakeSurface)
		task   puzzle.Task
		want   Failure
		wantIn State
	}{
		{
			name:   "decoy submit",
			setup:  func(f *fakeSurface) { f.submitErr = errors.New("keyboard dispatch failed") },
			task:   puzzle.Task{Answer: "Coffee", DecoyGuesses: []string{"Tea"}},
			want:   RuntimeError,
			wantIn: StateReady,
		},
		{
			name:   "answer submit",
			setup:  func(f *fakeSurface) { f.submitErr = errors.New("keyboard dispatch failed") },
			task:   puzzle.Task{Answer: "Coffee"},
			want:   RuntimeError,
			wantIn: StateFinalizing,
		},
		{
			name:   "answer typing",
			setup:  func(f *fakeSurface) { f.panicOnType = true },
			task:   puzzle.Task{Answer: "Coffee"},
			want:   RuntimeError,
			wantIn: StateFinalizing,
		},
		{
			name:   "answer input missing",
			setup:  func(f *fakeSurface) { f.inputFailures[1] = true },
			task:   puzzle.Task{Answer: "Coffee"},
			want:   InputNotFound,
			wantIn: StateFinalizing,
		},
		{
			name:   "navigation",
			setup:  func(f *fakeSurface) { f.navigateErr = errors.New("timeout") },
			task:   puzzle.Task{Answer: "Coffee"},
			want:   NavigationError,
			wantIn: StateInit,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			surface := newFakeSurface(t)
			tt.setup(surface)
			outcome, _ := play(t, surface, tt.task)
			if outcome.Failure != tt.want {
				t.Fatalf("expected %s, got %+v", tt.want, outcome)
			}
			if outcome.FailedIn != tt.wantIn {
				t.Fatalf("expected failure in %s, got %s", tt.wantIn, outcome.FailedIn)
			}
			if outcome.FinalState != StateFatal {
				t.Fatalf("expected fatal final state, got %s", outcome.FinalState)
			}
		})
	}
}
