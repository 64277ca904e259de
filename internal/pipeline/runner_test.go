package pipeline

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pinpoint/internal/guesses"
	"pinpoint/internal/logging"
	"pinpoint/internal/notifications"
	"pinpoint/internal/production"
	"pinpoint/internal/publish"
	"pinpoint/internal/puzzle"
	"pinpoint/internal/services"
	"pinpoint/internal/services/puzzleapi"
	"pinpoint/internal/session"
	"pinpoint/internal/stage"
	"pinpoint/internal/timing"
)

var coffee = puzzle.Task{
	Date:   "2026-01-11",
	Answer: "Coffee",
	Clues:  []string{"Latte", "Mocha", "Americano", "Cappuccino", "Macchiato"},
}

type fakePuzzles struct {
	task  puzzle.Task
	err   error
	calls int
}

func (f *fakePuzzles) Today(context.Context) (puzzle.Task, error) {
	f.calls++
	return f.task, f.err
}

type fakeDecoys struct {
	suggestion guesses.Suggestion
	err        error
}

func (f *fakeDecoys) Suggest(context.Context, puzzle.Task) (guesses.Suggestion, error) {
	return f.suggestion, f.err
}

type fakePlayer struct {
	outcome session.Outcome
	calls   int
	task    puzzle.Task
}

func (f *fakePlayer) Play(_ context.Context, task puzzle.Task, outputPath string) session.Outcome {
	f.calls++
	f.task = task
	out := f.outcome
	if out.Succeeded {
		_ = os.WriteFile(outputPath, []byte("webm"), 0o644)
		out.RecordingPath = outputPath
	}
	return out
}

type fakeProducer struct {
	err   error
	calls int
}

func (f *fakeProducer) Assemble(_ context.Context, gameplay, output string) (production.Artifact, error) {
	f.calls++
	if f.err != nil {
		return production.Artifact{}, f.err
	}
	if _, err := os.Stat(gameplay); err != nil {
		return production.Artifact{}, production.ErrMissingGameplay
	}
	if err := os.WriteFile(output, []byte("mp4"), 0o644); err != nil {
		return production.Artifact{}, err
	}
	return production.Artifact{Path: output, Duration: 42 * time.Second}, nil
}

type fakePublisher struct {
	err   error
	calls int
	meta  publish.Metadata
}

func (f *fakePublisher) Upload(_ context.Context, _ string, meta publish.Metadata) (string, error) {
	f.calls++
	f.meta = meta
	if f.err != nil {
		return "", f.err
	}
	return "vid-1", nil
}

type recordingNotifier struct {
	events []notifications.Event
}

func (r *recordingNotifier) Publish(_ context.Context, event notifications.Event, _ notifications.Payload) error {
	r.events = append(r.events, event)
	return nil
}

type harness struct {
	puzzles   *fakePuzzles
	decoys    *fakeDecoys
	player    *fakePlayer
	producer  *fakeProducer
	publisher *fakePublisher
	notifier  *recordingNotifier
	dir       string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return &harness{
		puzzles:   &fakePuzzles{task: coffee},
		decoys:    &fakeDecoys{suggestion: guesses.Suggestion{Decoys: []string{"Tea", "Espresso"}, OK: true}},
		player:    &fakePlayer{outcome: session.Outcome{Succeeded: true, FinalState: session.StateCompleted, Submits: 3}},
		producer:  &fakeProducer{},
		publisher: &fakePublisher{},
		notifier:  &recordingNotifier{},
		dir:       t.TempDir(),
	}
}

func (h *harness) deps(player Player) Dependencies {
	if player == nil {
		player = h.player
	}
	return Dependencies{
		Puzzles:   h.puzzles,
		Decoys:    h.decoys,
		Player:    player,
		Producer:  h.producer,
		Publisher: h.publisher,
		Notifier:  h.notifier,
	}
}

func (h *harness) run(dryRun bool, player Player) Result {
	runner := NewRunner(h.deps(player), Options{
		DryRun:        dryRun,
		RecordingPath: filepath.Join(h.dir, "gameplay_raw.webm"),
		OutputPath:    filepath.Join(h.dir, "final_output.mp4"),
		Metadata:      publish.MetadataSettings{Tags: []string{"LinkedIn Pinpoint"}},
		NewRunID:      func() string { return "run-1" },
	}, logging.NewNop())
	return runner.Run(context.Background())
}

func assertStatus(t *testing.T, result Result, name string, want stage.Status) {
	t.Helper()
	st, ok := result.State.Stage(name)
	if !ok {
		t.Fatalf("stage %s missing from state", name)
	}
	if st.Status != want {
		t.Fatalf("stage %s status = %s, want %s (detail %q)", name, st.Status, want, st.Detail)
	}
}

func TestRunPublishesOnSuccess(t *testing.T) {
	h := newHarness(t)
	result := h.run(false, nil)

	if !result.Succeeded() || result.ExitCode() != 0 {
		t.Fatalf("expected success, got %s: %v", result.Reason, result.Err)
	}
	if result.VideoID != "vid-1" || h.publisher.calls != 1 {
		t.Fatalf("expected one upload, got %d (id %q)", h.publisher.calls, result.VideoID)
	}
	if !strings.Contains(h.publisher.meta.Title, "Jan 11, 2026") {
		t.Fatalf("unexpected title %q", h.publisher.meta.Title)
	}
	if got := h.player.task.DecoyGuesses; len(got) != 2 || got[0] != "Tea" || got[1] != "Espresso" {
		t.Fatalf("decoys not passed to player: %v", got)
	}
	for _, name := range Order {
		assertStatus(t, result, name, stage.StatusCompleted)
	}
	if result.State.RunID != "run-1" {
		t.Fatalf("run id = %q", result.State.RunID)
	}
	want := []notifications.Event{notifications.EventRunStarted, notifications.EventRunCompleted}
	if len(h.notifier.events) != 2 || h.notifier.events[0] != want[0] || h.notifier.events[1] != want[1] {
		t.Fatalf("unexpected notifications: %v", h.notifier.events)
	}
}

func TestDryRunNeverPublishes(t *testing.T) {
	h := newHarness(t)
	result := h.run(true, nil)

	if result.ExitCode() != 0 {
		t.Fatalf("dry run should exit 0, got %s: %v", result.Reason, result.Err)
	}
	if h.publisher.calls != 0 {
		t.Fatalf("publisher invoked %d times on dry run", h.publisher.calls)
	}
	assertStatus(t, result, StagePublish, stage.StatusSkipped)
	if result.Artifact.Path == "" {
		t.Fatal("dry run should report the artifact path")
	}
}

func TestDryRunWithoutPublisher(t *testing.T) {
	h := newHarness(t)
	deps := h.deps(nil)
	deps.Publisher = nil
	runner := NewRunner(deps, Options{
		DryRun:        true,
		RecordingPath: filepath.Join(h.dir, "gameplay_raw.webm"),
		OutputPath:    filepath.Join(h.dir, "final_output.mp4"),
	}, nil)
	if result := runner.Run(context.Background()); !result.Succeeded() {
		t.Fatalf("expected success, got %v", result.Err)
	}
}

func TestFetchFailureStartsNoSession(t *testing.T) {
	h := newHarness(t)
	h.puzzles.err = puzzleapi.ErrUnavailable
	h.puzzles.task = puzzle.Task{}
	result := h.run(false, nil)

	if result.Reason != FetchFailed || result.ExitCode() == 0 {
		t.Fatalf("expected FetchFailed, got %s", result.Reason)
	}
	if h.player.calls != 0 {
		t.Fatal("no session should start after fetch failure")
	}
	assertStatus(t, result, StageFetch, stage.StatusFailed)
	for _, name := range []string{StageEnrich, StagePlay, StageProduce, StagePublish} {
		assertStatus(t, result, name, stage.StatusPending)
	}
	if !strings.HasPrefix(result.FailureMessage(), "run failed: fetch: fetch_failed") {
		t.Fatalf("message = %q", result.FailureMessage())
	}
	if h.notifier.events[len(h.notifier.events)-1] != notifications.EventError {
		t.Fatalf("expected error notification, got %v", h.notifier.events)
	}
}

func TestSessionFailureShortCircuits(t *testing.T) {
	h := newHarness(t)
	h.player.outcome = session.Outcome{
		Failure:    session.InputNotFound,
		Err:        errors.New("answer input not found"),
		FinalState: session.StateFatal,
	}
	result := h.run(false, nil)

	if result.Reason != SessionFailed {
		t.Fatalf("expected SessionFailed, got %s", result.Reason)
	}
	if h.producer.calls != 0 || h.publisher.calls != 0 {
		t.Fatal("later stages must not run")
	}
	if result.Outcome.Failure != session.InputNotFound {
		t.Fatalf("sub-reason lost: %s", result.Outcome.Failure)
	}
	if msg := result.FailureMessage(); !strings.Contains(msg, "play") || !strings.Contains(msg, "input_not_found") {
		t.Fatalf("message = %q", msg)
	}
}

func TestProductionFailureShortCircuits(t *testing.T) {
	h := newHarness(t)
	h.producer.err = errors.New("ffmpeg exited 1")
	result := h.run(false, nil)

	if result.Reason != ProductionFailed {
		t.Fatalf("expected ProductionFailed, got %s", result.Reason)
	}
	if h.publisher.calls != 0 {
		t.Fatal("publisher must not run after production failure")
	}
	assertStatus(t, result, StagePublish, stage.StatusPending)
}

func TestPublishFailure(t *testing.T) {
	h := newHarness(t)
	h.publisher.err = &publish.Error{Status: http.StatusForbidden, Body: "quotaExceeded"}
	result := h.run(false, nil)

	if result.Reason != PublishFailed || result.ExitCode() != 1 {
		t.Fatalf("expected PublishFailed, got %s", result.Reason)
	}
	var apiErr *publish.Error
	if !errors.As(result.Err, &apiErr) || apiErr.Status != http.StatusForbidden {
		t.Fatalf("publish error not preserved: %v", result.Err)
	}
}

func TestMissingCredentialsFailAtPublish(t *testing.T) {
	h := newHarness(t)
	deps := h.deps(nil)
	deps.Publisher = publish.NewDeferredUploader(publish.Credentials{ClientID: "id"}, 0, logging.NewNop())
	runner := NewRunner(deps, Options{
		RecordingPath: filepath.Join(h.dir, "gameplay_raw.webm"),
		OutputPath:    filepath.Join(h.dir, "final_output.mp4"),
	}, logging.NewNop())
	result := runner.Run(context.Background())

	if result.Reason != PublishFailed || result.ExitCode() != 1 {
		t.Fatalf("expected PublishFailed, got %s: %v", result.Reason, result.Err)
	}
	if !errors.Is(result.Err, publish.ErrMissingCredentials) || !errors.Is(result.Err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error for missing credentials, got %v", result.Err)
	}
	assertStatus(t, result, StageProduce, stage.StatusCompleted)
	assertStatus(t, result, StagePublish, stage.StatusFailed)
	if h.producer.calls != 1 {
		t.Fatalf("expected the video produced before publish, got %d encodes", h.producer.calls)
	}
}

func TestEnrichFailureIsNotFatal(t *testing.T) {
	h := newHarness(t)
	h.decoys.err = errors.New("llm timeout")
	h.decoys.suggestion = guesses.None()
	result := h.run(false, nil)

	if !result.Succeeded() {
		t.Fatalf("enrich failure must not fail the run: %v", result.Err)
	}
	assertStatus(t, result, StageEnrich, stage.StatusSkipped)
	if len(h.player.task.DecoyGuesses) != 0 {
		t.Fatalf("expected no decoys, got %v", h.player.task.DecoyGuesses)
	}
}

func TestMissingRecordingFailsProduce(t *testing.T) {
	h := newHarness(t)
	player := &stubPlayer{outcome: session.Outcome{Succeeded: true, RecordingPath: filepath.Join(h.dir, "missing.webm")}}
	result := h.run(false, player)

	if result.Reason != ProductionFailed {
		t.Fatalf("expected ProductionFailed, got %s", result.Reason)
	}
	if h.producer.calls != 0 {
		t.Fatal("producer must not run without a recording")
	}
}

type stubPlayer struct {
	outcome session.Outcome
}

func (s *stubPlayer) Play(context.Context, puzzle.Task, string) session.Outcome { return s.outcome }

// gameSurface is a minimal in-memory game that records what was submitted.
type gameSurface struct {
	dir       string
	typed     strings.Builder
	submitted []string
}

func (g *gameSurface) Navigate(context.Context) error                    { return nil }
func (g *gameSurface) DismissStart(context.Context) (bool, error)        { return true, nil }
func (g *gameSurface) WaitForInput(context.Context, time.Duration) error { return nil }

func (g *gameSurface) ClearInput(context.Context) error {
	g.typed.Reset()
	return nil
}

func (g *gameSurface) Type(_ context.Context, text string) error {
	g.typed.WriteString(text)
	return nil
}

func (g *gameSurface) Submit(context.Context) error {
	g.submitted = append(g.submitted, g.typed.String())
	g.typed.Reset()
	return nil
}

func (g *gameSurface) Close(context.Context) (string, error) {
	path := filepath.Join(g.dir, ".recording.webm")
	return path, os.WriteFile(path, []byte("webm-bytes"), 0o644)
}

func TestCoffeeScenario(t *testing.T) {
	h := newHarness(t)
	surface := &gameSurface{dir: t.TempDir()}
	driver := session.NewDriver(surface, timing.Instant{}, logging.NewNop(), session.Options{})

	result := h.run(true, driver)

	if !result.Succeeded() {
		t.Fatalf("expected success, got %s: %v", result.Reason, result.Err)
	}
	want := []string{"Tea", "Espresso", "Coffee"}
	if strings.Join(surface.submitted, ",") != strings.Join(want, ",") {
		t.Fatalf("submitted %v, want %v", surface.submitted, want)
	}
	if !result.Outcome.Succeeded || result.Outcome.Submits != 3 {
		t.Fatalf("unexpected outcome: %+v", result.Outcome)
	}
	if result.Outcome.RecordingPath != filepath.Join(h.dir, "gameplay_raw.webm") {
		t.Fatalf("recording not relocated: %q", result.Outcome.RecordingPath)
	}
}

func TestExitCode(t *testing.T) {
	cases := []struct {
		result Result
		want   int
	}{
		{Result{}, 0},
		{Result{Reason: FetchFailed}, 1},
		{Result{Err: errors.New("boom")}, 1},
	}
	for _, tc := range cases {
		if got := tc.result.ExitCode(); got != tc.want {
			t.Errorf("ExitCode(%+v) = %d, want %d", tc.result, got, tc.want)
		}
	}
}

func TestHealthChecks(t *testing.T) {
	h := newHarness(t)
	deps := h.deps(nil)
	deps.Publisher = nil
	runner := NewRunner(deps, Options{}, nil)

	var publishHealth stage.Health
	for _, health := range runner.HealthChecks(context.Background()) {
		if health.Name == StagePublish {
			publishHealth = health
		}
	}
	if publishHealth.Ready {
		t.Fatal("publish should be unhealthy without an uploader")
	}
}
