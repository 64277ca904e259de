package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"pinpoint/internal/fileutil"
	"pinpoint/internal/logging"
	"pinpoint/internal/puzzle"
	"pinpoint/internal/timing"
)

const (
	defaultNavigationTimeout = 30 * time.Second
	defaultInputTimeout      = 5 * time.Second
	closeTimeout             = 30 * time.Second
)

// Options bounds the waits a session performs.
type Options struct {
	NavigationTimeout time.Duration
	InputTimeout      time.Duration
	Windows           Windows
}

// Driver plays one puzzle against a Surface.
type Driver struct {
	surface Surface
	pacer   timing.Pacer
	logger  *slog.Logger
	opts    Options

	state   State
	submits int
}

// NewDriver builds a driver. A nil pacer uses a time-seeded human pacer and
// zero option values fall back to defaults.
func NewDriver(surface Surface, pacer timing.Pacer, logger *slog.Logger, opts Options) *Driver {
	if pacer == nil {
		pacer = timing.New(nil, nil)
	}
	if opts.NavigationTimeout <= 0 {
		opts.NavigationTimeout = defaultNavigationTimeout
	}
	if opts.InputTimeout <= 0 {
		opts.InputTimeout = defaultInputTimeout
	}
	if opts.Windows == (Windows{}) {
		opts.Windows = DefaultWindows()
	}
	return &Driver{
		surface: surface,
		pacer:   pacer,
		logger:  logging.NewComponentLogger(logger, "session"),
		opts:    opts,
		state:   StateInit,
	}
}

// State reports the current state of the machine.
func (d *Driver) State() State {
	return d.state
}

// Play runs the session for task and relocates the recording to outputPath.
// The surface is always closed before Play returns.
func (d *Driver) Play(ctx context.Context, task puzzle.Task, outputPath string) Outcome {
	task = task.Clone()
	d.state = StateInit
	d.submits = 0

	failure, playErr := d.run(ctx, task)
	var failedIn State
	if failure != FailureNone {
		failedIn = d.state
		d.transition(StateFatal)
	}

	recording, recErr := d.teardown(ctx, outputPath)

	outcome := Outcome{
		Failure:    failure,
		Err:        playErr,
		FinalState: d.state,
		FailedIn:   failedIn,
		Submits:    d.submits,
	}
	if recErr != nil {
		// Gameplay failures keep their own reason; a missing recording only
		// downgrades an otherwise successful session.
		if outcome.Failure == FailureNone {
			outcome.Failure = NoRecording
			outcome.Err = recErr
			outcome.FailedIn = d.state
			d.transition(StateFatal)
			outcome.FinalState = d.state
		} else {
			d.logger.Warn("no recording persisted for failed session", logging.Error(recErr))
		}
	} else {
		outcome.RecordingPath = recording
	}
	outcome.Succeeded = outcome.Failure == FailureNone

	if outcome.Succeeded {
		d.logger.Info("session completed",
			logging.String("recording", outcome.RecordingPath),
			logging.Int("submits", outcome.Submits),
		)
	} else {
		logging.ErrorWithContext(d.logger, "session failed", "session_failed",
			logging.String("failure", outcome.Failure.String()),
			logging.String("state", string(outcome.FailedIn)),
			logging.Error(outcome.Err),
		)
	}
	return outcome
}

func (d *Driver) run(ctx context.Context, task puzzle.Task) (failure Failure, err error) {
	defer func() {
		if r := recover(); r != nil {
			failure = RuntimeError
			err = fmt.Errorf("session panic in state %s: %v", d.state, r)
		}
	}()

	navCtx, cancel := context.WithTimeout(ctx, d.opts.NavigationTimeout)
	navErr := d.surface.Navigate(navCtx)
	cancel()
	if navErr != nil {
		return NavigationError, fmt.Errorf("navigate: %w", navErr)
	}
	d.transition(StateLoaded)

	if err := d.think(ctx, d.opts.Windows.AfterLoad); err != nil {
		return RuntimeError, err
	}

	clicked, err := d.surface.DismissStart(ctx)
	switch {
	case err != nil:
		if ctxErr := ctx.Err(); ctxErr != nil {
			return RuntimeError, ctxErr
		}
		d.logger.Warn("start control interaction failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "start_control_failed"),
			logging.String(logging.FieldImpact, "continuing without clicking a start control"),
		)
	case clicked:
		d.logger.Debug("start control clicked")
		if err := d.think(ctx, d.opts.Windows.AfterStart); err != nil {
			return RuntimeError, err
		}
	default:
		d.logger.Debug("no start control found")
	}
	d.transition(StateReady)

	for i, decoy := range task.DecoyGuesses {
		if err := d.surface.WaitForInput(ctx, d.opts.InputTimeout); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return RuntimeError, ctxErr
			}
			logging.WarnWithContext(d.logger, "decoy skipped: input not found", "decoy_skipped",
				logging.Int("decoy_index", i+1),
				logging.Error(err),
				logging.String(logging.FieldImpact, "one fewer wrong guess in the recording"),
			)
			continue
		}
		if err := d.enter(ctx, decoy, d.opts.Windows.BeforeSubmit); err != nil {
			return RuntimeError, fmt.Errorf("decoy %d: %w", i+1, err)
		}
		d.logger.Info("decoy submitted", logging.Int("decoy_index", i+1))
		if err := d.think(ctx, d.opts.Windows.AfterDecoy); err != nil {
			return RuntimeError, err
		}
	}

	d.transition(StateFinalizing)
	if err := d.surface.WaitForInput(ctx, d.opts.InputTimeout); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return RuntimeError, ctxErr
		}
		return InputNotFound, fmt.Errorf("answer input: %w", err)
	}
	if err := d.surface.ClearInput(ctx); err != nil {
		return RuntimeError, fmt.Errorf("clear input: %w", err)
	}
	if err := d.enter(ctx, task.Answer, d.opts.Windows.BeforeAnswer); err != nil {
		return RuntimeError, fmt.Errorf("answer: %w", err)
	}
	d.logger.Info("answer submitted", logging.Int("submits", d.submits))

	if err := d.think(ctx, d.opts.Windows.Settle); err != nil {
		return RuntimeError, err
	}
	d.transition(StateCompleted)
	return FailureNone, nil
}

// enter types text with keystroke cadence, pauses, then submits.
func (d *Driver) enter(ctx context.Context, text string, pause [2]time.Duration) error {
	for _, r := range text {
		if err := d.surface.Type(ctx, string(r)); err != nil {
			return fmt.Errorf("type: %w", err)
		}
		if err := d.pacer.Keystroke(ctx); err != nil {
			return err
		}
	}
	if err := d.think(ctx, pause); err != nil {
		return err
	}
	if err := d.surface.Submit(ctx); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	d.submits++
	return nil
}

func (d *Driver) think(ctx context.Context, window [2]time.Duration) error {
	return d.pacer.Think(ctx, window[0], window[1])
}

// teardown closes the surface and moves the recording to outputPath.
func (d *Driver) teardown(ctx context.Context, outputPath string) (string, error) {
	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
	defer cancel()

	tempPath, closeErr := d.surface.Close(closeCtx)
	if closeErr != nil {
		d.logger.Warn("surface close reported error", logging.Error(closeErr))
	}
	if !fileutil.NonEmptyFile(tempPath) {
		err := errors.New("recording missing or empty")
		if closeErr != nil {
			err = fmt.Errorf("%w: %w", err, closeErr)
		}
		return "", err
	}
	if outputPath == "" || tempPath == outputPath {
		return tempPath, nil
	}
	if err := fileutil.MoveFile(tempPath, outputPath); err != nil {
		return "", fmt.Errorf("relocate recording: %w", err)
	}
	return outputPath, nil
}

func (d *Driver) transition(next State) {
	if d.state == next {
		return
	}
	d.logger.Debug("session state change",
		logging.String("from", string(d.state)),
		logging.String("to", string(next)),
	)
	d.state = next
}
