package session

import (
	"context"
	"time"
)

// State is a step of the session state machine.
type State string

const (
	StateInit       State = "init"
	StateLoaded     State = "loaded"
	StateReady      State = "ready"
	StateFinalizing State = "finalizing"
	StateCompleted  State = "completed"
	StateFatal      State = "fatal"
)

// Failure classifies why a session did not succeed.
type Failure string

const (
	FailureNone     Failure = ""
	NavigationError Failure = "navigation_error"
	InputNotFound   Failure = "input_not_found"
	NoRecording     Failure = "no_recording"
	RuntimeError    Failure = "runtime_error"
)

func (f Failure) String() string {
	if f == FailureNone {
		return "none"
	}
	return string(f)
}

// Outcome is produced exactly once per Play call.
type Outcome struct {
	Succeeded     bool
	RecordingPath string
	Failure       Failure
	Err           error
	FinalState    State

	// FailedIn is the state the machine was in when a gameplay failure occurred.
	FailedIn State
	Submits  int
}

// Surface is the interactive game page plus its recorder.
type Surface interface {
	// Navigate loads the game page.
	Navigate(ctx context.Context) error
	// DismissStart clicks an optional start control and reports whether one was found.
	DismissStart(ctx context.Context) (bool, error)
	// WaitForInput waits up to timeout for the answer input and focuses it.
	WaitForInput(ctx context.Context, timeout time.Duration) error
	// ClearInput empties the answer input.
	ClearInput(ctx context.Context) error
	// Type sends text to the focused input.
	Type(ctx context.Context, text string) error
	// Submit confirms the current input.
	Submit(ctx context.Context) error
	// Close stops and flushes the recording, releases the browser, and returns
	// the temporary recording path (empty when nothing was recorded).
	Close(ctx context.Context) (string, error)
}

// Windows are the thinking pauses between actions.
type Windows struct {
	AfterLoad    [2]time.Duration
	AfterStart   [2]time.Duration
	BeforeSubmit [2]time.Duration
	AfterDecoy   [2]time.Duration
	BeforeAnswer [2]time.Duration
	Settle       [2]time.Duration
}

// DefaultWindows returns the pacing used for real sessions.
func DefaultWindows() Windows {
	return Windows{
		AfterLoad:    [2]time.Duration{3 * time.Second, 5 * time.Second},
		AfterStart:   [2]time.Duration{1 * time.Second, 2 * time.Second},
		BeforeSubmit: [2]time.Duration{500 * time.Millisecond, 1 * time.Second},
		AfterDecoy:   [2]time.Duration{2 * time.Second, 4 * time.Second},
		BeforeAnswer: [2]time.Duration{500 * time.Millisecond, 1500 * time.Millisecond},
		Settle:       [2]time.Duration{5 * time.Second, 8 * time.Second},
	}
}
