package timing

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

const (
	// KeystrokeMin is the shortest gap between two typed characters.
	KeystrokeMin = 50 * time.Millisecond
	// KeystrokeMax is the longest gap between two typed characters.
	KeystrokeMax = 150 * time.Millisecond
)

// Pacer waits out human-like delays.
type Pacer interface {
	// Keystroke waits for one inter-key gap.
	Keystroke(ctx context.Context) error
	// Think waits for a pause drawn from [min, max].
	Think(ctx context.Context, min, max time.Duration) error
}

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the default Sleeper backed by a timer.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Human draws delays from a random source and sleeps for them.
type Human struct {
	mu    sync.Mutex
	rng   *rand.Rand
	sleep Sleeper
}

// New returns a Human pacer using rng and sleep. Nil arguments fall back to a
// time-seeded source and Sleep.
func New(rng *rand.Rand, sleep Sleeper) *Human {
	if rng == nil {
		now := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(now, now>>1|1))
	}
	if sleep == nil {
		sleep = Sleep
	}
	return &Human{rng: rng, sleep: sleep}
}

// NewSeeded returns a Human pacer whose draws are reproducible for seed.
func NewSeeded(seed uint64, sleep Sleeper) *Human {
	return New(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), sleep)
}

// KeystrokeDelay draws an inter-key gap in [KeystrokeMin, KeystrokeMax].
func (h *Human) KeystrokeDelay() time.Duration {
	return h.ThinkingDelay(KeystrokeMin, KeystrokeMax)
}

// ThinkingDelay draws a pause in [min, max]. Reversed bounds are swapped and
// equal bounds return the bound.
func (h *Human) ThinkingDelay(min, max time.Duration) time.Duration {
	if min > max {
		min, max = max, min
	}
	if min == max {
		return min
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return min + time.Duration(h.rng.Int64N(int64(max-min)+1))
}

func (h *Human) Keystroke(ctx context.Context) error {
	return h.sleep(ctx, h.KeystrokeDelay())
}

func (h *Human) Think(ctx context.Context, min, max time.Duration) error {
	return h.sleep(ctx, h.ThinkingDelay(min, max))
}

// Instant never waits; it only reports cancellation.
type Instant struct{}

func (Instant) Keystroke(ctx context.Context) error { return ctx.Err() }

func (Instant) Think(ctx context.Context, _, _ time.Duration) error { return ctx.Err() }

// Recorder is a Pacer that records requested waits without sleeping.
type Recorder struct {
	mu         sync.Mutex
	Keystrokes int
	Thinks     [][2]time.Duration
}

func (r *Recorder) Keystroke(ctx context.Context) error {
	r.mu.Lock()
	r.Keystrokes++
	r.mu.Unlock()
	return ctx.Err()
}

func (r *Recorder) Think(ctx context.Context, min, max time.Duration) error {
	r.mu.Lock()
	r.Thinks = append(r.Thinks, [2]time.Duration{min, max})
	r.mu.Unlock()
	return ctx.Err()
}
