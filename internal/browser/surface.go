package browser

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"github.com/google/uuid"

	"pinpoint/internal/deps"
	"pinpoint/internal/logging"
	"pinpoint/internal/session"
)

var _ session.Surface = (*Surface)(nil)

// Surface is a chromedp-backed game page with a screencast recorder.
type Surface struct {
	opts   Options
	logger *slog.Logger

	mu          sync.Mutex
	ctx         context.Context
	cancelCtx   context.CancelFunc
	cancelAlloc context.CancelFunc
	sampler     *frameSampler
	encoder     *encoderProcess
	output      string
	closed      bool
}

// New returns a surface; the browser is not started until Navigate.
func New(opts Options, logger *slog.Logger) *Surface {
	if opts.InputSelector == "" {
		opts.InputSelector = "input[type='text']"
	}
	if opts.StartTimeout <= 0 {
		opts.StartTimeout = 2 * time.Second
	}
	return &Surface{opts: opts, logger: logging.NewComponentLogger(logger, "browser")}
}

func (s *Surface) allocatorOptions(execPath string) []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption(nil), chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.ExecPath(execPath),
		chromedp.Flag("headless", s.opts.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("start-maximized", true),
		chromedp.NoSandbox,
	)
	if s.opts.ViewportWidth > 0 && s.opts.ViewportHeight > 0 {
		opts = append(opts, chromedp.WindowSize(s.opts.ViewportWidth, s.opts.ViewportHeight))
	}
	if ua := strings.TrimSpace(s.opts.UserAgent); ua != "" {
		opts = append(opts, chromedp.UserAgent(ua))
	}
	for _, flag := range s.opts.ExtraFlags {
		name, value, hasValue := strings.Cut(strings.TrimLeft(strings.TrimSpace(flag), "-"), "=")
		if name == "" {
			continue
		}
		if hasValue {
			opts = append(opts, chromedp.Flag(name, value))
		} else {
			opts = append(opts, chromedp.Flag(name, true))
		}
	}
	return opts
}

// launch starts Chrome, applies the visitor profile and starts recording.
func (s *Surface) launch(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("surface already closed")
	}
	if s.ctx != nil {
		return nil
	}

	execPath, err := deps.ResolveChrome(s.opts.ChromePath)
	if err != nil {
		return err
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), s.allocatorOptions(execPath)...)
	browserCtx, cancelCtx := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			s.logger.Debug(fmt.Sprintf(format, args...))
		}),
		chromedp.WithErrorf(func(format string, args ...any) {
			s.logger.Debug("chromedp error", logging.String("detail", fmt.Sprintf(format, args...)))
		}),
	)
	s.ctx = browserCtx
	s.cancelCtx = cancelCtx
	s.cancelAlloc = cancelAlloc

	// The first Run allocates Chrome and ties the process to its context, so it
	// must not carry the caller's deadline.
	if err := chromedp.Run(browserCtx); err != nil {
		return fmt.Errorf("start browser: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	runCtx, cancel := s.bind(ctx)
	defer cancel()
	setup := []chromedp.Action{
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(hideWebdriverScript).Do(ctx)
			return err
		}),
	}
	if s.opts.ViewportWidth > 0 && s.opts.ViewportHeight > 0 {
		setup = append(setup, chromedp.EmulateViewport(int64(s.opts.ViewportWidth), int64(s.opts.ViewportHeight)))
	}
	if tz := strings.TrimSpace(s.opts.Timezone); tz != "" {
		setup = append(setup, emulation.SetTimezoneOverride(tz))
	}
	if locale := strings.TrimSpace(s.opts.Locale); locale != "" {
		setup = append(setup, emulation.SetLocaleOverride().WithLocale(locale))
	}
	if err := chromedp.Run(runCtx, setup...); err != nil {
		return fmt.Errorf("configure browser context: %w", err)
	}

	if err := s.startRecording(runCtx); err != nil {
		return err
	}
	return nil
}

func (s *Surface) startRecording(ctx context.Context) error {
	dir := s.opts.RecordingDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create recording directory: %w", err)
	}
	output := filepath.Join(dir, ".recording-"+uuid.NewString()+".webm")

	encoder, err := startEncoder(s.opts.FFmpegBinary, s.fps(), output)
	if err != nil {
		return err
	}
	sampler := newFrameSampler(encoder.stdin, s.fps())
	sampler.Start()

	browserCtx := s.ctx
	chromedp.ListenTarget(browserCtx, func(ev any) {
		frame, ok := ev.(*page.EventScreencastFrame)
		if !ok {
			return
		}
		if data, err := base64.StdEncoding.DecodeString(frame.Data); err == nil {
			sampler.Offer(data)
		}
		sessionID := frame.SessionID
		go func() {
			_ = chromedp.Run(browserCtx, page.ScreencastFrameAck(sessionID))
		}()
	})

	start := page.StartScreencast().
		WithFormat(page.ScreencastFormatJpeg).
		WithQuality(80).
		WithEveryNthFrame(1)
	if s.opts.ViewportWidth > 0 && s.opts.ViewportHeight > 0 {
		start = start.WithMaxWidth(int64(s.opts.ViewportWidth)).WithMaxHeight(int64(s.opts.ViewportHeight))
	}
	if err := chromedp.Run(ctx, start); err != nil {
		_, _ = sampler.Stop()
		_ = encoder.Wait(ctx)
		_ = os.Remove(output)
		return fmt.Errorf("start screencast: %w", err)
	}

	s.sampler = sampler
	s.encoder = encoder
	s.output = output
	s.logger.Debug("recording started", logging.String("path", output), logging.Int("fps", s.fps()))
	return nil
}

func (s *Surface) fps() int {
	if s.opts.RecordingFPS <= 0 {
		return 25
	}
	return s.opts.RecordingFPS
}

// bind derives a chromedp context that also honours ctx's deadline and cancellation.
func (s *Surface) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	var runCtx context.Context
	var cancel context.CancelFunc
	if deadline, ok := ctx.Deadline(); ok {
		runCtx, cancel = context.WithDeadline(s.ctx, deadline)
	} else {
		runCtx, cancel = context.WithCancel(s.ctx)
	}
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}

func (s *Surface) run(ctx context.Context, actions ...chromedp.Action) error {
	s.mu.Lock()
	started := s.ctx != nil && !s.closed
	s.mu.Unlock()
	if !started {
		return errors.New("browser not started")
	}
	runCtx, cancel := s.bind(ctx)
	defer cancel()
	return chromedp.Run(runCtx, actions...)
}

// Navigate launches the browser on first use and loads the game page.
func (s *Surface) Navigate(ctx context.Context) error {
	if err := s.launch(ctx); err != nil {
		return err
	}
	s.logger.Info("navigating to game", logging.String("url", s.opts.GameURL))
	return s.run(ctx, chromedp.Navigate(s.opts.GameURL))
}

// DismissStart clicks the first visible start control, if any.
func (s *Surface) DismissStart(ctx context.Context) (bool, error) {
	var lastErr error
	for _, query := range startControlQueries(s.opts.StartControlText) {
		var nodes []*cdp.Node
		findCtx, cancel := context.WithTimeout(ctx, s.opts.StartTimeout)
		err := s.run(findCtx, chromedp.Nodes(query, &nodes, chromedp.BySearch, chromedp.AtLeast(0)))
		cancel()
		if err != nil {
			lastErr = err
			continue
		}
		for _, node := range nodes {
			if err := s.run(ctx, chromedp.MouseClickNode(node)); err != nil {
				lastErr = err
				continue
			}
			return true, nil
		}
	}
	return false, lastErr
}

// WaitForInput waits for the answer input to become visible and focuses it.
func (s *Surface) WaitForInput(ctx context.Context, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s.run(waitCtx,
		chromedp.WaitVisible(s.opts.InputSelector, chromedp.ByQuery),
		chromedp.Focus(s.opts.InputSelector, chromedp.ByQuery),
	)
}

// ClearInput empties the answer input and keeps it focused.
func (s *Surface) ClearInput(ctx context.Context) error {
	return s.run(ctx,
		chromedp.Clear(s.opts.InputSelector, chromedp.ByQuery),
		chromedp.Focus(s.opts.InputSelector, chromedp.ByQuery),
	)
}

// Type dispatches key events for text to the focused element.
func (s *Surface) Type(ctx context.Context, text string) error {
	return s.run(ctx, chromedp.KeyEvent(text))
}

// Submit presses Enter.
func (s *Surface) Submit(ctx context.Context) error {
	return s.run(ctx, chromedp.KeyEvent(kb.Enter))
}

// Close stops the screencast, flushes the encoder, then releases the browser.
// It returns the recording path when frames were written.
func (s *Surface) Close(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return "", nil
	}
	s.closed = true
	browserCtx := s.ctx
	sampler, encoder, output := s.sampler, s.encoder, s.output
	s.mu.Unlock()

	var errs []error
	frames := 0
	if sampler != nil {
		if browserCtx != nil {
			stopCtx, cancel := context.WithTimeout(browserCtx, 5*time.Second)
			if err := chromedp.Run(stopCtx, page.StopScreencast()); err != nil {
				s.logger.Debug("stop screencast failed", logging.Error(err))
			}
			cancel()
		}
		n, err := sampler.Stop()
		frames = n
		if err != nil {
			errs = append(errs, fmt.Errorf("recording frames: %w", err))
		}
		if err := encoder.Wait(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	if browserCtx != nil {
		if err := chromedp.Cancel(browserCtx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Debug("browser shutdown reported error", logging.Error(err))
		}
		s.cancelCtx()
		s.cancelAlloc()
	}

	if output == "" {
		return "", errors.Join(errs...)
	}
	if frames == 0 {
		_ = os.Remove(output)
		errs = append(errs, errors.New("recording captured no frames"))
		return "", errors.Join(errs...)
	}
	s.logger.Debug("recording finalized", logging.String("path", output), logging.Int("frames", frames))
	return output, errors.Join(errs...)
}
