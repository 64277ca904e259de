package browser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"
)

// frameSampler writes the most recent frame to sink at a fixed rate, so the
// output has a constant frame rate regardless of how often the page repaints.
type frameSampler struct {
	sink     io.WriteCloser
	interval time.Duration

	mu      sync.Mutex
	latest  []byte
	written int
	err     error

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func newFrameSampler(sink io.WriteCloser, fps int) *frameSampler {
	if fps <= 0 {
		fps = 25
	}
	return &frameSampler{
		sink:     sink,
		interval: time.Second / time.Duration(fps),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Offer replaces the frame written on the next tick.
func (s *frameSampler) Offer(frame []byte) {
	if len(frame) == 0 {
		return
	}
	s.mu.Lock()
	s.latest = frame
	s.mu.Unlock()
}

// Start launches the sampling goroutine.
func (s *frameSampler) Start() {
	go s.loop()
}

func (s *frameSampler) loop() {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			frame := s.latest
			failed := s.err != nil
			s.mu.Unlock()
			if frame == nil || failed {
				continue
			}
			if _, err := s.sink.Write(frame); err != nil {
				s.mu.Lock()
				s.err = err
				s.mu.Unlock()
				continue
			}
			s.mu.Lock()
			s.written++
			s.mu.Unlock()
		}
	}
}

// Stop joins the sampling goroutine and closes the sink. It returns the number
// of frames written and the first write error, if any.
func (s *frameSampler) Stop() (int, error) {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
	closeErr := s.sink.Close()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.written, errors.Join(s.err, closeErr)
}

// recordingArgs builds the ffmpeg command line that turns a JPEG stream on
// stdin into a WebM file.
func recordingArgs(fps int, output string) []string {
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-y",
		"-f", "image2pipe",
		"-c:v", "mjpeg",
		"-framerate", strconv.Itoa(fps),
		"-i", "-",
		"-vf", "scale=trunc(iw/2)*2:trunc(ih/2)*2",
		"-c:v", "libvpx",
		"-deadline", "realtime",
		"-cpu-used", "8",
		"-b:v", "4M",
		"-pix_fmt", "yuv420p",
		output,
	}
}

// encoderProcess is a running ffmpeg that consumes frames on stdin.
type encoderProcess struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr *strings.Builder
}

func startEncoder(binary string, fps int, output string) (*encoderProcess, error) {
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}
	// The encoder outlives any single stage context; Close owns its lifetime.
	cmd := exec.CommandContext(context.Background(), binary, recordingArgs(fps, output)...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("recording encoder stdin: %w", err)
	}
	stderr := &strings.Builder{}
	cmd.Stderr = stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start recording encoder: %w", err)
	}
	return &encoderProcess{cmd: cmd, stdin: stdin, stderr: stderr}, nil
}

// Wait blocks until ffmpeg exits after its stdin was closed. When ctx ends
// first the process is killed.
func (p *encoderProcess) Wait(ctx context.Context) error {
	waitErr := make(chan error, 1)
	go func() { waitErr <- p.cmd.Wait() }()
	select {
	case err := <-waitErr:
		if err != nil {
			return fmt.Errorf("recording encoder: %w: %s", err, strings.TrimSpace(p.stderr.String()))
		}
		return nil
	case <-ctx.Done():
		_ = p.cmd.Process.Kill()
		<-waitErr
		return fmt.Errorf("recording encoder flush: %w", ctx.Err())
	}
}
