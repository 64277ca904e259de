package browser

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"pinpoint/internal/deps"
	"pinpoint/internal/logging"
	"pinpoint/internal/puzzle"
	"pinpoint/internal/session"
)

const gamePage = `<!doctype html>
<html>
<body>
  <button id="start" onclick="document.getElementById('board').style.display='block'; this.remove();">Play</button>
  <div id="board" style="display:none">
    <input type="text" id="guess" autocomplete="off">
  </div>
  <script>
    document.getElementById('guess').addEventListener('keydown', function (ev) {
      if (ev.key !== 'Enter') { return; }
      var value = ev.target.value;
      ev.target.value = '';
      fetch('/guess', {method: 'POST', body: value});
    });
  </script>
</body>
</html>`

// gameServer serves a minimal game page and records submitted guesses.
type gameServer struct {
	mu      sync.Mutex
	guesses []string
}

func (g *gameServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/guess":
		body, _ := io.ReadAll(r.Body)
		g.mu.Lock()
		g.guesses = append(g.guesses, string(body))
		g.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	default:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, gamePage)
	}
}

func (g *gameServer) received() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.guesses...)
}

// pausePacer waits a fixed short interval on every think so the screencast
// has time to deliver frames.
type pausePacer struct{ pause time.Duration }

func (pausePacer) Keystroke(ctx context.Context) error { return ctx.Err() }

func (p pausePacer) Think(ctx context.Context, _, _ time.Duration) error {
	timer := time.NewTimer(p.pause)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func TestSurfaceSessionRecordsGameplay(t *testing.T) {
	chromePath, err := deps.ResolveChrome("")
	if err != nil {
		t.Skipf("chrome not available: %v", err)
	}
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not available")
	}

	game := &gameServer{}
	server := httptest.NewServer(game)
	defer server.Close()

	workDir := t.TempDir()
	surface := New(Options{
		GameURL:          server.URL,
		StartControlText: "Play",
		ChromePath:       chromePath,
		Headless:         true,
		ViewportWidth:    800,
		ViewportHeight:   600,
		RecordingFPS:     10,
		RecordingDir:     workDir,
		FFmpegBinary:     "ffmpeg",
		StartTimeout:     time.Second,
	}, logging.NewNop())

	driver := session.NewDriver(surface, pausePacer{pause: 300 * time.Millisecond}, logging.NewNop(), session.Options{
		NavigationTimeout: 30 * time.Second,
		InputTimeout:      5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(t.Context(), 2*time.Minute)
	defer cancel()

	output := filepath.Join(workDir, "gameplay.webm")
	task := puzzle.Task{Date: "2026-01-11", Answer: "Coffee", DecoyGuesses: []string{"Tea"}}
	outcome := driver.Play(ctx, task, output)

	if !outcome.Succeeded {
		t.Fatalf("expected session to succeed, got %s (state %s): %v", outcome.Failure, outcome.FinalState, outcome.Err)
	}
	if outcome.Submits != 2 {
		t.Fatalf("expected decoy and answer submitted, got %d submits", outcome.Submits)
	}
	if outcome.RecordingPath != output {
		t.Fatalf("expected recording relocated to %q, got %q", output, outcome.RecordingPath)
	}
	info, err := os.Stat(output)
	if err != nil {
		t.Fatalf("stat recording: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("expected non-empty recording")
	}

	leftovers, _ := filepath.Glob(filepath.Join(workDir, ".recording-*"))
	if len(leftovers) != 0 {
		t.Fatalf("temporary recording left behind: %v", leftovers)
	}

	got := game.received()
	if !slices.Equal(got, []string{"Tea", "Coffee"}) {
		t.Fatalf("unexpected guesses reaching the page: %s", strings.Join(got, ", "))
	}
}
