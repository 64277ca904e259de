package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"pinpoint/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Directories are created; intro and outro clips are left unset so plans only
// contain gameplay unless a test opts in.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.WorkDir = filepath.Join(base, "work")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Media.IntroPath = ""
	cfgVal.Media.OutroPath = ""
	cfgVal.LLM.APIKey = ""
	cfgVal.YouTube.ClientID = ""
	cfgVal.YouTube.ClientSecret = ""
	cfgVal.YouTube.RefreshToken = ""
	cfgVal.Notifications.NtfyTopic = ""

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithPuzzleURL points the puzzle feed at url, typically an httptest server.
func WithPuzzleURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Puzzle.URL = url
	}
}

// WithYouTubeCredentials fills placeholder OAuth values.
func WithYouTubeCredentials() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.YouTube.ClientID = "test-client"
		b.cfg.YouTube.ClientSecret = "test-secret"
		b.cfg.YouTube.RefreshToken = "test-refresh"
	}
}

// WithClips writes placeholder intro and outro files and configures them.
func WithClips() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Media.IntroPath = filepath.Join(b.baseDir, "media", "intro.mp4")
		b.cfg.Media.OutroPath = filepath.Join(b.baseDir, "media", "outro.mp4")
		WriteFile(b.t, b.cfg.Media.IntroPath, 64)
		WriteFile(b.t, b.cfg.Media.OutroPath, 64)
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, ffmpeg, ffprobe and google-chrome
// are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe", "google-chrome"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		for _, name := range names {
			WriteExecutable(b.t, filepath.Join(binDir, name), "#!/bin/sh\nexit 0\n")
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.WorkDir)
}
