package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	WorkDir  string `toml:"work_dir"`
	LogDir   string `toml:"log_dir"`
	StateDir string `toml:"state_dir"`
}

// Puzzle contains configuration for the daily puzzle data provider.
type Puzzle struct {
	URL                   string `toml:"url"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
}

// Game contains configuration for the browser session that plays the puzzle.
type Game struct {
	URL                      string   `toml:"url"`
	InputSelector            string   `toml:"input_selector"`
	StartControlText         string   `toml:"start_control_text"`
	ChromePath               string   `toml:"chrome_path"`
	Headless                 bool     `toml:"headless"`
	ExtraFlags               []string `toml:"extra_flags"`
	ViewportWidth            int      `toml:"viewport_width"`
	ViewportHeight           int      `toml:"viewport_height"`
	UserAgent                string   `toml:"user_agent"`
	Locale                   string   `toml:"locale"`
	Timezone                 string   `toml:"timezone"`
	NavigationTimeoutSeconds int      `toml:"navigation_timeout_seconds"`
	InputTimeoutSeconds      int      `toml:"input_timeout_seconds"`
	RecordingFPS             int      `toml:"recording_fps"`
	RawRecordingName         string   `toml:"raw_recording_name"`
}

// LLM contains the connection settings for the decoy guess suggester.
type LLM struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Media contains configuration for assembling the final video.
type Media struct {
	IntroPath     string `toml:"intro_path"`
	OutroPath     string `toml:"outro_path"`
	OutputName    string `toml:"output_name"`
	FFmpegBinary  string `toml:"ffmpeg_binary"`
	FFprobeBinary string `toml:"ffprobe_binary"`
	CanvasWidth   int    `toml:"canvas_width"`
	CanvasHeight  int    `toml:"canvas_height"`
}

// YouTube contains upload credentials and publishing defaults.
type YouTube struct {
	ClientID       string   `toml:"client_id"`
	ClientSecret   string   `toml:"client_secret"`
	RefreshToken   string   `toml:"refresh_token"`
	CategoryID     string   `toml:"category_id"`
	Privacy        string   `toml:"privacy"`
	SolverURL      string   `toml:"solver_url"`
	Tags           []string `toml:"tags"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	RunStarted     bool   `toml:"run_started"`
	RunCompleted   bool   `toml:"run_completed"`
	Errors         bool   `toml:"errors"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for pinpoint.
//
// Configuration sections by subsystem:
//   - Paths: work, log, and state directories
//   - Puzzle: daily puzzle data endpoint
//   - Game: browser session and recording settings
//   - LLM: decoy guess suggestion endpoint
//   - Media: intro/outro clips and encoder binaries
//   - YouTube: upload credentials and metadata defaults
//   - Notifications: ntfy push notification settings
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Puzzle        Puzzle        `toml:"puzzle"`
	Game          Game          `toml:"game"`
	LLM           LLM           `toml:"llm"`
	Media         Media         `toml:"media"`
	YouTube       YouTube       `toml:"youtube"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and secrets resolved from the environment.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("pinpoint.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a run writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.LogDir, c.Paths.StateDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// RawRecordingPath returns where the session recording is relocated after play.
func (c *Config) RawRecordingPath() string {
	return filepath.Join(c.Paths.WorkDir, c.Game.RawRecordingName)
}

// FinalVideoPath returns where the assembled video is written.
func (c *Config) FinalVideoPath() string {
	return filepath.Join(c.Paths.WorkDir, c.Media.OutputName)
}

// LockPath returns the path of the single-run lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "pinpoint.lock")
}

// PuzzleTimeout returns the request timeout for the puzzle provider.
func (c *Config) PuzzleTimeout() time.Duration {
	return time.Duration(c.Puzzle.RequestTimeoutSeconds) * time.Second
}

// NavigationTimeout returns the bound on the initial game page load.
func (c *Config) NavigationTimeout() time.Duration {
	return time.Duration(c.Game.NavigationTimeoutSeconds) * time.Second
}

// InputTimeout returns the bound on each wait for the answer input.
func (c *Config) InputTimeout() time.Duration {
	return time.Duration(c.Game.InputTimeoutSeconds) * time.Second
}

// HasYouTubeCredentials reports whether all OAuth values needed for upload are present.
func (c *Config) HasYouTubeCredentials() bool {
	return strings.TrimSpace(c.YouTube.ClientID) != "" &&
		strings.TrimSpace(c.YouTube.ClientSecret) != "" &&
		strings.TrimSpace(c.YouTube.RefreshToken) != ""
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
