package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// secretsEnv holds credentials that are usually injected by the scheduler
// rather than written to the config file. Non-empty values override the file.
type secretsEnv struct {
	GeminiAPIKey        string `env:"GEMINI_API_KEY"`
	YouTubeClientID     string `env:"YOUTUBE_CLIENT_ID"`
	YouTubeClientSecret string `env:"YOUTUBE_CLIENT_SECRET"`
	YouTubeRefreshToken string `env:"YOUTUBE_REFRESH_TOKEN"`
	NtfyTopic           string `env:"PINPOINT_NTFY_TOPIC"`
}

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeSecrets(); err != nil {
		return err
	}
	c.normalizePuzzle()
	c.normalizeGame()
	c.normalizeLLM()
	if err := c.normalizeMedia(); err != nil {
		return err
	}
	c.normalizeYouTube()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeSecrets() error {
	var secrets secretsEnv
	if err := env.Parse(&secrets); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	override := func(target *string, value string) {
		if value = strings.TrimSpace(value); value != "" {
			*target = value
		}
		*target = strings.TrimSpace(*target)
	}
	override(&c.LLM.APIKey, secrets.GeminiAPIKey)
	override(&c.YouTube.ClientID, secrets.YouTubeClientID)
	override(&c.YouTube.ClientSecret, secrets.YouTubeClientSecret)
	override(&c.YouTube.RefreshToken, secrets.YouTubeRefreshToken)
	override(&c.Notifications.NtfyTopic, secrets.NtfyTopic)
	return nil
}

func (c *Config) normalizePuzzle() {
	c.Puzzle.URL = strings.TrimSpace(c.Puzzle.URL)
	if c.Puzzle.URL == "" {
		c.Puzzle.URL = defaultPuzzleURL
	}
	if c.Puzzle.RequestTimeoutSeconds <= 0 {
		c.Puzzle.RequestTimeoutSeconds = defaultRequestTimeoutSeconds
	}
}

func (c *Config) normalizeGame() {
	c.Game.URL = strings.TrimSpace(c.Game.URL)
	if c.Game.URL == "" {
		c.Game.URL = defaultGameURL
	}
	c.Game.InputSelector = strings.TrimSpace(c.Game.InputSelector)
	if c.Game.InputSelector == "" {
		c.Game.InputSelector = defaultInputSelector
	}
	c.Game.StartControlText = strings.TrimSpace(c.Game.StartControlText)
	c.Game.ChromePath = strings.TrimSpace(c.Game.ChromePath)
	c.Game.UserAgent = strings.TrimSpace(c.Game.UserAgent)
	c.Game.Locale = strings.TrimSpace(c.Game.Locale)
	c.Game.Timezone = strings.TrimSpace(c.Game.Timezone)
	c.Game.RawRecordingName = strings.TrimSpace(c.Game.RawRecordingName)
	if c.Game.RawRecordingName == "" {
		c.Game.RawRecordingName = defaultRawRecordingName
	}
	flags := make([]string, 0, len(c.Game.ExtraFlags))
	for _, flag := range c.Game.ExtraFlags {
		if trimmed := strings.TrimSpace(flag); trimmed != "" {
			flags = append(flags, trimmed)
		}
	}
	c.Game.ExtraFlags = flags
}

func (c *Config) normalizeLLM() {
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultRequestTimeoutSeconds
	}
}

func (c *Config) normalizeMedia() error {
	var err error
	if strings.TrimSpace(c.Media.IntroPath) != "" {
		if c.Media.IntroPath, err = expandPath(c.Media.IntroPath); err != nil {
			return fmt.Errorf("media.intro_path: %w", err)
		}
	}
	if strings.TrimSpace(c.Media.OutroPath) != "" {
		if c.Media.OutroPath, err = expandPath(c.Media.OutroPath); err != nil {
			return fmt.Errorf("media.outro_path: %w", err)
		}
	}
	c.Media.OutputName = strings.TrimSpace(c.Media.OutputName)
	if c.Media.OutputName == "" {
		c.Media.OutputName = defaultOutputName
	}
	c.Media.FFmpegBinary = strings.TrimSpace(c.Media.FFmpegBinary)
	if c.Media.FFmpegBinary == "" {
		c.Media.FFmpegBinary = defaultFFmpegBinary
	}
	c.Media.FFprobeBinary = strings.TrimSpace(c.Media.FFprobeBinary)
	if c.Media.FFprobeBinary == "" {
		c.Media.FFprobeBinary = defaultFFprobeBinary
	}
	return nil
}

func (c *Config) normalizeYouTube() {
	c.YouTube.CategoryID = strings.TrimSpace(c.YouTube.CategoryID)
	if c.YouTube.CategoryID == "" {
		c.YouTube.CategoryID = defaultYouTubeCategoryID
	}
	c.YouTube.Privacy = strings.ToLower(strings.TrimSpace(c.YouTube.Privacy))
	if c.YouTube.Privacy == "" {
		c.YouTube.Privacy = defaultYouTubePrivacy
	}
	c.YouTube.SolverURL = strings.TrimSpace(c.YouTube.SolverURL)
	tags := make([]string, 0, len(c.YouTube.Tags))
	seen := make(map[string]struct{}, len(c.YouTube.Tags))
	for _, tag := range c.YouTube.Tags {
		trimmed := strings.TrimSpace(tag)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		tags = append(tags, trimmed)
	}
	c.YouTube.Tags = tags
	if c.YouTube.TimeoutSeconds <= 0 {
		c.YouTube.TimeoutSeconds = defaultYouTubeTimeoutSeconds
	}
}

func (c *Config) normalizeNotifications() {
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultRequestTimeoutSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
