package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateEndpoints(); err != nil {
		return err
	}
	if err := c.validateGame(); err != nil {
		return err
	}
	if err := c.validateMedia(); err != nil {
		return err
	}
	if err := c.validateYouTube(); err != nil {
		return err
	}
	return ensurePositiveMap(map[string]int{
		"puzzle.request_timeout_seconds":  c.Puzzle.RequestTimeoutSeconds,
		"llm.timeout_seconds":             c.LLM.TimeoutSeconds,
		"youtube.timeout_seconds":         c.YouTube.TimeoutSeconds,
		"notifications.request_timeout":   c.Notifications.RequestTimeout,
		"game.navigation_timeout_seconds": c.Game.NavigationTimeoutSeconds,
		"game.input_timeout_seconds":      c.Game.InputTimeoutSeconds,
	})
}

func (c *Config) validateEndpoints() error {
	for key, value := range map[string]string{
		"puzzle.url":   c.Puzzle.URL,
		"game.url":     c.Game.URL,
		"llm.base_url": c.LLM.BaseURL,
	} {
		parsed, err := url.Parse(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("%s must be an http(s) URL, got %q", key, value)
		}
	}
	return nil
}

func (c *Config) validateGame() error {
	if c.Game.ViewportWidth <= 0 || c.Game.ViewportHeight <= 0 {
		return errors.New("game.viewport_width and game.viewport_height must be positive")
	}
	if c.Game.RecordingFPS <= 0 || c.Game.RecordingFPS > 60 {
		return errors.New("game.recording_fps must be between 1 and 60")
	}
	if strings.ContainsAny(c.Game.RawRecordingName, `/\`) {
		return errors.New("game.raw_recording_name must be a file name, not a path")
	}
	return nil
}

func (c *Config) validateMedia() error {
	if c.Media.CanvasWidth <= 0 || c.Media.CanvasHeight <= 0 {
		return errors.New("media.canvas_width and media.canvas_height must be positive")
	}
	if c.Media.CanvasWidth%2 != 0 || c.Media.CanvasHeight%2 != 0 {
		return errors.New("media.canvas_width and media.canvas_height must be even for yuv420p output")
	}
	if strings.ContainsAny(c.Media.OutputName, `/\`) {
		return errors.New("media.output_name must be a file name, not a path")
	}
	return nil
}

func (c *Config) validateYouTube() error {
	switch c.YouTube.Privacy {
	case "public", "unlisted", "private":
	default:
		return fmt.Errorf("youtube.privacy must be public, unlisted, or private, got %q", c.YouTube.Privacy)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
