package browser

import (
	"time"

	"pinpoint/internal/config"
)

// Options configures the browser surface.
type Options struct {
	GameURL          string
	InputSelector    string
	StartControlText string
	ChromePath       string
	Headless         bool
	ExtraFlags       []string
	ViewportWidth    int
	ViewportHeight   int
	UserAgent        string
	Locale           string
	Timezone         string
	RecordingFPS     int
	RecordingDir     string
	FFmpegBinary     string
	StartTimeout     time.Duration
}

// OptionsFromConfig maps the [game] and [media] sections onto surface options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		GameURL:          cfg.Game.URL,
		InputSelector:    cfg.Game.InputSelector,
		StartControlText: cfg.Game.StartControlText,
		ChromePath:       cfg.Game.ChromePath,
		Headless:         cfg.Game.Headless,
		ExtraFlags:       append([]string(nil), cfg.Game.ExtraFlags...),
		ViewportWidth:    cfg.Game.ViewportWidth,
		ViewportHeight:   cfg.Game.ViewportHeight,
		UserAgent:        cfg.Game.UserAgent,
		Locale:           cfg.Game.Locale,
		Timezone:         cfg.Game.Timezone,
		RecordingFPS:     cfg.Game.RecordingFPS,
		RecordingDir:     cfg.Paths.WorkDir,
		FFmpegBinary:     cfg.Media.FFmpegBinary,
		StartTimeout:     2 * time.Second,
	}
}
