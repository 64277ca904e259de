package config

const (
	defaultConfigPath               = "~/.config/pinpoint/config.toml"
	defaultWorkDir                  = "~/.local/share/pinpoint/work"
	defaultLogDir                   = "~/.local/share/pinpoint/logs"
	defaultStateDir                 = "~/.local/state/pinpoint"
	defaultPuzzleURL                = "https://linkedin-pinpoint-worker.gdgdughdshf.workers.dev/today/BloggingIo@7"
	defaultRequestTimeoutSeconds    = 10
	defaultGameURL                  = "https://www.linkedin.com/games/pinpoint"
	defaultInputSelector            = "input[type='text']"
	defaultStartControlText         = "Play"
	defaultViewportWidth            = 1920
	defaultViewportHeight           = 1080
	defaultUserAgent                = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	defaultLocale                   = "en-US"
	defaultTimezone                 = "Asia/Kolkata"
	defaultNavigationTimeoutSeconds = 30
	defaultInputTimeoutSeconds      = 5
	defaultRecordingFPS             = 25
	defaultRawRecordingName         = "gameplay_raw.webm"
	defaultLLMBaseURL               = "https://generativelanguage.googleapis.com/v1beta/openai/chat/completions"
	defaultLLMModel                 = "gemini-2.0-flash"
	defaultIntroPath                = "intro.mp4"
	defaultOutroPath                = "outro.mp4"
	defaultOutputName               = "final_output.mp4"
	defaultFFmpegBinary             = "ffmpeg"
	defaultFFprobeBinary            = "ffprobe"
	defaultYouTubeCategoryID        = "20"
	defaultYouTubePrivacy           = "public"
	defaultSolverURL                = "https://wordsolverx.com/pinpoint-solver"
	defaultYouTubeTimeoutSeconds    = 600
	defaultLogFormat                = "console"
	defaultLogLevel                 = "info"
)

var defaultYouTubeTags = []string{"LinkedIn Pinpoint", "Pinpoint Answer", "Daily Puzzle", "Word Game", "Pinpoint Hints"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:  defaultWorkDir,
			LogDir:   defaultLogDir,
			StateDir: defaultStateDir,
		},
		Puzzle: Puzzle{
			URL:                   defaultPuzzleURL,
			RequestTimeoutSeconds: defaultRequestTimeoutSeconds,
		},
		Game: Game{
			URL:                      defaultGameURL,
			InputSelector:            defaultInputSelector,
			StartControlText:         defaultStartControlText,
			ViewportWidth:            defaultViewportWidth,
			ViewportHeight:           defaultViewportHeight,
			UserAgent:                defaultUserAgent,
			Locale:                   defaultLocale,
			Timezone:                 defaultTimezone,
			NavigationTimeoutSeconds: defaultNavigationTimeoutSeconds,
			InputTimeoutSeconds:      defaultInputTimeoutSeconds,
			RecordingFPS:             defaultRecordingFPS,
			RawRecordingName:         defaultRawRecordingName,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			TimeoutSeconds: defaultRequestTimeoutSeconds,
		},
		Media: Media{
			IntroPath:     defaultIntroPath,
			OutroPath:     defaultOutroPath,
			OutputName:    defaultOutputName,
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
			CanvasWidth:   defaultViewportWidth,
			CanvasHeight:  defaultViewportHeight,
		},
		YouTube: YouTube{
			CategoryID:     defaultYouTubeCategoryID,
			Privacy:        defaultYouTubePrivacy,
			SolverURL:      defaultSolverURL,
			Tags:           append([]string(nil), defaultYouTubeTags...),
			TimeoutSeconds: defaultYouTubeTimeoutSeconds,
		},
		Notifications: Notifications{
			RequestTimeout: defaultRequestTimeoutSeconds,
			RunStarted:     false,
			RunCompleted:   true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
