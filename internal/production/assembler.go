package production

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pinpoint/internal/config"
	"pinpoint/internal/fileutil"
	"pinpoint/internal/logging"
)

// ErrMissingGameplay is returned when the raw recording is absent or empty.
var ErrMissingGameplay = errors.New("gameplay recording not found")

// Artifact is the assembled video.
type Artifact struct {
	Path     string
	Duration time.Duration // zero when unknown
}

// Assembler builds the final video from the plan.
type Assembler struct {
	encoder       Encoder
	ffprobeBinary string
	introPath     string
	outroPath     string
	canvas        Canvas
	logger        *slog.Logger
}

// Settings configures an Assembler.
type Settings struct {
	IntroPath     string
	OutroPath     string
	FFprobeBinary string
	Canvas        Canvas
}

// SettingsFromConfig reads the [media] section.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		IntroPath:     cfg.Media.IntroPath,
		OutroPath:     cfg.Media.OutroPath,
		FFprobeBinary: cfg.Media.FFprobeBinary,
		Canvas:        Canvas{Width: cfg.Media.CanvasWidth, Height: cfg.Media.CanvasHeight},
	}
}

// NewAssembler returns an assembler that runs encoder.
func NewAssembler(encoder Encoder, settings Settings, logger *slog.Logger) *Assembler {
	if settings.Canvas.Width <= 0 || settings.Canvas.Height <= 0 {
		settings.Canvas = Canvas{Width: 1920, Height: 1080}
	}
	return &Assembler{
		encoder:       encoder,
		ffprobeBinary: settings.FFprobeBinary,
		introPath:     settings.IntroPath,
		outroPath:     settings.OutroPath,
		canvas:        settings.Canvas,
		logger:        logging.NewComponentLogger(logger, "production"),
	}
}

// Assemble writes the finished video for gameplay to output.
func (a *Assembler) Assemble(ctx context.Context, gameplay, output string) (Artifact, error) {
	if !fileutil.NonEmptyFile(gameplay) {
		return Artifact{}, fmt.Errorf("%w: %s", ErrMissingGameplay, gameplay)
	}
	if strings.TrimSpace(output) == "" {
		return Artifact{}, errors.New("output path required")
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return Artifact{}, fmt.Errorf("create output directory: %w", err)
	}

	sources := Plan(a.introPath, gameplay, a.outroPath)
	for _, src := range sources {
		a.logger.Info("clip planned", logging.String("role", string(src.Role)), logging.String("path", src.Path))
	}

	partial := filepath.Join(filepath.Dir(output), "."+filepath.Base(output)+".partial")
	var args []string
	if len(sources) == 1 {
		args = singleArgs(gameplay, partial)
	} else {
		clips, err := a.describe(ctx, sources)
		if err != nil {
			return Artifact{}, err
		}
		args, err = concatArgs(clips, a.canvas, partial)
		if err != nil {
			return Artifact{}, err
		}
	}

	a.logger.Debug("encoding video", logging.Int("clips", len(sources)), logging.String("args", strings.Join(args, " ")))
	if err := a.encoder.Run(ctx, args); err != nil {
		_ = os.Remove(partial)
		return Artifact{}, fmt.Errorf("encode video: %w", err)
	}
	if !fileutil.NonEmptyFile(partial) {
		_ = os.Remove(partial)
		return Artifact{}, errors.New("encoder produced no output")
	}
	if err := os.Rename(partial, output); err != nil {
		_ = os.Remove(partial)
		return Artifact{}, fmt.Errorf("finalize output: %w", err)
	}

	artifact := Artifact{Path: output}
	if probe, err := clipProbe(ctx, a.ffprobeBinary, output); err != nil {
		a.logger.Warn("duration estimate unavailable", logging.Error(err))
	} else {
		artifact.Duration = probe.Duration()
	}
	return artifact, nil
}

func (a *Assembler) describe(ctx context.Context, sources []Source) ([]Clip, error) {
	clips := make([]Clip, 0, len(sources))
	for _, src := range sources {
		probe, err := clipProbe(ctx, a.ffprobeBinary, src.Path)
		if err != nil {
			return nil, fmt.Errorf("probe %s clip: %w", src.Role, err)
		}
		clips = append(clips, Clip{Source: src, HasAudio: probe.HasAudio(), Duration: probe.Duration()})
	}
	return clips, nil
}
