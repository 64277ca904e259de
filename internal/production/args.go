package production

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	outputFPS        = 24
	videoCodec       = "libx264"
	audioCodec       = "aac"
	encoderPreset    = "medium"
	encoderThreads   = 4
	pixelFormat      = "yuv420p"
	audioSampleRate  = 48000
	audioChannelSpec = "stereo"
)

// Canvas is the frame size every clip is fitted into when concatenating.
type Canvas struct {
	Width  int
	Height int
}

// Clip is a planned source with the facts the filter graph needs.
type Clip struct {
	Source
	HasAudio bool
	Duration time.Duration
}

func encodeArgs() []string {
	return []string{
		"-c:v", videoCodec,
		"-preset", encoderPreset,
		"-threads", strconv.Itoa(encoderThreads),
		"-r", strconv.Itoa(outputFPS),
		"-pix_fmt", pixelFormat,
		"-c:a", audioCodec,
		"-movflags", "+faststart",
		"-f", "mp4",
	}
}

// singleArgs re-encodes one clip to the output format.
func singleArgs(input, output string) []string {
	args := []string{"-hide_banner", "-loglevel", "error", "-y", "-i", input,
		"-vf", "scale=trunc(iw/2)*2:trunc(ih/2)*2,setsar=1",
	}
	args = append(args, encodeArgs()...)
	return append(args, output)
}

// concatArgs fits every clip to canvas and joins them in order.
func concatArgs(clips []Clip, canvas Canvas, output string) ([]string, error) {
	if len(clips) < 2 {
		return nil, fmt.Errorf("concat needs at least two clips, got %d", len(clips))
	}
	args := []string{"-hide_banner", "-loglevel", "error", "-y"}
	for _, clip := range clips {
		args = append(args, "-i", clip.Path)
	}
	graph, err := filterGraph(clips, canvas)
	if err != nil {
		return nil, err
	}
	args = append(args, "-filter_complex", graph, "-map", "[outv]", "-map", "[outa]")
	args = append(args, encodeArgs()...)
	return append(args, output), nil
}

func filterGraph(clips []Clip, canvas Canvas) (string, error) {
	w, h := canvas.Width, canvas.Height
	chains := make([]string, 0, len(clips)*2+1)
	var joins strings.Builder
	for i, clip := range clips {
		chains = append(chains, fmt.Sprintf(
			"[%d:v]scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2,setsar=1,fps=%d,format=%s[v%d]",
			i, w, h, w, h, outputFPS, pixelFormat, i,
		))
		if clip.HasAudio {
			chains = append(chains, fmt.Sprintf(
				"[%d:a]aresample=%d,aformat=channel_layouts=%s[a%d]",
				i, audioSampleRate, audioChannelSpec, i,
			))
		} else {
			if clip.Duration <= 0 {
				return "", fmt.Errorf("%s clip %q has no audio and no known duration", clip.Role, clip.Path)
			}
			chains = append(chains, fmt.Sprintf(
				"anullsrc=channel_layout=%s:sample_rate=%d,atrim=duration=%s[a%d]",
				audioChannelSpec, audioSampleRate, formatSeconds(clip.Duration), i,
			))
		}
		fmt.Fprintf(&joins, "[v%d][a%d]", i, i)
	}
	chains = append(chains, fmt.Sprintf("%sconcat=n=%d:v=1:a=1[outv][outa]", joins.String(), len(clips)))
	return strings.Join(chains, ";"), nil
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}
