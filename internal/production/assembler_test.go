package production

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"pinpoint/internal/media/ffprobe"
)

type countingEncoder struct {
	calls [][]string
	err   error
}

func (c *countingEncoder) Run(_ context.Context, args []string) error {
	c.calls = append(c.calls, append([]string(nil), args...))
	if c.err != nil {
		return c.err
	}
	return os.WriteFile(args[len(args)-1], []byte("mp4"), 0o644)
}

func writeFile(t *testing.T, path string) string {
	t.Helper()
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func stubProbe(t *testing.T, audio map[string]bool) {
	t.Helper()
	restore := SetProbeForTests(func(_ context.Context, _ string, path string) (ffprobe.Result, error) {
		result := ffprobe.Result{
			Streams: []ffprobe.Stream{{CodecType: "video", Width: 1280, Height: 720}},
			Format:  ffprobe.Format{Duration: "12.5"},
		}
		if audio[filepath.Base(path)] {
			result.Streams = append(result.Streams, ffprobe.Stream{CodecType: "audio"})
		}
		return result, nil
	})
	t.Cleanup(restore)
}

func TestPlan(t *testing.T) {
	dir := t.TempDir()
	gameplay := writeFile(t, filepath.Join(dir, "gameplay.webm"))
	intro := filepath.Join(dir, "intro.mp4")
	outro := filepath.Join(dir, "outro.mp4")

	tests := []struct {
		name      string
		makeIntro bool
		makeOutro bool
		want      []Role
	}{
		{name: "gameplay only", want: []Role{RoleGameplay}},
		{name: "outro only", makeOutro: true, want: []Role{RoleGameplay, RoleOutro}},
		{name: "intro only", makeIntro: true, want: []Role{RoleIntro, RoleGameplay}},
		{name: "both", makeIntro: true, makeOutro: true, want: []Role{RoleIntro, RoleGameplay, RoleOutro}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_ = os.Remove(intro)
			_ = os.Remove(outro)
			if tt.makeIntro {
				writeFile(t, intro)
			}
			if tt.makeOutro {
				writeFile(t, outro)
			}
			var got []Role
			for _, src := range Plan(intro, gameplay, outro) {
				got = append(got, src.Role)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Plan roles = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPlanSkipsBlankOptionalPaths(t *testing.T) {
	sources := Plan("", "/work/gameplay.webm", " ")
	if len(sources) != 1 || sources[0].Role != RoleGameplay {
		t.Fatalf("expected gameplay only, got %+v", sources)
	}
}

func TestAssembleMissingGameplayNeverEncodes(t *testing.T) {
	dir := t.TempDir()
	encoder := &countingEncoder{}
	assembler := NewAssembler(encoder, Settings{}, nil)

	_, err := assembler.Assemble(context.Background(), filepath.Join(dir, "missing.webm"), filepath.Join(dir, "out.mp4"))
	if !errors.Is(err, ErrMissingGameplay) {
		t.Fatalf("expected ErrMissingGameplay, got %v", err)
	}
	if len(encoder.calls) != 0 {
		t.Fatalf("expected no encoder calls, got %d", len(encoder.calls))
	}
}

func TestAssembleSingleClipPath(t *testing.T) {
	dir := t.TempDir()
	stubProbe(t, nil)
	gameplay := writeFile(t, filepath.Join(dir, "gameplay.webm"))
	output := filepath.Join(dir, "final_output.mp4")
	encoder := &countingEncoder{}
	assembler := NewAssembler(encoder, Settings{IntroPath: filepath.Join(dir, "intro.mp4"), OutroPath: filepath.Join(dir, "outro.mp4")}, nil)

	artifact, err := assembler.Assemble(context.Background(), gameplay, output)
	if err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}
	if len(encoder.calls) != 1 {
		t.Fatalf("expected one encoder call, got %d", len(encoder.calls))
	}
	joined := strings.Join(encoder.calls[0], " ")
	if strings.Contains(joined, "-filter_complex") {
		t.Fatalf("single clip should not use concat graph: %s", joined)
	}
	for _, want := range []string{"-i " + gameplay, "-c:v libx264", "-c:a aac", "-r 24", "-preset medium", "-threads 4", "-pix_fmt yuv420p", "-movflags +faststart"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected %q in %s", want, joined)
		}
	}
	if artifact.Path != output {
		t.Fatalf("unexpected artifact path %q", artifact.Path)
	}
	if artifact.Duration <= 0 {
		t.Fatalf("expected duration estimate, got %v", artifact.Duration)
	}
	if _, err := os.Stat(output); err != nil {
		t.Fatalf("expected output file: %v", err)
	}
}

func TestAssembleConcatWithOutro(t *testing.T) {
	dir := t.TempDir()
	stubProbe(t, map[string]bool{"outro.mp4": true})
	gameplay := writeFile(t, filepath.Join(dir, "gameplay.webm"))
	outro := writeFile(t, filepath.Join(dir, "outro.mp4"))
	encoder := &countingEncoder{}
	assembler := NewAssembler(encoder, Settings{IntroPath: filepath.Join(dir, "intro.mp4"), OutroPath: outro}, nil)

	if _, err := assembler.Assemble(context.Background(), gameplay, filepath.Join(dir, "out.mp4")); err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}
	if len(encoder.calls) != 1 {
		t.Fatalf("expected one encoder call, got %d", len(encoder.calls))
	}
	args := encoder.calls[0]
	joined := strings.Join(args, " ")
	if strings.Index(joined, gameplay) > strings.Index(joined, outro) {
		t.Fatalf("expected gameplay input before outro: %s", joined)
	}
	var graph string
	for i, arg := range args {
		if arg == "-filter_complex" {
			graph = args[i+1]
		}
	}
	for _, want := range []string{
		"[0:v]scale=1920:1080:force_original_aspect_ratio=decrease,pad=1920:1080",
		"setsar=1,fps=24",
		"anullsrc=channel_layout=stereo:sample_rate=48000,atrim=duration=12.500[a0]",
		"[1:a]aresample=48000",
		"[v0][a0][v1][a1]concat=n=2:v=1:a=1[outv][outa]",
	} {
		if !strings.Contains(graph, want) {
			t.Fatalf("expected %q in graph %s", want, graph)
		}
	}
}

func TestAssembleEncoderFailureRemovesPartial(t *testing.T) {
	dir := t.TempDir()
	stubProbe(t, nil)
	gameplay := writeFile(t, filepath.Join(dir, "gameplay.webm"))
	output := filepath.Join(dir, "out.mp4")
	encoder := &countingEncoder{err: errors.New("exit status 1")}
	assembler := NewAssembler(encoder, Settings{}, nil)

	if _, err := assembler.Assemble(context.Background(), gameplay, output); err == nil {
		t.Fatal("expected encode failure")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".partial") || entry.Name() == "out.mp4" {
			t.Fatalf("unexpected leftover %s", entry.Name())
		}
	}
}

func TestFilterGraphRejectsSilentClipWithoutDuration(t *testing.T) {
	clips := []Clip{
		{Source: Source{Role: RoleGameplay, Path: "a.webm"}},
		{Source: Source{Role: RoleOutro, Path: "b.mp4"}, HasAudio: true},
	}
	if _, err := filterGraph(clips, Canvas{Width: 1920, Height: 1080}); err == nil {
		t.Fatal("expected error for silent clip without duration")
	}
}

func TestTailKeepsRuneBoundary(t *testing.T) {
	got := tail("frame error: "+strings.Repeat("ü", 10), 5)
	if !utf8.ValidString(got) {
		t.Fatalf("tail split a character: %q", got)
	}
	if got != "..."+"üü" {
		t.Fatalf("unexpected tail %q", got)
	}
	if got := tail("  short  ", 10); got != "short" {
		t.Fatalf("short input should be returned trimmed, got %q", got)
	}
}
