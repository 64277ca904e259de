package preflight

import (
	"context"

	"pinpoint/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// Options tune which checks RunAll performs.
type Options struct {
	// DryRun skips the YouTube credential requirement.
	DryRun bool
	// SkipNetwork omits checks that contact remote services.
	SkipNetwork bool
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config, opts Options) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	for _, status := range CheckSystemDeps(cfg) {
		results = append(results, Result{
			Name:     status.Name,
			Passed:   status.Available,
			Optional: status.Optional,
			Detail:   statusDetail(status.Command, status.Detail),
		})
	}

	results = append(results,
		CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
		CheckMediaAsset("Intro clip", cfg.Media.IntroPath),
		CheckMediaAsset("Outro clip", cfg.Media.OutroPath),
	)

	yt := CheckYouTube(cfg)
	yt.Optional = opts.DryRun
	results = append(results, yt)

	if !opts.SkipNetwork {
		results = append(results,
			CheckPuzzleFeed(ctx, cfg.Puzzle.URL, cfg.PuzzleTimeout()),
			CheckLLM(ctx, "Decoy LLM", cfg.LLM),
		)
	}
	return results
}

// Failed returns the required checks that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed && !r.Optional {
			failed = append(failed, r)
		}
	}
	return failed
}

func statusDetail(command, detail string) string {
	if detail != "" {
		return detail
	}
	return command
}
