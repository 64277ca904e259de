package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"pinpoint/internal/config"
	"pinpoint/internal/deps"
	"pinpoint/internal/services/llm"
	"pinpoint/internal/services/puzzleapi"
)

// CheckLLM verifies that the LLM API is reachable and the key is valid.
// It uses a 30-second timeout and a single attempt (no retries). The check
// is optional: runs continue without decoys when it fails.
func CheckLLM(ctx context.Context, name string, cfg config.LLM) Result {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return Result{Name: name, Optional: true, Detail: "API key missing (decoys disabled)"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client := llm.NewClient(llm.Config{
		APIKey:         cfg.APIKey,
		BaseURL:        cfg.BaseURL,
		Model:          cfg.Model,
		TimeoutSeconds: cfg.TimeoutSeconds,
	})

	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Optional: true, Detail: summarizeNetError(err)}
	}
	return Result{Name: name, Passed: true, Optional: true, Detail: "API reachable"}
}

// CheckPuzzleFeed fetches today's puzzle once to confirm the endpoint answers
// with a playable task.
func CheckPuzzleFeed(ctx context.Context, endpoint string, timeout time.Duration) Result {
	const name = "Puzzle feed"

	if strings.TrimSpace(endpoint) == "" {
		return Result{Name: name, Detail: "missing url"}
	}
	checkCtx, cancel := context.WithTimeout(ctx, timeout+time.Second)
	defer cancel()

	task, err := puzzleapi.New(endpoint, timeout).Today(checkCtx)
	if err != nil {
		return Result{Name: name, Detail: summarizeNetError(err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("puzzle for %s (%d clues)", task.Date, len(task.Clues))}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckMediaAsset reports whether an optional intro or outro clip is present.
func CheckMediaAsset(name, path string) Result {
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{Name: name, Optional: true, Detail: "not configured (skipped)"}
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return Result{Name: name, Optional: true, Detail: fmt.Sprintf("%s (missing, clip will be skipped)", path)}
	}
	if err := unix.Access(path, unix.R_OK); err != nil {
		return Result{Name: name, Optional: true, Detail: fmt.Sprintf("%s (unreadable: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Optional: true, Detail: path}
}

// CheckYouTube reports whether upload credentials are configured.
func CheckYouTube(cfg *config.Config) Result {
	const name = "YouTube"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	var missing []string
	if strings.TrimSpace(cfg.YouTube.ClientID) == "" {
		missing = append(missing, "client_id")
	}
	if strings.TrimSpace(cfg.YouTube.ClientSecret) == "" {
		missing = append(missing, "client_secret")
	}
	if strings.TrimSpace(cfg.YouTube.RefreshToken) == "" {
		missing = append(missing, "refresh_token")
	}
	if len(missing) > 0 {
		return Result{Name: name, Detail: "missing " + strings.Join(missing, ", ")}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("credentials present (%s)", cfg.YouTube.Privacy)}
}

// CheckSystemDeps evaluates the external binaries a run needs.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	statuses := deps.CheckBinaries([]deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.Media.FFmpegBinary,
			Description: "Required for recording and assembly",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.Media.FFprobeBinary,
			Description: "Required for clip inspection",
		},
	})
	return append(statuses, deps.CheckChrome(cfg.Game.ChromePath))
}

func summarizeNetError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timed out (service unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timed out (service unreachable)"
	}
	return err.Error()
}
