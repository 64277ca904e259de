package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// chromeCandidates are the executable names tried when no Chrome path is configured.
var chromeCandidates = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
	"chrome",
}

// ResolveChrome returns the browser executable to launch. A configured path
// wins; otherwise the first candidate found on PATH is used.
func ResolveChrome(configured string) (string, error) {
	if cmd := strings.TrimSpace(configured); cmd != "" {
		resolved, err := exec.LookPath(cmd)
		if err != nil {
			return "", fmt.Errorf("chrome binary %q not found: %w", cmd, err)
		}
		return resolved, nil
	}
	for _, name := range chromeCandidates {
		if resolved, err := exec.LookPath(name); err == nil {
			return resolved, nil
		}
	}
	return "", fmt.Errorf("no chrome binary found on PATH (tried %s)", strings.Join(chromeCandidates, ", "))
}

// CheckChrome reports browser availability in the same shape as CheckBinaries.
func CheckChrome(configured string) Status {
	status := Status{
		Name:        "Chrome",
		Command:     strings.TrimSpace(configured),
		Description: "Plays and records the puzzle session",
	}
	resolved, err := ResolveChrome(configured)
	if err != nil {
		status.Detail = err.Error()
		return status
	}
	status.Command = resolved
	status.Available = true
	return status
}
