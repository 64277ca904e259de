package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"pinpoint/internal/preflight"
)

func newPreflightCommand(ctx *commandContext) *cobra.Command {
	var offline bool
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "preflight",
		Short: "Check tools, directories and credentials a run needs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg, preflight.Options{DryRun: dryRun, SkipNetwork: offline})
			out := cmd.OutOrStdout()
			writePreflight(out, results, shouldColorize(out))
			if failed := preflight.Failed(results); len(failed) > 0 {
				return preflightError(failed)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "Skip checks that contact the puzzle feed and LLM")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Treat YouTube credentials as optional")
	return cmd
}

func writePreflight(out io.Writer, results []preflight.Result, colorize bool) {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		kind := checkKind(r.Passed, r.Optional)
		rows = append(rows, []string{
			r.Name,
			colorLabel(statusKindLabel(kind), kind, colorize),
			yesNo(!r.Optional),
			r.Detail,
		})
	}
	fmt.Fprintln(out, renderTable([]string{"Check", "Status", "Required", "Detail"}, rows, nil))
}

func preflightError(failed []preflight.Result) error {
	names := make([]string, 0, len(failed))
	for _, r := range failed {
		names = append(names, r.Name)
	}
	return fmt.Errorf("preflight failed: %s", strings.Join(names, ", "))
}

// runPreflight gates a run on local prerequisites. Remote services are left to
// the stages themselves so their failures carry the right exit reason.
func runPreflight(ctx context.Context, cmdCtx *commandContext, out io.Writer, dryRun bool) error {
	cfg, err := cmdCtx.ensureConfig()
	if err != nil {
		return err
	}
	results := preflight.RunAll(ctx, cfg, preflight.Options{DryRun: dryRun, SkipNetwork: true})
	failed := preflight.Failed(results)
	if len(failed) == 0 {
		return nil
	}
	writePreflight(out, failed, shouldColorize(out))
	return preflightError(failed)
}
