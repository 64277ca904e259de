package main

import (
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"pinpoint/internal/logging"
	"pinpoint/internal/pipeline"
	"pinpoint/internal/runlock"
	"pinpoint/internal/stage"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	var skipPreflight bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch, play, record, produce and publish today's puzzle",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			lock, err := runlock.Acquire(cfg.LockPath())
			if err != nil {
				return err
			}
			defer lock.Release()

			if !skipPreflight {
				if err := runPreflight(signalCtx, ctx, cmd.ErrOrStderr(), dryRun); err != nil {
					return err
				}
			}

			logger, err := ctx.logger()
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			result := buildRunner(cfg, logger, dryRun).Run(signalCtx)
			out := cmd.OutOrStdout()
			writeRunSummary(out, result, shouldColorize(out))

			if result.ExitCode() != 0 {
				if signalCtx.Err() != nil {
					logger.Warn("run interrupted", logging.String("reason", result.Reason.String()))
				}
				return errors.New(result.FailureMessage())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Produce the video but do not upload it")
	cmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "Start without checking local prerequisites")
	return cmd
}

func writeRunSummary(out io.Writer, result pipeline.Result, colorize bool) {
	for _, line := range renderSectionHeader("Run "+result.State.RunID, colorize) {
		fmt.Fprintln(out, line)
	}
	rows := make([][]string, 0, len(result.State.Stages))
	for _, st := range result.State.Stages {
		kind := stageKind(st.Status)
		elapsed := ""
		if st.Status.Terminal() && st.Status != stage.StatusSkipped {
			elapsed = st.Elapsed.Round(100 * time.Millisecond).String()
		}
		rows = append(rows, []string{
			st.Name,
			colorLabel(string(st.Status), kind, colorize),
			elapsed,
			st.Detail,
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Stage", "Status", "Elapsed", "Detail"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
	))

	fmt.Fprintf(out, "Dry run: %s\n", yesNo(result.State.DryRun))
	if result.Task.Date != "" {
		fmt.Fprintf(out, "Puzzle: %s (%d decoys)\n", result.Task.Date, len(result.Task.DecoyGuesses))
	}
	if result.Artifact.Path != "" {
		fmt.Fprintf(out, "Video: %s\n", result.Artifact.Path)
	}
	if result.VideoID != "" {
		fmt.Fprintf(out, "Published: https://youtu.be/%s\n", result.VideoID)
	}
}
