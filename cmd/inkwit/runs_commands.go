package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"inkwit/internal/api"
	"inkwit/internal/queue"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect and manage analysis runs",
	}

	runsCmd.AddCommand(newRunsListCommand(ctx))
	runsCmd.AddCommand(newRunsClearCommand(ctx))
	runsCmd.AddCommand(newRunsRetryCommand(ctx))

	return runsCmd
}

func newRunsListCommand(ctx *commandContext) *cobra.Command {
	var stageFilter string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List analysis runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}

			var stages []queue.Stage
			if trimmed := strings.TrimSpace(stageFilter); trimmed != "" {
				stage, ok := queue.ParseStage(trimmed)
				if !ok {
					return fmt.Errorf("unknown stage %q", trimmed)
				}
				stages = append(stages, stage)
			}

			runs, err := client.ListRuns(cmd.Context(), stages...)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, api.RunListResponse{Runs: runs})
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs found")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					shortRunID(run.ID),
					filepath.Base(run.ImagePath),
					run.Stage,
					runProgressCell(run),
					run.CreatedAt,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Image", "Stage", "Progress", "Created"},
				rows,
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&stageFilter, "stage", "", "Only show runs in the given stage")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the run list as JSON")
	return cmd
}

func runProgressCell(run api.RunView) string {
	if run.ErrorMessage != "" {
		return run.ErrorMessage
	}
	if run.Progress.Message != "" {
		return run.Progress.Message
	}
	if run.Progress.Percent > 0 {
		return fmt.Sprintf("%.0f%%", run.Progress.Percent)
	}
	return ""
}

func newRunsClearCommand(ctx *commandContext) *cobra.Command {
	var completed bool
	var failed bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove runs from the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if completed && failed {
				return fmt.Errorf("choose one of --completed or --failed")
			}
			client, err := ctx.client()
			if err != nil {
				return err
			}

			scope := "all"
			label := "runs"
			switch {
			case completed:
				scope = "completed"
				label = "completed runs"
			case failed:
				scope = "failed"
				label = "failed runs"
			}

			removed, err := client.ClearRuns(cmd.Context(), scope)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d %s\n", removed, label)
			return nil
		},
	}

	cmd.Flags().BoolVar(&completed, "completed", false, "Only remove completed runs")
	cmd.Flags().BoolVar(&failed, "failed", false, "Only remove failed runs")
	return cmd
}

func newRunsRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry [run-id...]",
		Short: "Requeue failed runs from the beginning of the pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			retried, err := client.RetryRuns(cmd.Context(), args)
			if err != nil {
				return err
			}
			if retried == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No failed runs to retry")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Requeued %d run(s)\n", retried)
			return nil
		},
	}
}
