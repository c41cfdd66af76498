package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"inkwit/internal/queue"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var wait bool
	var pollSeconds int

	cmd := &cobra.Command{
		Use:   "analyze <image>",
		Short: "Submit a drawing for analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}

			imagePath, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve image path: %w", err)
			}

			run, err := client.SubmitPath(cmd.Context(), imagePath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run %s queued for %s\n", run.ID, run.ImagePath)

			if !wait {
				fmt.Fprintf(out, "Poll with: inkwit status %s\n", shortRunID(run.ID))
				return nil
			}
			return waitForRun(cmd, client, run.ID, pollSeconds)
		},
	}

	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "Poll until the run completes or fails")
	cmd.Flags().IntVar(&pollSeconds, "poll-interval", 2, "Seconds between status polls with --wait")
	return cmd
}

func waitForRun(cmd *cobra.Command, client *apiClient, id string, pollSeconds int) error {
	if pollSeconds < 1 {
		pollSeconds = 1
	}
	out := cmd.OutOrStdout()
	ticker := time.NewTicker(time.Duration(pollSeconds) * time.Second)
	defer ticker.Stop()

	lastStage := ""
	for {
		status, err := client.RunStatus(cmd.Context(), id)
		if err != nil {
			return err
		}
		if status.Stage != lastStage {
			fmt.Fprintf(out, "[%d/%d] %s\n", status.CompletedSteps, status.TotalSteps, status.Stage)
			lastStage = status.Stage
		}
		switch status.Stage {
		case string(queue.StageDone):
			result, err := client.RunResult(cmd.Context(), id)
			if err != nil {
				return err
			}
			printResult(out, result)
			return nil
		case string(queue.StageFailed):
			if status.ErrorMessage != "" {
				return fmt.Errorf("run failed: %s", status.ErrorMessage)
			}
			return fmt.Errorf("run %s failed", shortRunID(id))
		}

		select {
		case <-cmd.Context().Done():
			return cmd.Context().Err()
		case <-ticker.C:
		}
	}
}
