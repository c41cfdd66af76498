package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"inkwit/internal/api"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status [run-id]",
		Short: "Show daemon status, or progress for a single run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				status, err := client.RunStatus(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, status)
				}
				printRunStatus(cmd.OutOrStdout(), status)
				return nil
			}

			status, err := client.DaemonStatus(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, status)
			}
			printDaemonStatus(cmd.OutOrStdout(), status)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the status payload as JSON")
	return cmd
}

func printRunStatus(out io.Writer, status api.StatusView) {
	colorize := shouldColorize(out)
	for _, line := range renderSectionHeader(fmt.Sprintf("Run %s", shortRunID(status.ID)), colorize) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintf(out, "Stage: %s (%d/%d steps)\n", status.Stage, status.CompletedSteps, status.TotalSteps)
	for _, step := range status.Steps {
		fmt.Fprintf(out, "  %s %s\n", stepMarker(step.Completed, step.Current, colorize), step.Name)
	}
	if status.ErrorMessage != "" {
		fmt.Fprintf(out, "Error: %s\n", failureText(status.ErrorMessage, colorize))
	}
}

func printDaemonStatus(out io.Writer, status api.DaemonStatus) {
	colorize := shouldColorize(out)
	for _, line := range renderSectionHeader("Daemon", colorize) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintf(out, "Running: %s (pid %d)\n", yesNo(status.Running), status.PID)
	fmt.Fprintf(out, "Run database: %s\n", status.RunDBPath)
	fmt.Fprintf(out, "Lock file: %s\n", status.LockFilePath)

	fmt.Fprintln(out)
	for _, line := range renderSectionHeader("Workflow", colorize) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintf(out, "Processing: %s\n", yesNo(status.Workflow.Running))
	if status.Workflow.LastError != "" {
		fmt.Fprintf(out, "Last error: %s\n", failureText(status.Workflow.LastError, colorize))
	}
	if last := status.Workflow.LastRun; last != nil {
		fmt.Fprintf(out, "Last run: %s (%s)\n", shortRunID(last.ID), last.Stage)
	}

	if len(status.Workflow.RunStats) > 0 {
		stages := make([]string, 0, len(status.Workflow.RunStats))
		for stage := range status.Workflow.RunStats {
			stages = append(stages, stage)
		}
		sort.Strings(stages)
		fmt.Fprintln(out, "Runs by stage:")
		for _, stage := range stages {
			fmt.Fprintf(out, "  %-12s %d\n", stage, status.Workflow.RunStats[stage])
		}
	}

	if len(status.Workflow.StageHealth) > 0 {
		fmt.Fprintln(out, "Stage health:")
		for _, health := range status.Workflow.StageHealth {
			detail := health.Detail
			if detail == "" {
				detail = "ready"
			}
			if !health.Ready {
				detail = failureText(detail, colorize)
			}
			fmt.Fprintf(out, "  %-12s %s\n", health.Name, detail)
		}
	}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
