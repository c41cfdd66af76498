package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"inkwit/internal/api"
	"inkwit/internal/queue"
)

func newResultCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "result <run-id>",
		Short: "Show the analysis result for a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			result, err := client.RunResult(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, result)
			}
			printResult(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the raw result payload as JSON")
	return cmd
}

func printResult(out io.Writer, result api.ResultView) {
	colorize := shouldColorize(out)
	for _, line := range renderSectionHeader(fmt.Sprintf("Run %s", shortRunID(result.ID)), colorize) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintf(out, "Stage: %s\n", result.Stage)
	if result.Stage != string(queue.StageDone) {
		fmt.Fprintln(out, "Analysis has not finished; partial fields follow.")
	}
	if result.AnnotatedPath != "" {
		fmt.Fprintf(out, "Annotated image: %s\n", result.AnnotatedPath)
	}

	if len(result.Percentages) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Persona scores:")
		for _, entry := range sortedPercentages(result.Percentages) {
			fmt.Fprintf(out, "  %-14s %5.1f%%\n", entry.name, entry.percent)
		}
	}
	if result.Summary != "" {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Summary:")
		fmt.Fprintln(out, indentText(result.Summary))
	}
	if result.Narrative != "" {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Narrative:")
		fmt.Fprintln(out, indentText(result.Narrative))
	}
}

type percentageEntry struct {
	name    string
	percent float64
}

func sortedPercentages(percentages map[string]float64) []percentageEntry {
	entries := make([]percentageEntry, 0, len(percentages))
	for name, percent := range percentages {
		entries = append(entries, percentageEntry{name: name, percent: percent})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].percent != entries[j].percent {
			return entries[i].percent > entries[j].percent
		}
		return entries[i].name < entries[j].name
	})
	return entries
}

func indentText(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	for i, line := range lines {
		lines[i] = "  " + line
	}
	return strings.Join(lines, "\n")
}
