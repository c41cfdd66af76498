package api

import (
	"encoding/json"
	"strings"
	"time"

	"inkwit/internal/queue"
	"inkwit/internal/workflow"
)

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// stepNames lists the pipeline steps in execution order.
var stepNames = []string{"detecting", "analyzing", "classifying"}

// FromRun converts a run record into its API view.
func FromRun(run *queue.Run) RunView {
	if run == nil {
		return RunView{}
	}
	view := RunView{
		ID:            run.ID,
		ImagePath:     run.ImagePath,
		AnnotatedPath: run.AnnotatedPath,
		Stage:         string(run.Stage),
		ErrorMessage:  run.ErrorMessage,
		Progress: RunProgress{
			Stage:   run.ProgressStage,
			Percent: run.ProgressPercent,
			Message: run.ProgressMessage,
		},
	}
	if !run.CreatedAt.IsZero() {
		view.CreatedAt = run.CreatedAt.UTC().Format(dateTimeFormat)
	}
	if !run.UpdatedAt.IsZero() {
		view.UpdatedAt = run.UpdatedAt.UTC().Format(dateTimeFormat)
	}
	return view
}

// FromRuns converts a batch of run records.
func FromRuns(runs []*queue.Run) []RunView {
	if len(runs) == 0 {
		return nil
	}
	views := make([]RunView, 0, len(runs))
	for _, run := range runs {
		views = append(views, FromRun(run))
	}
	return views
}

// StatusFromRun builds the polling payload for a run.
func StatusFromRun(run *queue.Run) StatusView {
	if run == nil {
		return StatusView{}
	}
	completed := run.CompletedSteps()
	current := string(run.Stage)

	steps := make([]StepView, 0, len(stepNames))
	for i, name := range stepNames {
		steps = append(steps, StepView{
			Name:      name,
			Completed: i < completed,
			Current:   name == current,
		})
	}

	return StatusView{
		ID:             run.ID,
		Stage:          string(run.Stage),
		Steps:          steps,
		CompletedSteps: completed,
		TotalSteps:     queue.TotalSteps,
		ErrorMessage:   run.ErrorMessage,
	}
}

// ResultFromRun builds the full analysis payload for a run.
func ResultFromRun(run *queue.Run) ResultView {
	if run == nil {
		return ResultView{}
	}
	view := ResultView{
		ID:            run.ID,
		Stage:         string(run.Stage),
		Narrative:     run.NarrativeText,
		Summary:       run.SummaryText,
		ImagePath:     run.ImagePath,
		AnnotatedPath: run.AnnotatedPath,
	}
	if strings.TrimSpace(run.ElementsJSON) != "" {
		view.Elements = json.RawMessage(run.ElementsJSON)
	}
	if strings.TrimSpace(run.DecisionJSON) != "" {
		view.Decision = json.RawMessage(run.DecisionJSON)
		view.Percentages = percentagesFromDecision(run.DecisionJSON)
	}
	if !run.CreatedAt.IsZero() {
		view.CreatedAt = run.CreatedAt.UTC().Format(dateTimeFormat)
	}
	if !run.UpdatedAt.IsZero() {
		view.UpdatedAt = run.UpdatedAt.UTC().Format(dateTimeFormat)
	}
	return view
}

func percentagesFromDecision(decisionJSON string) map[string]float64 {
	var decision struct {
		Scores map[string]float64 `json:"scores"`
	}
	if err := json.Unmarshal([]byte(decisionJSON), &decision); err != nil || len(decision.Scores) == 0 {
		return nil
	}
	total := 0.0
	for _, score := range decision.Scores {
		total += score
	}
	if total == 0 {
		return nil
	}
	percentages := make(map[string]float64, len(decision.Scores))
	for persona, score := range decision.Scores {
		percentages[persona] = score / total * 100
	}
	return percentages
}

// FromStatusSummary converts workflow diagnostics into the API shape.
func FromStatusSummary(summary workflow.StatusSummary) WorkflowStatus {
	status := WorkflowStatus{
		Running:   summary.Running,
		LastError: summary.LastError,
		RunStats:  MergeRunStats(summary.RunStats),
	}
	if summary.LastRun != nil {
		view := FromRun(summary.LastRun)
		status.LastRun = &view
	}
	for _, name := range stepNames {
		if health, ok := summary.StageHealth[name]; ok {
			status.StageHealth = append(status.StageHealth, StageHealth{
				Name:   health.Name,
				Ready:  health.Ready,
				Detail: health.Detail,
			})
		}
	}
	return status
}

// MergeRunStats normalizes run counts keyed by stage string, ensuring all
// known stages appear.
func MergeRunStats(stats map[queue.Stage]int) map[string]int {
	merged := make(map[string]int, len(stats))
	for _, stage := range queue.AllStages() {
		merged[string(stage)] = stats[stage]
	}
	return merged
}

// ParseRunTime parses an API timestamp for display formatting.
func ParseRunTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t
	}
	return time.Time{}
}
