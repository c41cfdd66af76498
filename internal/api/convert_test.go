package api_test

import (
	"math"
	"testing"
	"time"

	"inkwit/internal/api"
	"inkwit/internal/queue"
)

func TestStatusFromRunStepFlags(t *testing.T) {
	tests := []struct {
		name          string
		stage         queue.Stage
		progressStage string
		wantCompleted int
		wantCurrent   string
	}{
		{"queued", queue.StageDetecting, "", 0, "detecting"},
		{"analyzing", queue.StageAnalyzing, "", 1, "analyzing"},
		{"classifying", queue.StageClassifying, "", 2, "classifying"},
		{"done", queue.StageDone, "", 3, ""},
		{"failed during analyzing", queue.StageFailed, "analyzing", 1, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			run := &queue.Run{
				ID:            "run-1",
				Stage:         tc.stage,
				ProgressStage: tc.progressStage,
			}
			view := api.StatusFromRun(run)

			if view.CompletedSteps != tc.wantCompleted {
				t.Fatalf("completed = %d, want %d", view.CompletedSteps, tc.wantCompleted)
			}
			if view.TotalSteps != queue.TotalSteps {
				t.Fatalf("total = %d", view.TotalSteps)
			}
			if len(view.Steps) != queue.TotalSteps {
				t.Fatalf("steps = %d", len(view.Steps))
			}
			for i, step := range view.Steps {
				wantDone := i < tc.wantCompleted
				if step.Completed != wantDone {
					t.Fatalf("step %s completed = %v, want %v", step.Name, step.Completed, wantDone)
				}
				wantCurrent := step.Name == tc.wantCurrent
				if step.Current != wantCurrent {
					t.Fatalf("step %s current = %v, want %v", step.Name, step.Current, wantCurrent)
				}
			}
		})
	}
}

func TestResultFromRunCarriesArtifacts(t *testing.T) {
	created := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	run := &queue.Run{
		ID:            "run-2",
		Stage:         queue.StageDone,
		ImagePath:     "/images/house.jpg",
		AnnotatedPath: "/images/house_annotated.jpg",
		NarrativeText: "마당이 있는 집",
		SummaryText:   "안정 지향",
		ElementsJSON:  `[{"label":"집"}]`,
		DecisionJSON:  `{"persona":"stable","scores":{"stable":3,"driven":1}}`,
		CreatedAt:     created,
	}

	view := api.ResultFromRun(run)
	if view.Narrative != run.NarrativeText || view.Summary != run.SummaryText {
		t.Fatalf("unexpected text fields: %+v", view)
	}
	if string(view.Elements) != run.ElementsJSON {
		t.Fatalf("elements = %s", view.Elements)
	}
	if string(view.Decision) != run.DecisionJSON {
		t.Fatalf("decision = %s", view.Decision)
	}
	if math.Abs(view.Percentages["stable"]-75) > 1e-9 || math.Abs(view.Percentages["driven"]-25) > 1e-9 {
		t.Fatalf("percentages = %v", view.Percentages)
	}
	if view.CreatedAt == "" {
		t.Fatal("expected created timestamp")
	}
	if api.ParseRunTime(view.CreatedAt).IsZero() {
		t.Fatalf("timestamp %q does not round-trip", view.CreatedAt)
	}
}

func TestResultFromRunOmitsEmptyDecision(t *testing.T) {
	run := &queue.Run{ID: "run-3", Stage: queue.StageAnalyzing}
	view := api.ResultFromRun(run)
	if view.Decision != nil || view.Percentages != nil || view.Elements != nil {
		t.Fatalf("expected empty artifacts: %+v", view)
	}
}

func TestResultFromRunSkipsPercentagesForZeroScores(t *testing.T) {
	run := &queue.Run{
		ID:           "run-4",
		Stage:        queue.StageDone,
		DecisionJSON: `{"persona":"undetermined","scores":{}}`,
	}
	view := api.ResultFromRun(run)
	if view.Percentages != nil {
		t.Fatalf("expected nil percentages, got %v", view.Percentages)
	}
}

func TestMergeRunStatsIncludesAllStages(t *testing.T) {
	merged := api.MergeRunStats(map[queue.Stage]int{
		queue.StageDetecting: 2,
		queue.StageFailed:    1,
	})
	if len(merged) != len(queue.AllStages()) {
		t.Fatalf("merged = %v", merged)
	}
	if merged["detecting"] != 2 || merged["failed"] != 1 || merged["done"] != 0 {
		t.Fatalf("merged = %v", merged)
	}
}

func TestFromRunNil(t *testing.T) {
	view := api.FromRun(nil)
	if view.ID != "" || view.Stage != "" {
		t.Fatalf("expected zero view, got %+v", view)
	}
}
