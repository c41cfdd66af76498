package queue

import (
	"strings"
	"time"
)

// Stage represents the lifecycle of an analysis run.
type Stage string

const (
	StageDetecting   Stage = "detecting"
	StageAnalyzing   Stage = "analyzing"
	StageClassifying Stage = "classifying"
	StageDone        Stage = "done"
	StageFailed      Stage = "failed"
)

// TotalSteps is the number of pipeline stages a run passes through.
const TotalSteps = 3

// DaemonStopReason is the error message set when runs are failed due to
// daemon shutdown.
const DaemonStopReason = "Daemon stopped"

var allStages = []Stage{
	StageDetecting,
	StageAnalyzing,
	StageClassifying,
	StageDone,
	StageFailed,
}

var stageSet = func() map[Stage]struct{} {
	set := make(map[Stage]struct{}, len(allStages))
	for _, stage := range allStages {
		set[stage] = struct{}{}
	}
	return set
}()

var processingStages = map[Stage]struct{}{
	StageDetecting:   {},
	StageAnalyzing:   {},
	StageClassifying: {},
}

// Run represents an analysis run persisted in SQLite.
type Run struct {
	ID              string
	ImagePath       string
	AnnotatedPath   string
	Stage           Stage
	ErrorMessage    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ProgressStage   string
	ProgressPercent float64
	ProgressMessage string
	DetectionsJSON  string
	NarrativeText   string
	SummaryText     string
	ElementsJSON    string
	DecisionJSON    string
	LastHeartbeat   *time.Time
}

// AllStages returns the ordered list of known stages.
func AllStages() []Stage {
	cp := make([]Stage, len(allStages))
	copy(cp, allStages)
	return cp
}

// ParseStage converts a string into a known Stage.
func ParseStage(value string) (Stage, bool) {
	normalized := Stage(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := stageSet[normalized]
	return normalized, ok
}

// IsProcessing returns true when the stage reflects pipeline work still
// ahead of or inside the run.
func (r Run) IsProcessing() bool {
	return IsProcessingStage(r.Stage)
}

// IsProcessingStage reports whether a stage reflects an unfinished run.
func IsProcessingStage(stage Stage) bool {
	_, ok := processingStages[stage]
	return ok
}

// CompletedSteps returns how many pipeline stages the run has finished.
// A failed run reports the steps completed before the failure, derived
// from the stage it failed in.
func (r Run) CompletedSteps() int {
	return CompletedStepsForStage(r.Stage, r.ProgressStage)
}

// CompletedStepsForStage maps a stage (and, for failed runs, the progress
// stage recorded at failure time) to a completed-step count.
func CompletedStepsForStage(stage Stage, progressStage string) int {
	switch stage {
	case StageDetecting:
		return 0
	case StageAnalyzing:
		return 1
	case StageClassifying:
		return 2
	case StageDone:
		return TotalSteps
	case StageFailed:
		if failedAt, ok := ParseStage(progressStage); ok {
			return CompletedStepsForStage(failedAt, "")
		}
		return 0
	default:
		return 0
	}
}

// NextStage returns the stage a run advances to after finishing the given
// processing stage, and false when the stage has no successor.
func NextStage(stage Stage) (Stage, bool) {
	switch stage {
	case StageDetecting:
		return StageAnalyzing, true
	case StageAnalyzing:
		return StageClassifying, true
	case StageClassifying:
		return StageDone, true
	default:
		return "", false
	}
}

// SetProgress updates all three progress fields together.
func (r *Run) SetProgress(stage, message string, percent float64) {
	r.ProgressStage = stage
	r.ProgressMessage = message
	r.ProgressPercent = percent
}

// SetFailed marks the run as failed with the given error message. The
// progress stage keeps the stage the run failed in so step counts survive.
func (r *Run) SetFailed(message string) {
	if IsProcessingStage(r.Stage) {
		r.ProgressStage = string(r.Stage)
	}
	r.Stage = StageFailed
	r.ErrorMessage = message
	r.ProgressPercent = 0
	r.ProgressMessage = message
	r.LastHeartbeat = nil
}

// HealthSummary describes aggregated run counts per key lifecycle states.
type HealthSummary struct {
	Total      int
	Processing int
	Failed     int
	Completed  int
}
