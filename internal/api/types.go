package api

import "encoding/json"

// RunView describes a run in a transport-friendly format.
type RunView struct {
	ID            string      `json:"run_id"`
	ImagePath     string      `json:"image_path"`
	AnnotatedPath string      `json:"annotated_path,omitempty"`
	Stage         string      `json:"stage"`
	Progress      RunProgress `json:"progress"`
	ErrorMessage  string      `json:"error,omitempty"`
	CreatedAt     string      `json:"created_at,omitempty"`
	UpdatedAt     string      `json:"updated_at,omitempty"`
}

// RunProgress captures stage progress information for a run.
type RunProgress struct {
	Stage   string  `json:"stage"`
	Percent float64 `json:"percent"`
	Message string  `json:"message"`
}

// StepView reports one pipeline step in a polling payload.
type StepView struct {
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
	Current   bool   `json:"current"`
}

// StatusView is the polling payload for one run.
type StatusView struct {
	ID             string     `json:"run_id"`
	Stage          string     `json:"stage"`
	Steps          []StepView `json:"steps"`
	CompletedSteps int        `json:"completed_steps"`
	TotalSteps     int        `json:"total_steps"`
	ErrorMessage   string     `json:"error,omitempty"`
}

// ResultView is the full analysis payload for a finished run.
type ResultView struct {
	ID            string             `json:"run_id"`
	Stage         string             `json:"stage"`
	Narrative     string             `json:"narrative,omitempty"`
	Summary       string             `json:"summary,omitempty"`
	Elements      json.RawMessage    `json:"elements,omitempty"`
	Decision      json.RawMessage    `json:"decision,omitempty"`
	Percentages   map[string]float64 `json:"percentages,omitempty"`
	ImagePath     string             `json:"image_path"`
	AnnotatedPath string             `json:"annotated_path,omitempty"`
	CreatedAt     string             `json:"created_at,omitempty"`
	UpdatedAt     string             `json:"updated_at,omitempty"`
}

// WorkflowStatus summarizes workflow execution state.
type WorkflowStatus struct {
	Running     bool           `json:"running"`
	RunStats    map[string]int `json:"run_stats"`
	LastError   string         `json:"last_error,omitempty"`
	LastRun     *RunView       `json:"last_run,omitempty"`
	StageHealth []StageHealth  `json:"stage_health"`
}

// StageHealth mirrors readiness reporting for pipeline stages.
type StageHealth struct {
	Name   string `json:"name"`
	Ready  bool   `json:"ready"`
	Detail string `json:"detail,omitempty"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running      bool           `json:"running"`
	PID          int            `json:"pid"`
	RunDBPath    string         `json:"run_db_path"`
	LockFilePath string         `json:"lock_file_path"`
	Workflow     WorkflowStatus `json:"workflow"`
}

// RunListResponse wraps a collection of runs for API responses.
type RunListResponse struct {
	Runs []RunView `json:"runs"`
}

// RunResponse wraps a single run.
type RunResponse struct {
	Run RunView `json:"run"`
}

// RetryRequest names the failed runs to requeue; an empty list retries all.
type RetryRequest struct {
	IDs []string `json:"ids"`
}

// RetryResponse reports how many runs were requeued.
type RetryResponse struct {
	Retried int64 `json:"retried"`
}

// ClearResponse reports how many runs were removed.
type ClearResponse struct {
	Removed int64 `json:"removed"`
}

// NotificationTestResponse reports the outcome of a test notification.
type NotificationTestResponse struct {
	Sent   bool   `json:"sent"`
	Detail string `json:"detail"`
}
