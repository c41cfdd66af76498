package workflow_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"inkwit/internal/logging"
	"inkwit/internal/queue"
	"inkwit/internal/services"
	"inkwit/internal/stage"
	"inkwit/internal/testsupport"
	"inkwit/internal/workflow"
)

type stubHandler struct {
	name       string
	prepareErr error
	executeErr error
	execute    func(*queue.Run)

	mu    sync.Mutex
	calls int
}

func (h *stubHandler) Prepare(ctx context.Context, run *queue.Run) error {
	return h.prepareErr
}

func (h *stubHandler) Execute(ctx context.Context, run *queue.Run) error {
	h.mu.Lock()
	h.calls++
	h.mu.Unlock()
	if h.executeErr != nil {
		return h.executeErr
	}
	if h.execute != nil {
		h.execute(run)
	}
	return nil
}

func (h *stubHandler) HealthCheck(ctx context.Context) stage.Health {
	return stage.Healthy(h.name)
}

func (h *stubHandler) callCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls
}

type recordingNotifier struct {
	mu        sync.Mutex
	completed []string
	failed    []string
}

func (n *recordingNotifier) NotifyRunCompleted(ctx context.Context, runID, personaType string, confidence float64) error {
	n.mu.Lock()
	n.completed = append(n.completed, runID)
	n.mu.Unlock()
	return nil
}

func (n *recordingNotifier) NotifyRunFailed(ctx context.Context, runID, stageName, message string) error {
	n.mu.Lock()
	n.failed = append(n.failed, stageName)
	n.mu.Unlock()
	return nil
}

func (n *recordingNotifier) TestNotification(ctx context.Context) error { return nil }

func (n *recordingNotifier) failedStages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.failed...)
}

func (n *recordingNotifier) completedRuns() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.completed...)
}

func waitForStage(t *testing.T, store *queue.Store, id string, want queue.Stage) *queue.Run {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		run, err := store.GetByID(context.Background(), id)
		if err != nil {
			t.Fatalf("load run: %v", err)
		}
		if run != nil && run.Stage == want {
			return run
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("run %s never reached stage %s", id, want)
	return nil
}

func TestManagerProcessesRunToCompletion(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	notifier := &recordingNotifier{}
	manager := workflow.NewManagerWithNotifier(cfg, store, logging.NewNop(), notifier)

	detector := &stubHandler{name: "detecting", execute: func(run *queue.Run) {
		run.DetectionsJSON = `[{"label":"집"}]`
	}}
	analyzer := &stubHandler{name: "analyzing", execute: func(run *queue.Run) {
		run.NarrativeText = "마당이 있는 집"
	}}
	classifier := &stubHandler{name: "classifying", execute: func(run *queue.Run) {
		run.DecisionJSON = `{"predicted_type":"stable","confidence":0.8}`
	}}
	manager.ConfigureStages(workflow.StageSet{
		Detector:   detector,
		Analyzer:   analyzer,
		Classifier: classifier,
	})

	imagePath := filepath.Join(cfg.Paths.ImagesDir, "house.jpg")
	testsupport.WriteImage(t, imagePath)
	run := testsupport.NewRun(t, store, imagePath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := manager.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer manager.Stop()

	final := waitForStage(t, store, run.ID, queue.StageDone)
	if final.NarrativeText != "마당이 있는 집" {
		t.Fatalf("narrative not persisted: %q", final.NarrativeText)
	}
	if final.DecisionJSON == "" || final.DetectionsJSON == "" {
		t.Fatalf("stage artifacts missing: %+v", final)
	}
	for _, h := range []*stubHandler{detector, analyzer, classifier} {
		if h.callCount() != 1 {
			t.Fatalf("handler %s executed %d times", h.name, h.callCount())
		}
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if len(notifier.completedRuns()) > 0 {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if completed := notifier.completedRuns(); len(completed) != 1 || completed[0] != run.ID {
		t.Fatalf("completion notifications = %v", completed)
	}
}

func TestManagerMarksRunFailed(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	notifier := &recordingNotifier{}
	manager := workflow.NewManagerWithNotifier(cfg, store, logging.NewNop(), notifier)

	stageErr := services.Wrap(services.ErrGeneration, "analyzing", "narrative", "api unreachable", nil)
	manager.ConfigureStages(workflow.StageSet{
		Detector:   &stubHandler{name: "detecting"},
		Analyzer:   &stubHandler{name: "analyzing", executeErr: stageErr},
		Classifier: &stubHandler{name: "classifying"},
	})

	imagePath := filepath.Join(cfg.Paths.ImagesDir, "tree.jpg")
	testsupport.WriteImage(t, imagePath)
	run := testsupport.NewRun(t, store, imagePath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := manager.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer manager.Stop()

	final := waitForStage(t, store, run.ID, queue.StageFailed)
	if final.ProgressStage != string(queue.StageAnalyzing) {
		t.Fatalf("failing stage = %q", final.ProgressStage)
	}
	if final.ErrorMessage == "" {
		t.Fatal("expected error message")
	}
	if stages := notifier.failedStages(); len(stages) != 1 || stages[0] != "analyzing" {
		t.Fatalf("failure notifications = %v", stages)
	}
}

func TestStartRequiresConfiguredStages(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	manager := workflow.NewManagerWithNotifier(cfg, store, logging.NewNop(), &recordingNotifier{})

	if err := manager.Start(context.Background()); err == nil {
		manager.Stop()
		t.Fatal("expected error without configured stages")
	}
}

func TestStatusReportsStageHealth(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	manager := workflow.NewManagerWithNotifier(cfg, store, logging.NewNop(), &recordingNotifier{})
	manager.ConfigureStages(workflow.StageSet{
		Detector:   &stubHandler{name: "detecting"},
		Analyzer:   &stubHandler{name: "analyzing"},
		Classifier: &stubHandler{name: "classifying"},
	})

	summary := manager.Status(context.Background())
	if summary.Running {
		t.Fatal("manager should not report running before Start")
	}
	if len(summary.StageHealth) != 3 {
		t.Fatalf("stage health = %v", summary.StageHealth)
	}
	for name, health := range summary.StageHealth {
		if !health.Ready {
			t.Fatalf("stage %s not ready: %+v", name, health)
		}
	}
	if summary.RunStats == nil {
		t.Fatal("expected run stats")
	}
}
