package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"inkwit/internal/config"
	"inkwit/internal/notifications"
	"inkwit/internal/queue"
	"inkwit/internal/stage"
)

// StageSet bundles the concrete pipeline handlers the manager orchestrates.
type StageSet struct {
	Detector   stage.Handler
	Analyzer   stage.Handler
	Classifier stage.Handler
}

type pipelineStage struct {
	name       string
	handler    stage.Handler
	startStage queue.Stage
}

// Manager coordinates run processing using registered stage handlers.
type Manager struct {
	cfg          *config.Config
	store        *queue.Store
	logger       *slog.Logger
	notifier     notifications.Service
	pollInterval time.Duration
	workers      int

	heartbeat *HeartbeatMonitor

	stages     map[queue.Stage]pipelineStage
	stageOrder []queue.Stage

	mu       sync.RWMutex
	running  bool
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	lastErr  error
	lastRun  *queue.Run
	inFlight map[string]struct{}
}

// NewManager constructs a new workflow manager.
func NewManager(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Manager {
	return NewManagerWithNotifier(cfg, store, logger, notifications.NewService(cfg))
}

// NewManagerWithNotifier constructs a workflow manager with a custom
// notifier (used in tests).
func NewManagerWithNotifier(cfg *config.Config, store *queue.Store, logger *slog.Logger, notifier notifications.Service) *Manager {
	workers := cfg.Workflow.MaxConcurrentRuns
	if workers < 1 {
		workers = 1
	}
	return &Manager{
		cfg:          cfg,
		store:        store,
		logger:       logger,
		notifier:     notifier,
		pollInterval: time.Duration(cfg.Workflow.QueuePollInterval) * time.Second,
		workers:      workers,
		heartbeat: NewHeartbeatMonitor(
			store,
			logger,
			time.Duration(cfg.Workflow.HeartbeatInterval)*time.Second,
			time.Duration(cfg.Workflow.HeartbeatTimeout)*time.Second,
		),
		stages:   make(map[queue.Stage]pipelineStage),
		inFlight: make(map[string]struct{}),
	}
}

// ConfigureStages registers the pipeline handlers.
func (m *Manager) ConfigureStages(set StageSet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stages = make(map[queue.Stage]pipelineStage)
	m.stageOrder = m.stageOrder[:0]
	register := func(name string, startStage queue.Stage, handler stage.Handler) {
		if handler == nil {
			return
		}
		m.stages[startStage] = pipelineStage{name: name, handler: handler, startStage: startStage}
		m.stageOrder = append(m.stageOrder, startStage)
	}
	register("detecting", queue.StageDetecting, set.Detector)
	register("analyzing", queue.StageAnalyzing, set.Analyzer)
	register("classifying", queue.StageClassifying, set.Classifier)
}

// Start begins background processing.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}
	if len(m.stageOrder) == 0 {
		m.mu.Unlock()
		return errors.New("workflow stages not configured")
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(m.workers + 1)
	m.mu.Unlock()

	go m.runReclaimer(runCtx)
	for i := 0; i < m.workers; i++ {
		go m.runWorker(runCtx)
	}

	return nil
}

// Stop terminates background processing and waits for completion.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

func (m *Manager) claimRun(ctx context.Context) (*queue.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	runs, err := m.store.List(ctx, m.stageOrder...)
	if err != nil {
		return nil, err
	}
	for _, run := range runs {
		if _, busy := m.inFlight[run.ID]; busy {
			continue
		}
		m.inFlight[run.ID] = struct{}{}
		return run, nil
	}
	return nil, nil
}

func (m *Manager) releaseRun(id string) {
	m.mu.Lock()
	delete(m.inFlight, id)
	m.mu.Unlock()
}

func (m *Manager) waitForRunOrShutdown(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(m.pollInterval):
	}
}
