package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"inkwit/internal/logging"
	"inkwit/internal/queue"
	"inkwit/internal/services"
)

func (m *Manager) runReclaimer(ctx context.Context) {
	defer m.wg.Done()
	logger := m.managerLogger()

	for {
		if err := m.heartbeat.ReclaimStaleRuns(ctx, logger); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("reclaim stale runs failed; stuck runs may remain",
				logging.Error(err),
				logging.String(logging.FieldEventType, "heartbeat_reclaim_failed"),
				logging.String(logging.FieldErrorHint, "check run database access"),
			)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(m.pollInterval):
		}
	}
}

func (m *Manager) runWorker(ctx context.Context) {
	defer m.wg.Done()
	logger := m.managerLogger()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		run, err := m.claimRun(ctx)
		if err != nil {
			m.setLastError(err)
			logger.Error("failed to fetch next run",
				logging.Error(err),
				logging.String(logging.FieldEventType, "queue_fetch_failed"),
				logging.String(logging.FieldErrorHint, "check run database access"),
			)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Duration(m.cfg.Workflow.ErrorRetryInterval) * time.Second):
			}
			continue
		}
		if run == nil {
			m.waitForRunOrShutdown(ctx)
			continue
		}

		err = m.processRun(ctx, logger, run)
		m.releaseRun(run.ID)
		if errors.Is(err, context.Canceled) {
			return
		}
	}
}

func (m *Manager) processRun(ctx context.Context, workerLogger *slog.Logger, run *queue.Run) error {
	stg, ok := m.stageFor(run.Stage)
	if !ok {
		workerLogger.Warn("no stage configured for run", logging.String("stage", string(run.Stage)))
		m.waitForRunOrShutdown(ctx)
		return nil
	}

	requestID := uuid.NewString()
	stageCtx := services.WithRunID(ctx, run.ID)
	stageCtx = services.WithStage(stageCtx, stg.name)
	stageCtx = services.WithRequestID(stageCtx, requestID)
	stageLogger := logging.WithContext(stageCtx, workerLogger)

	stageStart := time.Now()
	stageLogger.Info("stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String("image", run.ImagePath),
	)

	if err := stg.handler.Prepare(stageCtx, run); err != nil {
		m.handleStageFailure(stageCtx, stg.name, run, err)
		m.setLastError(err)
		return err
	}
	now := time.Now().UTC()
	run.LastHeartbeat = &now
	if err := m.store.Update(stageCtx, run); err != nil {
		wrapped := fmt.Errorf("persist stage preparation: %w", err)
		stageLogger.Error("failed to persist stage preparation", logging.Error(wrapped))
		m.setLastError(wrapped)
		return wrapped
	}
	m.setLastRun(run)

	execErr := m.executeWithHeartbeat(stageCtx, stg, run)
	if execErr != nil {
		if errors.Is(execErr, context.Canceled) {
			stageLogger.Debug("stage interrupted by shutdown")
			return execErr
		}
		m.handleStageFailure(stageCtx, stg.name, run, execErr)
		m.setLastError(execErr)
		return execErr
	}

	next, hasNext := queue.NextStage(stg.startStage)
	if !hasNext {
		return fmt.Errorf("stage %s has no successor", stg.name)
	}
	moved, err := m.store.TransitionStage(stageCtx, run.ID, stg.startStage, next)
	if err != nil {
		stageLogger.Error("failed to transition run", logging.Error(err))
		m.setLastError(err)
		return err
	}
	if !moved {
		// Another worker already advanced or retried this run; its copy of
		// the results wins and ours is discarded.
		stageLogger.Warn("run moved concurrently, dropping stage result",
			logging.String("expected_stage", string(stg.startStage)))
		return nil
	}

	run.Stage = next
	run.LastHeartbeat = nil
	if err := m.store.Update(stageCtx, run); err != nil {
		wrapped := fmt.Errorf("persist stage result: %w", err)
		stageLogger.Error("failed to persist stage result", logging.Error(wrapped))
		m.setLastError(wrapped)
		return wrapped
	}
	m.setLastRun(run)

	stageLogger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.String("next_stage", string(run.Stage)),
		logging.Duration("stage_duration", time.Since(stageStart)),
	)

	if run.Stage == queue.StageDone {
		m.notifyRunCompleted(stageCtx, run)
	}
	return nil
}

func (m *Manager) executeWithHeartbeat(ctx context.Context, stg pipelineStage, run *queue.Run) error {
	hbCtx, hbCancel := context.WithCancel(ctx)
	var hbWG sync.WaitGroup
	hbWG.Add(1)
	go m.heartbeat.StartLoop(hbCtx, &hbWG, run.ID)

	execErr := stg.handler.Execute(ctx, run)
	hbCancel()
	hbWG.Wait()
	return execErr
}

func (m *Manager) stageFor(stage queue.Stage) (pipelineStage, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stg, ok := m.stages[stage]
	return stg, ok
}

func (m *Manager) managerLogger() *slog.Logger {
	if m.logger == nil {
		return logging.NewNop()
	}
	return m.logger.With(logging.String(logging.FieldComponent, "workflow-manager"))
}
