package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"inkwit/internal/logging"
	"inkwit/internal/queue"
	"inkwit/internal/services"
)

func (m *Manager) handleStageFailure(ctx context.Context, stageName string, run *queue.Run, stageErr error) {
	logger := logging.WithContext(ctx, m.managerLogger())

	message := m.classifyStageFailure(stageName, stageErr)
	run.SetFailed(message)

	details := services.Details(stageErr)
	attrs := []logging.Attr{
		logging.String("error_message", strings.TrimSpace(message)),
		logging.String(logging.FieldErrorKind, details.Kind),
		logging.String(logging.FieldErrorHint, details.Hint),
		logging.String(logging.FieldEventType, "stage_failure"),
	}
	if details.Cause != nil {
		attrs = append(attrs, logging.Error(details.Cause))
	} else if stageErr != nil {
		attrs = append(attrs, logging.Error(stageErr))
	}
	logger.Error("stage failed", logging.Args(attrs...)...)

	if err := m.store.Update(ctx, run); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("daemon shutting down, could not update stage failure")
		} else {
			logger.Error("failed to persist stage failure", logging.Error(err))
		}
	}

	m.setLastRun(run)
	m.notifyRunFailed(ctx, stageName, run, message)
}

func (m *Manager) classifyStageFailure(stageName string, stageErr error) string {
	if stageErr == nil {
		return fmt.Sprintf("%s failed without error detail", stageName)
	}

	details := services.Details(stageErr)
	message := strings.TrimSpace(details.Message)
	if message == "" {
		message = strings.TrimSpace(stageErr.Error())
	}
	if message == "" {
		message = fmt.Sprintf("%s failed", stageName)
	}
	return message
}
