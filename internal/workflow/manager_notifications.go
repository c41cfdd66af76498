package workflow

import (
	"context"
	"encoding/json"
	"strings"

	"inkwit/internal/logging"
	"inkwit/internal/queue"
)

func (m *Manager) notifyRunCompleted(ctx context.Context, run *queue.Run) {
	if m.notifier == nil {
		return
	}
	personaType := "undetermined"
	confidence := 0.0
	if strings.TrimSpace(run.DecisionJSON) != "" {
		var decision struct {
			PredictedType string  `json:"predicted_type"`
			Confidence    float64 `json:"confidence"`
		}
		if err := json.Unmarshal([]byte(run.DecisionJSON), &decision); err == nil && decision.PredictedType != "" {
			personaType = decision.PredictedType
			confidence = decision.Confidence
		}
	}
	if err := m.notifier.NotifyRunCompleted(ctx, run.ID, personaType, confidence); err != nil {
		m.managerLogger().Warn("completion notification failed", logging.Error(err))
	}
}

func (m *Manager) notifyRunFailed(ctx context.Context, stageName string, run *queue.Run, message string) {
	if m.notifier == nil {
		return
	}
	if err := m.notifier.NotifyRunFailed(ctx, run.ID, stageName, message); err != nil {
		m.managerLogger().Warn("failure notification failed", logging.Error(err))
	}
}
