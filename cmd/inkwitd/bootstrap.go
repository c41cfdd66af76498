package main

import (
	"log/slog"

	"inkwit/internal/classify"
	"inkwit/internal/config"
	"inkwit/internal/detect"
	"inkwit/internal/knowledge"
	"inkwit/internal/narrative"
	"inkwit/internal/queue"
	"inkwit/internal/workflow"
)

type stageConfigurer interface {
	ConfigureStages(workflow.StageSet)
}

func configureStages(reg stageConfigurer, cfg *config.Config, store *queue.Store, logger *slog.Logger, base *knowledge.Base) {
	if reg == nil || cfg == nil {
		return
	}

	reg.ConfigureStages(workflow.StageSet{
		Detector:   detect.NewDetector(cfg, store, logger),
		Analyzer:   narrative.NewAnalyzer(cfg, store, logger, base),
		Classifier: classify.NewClassifier(cfg, store, logger, base),
	})
}
