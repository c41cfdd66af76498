package main

import (
	"context"
	"log"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"inkwit/internal/config"
	"inkwit/internal/daemon"
	"inkwit/internal/knowledge"
	"inkwit/internal/logging"
	"inkwit/internal/queue"
	"inkwit/internal/workflow"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	_ = godotenv.Load()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	store, err := queue.Open(cfg)
	if err != nil {
		logger.Error("open run store", logging.Error(err))
		return
	}

	base, err := loadKnowledge(cfg, logger)
	if err != nil {
		logger.Error("load knowledge base", logging.Error(err))
		return
	}

	workflowManager := workflow.NewManager(cfg, store, logger)
	configureStages(workflowManager, cfg, store, logger, base)

	d, err := daemon.New(cfg, store, logger, workflowManager)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		return
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		return
	}

	<-ctx.Done()
	d.Stop()
	logger.Info("inkwitd shutting down")
}

func loadKnowledge(cfg *config.Config, logger *slog.Logger) (*knowledge.Base, error) {
	if strings.TrimSpace(cfg.Paths.KnowledgeDir) != "" {
		return knowledge.Load(cfg.Paths.KnowledgeDir)
	}
	logger.Info("no knowledge directory configured, using embedded defaults")
	return knowledge.LoadDefault()
}
