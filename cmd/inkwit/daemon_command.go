package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"inkwit/internal/classify"
	"inkwit/internal/daemon"
	"inkwit/internal/detect"
	"inkwit/internal/knowledge"
	"inkwit/internal/logging"
	"inkwit/internal/narrative"
	"inkwit/internal/queue"
	"inkwit/internal/workflow"
)

func newDaemonCommand(ctx *commandContext) *cobra.Command {
	daemonCmd := &cobra.Command{
		Use:   "daemon",
		Short: "Daemon management",
	}

	daemonCmd.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Run the analysis daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemonProcess(cmd.Context(), ctx)
		},
	})

	daemonCmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			status, err := client.DaemonStatus(cmd.Context())
			if err != nil {
				return err
			}
			printDaemonStatus(cmd.OutOrStdout(), status)
			return nil
		},
	})

	return daemonCmd
}

func runDaemonProcess(cmdCtx context.Context, ctx *commandContext) error {
	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	_ = godotenv.Load()

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	store, err := queue.Open(cfg)
	if err != nil {
		return fmt.Errorf("open run store: %w", err)
	}
	defer store.Close()

	var base *knowledge.Base
	if strings.TrimSpace(cfg.Paths.KnowledgeDir) != "" {
		base, err = knowledge.Load(cfg.Paths.KnowledgeDir)
	} else {
		base, err = knowledge.LoadDefault()
	}
	if err != nil {
		return fmt.Errorf("load knowledge base: %w", err)
	}

	workflowManager := workflow.NewManager(cfg, store, logger)
	workflowManager.ConfigureStages(workflow.StageSet{
		Detector:   detect.NewDetector(cfg, store, logger),
		Analyzer:   narrative.NewAnalyzer(cfg, store, logger, base),
		Classifier: classify.NewClassifier(cfg, store, logger, base),
	})

	d, err := daemon.New(cfg, store, logger, workflowManager)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}

	<-signalCtx.Done()
	d.Stop()
	logger.Info("daemon shutting down")
	return nil
}
