package narrative

import (
	"context"
	"encoding/json"
	"strings"

	"log/slog"

	"inkwit/internal/config"
	"inkwit/internal/knowledge"
	"inkwit/internal/logging"
	"inkwit/internal/queue"
	"inkwit/internal/services"
	oai "inkwit/internal/services/openai"
	"inkwit/internal/stage"
)

// Generator produces narrative text for a drawing.
type Generator interface {
	GenerateNarrative(ctx context.Context, imagePath, prompt string) (string, error)
}

// Analyzer runs the narrative generation stage: the drawing (annotated when
// the detector produced one) is sent to the language model along with the
// interpretation guide, and the resulting text becomes the run's narrative.
type Analyzer struct {
	store     *queue.Store
	cfg       *config.Config
	logger    *slog.Logger
	base      *knowledge.Base
	generator Generator
}

// NewAnalyzer constructs the narrative stage handler using default
// dependencies.
func NewAnalyzer(cfg *config.Config, store *queue.Store, logger *slog.Logger, base *knowledge.Base) *Analyzer {
	client := oai.NewClient(oai.Config{
		APIKey:         cfg.OpenAI.APIKey,
		BaseURL:        cfg.OpenAI.BaseURL,
		Model:          cfg.OpenAI.Model,
		EmbeddingModel: cfg.OpenAI.EmbeddingModel,
		TimeoutSeconds: cfg.OpenAI.TimeoutSeconds,
	})
	return NewAnalyzerWithGenerator(cfg, store, logger, base, client)
}

// NewAnalyzerWithGenerator allows injecting a generator (used in tests).
func NewAnalyzerWithGenerator(cfg *config.Config, store *queue.Store, logger *slog.Logger, base *knowledge.Base, generator Generator) *Analyzer {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String(logging.FieldComponent, "analyzer"))
	}
	return &Analyzer{store: store, cfg: cfg, logger: stageLogger, base: base, generator: generator}
}

func (a *Analyzer) Prepare(ctx context.Context, run *queue.Run) error {
	run.SetProgress("Analyzing", "Preparing narrative generation", 0)
	run.ErrorMessage = ""
	return nil
}

func (a *Analyzer) Execute(ctx context.Context, run *queue.Run) error {
	logger := logging.WithContext(ctx, a.logger)

	imagePath := run.ImagePath
	if run.AnnotatedPath != "" {
		imagePath = run.AnnotatedPath
	}
	labels := detectedLabels(run.DetectionsJSON)
	prompt := AnalysisPrompt(a.base.Entries, labels)

	logger.Info("starting narrative generation",
		logging.String("image", imagePath),
		logging.Int("detected_labels", len(labels)))

	text, err := a.generator.GenerateNarrative(ctx, imagePath, prompt)
	if err != nil {
		return services.Wrap(services.ErrGeneration, "analyzing", "generate narrative",
			"Narrative generation failed; check API key and connectivity", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return services.Wrap(services.ErrGeneration, "analyzing", "generate narrative",
			"Narrative generation returned empty text", nil)
	}

	run.NarrativeText = text
	run.SetProgress("Analyzing", "Narrative generated", 100)
	logger.Info("narrative generation complete", logging.Int("length", len(text)))
	return nil
}

func (a *Analyzer) HealthCheck(ctx context.Context) stage.Health {
	if strings.TrimSpace(a.cfg.OpenAI.APIKey) == "" {
		return stage.Unhealthy("analyzer", "API key not configured")
	}
	return stage.Healthy("analyzer")
}

func detectedLabels(detectionsJSON string) []string {
	if strings.TrimSpace(detectionsJSON) == "" {
		return nil
	}
	var detections []struct {
		Label string `json:"label"`
	}
	if err := json.Unmarshal([]byte(detectionsJSON), &detections); err != nil {
		return nil
	}
	seen := make(map[string]struct{}, len(detections))
	var labels []string
	for _, d := range detections {
		label := strings.TrimSpace(d.Label)
		if label == "" {
			continue
		}
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}
		labels = append(labels, label)
	}
	return labels
}
