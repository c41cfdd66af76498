package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"github.com/redis/go-redis/v9"

	"inkwit/internal/config"
	"inkwit/internal/knowledge"
	"inkwit/internal/logging"
	"inkwit/internal/narrative"
	"inkwit/internal/queue"
	"inkwit/internal/scoring"
	"inkwit/internal/services"
	"inkwit/internal/services/kobert"
	oai "inkwit/internal/services/openai"
	"inkwit/internal/stage"
)

// Summarizer condenses a narrative into reader-facing summary text.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}

// Classifier runs the persona classification stage.
type Classifier struct {
	store      *queue.Store
	cfg        *config.Config
	logger     *slog.Logger
	base       *knowledge.Base
	sources    []scoring.SignalSource
	scorer     *scoring.Scorer
	summarizer Summarizer
}

// NewClassifier constructs the classification stage handler using default
// dependencies: the lexical matcher, the embedding ranker backed by the
// configured embedder and cache, and (when enabled) the external persona
// classifier.
func NewClassifier(cfg *config.Config, store *queue.Store, logger *slog.Logger, base *knowledge.Base) *Classifier {
	client := oai.NewClient(oai.Config{
		APIKey:         cfg.OpenAI.APIKey,
		BaseURL:        cfg.OpenAI.BaseURL,
		Model:          cfg.OpenAI.Model,
		EmbeddingModel: cfg.OpenAI.EmbeddingModel,
		TimeoutSeconds: cfg.OpenAI.TimeoutSeconds,
	})

	var cache scoring.EmbedCache
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		cache = scoring.NewRedisCache(redisClient, time.Duration(cfg.Redis.TTLHours)*time.Hour)
	}
	embedder := scoring.NewCachingEmbedder(client, cache)

	sources := []scoring.SignalSource{
		scoring.NewLexicalMatcher(base, cfg.Scoring.SimilarityThreshold),
		scoring.NewEmbeddingRanker(base.Taxonomy, embedder, cfg.Scoring.EmbeddingTopK, logger),
	}
	if cfg.Classifier.Enabled {
		predictor := kobert.NewClient(
			cfg.Classifier.BaseURL,
			kobert.WithTimeout(time.Duration(cfg.Classifier.TimeoutSeconds)*time.Second),
		)
		sources = append(sources, scoring.NewClassifierAdapter(predictor))
	}

	return NewClassifierWithDependencies(cfg, store, logger, base, sources, client)
}

// NewClassifierWithDependencies allows injecting signal sources and the
// summarizer (used in tests).
func NewClassifierWithDependencies(
	cfg *config.Config,
	store *queue.Store,
	logger *slog.Logger,
	base *knowledge.Base,
	sources []scoring.SignalSource,
	summarizer Summarizer,
) *Classifier {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String(logging.FieldComponent, "classifier"))
	}
	return &Classifier{
		store:      store,
		cfg:        cfg,
		logger:     stageLogger,
		base:       base,
		sources:    sources,
		scorer:     scoring.NewScorer(base.Taxonomy),
		summarizer: summarizer,
	}
}

func (c *Classifier) Prepare(ctx context.Context, run *queue.Run) error {
	run.SetProgress("Classifying", "Preparing persona classification", 0)
	run.ErrorMessage = ""
	if strings.TrimSpace(run.NarrativeText) == "" {
		return services.Wrap(services.ErrValidation, "classifying", "validate inputs",
			"No narrative present for classification; narrative generation must run first", nil)
	}
	return nil
}

func (c *Classifier) Execute(ctx context.Context, run *queue.Run) error {
	logger := logging.WithContext(ctx, c.logger)

	doc := narrative.Extract(run.NarrativeText, c.base.Entries)
	logger.Info("starting persona classification",
		logging.Int("elements", len(doc.Elements)),
		logging.Int("sources", len(c.sources)))

	elements, err := json.Marshal(doc.Elements)
	if err != nil {
		return services.Wrap(services.ErrClassification, "classifying", "encode elements",
			"Could not encode extracted elements", err)
	}
	run.ElementsJSON = string(elements)

	// A failing source contributes nothing; the remaining sources still
	// produce a decision. Only the fusion result decides the outcome.
	votes := make([]scoring.VoteSet, 0, len(c.sources))
	for _, source := range c.sources {
		if err := ctx.Err(); err != nil {
			return err
		}
		set, err := source.Votes(ctx, doc)
		if err != nil {
			logger.Warn("signal source failed",
				logging.String("source", source.Name()),
				logging.Error(err))
			continue
		}
		votes = append(votes, set)
	}

	decision := c.scorer.Fuse(votes...)
	encoded, err := json.Marshal(decision)
	if err != nil {
		return services.Wrap(services.ErrClassification, "classifying", "encode decision",
			"Could not encode classification decision", err)
	}
	run.DecisionJSON = string(encoded)

	if c.summarizer != nil {
		summary, err := c.summarizer.Summarize(ctx, narrative.SummaryPrompt(run.NarrativeText))
		if err != nil {
			logger.Warn("summary generation failed", logging.Error(err))
		} else {
			run.SummaryText = strings.TrimSpace(summary)
		}
	}

	run.SetProgress("Classifying", fmt.Sprintf("Classified as %s", decision.PredictedType), 100)
	logger.Info("persona classification complete",
		logging.String("predicted_type", string(decision.PredictedType)),
		logging.Float64("confidence", decision.Confidence),
		logging.Int("evidence", len(decision.Evidence)))
	return nil
}

func (c *Classifier) HealthCheck(ctx context.Context) stage.Health {
	if c.base == nil || len(c.base.Entries) == 0 {
		return stage.Unhealthy("classifier", "knowledge base not loaded")
	}
	if len(c.sources) == 0 {
		return stage.Unhealthy("classifier", "no signal sources configured")
	}
	return stage.Healthy("classifier")
}
