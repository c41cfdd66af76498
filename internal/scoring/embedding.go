package scoring

import (
	"context"
	"log/slog"
	"sort"

	"inkwit/internal/knowledge"
	"inkwit/internal/logging"
	"inkwit/internal/narrative"
	"inkwit/internal/services"
)

// EmbeddingRanker votes by semantic similarity: each distinct narrative
// keyword is embedded and the topK most similar taxonomy keywords each add
// one vote to their persona type.
type EmbeddingRanker struct {
	taxonomy *knowledge.Taxonomy
	embedder Embedder
	topK     int
	logger   *slog.Logger
}

// NewEmbeddingRanker constructs a ranker. The embedder should be wrapped in a
// CachingEmbedder so the static taxonomy is embedded once per process (or per
// deployment, with the redis cache).
func NewEmbeddingRanker(taxonomy *knowledge.Taxonomy, embedder Embedder, topK int, logger *slog.Logger) *EmbeddingRanker {
	return &EmbeddingRanker{
		taxonomy: taxonomy,
		embedder: embedder,
		topK:     topK,
		logger:   logging.NewComponentLogger(logger, "embedding-ranker"),
	}
}

func (r *EmbeddingRanker) Name() string { return "embedding" }

// Votes implements SignalSource. A failed embedding for one narrative keyword
// skips that keyword; a failure embedding the taxonomy itself disables the
// whole source, returning an empty VoteSet with the error.
func (r *EmbeddingRanker) Votes(ctx context.Context, doc narrative.Document) (VoteSet, error) {
	votes := NewVoteSet()
	keywords := doc.Keywords()
	if len(keywords) == 0 {
		return votes, nil
	}

	taxonomyVectors, err := r.taxonomyVectors(ctx)
	if err != nil {
		return NewVoteSet(), services.Wrap(services.ErrEmbedding, "scoring", "embed taxonomy", "", err)
	}

	skipped := 0
	for _, keyword := range keywords {
		vector, err := r.embedder.Embed(ctx, keyword)
		if err != nil {
			if ctx.Err() != nil {
				return NewVoteSet(), services.Wrap(services.ErrEmbedding, "scoring", "embed keyword", keyword, err)
			}
			skipped++
			continue
		}
		for _, match := range r.rank(vector, taxonomyVectors) {
			persona, ok := r.taxonomy.TypeFor(match)
			if !ok {
				continue
			}
			votes.Add(persona, 1, match)
		}
	}
	if skipped > 0 {
		r.logger.Debug("narrative keywords skipped after embedding failures",
			logging.Int("skipped", skipped),
			logging.Int("total", len(keywords)),
		)
	}
	return votes, nil
}

type taxonomyVector struct {
	keyword string
	vector  []float32
}

func (r *EmbeddingRanker) taxonomyVectors(ctx context.Context) ([]taxonomyVector, error) {
	keywords := r.taxonomy.Keywords()
	vectors := make([]taxonomyVector, 0, len(keywords))
	for _, keyword := range keywords {
		vector, err := r.embedder.Embed(ctx, keyword)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, taxonomyVector{keyword: keyword, vector: vector})
	}
	return vectors, nil
}

// rank returns the taxonomy keywords of the topK highest cosine similarities,
// ties resolved by taxonomy declaration order via stable sort.
func (r *EmbeddingRanker) rank(query []float32, candidates []taxonomyVector) []string {
	type scored struct {
		keyword    string
		similarity float64
	}
	ranked := make([]scored, 0, len(candidates))
	for _, candidate := range candidates {
		ranked = append(ranked, scored{
			keyword:    candidate.keyword,
			similarity: CosineSimilarity(query, candidate.vector),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].similarity > ranked[j].similarity
	})
	limit := r.topK
	if limit > len(ranked) {
		limit = len(ranked)
	}
	matches := make([]string, 0, limit)
	for _, entry := range ranked[:limit] {
		matches = append(matches, entry.keyword)
	}
	return matches
}
