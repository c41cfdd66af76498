package scoring_test

import (
	"context"
	"errors"
	"testing"

	"inkwit/internal/knowledge"
	"inkwit/internal/logging"
	"inkwit/internal/narrative"
	"inkwit/internal/scoring"
)

type stubEmbedder struct {
	vectors map[string][]float32
	calls   int
	err     error
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	vector, ok := s.vectors[text]
	if !ok {
		return nil, errors.New("no vector for " + text)
	}
	return vector, nil
}

func rankerTaxonomy(t *testing.T) *knowledge.Taxonomy {
	t.Helper()
	taxonomy := knowledge.ParseTaxonomy("### Stable\n안정, 보호\n\n### Driven\n자신감\n")
	if taxonomy.Len() != 3 {
		t.Fatalf("expected 3 taxonomy keywords, got %d", taxonomy.Len())
	}
	return taxonomy
}

func TestEmbeddingRankerVotesTopK(t *testing.T) {
	taxonomy := rankerTaxonomy(t)
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"안정":  {1, 0},
		"보호":  {0.9, 0.1},
		"자신감": {0, 1},
		"평온한": {0.95, 0.05},
	}}
	ranker := scoring.NewEmbeddingRanker(taxonomy, embedder, 2, logging.NewNop())

	doc := narrative.Document{RawText: "평온한"}
	votes, err := ranker.Votes(context.Background(), doc)
	if err != nil {
		t.Fatalf("Votes failed: %v", err)
	}

	// The two nearest taxonomy keywords are both stable.
	if got := votes.Score(knowledge.PersonaStable); got != 2 {
		t.Fatalf("expected stable score 2, got %v", got)
	}
	if got := votes.Score(knowledge.PersonaDriven); got != 0 {
		t.Fatalf("expected no driven votes, got %v", got)
	}
}

func TestEmbeddingRankerTopKBoundedByCandidates(t *testing.T) {
	taxonomy := rankerTaxonomy(t)
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"안정":  {1, 0},
		"보호":  {0.9, 0.1},
		"자신감": {0, 1},
		"평온한": {1, 0},
	}}
	ranker := scoring.NewEmbeddingRanker(taxonomy, embedder, 10, logging.NewNop())

	votes, err := ranker.Votes(context.Background(), narrative.Document{RawText: "평온한"})
	if err != nil {
		t.Fatalf("Votes failed: %v", err)
	}
	if got := votes.Total(); got != 3 {
		t.Fatalf("expected every taxonomy keyword to vote once, got total %v", got)
	}
}

func TestEmbeddingRankerEmptyNarrative(t *testing.T) {
	taxonomy := rankerTaxonomy(t)
	embedder := &stubEmbedder{}
	ranker := scoring.NewEmbeddingRanker(taxonomy, embedder, 5, logging.NewNop())

	votes, err := ranker.Votes(context.Background(), narrative.Document{})
	if err != nil {
		t.Fatalf("Votes failed: %v", err)
	}
	if !votes.IsEmpty() {
		t.Fatal("expected empty vote set")
	}
	if embedder.calls != 0 {
		t.Fatalf("expected no embedding calls, got %d", embedder.calls)
	}
}

func TestEmbeddingRankerTaxonomyFailureDisablesSource(t *testing.T) {
	taxonomy := rankerTaxonomy(t)
	embedder := &stubEmbedder{err: errors.New("model offline")}
	ranker := scoring.NewEmbeddingRanker(taxonomy, embedder, 5, logging.NewNop())

	votes, err := ranker.Votes(context.Background(), narrative.Document{RawText: "안정"})
	if err == nil {
		t.Fatal("expected error when the taxonomy cannot be embedded")
	}
	if !votes.IsEmpty() {
		t.Fatal("expected empty vote set on failure")
	}
}
