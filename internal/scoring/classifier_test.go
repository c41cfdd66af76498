package scoring_test

import (
	"context"
	"errors"
	"testing"

	"inkwit/internal/knowledge"
	"inkwit/internal/narrative"
	"inkwit/internal/scoring"
)

type stubPredictor struct {
	persona knowledge.PersonaType
	err     error
}

func (s *stubPredictor) Predict(context.Context, string) (knowledge.PersonaType, error) {
	return s.persona, s.err
}

func TestClassifierAdapterVotesOnce(t *testing.T) {
	adapter := scoring.NewClassifierAdapter(&stubPredictor{persona: knowledge.PersonaIntrospective})

	votes, err := adapter.Votes(context.Background(), narrative.Document{RawText: "불안한 분위기의 그림"})
	if err != nil {
		t.Fatalf("Votes failed: %v", err)
	}
	if got := votes.Score(knowledge.PersonaIntrospective); got != 1 {
		t.Fatalf("expected one introspective vote, got %v", got)
	}
	if got := votes.Total(); got != 1 {
		t.Fatalf("expected single vote, got total %v", got)
	}
}

func TestClassifierAdapterEmptyNarrative(t *testing.T) {
	adapter := scoring.NewClassifierAdapter(&stubPredictor{persona: knowledge.PersonaDriven})

	votes, err := adapter.Votes(context.Background(), narrative.Document{})
	if err != nil {
		t.Fatalf("Votes failed: %v", err)
	}
	if !votes.IsEmpty() {
		t.Fatal("expected no votes for empty narrative")
	}
}

func TestClassifierAdapterPredictionFailure(t *testing.T) {
	adapter := scoring.NewClassifierAdapter(&stubPredictor{err: errors.New("service down")})

	votes, err := adapter.Votes(context.Background(), narrative.Document{RawText: "집"})
	if err == nil {
		t.Fatal("expected error from failed prediction")
	}
	if !votes.IsEmpty() {
		t.Fatal("expected no votes on failure")
	}
}

func TestClassifierAdapterRejectsUnknownType(t *testing.T) {
	adapter := scoring.NewClassifierAdapter(&stubPredictor{persona: knowledge.PersonaType("chaotic")})

	votes, err := adapter.Votes(context.Background(), narrative.Document{RawText: "집"})
	if err == nil {
		t.Fatal("expected error for unknown persona type")
	}
	if !votes.IsEmpty() {
		t.Fatal("expected no votes for unknown type")
	}
}
