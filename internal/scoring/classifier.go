package scoring

import (
	"context"

	"inkwit/internal/knowledge"
	"inkwit/internal/narrative"
	"inkwit/internal/services"
)

// PersonaPredictor is the trained classifier's single-text prediction,
// consumed as a black box.
type PersonaPredictor interface {
	Predict(ctx context.Context, text string) (knowledge.PersonaType, error)
}

// ClassifierAdapter wraps the trained classifier as a signal source assigning
// one full vote to the predicted type. It never retries; a failed prediction
// is reported as no vote.
type ClassifierAdapter struct {
	predictor PersonaPredictor
}

// NewClassifierAdapter wraps predictor.
func NewClassifierAdapter(predictor PersonaPredictor) *ClassifierAdapter {
	return &ClassifierAdapter{predictor: predictor}
}

func (a *ClassifierAdapter) Name() string { return "classifier" }

// Votes implements SignalSource over the full narrative raw text.
func (a *ClassifierAdapter) Votes(ctx context.Context, doc narrative.Document) (VoteSet, error) {
	votes := NewVoteSet()
	if doc.RawText == "" {
		return votes, nil
	}
	persona, err := a.predictor.Predict(ctx, doc.RawText)
	if err != nil {
		return votes, services.Wrap(services.ErrClassification, "scoring", "predict", "", err)
	}
	if !persona.IsKnown() {
		return votes, services.Wrap(services.ErrClassification, "scoring", "predict",
			"classifier returned unknown type "+string(persona), nil)
	}
	votes.Add(persona, 1)
	return votes, nil
}
