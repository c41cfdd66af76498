package scoring

import (
	"inkwit/internal/knowledge"
)

// Decision is the terminal artifact of persona fusion: the winning type, the
// raw per-type score sums, a confidence in [0,1], and the contributing
// keywords. Immutable once produced.
type Decision struct {
	PredictedType knowledge.PersonaType             `json:"predicted_type"`
	Scores        map[knowledge.PersonaType]float64 `json:"scores"`
	Confidence    float64                           `json:"confidence"`
	Evidence      []string                          `json:"evidence"`
}

// Undetermined reports whether the decision carries no signal.
func (d Decision) Undetermined() bool {
	return d.PredictedType == knowledge.PersonaUndetermined
}

// Percentages normalizes the scores to a per-type percentage breakdown.
func (d Decision) Percentages() map[knowledge.PersonaType]float64 {
	var total float64
	for _, score := range d.Scores {
		total += score
	}
	percentages := make(map[knowledge.PersonaType]float64, len(d.Scores))
	if total == 0 {
		return percentages
	}
	for persona, score := range d.Scores {
		percentages[persona] = 100 * score / total
	}
	return percentages
}

// Scorer fuses vote sets into a Decision. The persona order used for final
// tie-breaking is the taxonomy declaration order, extended with any types the
// taxonomy does not declare so every member of the closed set is rankable.
type Scorer struct {
	order []knowledge.PersonaType
}

// NewScorer builds a scorer ranked by the taxonomy's declaration order.
func NewScorer(taxonomy *knowledge.Taxonomy) *Scorer {
	order := taxonomy.TypeOrder()
	for _, persona := range knowledge.AllTypes() {
		found := false
		for _, existing := range order {
			if existing == persona {
				found = true
				break
			}
		}
		if !found {
			order = append(order, persona)
		}
	}
	return &Scorer{order: order}
}

// Fuse sums the vote sets per persona type and derives the decision. Sources
// that produced no votes contribute zero. Fusion is commutative: the result
// does not depend on the order of the sets.
//
// Tie-break policy for equal summed scores: more distinct contributing
// keywords wins; a remaining tie falls to taxonomy declaration order. When
// every set is empty the decision is the undetermined sentinel with zero
// confidence.
func (s *Scorer) Fuse(sets ...VoteSet) Decision {
	scores := make(map[knowledge.PersonaType]float64)
	distinct := make(map[knowledge.PersonaType]map[string]struct{})
	evidenceSeen := make(map[string]struct{})

	for _, persona := range s.order {
		for _, set := range sets {
			score := set.Score(persona)
			if score <= 0 {
				continue
			}
			scores[persona] += score
			for _, keyword := range set.Evidence(persona) {
				if distinct[persona] == nil {
					distinct[persona] = make(map[string]struct{})
				}
				distinct[persona][keyword] = struct{}{}
			}
		}
	}

	var total float64
	for _, score := range scores {
		total += score
	}
	if total == 0 {
		return Decision{
			PredictedType: knowledge.PersonaUndetermined,
			Scores:        scores,
			Confidence:    0,
		}
	}

	var (
		best    knowledge.PersonaType
		haveTop bool
	)
	for _, persona := range s.order {
		score, voted := scores[persona]
		if !voted {
			continue
		}
		if !haveTop {
			best = persona
			haveTop = true
			continue
		}
		switch {
		case score > scores[best]:
			best = persona
		case score == scores[best] && len(distinct[persona]) > len(distinct[best]):
			best = persona
		}
	}

	var evidence []string
	for _, persona := range s.order {
		for _, set := range sets {
			for _, keyword := range set.Evidence(persona) {
				if _, dup := evidenceSeen[keyword]; dup {
					continue
				}
				evidenceSeen[keyword] = struct{}{}
				evidence = append(evidence, keyword)
			}
		}
	}

	return Decision{
		PredictedType: best,
		Scores:        scores,
		Confidence:    scores[best] / total,
		Evidence:      evidence,
	}
}
