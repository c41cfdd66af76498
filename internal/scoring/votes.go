package scoring

import "inkwit/internal/knowledge"

// VoteSet tallies per-persona-type scores along with the keywords that
// contributed them. Produced independently by each signal source and consumed
// by the scorer during fusion.
type VoteSet struct {
	scores   map[knowledge.PersonaType]float64
	evidence map[knowledge.PersonaType][]string
}

// NewVoteSet returns an empty vote set.
func NewVoteSet() VoteSet {
	return VoteSet{
		scores:   make(map[knowledge.PersonaType]float64),
		evidence: make(map[knowledge.PersonaType][]string),
	}
}

// Add increments persona's score by weight and records the contributing
// keywords. Keywords may be empty for sources that vote without lexical
// evidence.
func (v VoteSet) Add(persona knowledge.PersonaType, weight float64, keywords ...string) {
	if weight <= 0 {
		return
	}
	v.scores[persona] += weight
	v.evidence[persona] = append(v.evidence[persona], keywords...)
}

// Score returns the accumulated score for persona.
func (v VoteSet) Score(persona knowledge.PersonaType) float64 {
	return v.scores[persona]
}

// Evidence returns the keywords recorded for persona, in contribution order.
func (v VoteSet) Evidence(persona knowledge.PersonaType) []string {
	src := v.evidence[persona]
	cp := make([]string, len(src))
	copy(cp, src)
	return cp
}

// IsEmpty reports whether no votes have been recorded.
func (v VoteSet) IsEmpty() bool {
	return len(v.scores) == 0
}

// Total returns the sum of all scores.
func (v VoteSet) Total() float64 {
	var total float64
	for _, score := range v.scores {
		total += score
	}
	return total
}
