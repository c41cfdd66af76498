package scoring

import (
	"context"
	"strings"

	"inkwit/internal/knowledge"
	"inkwit/internal/narrative"
	"inkwit/internal/textutil"
)

// LexicalMatcher votes by matching knowledge entries against narrative text:
// exact element containment, or Ratcliff-Obershelp similarity between a
// narrative token and the entry's element/condition pair above the threshold.
// Every keyword of a matched entry contributes one vote to its taxonomy type.
type LexicalMatcher struct {
	base      *knowledge.Base
	threshold float64
}

// NewLexicalMatcher constructs a matcher over the shared knowledge base.
func NewLexicalMatcher(base *knowledge.Base, threshold float64) *LexicalMatcher {
	return &LexicalMatcher{base: base, threshold: threshold}
}

func (m *LexicalMatcher) Name() string { return "lexical" }

// Votes implements SignalSource. An empty narrative yields an empty VoteSet.
func (m *LexicalMatcher) Votes(_ context.Context, doc narrative.Document) (VoteSet, error) {
	votes := NewVoteSet()
	text := textutil.Normalize(doc.RawText)
	if text == "" {
		return votes, nil
	}

	tokens := textutil.Tokenize(text)
	for _, entry := range m.base.Entries {
		if !m.entryPresent(text, tokens, entry) {
			continue
		}
		for _, keyword := range entry.Keywords {
			persona, ok := m.personaForKeyword(keyword)
			if !ok {
				continue
			}
			votes.Add(persona, 1, keyword)
		}
	}
	return votes, nil
}

func (m *LexicalMatcher) entryPresent(text string, tokens []string, entry knowledge.Entry) bool {
	if strings.Contains(text, entry.Element) {
		return true
	}
	phrase := entry.Element
	if entry.Condition != "" {
		phrase = entry.Element + " " + entry.Condition
	}
	for _, token := range tokens {
		if textutil.Ratio(token, entry.Element) > m.threshold {
			return true
		}
		if textutil.Ratio(token, phrase) > m.threshold {
			return true
		}
	}
	return false
}

// personaForKeyword resolves an entry keyword to its taxonomy type: exact
// lookup first, then substring containment in either direction, then
// approximate similarity. Taxonomy declaration order makes the first match
// deterministic.
func (m *LexicalMatcher) personaForKeyword(keyword string) (knowledge.PersonaType, bool) {
	if persona, ok := m.base.Taxonomy.TypeFor(keyword); ok {
		return persona, true
	}
	for _, known := range m.base.Taxonomy.Keywords() {
		if strings.Contains(known, keyword) || strings.Contains(keyword, known) {
			persona, _ := m.base.Taxonomy.TypeFor(known)
			return persona, true
		}
		if textutil.Ratio(keyword, known) > m.threshold {
			persona, _ := m.base.Taxonomy.TypeFor(known)
			return persona, true
		}
	}
	return "", false
}
