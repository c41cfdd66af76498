package knowledge

import (
	"bufio"
	"strings"

	"inkwit/internal/textutil"
)

const headerPrefix = "###"

// Taxonomy maps each emotion keyword to exactly one persona type. The
// keyword and type orders are the document declaration orders; the scorer
// relies on them for deterministic tie-breaking.
type Taxonomy struct {
	typeFor   map[string]PersonaType
	keywords  []string
	typeOrder []PersonaType
	skipped   int
}

// ParseTaxonomy parses a taxonomy document: sections headed by a
// "### <Category>" marker, each followed by comma-separated keyword lines
// attributed to the most recently seen category. Sections with unknown
// category names, duplicate keywords, and keyword lines before the first
// header are skipped and counted.
func ParseTaxonomy(documentText string) *Taxonomy {
	tax := &Taxonomy{typeFor: make(map[string]PersonaType)}

	var (
		current    PersonaType
		haveTarget bool
	)
	scanner := bufio.NewScanner(strings.NewReader(documentText))
	for scanner.Scan() {
		line := textutil.Normalize(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, headerPrefix) {
			name := strings.TrimSpace(strings.TrimPrefix(line, headerPrefix))
			parsed, ok := ParsePersonaType(name)
			if !ok {
				haveTarget = false
				tax.skipped++
				continue
			}
			current = parsed
			haveTarget = true
			if !containsType(tax.typeOrder, parsed) {
				tax.typeOrder = append(tax.typeOrder, parsed)
			}
			continue
		}
		if !haveTarget {
			tax.skipped++
			continue
		}
		for _, keyword := range splitKeywordList(line) {
			if _, dup := tax.typeFor[keyword]; dup {
				tax.skipped++
				continue
			}
			tax.typeFor[keyword] = current
			tax.keywords = append(tax.keywords, keyword)
		}
	}
	return tax
}

// TypeFor returns the persona type a keyword is attributed to.
func (t *Taxonomy) TypeFor(keyword string) (PersonaType, bool) {
	persona, ok := t.typeFor[textutil.Normalize(keyword)]
	return persona, ok
}

// Keywords returns all taxonomy keywords in declaration order.
func (t *Taxonomy) Keywords() []string {
	cp := make([]string, len(t.keywords))
	copy(cp, t.keywords)
	return cp
}

// TypeOrder returns the persona types in document declaration order.
func (t *Taxonomy) TypeOrder() []PersonaType {
	cp := make([]PersonaType, len(t.typeOrder))
	copy(cp, t.typeOrder)
	return cp
}

// Len returns the number of indexed keywords.
func (t *Taxonomy) Len() int { return len(t.keywords) }

// Skipped returns the count of lines and duplicates dropped during parsing.
func (t *Taxonomy) Skipped() int { return t.skipped }

func containsType(types []PersonaType, target PersonaType) bool {
	for _, t := range types {
		if t == target {
			return true
		}
	}
	return false
}
