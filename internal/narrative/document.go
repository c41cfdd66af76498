package narrative

import (
	"strings"

	"inkwit/internal/knowledge"
	"inkwit/internal/textutil"
)

// Document is one run's narrative plus the knowledge entries found in it.
// Never mutated after extraction.
type Document struct {
	RawText  string
	Elements []knowledge.Entry
}

// Extract matches knowledge entries against narrative text by exact element
// containment and returns the resulting document. A narrative mentioning no
// known element yields a document with an empty element list, not an error.
// All entries whose element appears contribute, in knowledge-base order.
func Extract(rawText string, entries []knowledge.Entry) Document {
	normalized := textutil.Normalize(rawText)
	doc := Document{RawText: normalized}
	if normalized == "" {
		return doc
	}
	for _, entry := range entries {
		if strings.Contains(normalized, entry.Element) {
			doc.Elements = append(doc.Elements, entry)
		}
	}
	return doc
}

// Keywords returns the distinct narrative tokens in first-seen order.
func (d Document) Keywords() []string {
	return textutil.Tokenize(d.RawText)
}

// ElementKeywords returns the emotion keywords of every extracted element,
// deduplicated, in extraction order.
func (d Document) ElementKeywords() []string {
	seen := make(map[string]struct{})
	var keywords []string
	for _, element := range d.Elements {
		for _, kw := range element.Keywords {
			if _, dup := seen[kw]; dup {
				continue
			}
			seen[kw] = struct{}{}
			keywords = append(keywords, kw)
		}
	}
	return keywords
}
