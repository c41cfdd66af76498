package knowledge

import (
	"bufio"
	"strings"

	"inkwit/internal/textutil"
)

const (
	elementPrefix   = "- element:"
	conditionPrefix = "- condition:"
	keywordsPrefix  = "- emotion keywords:"
)

// Entry maps a visual element under a condition to its emotion keywords.
// Element and Keywords are always non-empty; blocks violating that are
// skipped during parsing.
type Entry struct {
	Element   string
	Condition string
	Keywords  []string
}

// ParseEntries parses blank-line-delimited element blocks from a reference
// document. Malformed blocks (missing element or keywords) are dropped; the
// second return value counts them for diagnostics.
func ParseEntries(documentText string) ([]Entry, int) {
	var (
		entries []Entry
		skipped int
		block   Entry
		open    bool
	)

	flush := func() {
		if !open {
			return
		}
		if block.Element == "" || len(block.Keywords) == 0 {
			skipped++
		} else {
			entries = append(entries, block)
		}
		block = Entry{}
		open = false
	}

	scanner := bufio.NewScanner(strings.NewReader(documentText))
	for scanner.Scan() {
		line := textutil.Normalize(scanner.Text())
		switch {
		case line == "":
			flush()
		case strings.HasPrefix(line, elementPrefix):
			block.Element = strings.TrimSpace(strings.TrimPrefix(line, elementPrefix))
			open = true
		case strings.HasPrefix(line, conditionPrefix):
			block.Condition = strings.TrimSpace(strings.TrimPrefix(line, conditionPrefix))
			open = true
		case strings.HasPrefix(line, keywordsPrefix):
			block.Keywords = splitKeywordList(strings.TrimPrefix(line, keywordsPrefix))
			open = true
		}
	}
	flush()

	return entries, skipped
}

func splitKeywordList(raw string) []string {
	parts := strings.Split(raw, ",")
	keywords := make([]string, 0, len(parts))
	for _, part := range parts {
		if kw := textutil.Normalize(part); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return keywords
}
