package testsupport

import (
	"path/filepath"
	"testing"

	"inkwit/internal/knowledge"
)

const fixtureEntries = `# House interpretation reference

- element: 집
- condition: 창문
- emotion keywords: 안정, 따뜻

- element: 지붕
- condition: 격자무늬
- emotion keywords: 불안, 강박

- element: 문
- condition: 닫힌 문
- emotion keywords: 방어, 경계
`

const fixtureTaxonomy = `# Persona taxonomy

### Driven
자신감, 추진, 성취

### Relational
따뜻, 애정, 교류

### Stable
안정, 보호, 균형

### Hedonic
활력, 즐거움

### Introspective
불안, 강박, 방어, 경계
`

// WriteKnowledgeDir writes a small knowledge directory fixture and returns
// its path.
func WriteKnowledgeDir(t testing.TB) string {
	t.Helper()

	dir := t.TempDir()
	WriteFile(t, filepath.Join(dir, "house.md"), fixtureEntries)
	WriteFile(t, filepath.Join(dir, knowledge.TaxonomyFileName), fixtureTaxonomy)
	return dir
}

// MustLoadKnowledge loads the fixture knowledge base.
func MustLoadKnowledge(t testing.TB) *knowledge.Base {
	t.Helper()

	base, err := knowledge.Load(WriteKnowledgeDir(t))
	if err != nil {
		t.Fatalf("knowledge.Load: %v", err)
	}
	return base
}
