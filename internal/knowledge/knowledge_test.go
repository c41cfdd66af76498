package knowledge_test

import (
	"errors"
	"path/filepath"
	"testing"

	"inkwit/internal/knowledge"
	"inkwit/internal/services"
	"inkwit/internal/testsupport"
)

func TestParseEntriesSkipsMalformedBlocks(t *testing.T) {
	document := `# reference

- element: 집
- condition: 창문
- emotion keywords: 안정, 따뜻

- condition: 키워드 없는 블록
- emotion keywords: 불안

- element: 지붕
- condition: 격자무늬

- element: 문
- emotion keywords: 방어
`
	entries, skipped := knowledge.ParseEntries(document)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d: %#v", len(entries), entries)
	}
	if skipped != 2 {
		t.Fatalf("expected 2 skipped blocks, got %d", skipped)
	}
	if entries[0].Element != "집" || entries[0].Condition != "창문" {
		t.Fatalf("unexpected first entry: %#v", entries[0])
	}
	if len(entries[0].Keywords) != 2 || entries[0].Keywords[0] != "안정" {
		t.Fatalf("unexpected keywords: %v", entries[0].Keywords)
	}
	if entries[1].Element != "문" || entries[1].Condition != "" {
		t.Fatalf("expected condition to be optional: %#v", entries[1])
	}
}

func TestParseTaxonomy(t *testing.T) {
	document := `# taxonomy

### Driven
자신감, 추진

### Mysterious
어둠

### Stable
안정
보호
안정
`
	taxonomy := knowledge.ParseTaxonomy(document)
	if taxonomy.Len() != 4 {
		t.Fatalf("expected 4 keywords, got %d", taxonomy.Len())
	}
	// Unknown header, its orphaned keyword line, and a duplicate keyword.
	if taxonomy.Skipped() != 3 {
		t.Fatalf("expected 3 skipped, got %d", taxonomy.Skipped())
	}

	persona, ok := taxonomy.TypeFor("안정")
	if !ok || persona != knowledge.PersonaStable {
		t.Fatalf("TypeFor(안정) = (%s, %v)", persona, ok)
	}
	if _, ok := taxonomy.TypeFor("어둠"); ok {
		t.Fatal("keywords under unknown headers must not be indexed")
	}

	order := taxonomy.TypeOrder()
	if len(order) != 2 || order[0] != knowledge.PersonaDriven || order[1] != knowledge.PersonaStable {
		t.Fatalf("unexpected type order: %v", order)
	}
}

func TestParseTaxonomySkipsLeadingKeywords(t *testing.T) {
	taxonomy := knowledge.ParseTaxonomy("안정, 보호\n\n### Driven\n자신감\n")
	if taxonomy.Len() != 1 {
		t.Fatalf("expected 1 keyword, got %d", taxonomy.Len())
	}
	if taxonomy.Skipped() != 1 {
		t.Fatalf("expected leading keyword line skipped, got %d", taxonomy.Skipped())
	}
}

func TestLoadFromDirectory(t *testing.T) {
	dir := testsupport.WriteKnowledgeDir(t)
	base, err := knowledge.Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(base.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(base.Entries))
	}
	if base.Taxonomy.Len() == 0 {
		t.Fatal("expected taxonomy keywords")
	}
}

func TestLoadRequiresTaxonomy(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "house.md"), "- element: 집\n- emotion keywords: 안정\n")

	_, err := knowledge.Load(dir)
	if err == nil {
		t.Fatal("expected error without taxonomy document")
	}
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestLoadRequiresDocuments(t *testing.T) {
	_, err := knowledge.Load(t.TempDir())
	if err == nil {
		t.Fatal("expected error for empty knowledge directory")
	}
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestLoadDefault(t *testing.T) {
	base, err := knowledge.LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault failed: %v", err)
	}
	if len(base.Entries) == 0 {
		t.Fatal("expected embedded entries")
	}
	if base.Taxonomy.Len() == 0 {
		t.Fatal("expected embedded taxonomy")
	}
}

func TestParsePersonaType(t *testing.T) {
	cases := []struct {
		input string
		want  knowledge.PersonaType
		ok    bool
	}{
		{"driven", knowledge.PersonaDriven, true},
		{" Stable ", knowledge.PersonaStable, true},
		{"INTROSPECTIVE", knowledge.PersonaIntrospective, true},
		{"undetermined", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := knowledge.ParsePersonaType(tc.input)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("ParsePersonaType(%q) = (%q, %v), want (%q, %v)", tc.input, got, ok, tc.want, tc.ok)
		}
	}
}
