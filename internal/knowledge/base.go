package knowledge

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"inkwit/internal/services"
)

//go:embed defaults/*.md
var defaultsFS embed.FS

// TaxonomyFileName is the document within the knowledge directory that holds
// the keyword-to-persona taxonomy; every other .md file is an entry document.
const TaxonomyFileName = "persona_taxonomy.md"

// Base is the loaded knowledge base: the indexed entries, the taxonomy, and
// the count of blocks skipped during parsing. Immutable after Load.
type Base struct {
	Entries  []Entry
	Taxonomy *Taxonomy

	// SkippedBlocks counts malformed entry blocks and taxonomy lines dropped
	// during parsing, surfaced for observability.
	SkippedBlocks int
}

// Load reads every .md document under dir. Missing or unreadable files fail
// with services.ErrConfiguration; individually malformed blocks are skipped
// and counted.
func Load(dir string) (*Base, error) {
	entriesByFile := map[string]string{}
	var taxonomyText string

	matches, err := filepath.Glob(filepath.Join(dir, "*.md"))
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "knowledge", "scan", dir, err)
	}
	if len(matches) == 0 {
		return nil, services.Wrap(services.ErrConfiguration, "knowledge", "scan",
			fmt.Sprintf("no reference documents in %s", dir), nil)
	}
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "knowledge", "read", path, err)
		}
		if filepath.Base(path) == TaxonomyFileName {
			taxonomyText = string(data)
			continue
		}
		entriesByFile[filepath.Base(path)] = string(data)
	}

	return build(entriesByFile, taxonomyText)
}

// LoadDefault builds the knowledge base from the documents embedded in the
// binary. Used when no knowledge directory has been provisioned.
func LoadDefault() (*Base, error) {
	entriesByFile := map[string]string{}
	var taxonomyText string

	err := fs.WalkDir(defaultsFS, "defaults", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := defaultsFS.ReadFile(path)
		if err != nil {
			return err
		}
		if filepath.Base(path) == TaxonomyFileName {
			taxonomyText = string(data)
			return nil
		}
		entriesByFile[filepath.Base(path)] = string(data)
		return nil
	})
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "knowledge", "embedded", "read defaults", err)
	}

	return build(entriesByFile, taxonomyText)
}

func build(entriesByFile map[string]string, taxonomyText string) (*Base, error) {
	if strings.TrimSpace(taxonomyText) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "knowledge", "taxonomy",
			fmt.Sprintf("missing %s", TaxonomyFileName), nil)
	}

	base := &Base{Taxonomy: ParseTaxonomy(taxonomyText)}
	base.SkippedBlocks += base.Taxonomy.Skipped()
	if base.Taxonomy.Len() == 0 {
		return nil, services.Wrap(services.ErrConfiguration, "knowledge", "taxonomy", "no keywords parsed", nil)
	}

	// Stable file order keeps entry indexing deterministic across loads.
	names := make([]string, 0, len(entriesByFile))
	for name := range entriesByFile {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		entries, skipped := ParseEntries(entriesByFile[name])
		base.Entries = append(base.Entries, entries...)
		base.SkippedBlocks += skipped
	}
	if len(base.Entries) == 0 {
		return nil, services.Wrap(services.ErrConfiguration, "knowledge", "entries", "no entry blocks parsed", nil)
	}
	return base, nil
}
