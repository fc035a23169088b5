package transliterate

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

// MappingSet holds curated vernacular-to-canonical tables, one per
// (entity kind, language). Curated entries take precedence over on-the-fly
// transliteration: a matching local name yields its canonical name verbatim.
type MappingSet struct {
	tables map[string]map[string]string
}

// EmptyMappings returns a set with no curated entries.
func EmptyMappings() *MappingSet {
	return &MappingSet{tables: map[string]map[string]string{}}
}

// LoadMappings reads every "<kind>.<language>.json" file under dir in fsys.
// Each file is a flat JSON object mapping vernacular strings to canonical
// English names. Files are loaded once per run.
func LoadMappings(fsys fs.FS, dir string) (*MappingSet, error) {
	set := EmptyMappings()

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("transliterate: read mappings dir %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		parts := strings.Split(strings.TrimSuffix(entry.Name(), ".json"), ".")
		if len(parts) != 2 {
			continue
		}
		kind, language := parts[0], parts[1]

		data, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("transliterate: read mapping %s: %w", entry.Name(), err)
		}

		table := map[string]string{}
		if err := json.Unmarshal(data, &table); err != nil {
			return nil, fmt.Errorf("transliterate: parse mapping %s: %w", entry.Name(), err)
		}

		set.add(kind, language, table)
	}

	return set, nil
}

func (m *MappingSet) add(kind, language string, table map[string]string) {
	key := tableKey(kind, language)
	existing, ok := m.tables[key]
	if !ok {
		existing = map[string]string{}
		m.tables[key] = existing
	}
	for local, canonical := range table {
		local = strings.TrimSpace(local)
		canonical = strings.TrimSpace(canonical)
		if local == "" || canonical == "" {
			continue
		}
		existing[local] = canonical
	}
}

// Lookup returns the curated canonical name for a vernacular string, if any.
func (m *MappingSet) Lookup(role Role, language, text string) (string, bool) {
	if m == nil || len(m.tables) == 0 {
		return "", false
	}
	table, ok := m.tables[tableKey(string(role), language)]
	if !ok {
		return "", false
	}
	canonical, ok := table[strings.TrimSpace(text)]
	return canonical, ok
}

// Len reports the number of curated entries across all tables.
func (m *MappingSet) Len() int {
	total := 0
	for _, table := range m.tables {
		total += len(table)
	}
	return total
}

func tableKey(kind, language string) string {
	return strings.ToLower(kind) + "." + strings.ToLower(language)
}
