package normalizer

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AliasMap maps known misspellings, abbreviations and shorthand phrases to canonical
// symptom names. Keys are stored in Key form. Targets are trusted to be in the
// vocabulary and are not re-validated.
type AliasMap map[string]string

// DefaultAliases is the built-in shorthand table
func DefaultAliases() AliasMap {
	return NewAliasMap(map[string]string{
		"fvr":          "fever",
		"htn":          "hypertension",
		"vommiting":    "vomiting",
		"abd pain":     "abdominal pain",
		"c/o cp":       "chest pain",
		"sorethroat":   "sore throat",
		"haedache":     "headache",
		"sob":          "shortness of breath",
		"loosemotions": "diarrhea",
	})
}

// NewAliasMap builds an AliasMap, folding every key with Key. Blank keys or targets are
// skipped.
func NewAliasMap(entries map[string]string) AliasMap {
	m := make(AliasMap, len(entries))
	for raw, canonical := range entries {
		k := Key(raw)
		if k == "" || canonical == "" {
			continue
		}
		m[k] = canonical
	}
	return m
}

// Lookup resolves an already-folded key
func (m AliasMap) Lookup(key string) (string, bool) {
	canonical, ok := m[key]
	return canonical, ok
}

// Merge returns a new map holding m overlaid with other; other wins on conflicts
func (m AliasMap) Merge(other AliasMap) AliasMap {
	out := make(AliasMap, len(m)+len(other))
	for k, v := range m {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// aliasFile is the on-disk layout of an alias override file:
//
//	aliases:
//	  cp: chest pain
//	  n/v: nausea
type aliasFile struct {
	Aliases map[string]string `yaml:"aliases"`
}

// LoadAliasFile reads alias overrides from a YAML file
func LoadAliasFile(path string) (AliasMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read alias file: %w", err)
	}
	return ParseAliases(data)
}

// ParseAliases decodes alias overrides from YAML
func ParseAliases(data []byte) (AliasMap, error) {
	var file aliasFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse aliases: %w", err)
	}
	return NewAliasMap(file.Aliases), nil
}
