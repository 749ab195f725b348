package vocabulary

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SynonymTable is the curated synonym table keyed by substring matches on
// the raw field name. The two maps are directional: measure synonyms never
// attach to dimensions and vice versa, which keeps numeric concepts from
// resolving to categorical columns at generation time.
type SynonymTable struct {
	Measures   map[string][]string `yaml:"measures"`
	Dimensions map[string][]string `yaml:"dimensions"`
}

// DefaultSynonyms returns the built-in synonym table.
func DefaultSynonyms() SynonymTable {
	return SynonymTable{
		Measures: map[string][]string{
			"amount": {"amount", "value", "total"},
			"sales":  {"sales", "revenue", "turnover"},
			"cost":   {"cost", "expense"},
			"price":  {"price", "rate"},
		},
		Dimensions: map[string][]string{
			"product": {"product", "item", "sku", "commodity"},
			"country": {"country", "region", "market", "geo"},
			"date":    {"date", "time", "period", "day"},
			"person":  {"person", "employee", "salesperson"},
		},
	}
}

// LoadSynonyms reads a YAML synonym table and merges it over the built-in
// defaults. Keys present in the file replace the default entry for that key.
// An empty path returns the defaults unchanged.
func LoadSynonyms(path string) (SynonymTable, error) {
	table := DefaultSynonyms()
	if path == "" {
		return table, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return table, fmt.Errorf("read synonyms file: %w", err)
	}

	var loaded SynonymTable
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return table, fmt.Errorf("parse synonyms file: %w", err)
	}

	for key, terms := range loaded.Measures {
		table.Measures[key] = terms
	}
	for key, terms := range loaded.Dimensions {
		table.Dimensions[key] = terms
	}
	return table, nil
}

// forField returns the directional synonym map for a field's kind.
func (t SynonymTable) forField(isMeasure bool) map[string][]string {
	if isMeasure {
		return t.Measures
	}
	return t.Dimensions
}
