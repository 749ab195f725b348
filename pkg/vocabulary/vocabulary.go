// Package vocabulary expands the schema catalog into a searchable
// linguistic index: one entity per table and per column, each carrying the
// physical binding payload and the lowercase terms that can refer to it.
package vocabulary

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jinzhu/inflection"
	"go.uber.org/zap"

	"github.com/dashforge-ai/dashforge/pkg/apperrors"
	"github.com/dashforge-ai/dashforge/pkg/models"
)

// Term is one lowercase term referring to an entity, with an optional
// weight that scales resolver scores (default 1.0).
type Term struct {
	Text   string
	Weight float64
}

// Entity is one catalog entity plus its term set. Table entities carry an
// empty Column.
type Entity struct {
	Key       string
	Table     string
	Column    string
	IsMeasure bool
	DataType  string
	Terms     []Term
}

// Vocabulary is the session's immutable linguistic index.
type Vocabulary struct {
	Entities []Entity
}

// ConceptTerms returns the primary term of every column entity. This is
// the concept list handed to the planning service; it deliberately
// excludes raw table/column identifiers beyond the normalized terms.
func (v *Vocabulary) ConceptTerms() []string {
	var terms []string
	for _, e := range v.Entities {
		if e.Column == "" || len(e.Terms) == 0 {
			continue
		}
		terms = append(terms, e.Terms[0].Text)
	}
	return terms
}

// TermExpander is the optional external term-expansion collaborator.
// Implementations may fail; the builder always falls back to deterministic
// expansion, so expansion errors never abort vocabulary construction.
type TermExpander interface {
	ExpandTerms(ctx context.Context, fieldName string, isMeasure bool, dataType string) ([]string, error)
}

// Builder constructs a Vocabulary from a catalog.
type Builder struct {
	synonyms SynonymTable
	expander TermExpander
	logger   *zap.Logger
}

// NewBuilder creates a Builder using the given synonym table.
// expander may be nil to use deterministic expansion only.
func NewBuilder(synonyms SynonymTable, expander TermExpander, logger *zap.Logger) *Builder {
	return &Builder{
		synonyms: synonyms,
		expander: expander,
		logger:   logger.Named("vocabulary"),
	}
}

// Build produces one vocabulary entity per visible table and per column.
// An entity ending up with zero terms is an invariant violation and fails
// the build; by construction the deterministic expansion makes that
// unreachable for any non-empty field name.
func (b *Builder) Build(ctx context.Context, catalog *models.Catalog) (*Vocabulary, error) {
	vocab := &Vocabulary{}

	for _, table := range catalog.Tables {
		if table.IsHidden {
			b.logger.Debug("skipping hidden table", zap.String("table", table.Name))
			continue
		}

		lower := strings.ToLower(table.Name)
		vocab.Entities = append(vocab.Entities, Entity{
			Key:   table.Name,
			Table: table.Name,
			Terms: dedupeTerms([]string{lower, strings.ReplaceAll(lower, "_", " ")}),
		})

		for _, col := range table.Columns {
			entity := Entity{
				Key:       entityKey(table.Name, col.Name),
				Table:     table.Name,
				Column:    col.Name,
				IsMeasure: col.IsMeasure(),
				DataType:  col.DataType,
				Terms:     b.termsFor(ctx, col),
			}
			if len(entity.Terms) == 0 {
				return nil, fmt.Errorf("%w: %s", apperrors.ErrEntityNoTerms, entity.Key)
			}
			vocab.Entities = append(vocab.Entities, entity)
		}
	}

	if len(vocab.Entities) == 0 {
		return nil, apperrors.ErrEmptyVocabulary
	}

	b.logger.Info("vocabulary built", zap.Int("entities", len(vocab.Entities)))
	return vocab, nil
}

// termsFor generates the term set for a column, preferring the external
// expander when configured and falling back to deterministic expansion.
// The deterministic variants are always included.
func (b *Builder) termsFor(ctx context.Context, col models.CatalogColumn) []Term {
	terms := b.expandDeterministic(col.Name, col.IsMeasure())

	if b.expander == nil {
		return terms
	}

	expanded, err := b.expander.ExpandTerms(ctx, col.Name, col.IsMeasure(), col.DataType)
	if err != nil || len(expanded) == 0 {
		b.logger.Warn("term expansion failed, using deterministic terms",
			zap.String("field", col.Name),
			zap.Error(err))
		return terms
	}

	// Deterministic terms go first so the field-derived name stays the
	// lead term after deduplication.
	var all []string
	for _, t := range terms {
		all = append(all, t.Text)
	}
	for _, t := range expanded {
		all = append(all, strings.ToLower(strings.TrimSpace(t)))
	}
	return dedupeTerms(all)
}

// expandDeterministic produces the lowercase, separator-normalized
// variants plus curated directional synonyms and singular/plural forms.
func (b *Builder) expandDeterministic(name string, isMeasure bool) []Term {
	clean := strings.ToLower(name)
	spaced := strings.ReplaceAll(strings.ReplaceAll(clean, "_", " "), "-", " ")

	variants := []string{clean, spaced, inflection.Singular(spaced), inflection.Plural(spaced)}

	for key, synonyms := range b.synonyms.forField(isMeasure) {
		if strings.Contains(clean, key) {
			variants = append(variants, synonyms...)
		}
	}

	return dedupeTerms(variants)
}

// entityKey builds the "<table>.<normalized column>" vocabulary key.
func entityKey(table, column string) string {
	normalized := strings.ReplaceAll(strings.ToLower(column), " ", "_")
	return table + "." + normalized
}

// dedupeTerms lowercases and deduplicates term texts, assigning the
// default weight. The first term keeps its position so the field-derived
// variant stays the entity's lead term; only the synonym tail is sorted.
func dedupeTerms(texts []string) []Term {
	seen := make(map[string]bool, len(texts))
	var out []Term
	for _, t := range texts {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, Term{Text: t, Weight: 1.0})
	}
	if len(out) > 2 {
		tail := out[1:]
		sort.Slice(tail, func(i, j int) bool { return tail[i].Text < tail[j].Text })
	}
	return out
}
