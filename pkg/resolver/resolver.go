// Package resolver maps free-text concepts to vocabulary entities under
// hard semantic constraints. It is the only component allowed to turn
// planning-stage text into physical table/column references.
package resolver

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
	"go.uber.org/zap"

	"github.com/dashforge-ai/dashforge/pkg/vocabulary"
)

// numericConcepts are concept words that are inherently quantitative.
// They may only resolve to numeric measures, regardless of score.
var numericConcepts = map[string]bool{
	"amount":   true,
	"revenue":  true,
	"sales":    true,
	"value":    true,
	"total":    true,
	"cost":     true,
	"price":    true,
	"quantity": true,
	"qty":      true,
	"count":    true,
	"volume":   true,
	"forecast": true,
	"demand":   true,
}

// numericTypes are the data types a numeric concept may bind to.
var numericTypes = map[string]bool{
	"int":     true,
	"int32":   true,
	"int64":   true,
	"integer": true,
	"bigint":  true,
	"decimal": true,
	"double":  true,
	"float":   true,
	"number":  true,
}

// Config holds the resolver's tuning constants. Both values are
// empirically chosen and deliberately configurable.
type Config struct {
	// AcceptThreshold is the minimum score for a successful resolution.
	AcceptThreshold float64
	// ContainmentBonus is added when one normalized string contains the other.
	ContainmentBonus float64
}

// DefaultConfig returns the standard tuning constants.
func DefaultConfig() Config {
	return Config{AcceptThreshold: 0.45, ContainmentBonus: 0.25}
}

// Match is a successful resolution: the physical binding candidate for a
// concept, with the score that won it.
type Match struct {
	Table     string
	Column    string
	IsMeasure bool
	DataType  string
	Score     float64
}

// ResolutionError reports an unresolvable or semantically rejected concept.
type ResolutionError struct {
	Concept   string
	BestScore float64
	// Found is false when no candidate survived the semantic gate at all.
	Found bool
}

func (e *ResolutionError) Error() string {
	if !e.Found {
		return fmt.Sprintf("unresolvable concept %q: no candidate survived", e.Concept)
	}
	return fmt.Sprintf("unresolvable concept %q: best score %.3f below threshold", e.Concept, e.BestScore)
}

// Resolver resolves concepts against an immutable vocabulary.
type Resolver struct {
	vocab  *vocabulary.Vocabulary
	cfg    Config
	logger *zap.Logger
}

// New creates a Resolver over the given vocabulary.
func New(vocab *vocabulary.Vocabulary, cfg Config, logger *zap.Logger) *Resolver {
	return &Resolver{
		vocab:  vocab,
		cfg:    cfg,
		logger: logger.Named("resolver"),
	}
}

// Resolve maps one free-text concept to the best-matching entity.
// A numeric concept never resolves to a non-measure or non-numeric column;
// a low-confidence match hard-fails rather than degrading silently.
func (r *Resolver) Resolve(concept string) (*Match, error) {
	norm := normalizeConcept(concept)
	if norm == "" {
		return nil, &ResolutionError{Concept: concept}
	}

	numeric := numericConcepts[norm]

	var best *Match
	bestScore := 0.0

	for i := range r.vocab.Entities {
		entity := &r.vocab.Entities[i]
		for _, term := range entity.Terms {
			termNorm := normalizeTerm(term.Text)
			if termNorm == "" {
				continue
			}

			score := similarity(norm, termNorm)
			if strings.Contains(termNorm, norm) || strings.Contains(norm, termNorm) {
				score += r.cfg.ContainmentBonus
			}
			weight := term.Weight
			if weight == 0 {
				weight = 1.0
			}
			score *= weight

			// Hard semantic gate: rejected candidates never become the
			// best match, whatever their score.
			if numeric {
				if !entity.IsMeasure {
					continue
				}
				if !numericTypes[strings.ToLower(entity.DataType)] {
					continue
				}
			}

			if score > bestScore {
				bestScore = score
				best = &Match{
					Table:     entity.Table,
					Column:    entity.Column,
					IsMeasure: entity.IsMeasure,
					DataType:  entity.DataType,
					Score:     score,
				}
			}
		}
	}

	if best == nil {
		r.logger.Debug("concept rejected", zap.String("concept", norm))
		return nil, &ResolutionError{Concept: norm}
	}
	if bestScore < r.cfg.AcceptThreshold {
		r.logger.Debug("concept below threshold",
			zap.String("concept", norm),
			zap.Float64("best_score", bestScore))
		return nil, &ResolutionError{Concept: norm, BestScore: bestScore, Found: true}
	}

	r.logger.Debug("concept resolved",
		zap.String("concept", norm),
		zap.String("table", best.Table),
		zap.String("column", best.Column),
		zap.Float64("score", best.Score))
	return best, nil
}

// normalizeConcept lowercases, resolves dotted/qualified references to
// their final segment, and strips everything outside [a-z0-9].
func normalizeConcept(concept string) string {
	lower := strings.ToLower(concept)
	if idx := strings.LastIndexByte(lower, '.'); idx >= 0 {
		lower = lower[idx+1:]
	}
	return stripNonAlnum(lower)
}

// normalizeTerm applies the same character normalization as concepts,
// without dotted-reference handling.
func normalizeTerm(term string) string {
	return stripNonAlnum(strings.ToLower(term))
}

func stripNonAlnum(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, c := range s {
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			b.WriteRune(c)
		}
	}
	return b.String()
}

// similarity is an edit-distance ratio in [0, 1].
func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	longest := max(len(a), len(b))
	if longest == 0 {
		return 1.0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(dist)/float64(longest)
}
