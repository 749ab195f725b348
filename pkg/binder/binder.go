// Package binder converts abstract visual intents into physically bound
// visuals. It is the leak-proof wall: every physical identifier in a bound
// visual came through the resolver, never from planning-stage text.
package binder

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/dashforge-ai/dashforge/pkg/apperrors"
	"github.com/dashforge-ai/dashforge/pkg/models"
	"github.com/dashforge-ai/dashforge/pkg/resolver"
)

// Binder binds intents against a session's resolver.
type Binder struct {
	resolver *resolver.Resolver
	logger   *zap.Logger
}

// New creates a Binder.
func New(r *resolver.Resolver, logger *zap.Logger) *Binder {
	return &Binder{resolver: r, logger: logger.Named("binder")}
}

// Bind translates an abstract intent into a bound visual.
//
// Individual concepts that fail resolution are dropped and binding
// continues; a visual may legitimately carry fewer bindings than requested
// concepts, including zero. A kind/aggregation invariant violation is
// fatal to the whole intent.
func (b *Binder) Bind(intent models.VisualIntent) (*models.BoundVisual, error) {
	b.logger.Debug("binding visual", zap.String("title", intent.Title))

	var bindings []models.PhysicalBinding
	for _, concept := range intent.Concepts {
		match, err := b.resolver.Resolve(concept)
		if err != nil {
			var resErr *resolver.ResolutionError
			if errors.As(err, &resErr) {
				b.logger.Warn("concept dropped",
					zap.String("visual", intent.Title),
					zap.String("concept", concept),
					zap.Error(err))
				continue
			}
			return nil, fmt.Errorf("resolve %q: %w", concept, err)
		}

		// Table-level hits carry no column and cannot be projected.
		if match.Column == "" {
			b.logger.Debug("concept resolved to table, skipping",
				zap.String("concept", concept),
				zap.String("table", match.Table))
			continue
		}

		binding := models.PhysicalBinding{
			ConceptName: concept,
			Table:       match.Table,
			Column:      match.Column,
			Kind:        models.KindDimension,
			DataType:    match.DataType,
		}
		if match.IsMeasure {
			binding.Kind = models.KindMeasure
			binding.Aggregation = models.AggSum
		}

		// Unreachable given the construction above, but checked, not assumed.
		if err := binding.Validate(); err != nil {
			return nil, fmt.Errorf("%w: visual %q: %v", apperrors.ErrInvalidBinding, intent.Title, err)
		}

		bindings = append(bindings, binding)
	}

	return &models.BoundVisual{
		Name:     visualName(intent.Title),
		Kind:     intent.Kind,
		Title:    intent.Title,
		Bindings: bindings,
		TopN:     intent.TopN,
	}, nil
}

func visualName(title string) string {
	return strings.ReplaceAll(strings.ToLower(title), " ", "_")
}
