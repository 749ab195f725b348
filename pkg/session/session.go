// Package session drives the conversational dashboard loop: each user
// turn replans the abstract dashboard state and rebuilds every visual
// document from scratch.
package session

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/dashforge-ai/dashforge/pkg/binder"
	"github.com/dashforge-ai/dashforge/pkg/layout"
	"github.com/dashforge-ai/dashforge/pkg/materializer"
	"github.com/dashforge-ai/dashforge/pkg/models"
	"github.com/dashforge-ai/dashforge/pkg/vocabulary"
)

// VisualPlanner plans abstract visual intents for a user query, given
// the dashboard's current intents as refinement context.
type VisualPlanner interface {
	PlanVisuals(ctx context.Context, query string, conceptTerms []string, currentIntents []models.VisualIntent) (string, []models.VisualIntent, error)
}

// Config carries the session's collaborators.
type Config struct {
	Catalog      *models.Catalog
	Vocabulary   *vocabulary.Vocabulary
	Planner      VisualPlanner
	Binder       *binder.Binder
	Layout       *layout.Planner
	Materializer *materializer.Materializer
	OutputDir    string
}

// Session holds the conversational dashboard state. The abstract intent
// list is the only state carried between turns; bound visuals and
// on-disk documents are rebuilt in full every turn.
type Session struct {
	catalog      *models.Catalog
	conceptTerms []string
	planner      VisualPlanner
	binder       *binder.Binder
	layout       *layout.Planner
	materializer *materializer.Materializer
	outputDir    string
	logger       *zap.Logger

	intents []models.VisualIntent
	title   string
}

// New creates a Session with empty dashboard state.
func New(cfg Config, logger *zap.Logger) *Session {
	return &Session{
		catalog:      cfg.Catalog,
		conceptTerms: cfg.Vocabulary.ConceptTerms(),
		planner:      cfg.Planner,
		binder:       cfg.Binder,
		layout:       cfg.Layout,
		materializer: cfg.Materializer,
		outputDir:    cfg.OutputDir,
		logger:       logger.Named("session"),
	}
}

// TurnResult summarizes one completed turn.
type TurnResult struct {
	Title     string
	Requested int
	Produced  int
}

// Title returns the current dashboard title.
func (s *Session) Title() string {
	return s.title
}

// Intents returns the current abstract dashboard state.
func (s *Session) Intents() []models.VisualIntent {
	return s.intents
}

// Turn runs one conversational turn: plan (or refine), bind, lay out
// and write every visual. Planning failures leave the session state
// untouched; individual visual failures are logged and skipped so one
// bad visual never sinks the dashboard.
func (s *Session) Turn(ctx context.Context, query string) (*TurnResult, error) {
	title, intents, err := s.planner.PlanVisuals(ctx, query, s.conceptTerms, s.intents)
	if err != nil {
		return nil, fmt.Errorf("turn: %w", err)
	}
	s.intents = intents
	s.title = title

	produced, err := s.materialize(ctx)
	if err != nil {
		return nil, fmt.Errorf("turn: %w", err)
	}

	return &TurnResult{Title: title, Requested: len(intents), Produced: produced}, nil
}

// materialize rebuilds the full dashboard from the current intents.
func (s *Session) materialize(_ context.Context) (int, error) {
	var bound []*models.BoundVisual
	var dateBinding *models.PhysicalBinding
	variationTable := ""

	for _, intent := range s.intents {
		visual, err := s.binder.Bind(intent)
		if err != nil {
			s.logger.Error("failed to bind visual",
				zap.String("title", intent.Title),
				zap.Error(err))
			continue
		}
		bound = append(bound, visual)

		// The first bound date column with a variation table triggers
		// the slicer injection below.
		if dateBinding == nil {
			for _, b := range visual.Bindings {
				if !b.IsDate() {
					continue
				}
				col := s.catalog.Column(b.Table, b.Column)
				if col != nil && col.VariationTable != "" {
					binding := b
					dateBinding = &binding
					variationTable = col.VariationTable
					break
				}
			}
		}
	}

	if dateBinding != nil {
		s.logger.Info("injecting date slicer",
			zap.String("table", dateBinding.Table),
			zap.String("column", dateBinding.Column))
		bound = append(bound, &models.BoundVisual{
			Name:           "date_slicer",
			Kind:           models.KindDateSlicer,
			Title:          "Date Slicer",
			Bindings:       []models.PhysicalBinding{*dateBinding},
			VariationTable: variationTable,
		})
	}

	planned := s.layout.PlanLayout(bound, s.title)

	if err := s.materializer.ClearDir(s.outputDir); err != nil {
		return 0, err
	}

	produced := 0
	for i, visual := range planned {
		if _, err := s.materializer.Materialize(visual, s.outputDir, i+1); err != nil {
			s.logger.Error("failed to materialize visual",
				zap.String("title", visual.Title),
				zap.Error(err))
			continue
		}
		produced++
	}

	s.logger.Info("dashboard updated",
		zap.String("title", s.title),
		zap.Int("visuals", produced))
	return produced, nil
}
