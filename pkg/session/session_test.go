package session

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dashforge-ai/dashforge/pkg/binder"
	"github.com/dashforge-ai/dashforge/pkg/layout"
	"github.com/dashforge-ai/dashforge/pkg/materializer"
	"github.com/dashforge-ai/dashforge/pkg/models"
	"github.com/dashforge-ai/dashforge/pkg/resolver"
	"github.com/dashforge-ai/dashforge/pkg/vocabulary"
)

type plannerFunc func(ctx context.Context, query string, conceptTerms []string, currentIntents []models.VisualIntent) (string, []models.VisualIntent, error)

func (f plannerFunc) PlanVisuals(ctx context.Context, query string, conceptTerms []string, currentIntents []models.VisualIntent) (string, []models.VisualIntent, error) {
	return f(ctx, query, conceptTerms, currentIntents)
}

func testCatalog() *models.Catalog {
	return &models.Catalog{Tables: []models.CatalogTable{
		{
			Name: "sales",
			Columns: []models.CatalogColumn{
				{Name: "Region", DataType: "string", SummarizeBy: "none"},
				{Name: "Amount", DataType: "int64", SummarizeBy: "sum"},
				{Name: "Order Date", DataType: "datetime", SummarizeBy: "none", VariationTable: "LocalDateTable_4f2a"},
			},
		},
	}}
}

func newSession(t *testing.T, plan plannerFunc) (*Session, string) {
	t.Helper()
	logger := zap.NewNop()
	catalog := testCatalog()

	vocab, err := vocabulary.NewBuilder(vocabulary.DefaultSynonyms(), nil, logger).Build(context.Background(), catalog)
	require.NoError(t, err)

	res := resolver.New(vocab, resolver.DefaultConfig(), logger)
	outputDir := t.TempDir()

	s := New(Config{
		Catalog:      catalog,
		Vocabulary:   vocab,
		Planner:      plan,
		Binder:       binder.New(res, logger),
		Layout:       layout.New(layout.DefaultConfig(), logger),
		Materializer: materializer.New(logger),
		OutputDir:    outputDir,
	}, logger)
	return s, outputDir
}

func visualDirs(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestTurnBuildsDashboard(t *testing.T) {
	s, outputDir := newSession(t, func(ctx context.Context, query string, conceptTerms []string, current []models.VisualIntent) (string, []models.VisualIntent, error) {
		assert.Contains(t, conceptTerms, "region")
		assert.Empty(t, current)
		return "Sales Overview", []models.VisualIntent{
			{Title: "Sales by Region", Kind: models.KindBar, Concepts: []string{"region", "amount"}},
			{Title: "Total Sales", Kind: models.KindCard, Concepts: []string{"amount"}},
		}, nil
	})

	result, err := s.Turn(context.Background(), "sales overview")
	require.NoError(t, err)

	assert.Equal(t, "Sales Overview", result.Title)
	assert.Equal(t, 2, result.Requested)
	// Header is always added by the layout pass.
	assert.Equal(t, 3, result.Produced)

	assert.Len(t, visualDirs(t, outputDir), 3)
	assert.Equal(t, "Sales Overview", s.Title())
	assert.Len(t, s.Intents(), 2)
}

func TestTurnInjectsDateSlicer(t *testing.T) {
	s, outputDir := newSession(t, func(ctx context.Context, query string, conceptTerms []string, current []models.VisualIntent) (string, []models.VisualIntent, error) {
		return "Trends", []models.VisualIntent{
			{Title: "Sales over Time", Kind: models.KindLine, Concepts: []string{"order date", "amount"}},
		}, nil
	})

	result, err := s.Turn(context.Background(), "sales over time")
	require.NoError(t, err)

	// Header + line chart + injected slicer.
	assert.Equal(t, 3, result.Produced)
	assert.Len(t, visualDirs(t, outputDir), 3)
}

func TestTurnDropsUnresolvableConcepts(t *testing.T) {
	s, _ := newSession(t, func(ctx context.Context, query string, conceptTerms []string, current []models.VisualIntent) (string, []models.VisualIntent, error) {
		return "Partial", []models.VisualIntent{
			{Title: "Sales by Warehouse", Kind: models.KindBar, Concepts: []string{"warehouse xyz", "amount"}},
		}, nil
	})

	result, err := s.Turn(context.Background(), "sales by warehouse")
	require.NoError(t, err)

	// The visual survives with its resolvable binding.
	assert.Equal(t, 1, result.Requested)
	assert.Equal(t, 2, result.Produced)
}

func TestTurnRefinementReplacesDocuments(t *testing.T) {
	turn := 0
	s, outputDir := newSession(t, func(ctx context.Context, query string, conceptTerms []string, current []models.VisualIntent) (string, []models.VisualIntent, error) {
		turn++
		if turn == 1 {
			return "Full", []models.VisualIntent{
				{Title: "Sales by Region", Kind: models.KindBar, Concepts: []string{"region", "amount"}},
				{Title: "Total Sales", Kind: models.KindCard, Concepts: []string{"amount"}},
			}, nil
		}
		// Second turn sees the first turn's state and shrinks it.
		assert.Len(t, current, 2)
		return "Trimmed", []models.VisualIntent{
			{Title: "Total Sales", Kind: models.KindCard, Concepts: []string{"amount"}},
		}, nil
	})

	_, err := s.Turn(context.Background(), "sales overview")
	require.NoError(t, err)
	require.Len(t, visualDirs(t, outputDir), 3)

	result, err := s.Turn(context.Background(), "just keep the total")
	require.NoError(t, err)

	// No stale documents survive the rebuild.
	assert.Equal(t, 2, result.Produced)
	assert.Len(t, visualDirs(t, outputDir), 2)
	assert.Equal(t, "Trimmed", s.Title())
}

func TestTurnPlannerErrorKeepsState(t *testing.T) {
	fail := false
	s, _ := newSession(t, func(ctx context.Context, query string, conceptTerms []string, current []models.VisualIntent) (string, []models.VisualIntent, error) {
		if fail {
			return "", nil, errors.New("provider unavailable")
		}
		return "Stable", []models.VisualIntent{
			{Title: "Total Sales", Kind: models.KindCard, Concepts: []string{"amount"}},
		}, nil
	})

	_, err := s.Turn(context.Background(), "total sales")
	require.NoError(t, err)

	fail = true
	_, err = s.Turn(context.Background(), "break it")
	require.Error(t, err)

	assert.Equal(t, "Stable", s.Title())
	assert.Len(t, s.Intents(), 1)
}
