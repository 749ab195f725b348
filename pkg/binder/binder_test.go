package binder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dashforge-ai/dashforge/pkg/models"
	"github.com/dashforge-ai/dashforge/pkg/resolver"
	"github.com/dashforge-ai/dashforge/pkg/vocabulary"
)

func newBinder(t *testing.T) *Binder {
	t.Helper()
	catalog := &models.Catalog{
		Tables: []models.CatalogTable{
			{
				Name: "data",
				Columns: []models.CatalogColumn{
					{Name: "Product", DataType: "string", SummarizeBy: "none"},
					{Name: "Amount", DataType: "int64", SummarizeBy: "sum"},
					{Name: "Order Date", DataType: "datetime", SummarizeBy: "none"},
				},
			},
		},
	}
	vocab, err := vocabulary.NewBuilder(vocabulary.DefaultSynonyms(), nil, zap.NewNop()).
		Build(context.Background(), catalog)
	require.NoError(t, err)

	r := resolver.New(vocab, resolver.DefaultConfig(), zap.NewNop())
	return New(r, zap.NewNop())
}

func TestBind_ResolvesConceptsInOrder(t *testing.T) {
	b := newBinder(t)

	topN := 5
	bound, err := b.Bind(models.VisualIntent{
		Title:    "Top Products by Revenue",
		Kind:     models.KindBar,
		Concepts: []string{"product", "revenue"},
		TopN:     &topN,
	})
	require.NoError(t, err)

	assert.Equal(t, "top_products_by_revenue", bound.Name)
	assert.Equal(t, models.KindBar, bound.Kind)
	require.NotNil(t, bound.TopN)
	assert.Equal(t, 5, *bound.TopN)

	require.Len(t, bound.Bindings, 2)
	assert.Equal(t, models.KindDimension, bound.Bindings[0].Kind)
	assert.Equal(t, "Product", bound.Bindings[0].Column)
	assert.Empty(t, bound.Bindings[0].Aggregation)

	assert.Equal(t, models.KindMeasure, bound.Bindings[1].Kind)
	assert.Equal(t, "Amount", bound.Bindings[1].Column)
	assert.Equal(t, models.AggSum, bound.Bindings[1].Aggregation)
}

func TestBind_UnresolvableConceptIsDropped(t *testing.T) {
	b := newBinder(t)

	bound, err := b.Bind(models.VisualIntent{
		Title:    "Mixed",
		Kind:     models.KindTable,
		Concepts: []string{"product", "weather forecast accuracy", "amount"},
	})
	require.NoError(t, err)
	require.Len(t, bound.Bindings, 2)
	assert.Equal(t, "Product", bound.Bindings[0].Column)
	assert.Equal(t, "Amount", bound.Bindings[1].Column)
}

func TestBind_TableLevelConceptIsSkipped(t *testing.T) {
	b := newBinder(t)

	bound, err := b.Bind(models.VisualIntent{
		Title:    "Raw",
		Kind:     models.KindTable,
		Concepts: []string{"data"},
	})
	require.NoError(t, err)
	assert.Empty(t, bound.Bindings)
}

func TestBind_ZeroResolvableConceptsStillBinds(t *testing.T) {
	b := newBinder(t)

	bound, err := b.Bind(models.VisualIntent{
		Title:    "Nothing Here",
		Kind:     models.KindCard,
		Concepts: []string{"unicorn density"},
	})
	require.NoError(t, err)
	assert.Empty(t, bound.Bindings)
	assert.Equal(t, models.KindCard, bound.Kind)
}

func TestBind_InvariantHoldsForAllBindings(t *testing.T) {
	b := newBinder(t)

	bound, err := b.Bind(models.VisualIntent{
		Title:    "Everything",
		Kind:     models.KindTable,
		Concepts: []string{"product", "amount", "order date", "revenue"},
	})
	require.NoError(t, err)

	for _, binding := range bound.Bindings {
		require.NoError(t, binding.Validate())
		if binding.Kind == models.KindMeasure {
			assert.NotEmpty(t, binding.Aggregation)
		} else {
			assert.Empty(t, binding.Aggregation)
		}
	}
}
