package vocabulary

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dashforge-ai/dashforge/pkg/llm"
	"github.com/dashforge-ai/dashforge/pkg/models"
)

func testCatalog() *models.Catalog {
	return &models.Catalog{
		Tables: []models.CatalogTable{
			{
				Name: "sales",
				Columns: []models.CatalogColumn{
					{Name: "Product", DataType: "string", SummarizeBy: "none"},
					{Name: "Sales_Amount", DataType: "int64", SummarizeBy: "sum"},
					{Name: "Country", DataType: "string", SummarizeBy: "none"},
				},
			},
			{
				Name:     "LocalDateTable_1",
				IsHidden: true,
				Columns: []models.CatalogColumn{
					{Name: "Date", DataType: "datetime", SummarizeBy: "none"},
				},
			},
		},
	}
}

func entityByKey(t *testing.T, v *Vocabulary, key string) Entity {
	t.Helper()
	for _, e := range v.Entities {
		if e.Key == key {
			return e
		}
	}
	t.Fatalf("entity %q not found", key)
	return Entity{}
}

func termTexts(e Entity) []string {
	var out []string
	for _, term := range e.Terms {
		out = append(out, term.Text)
	}
	return out
}

func TestBuild_EntitiesAndKeys(t *testing.T) {
	b := NewBuilder(DefaultSynonyms(), nil, zap.NewNop())
	vocab, err := b.Build(context.Background(), testCatalog())
	require.NoError(t, err)

	// One table entity plus three column entities; the hidden date table
	// is excluded entirely.
	require.Len(t, vocab.Entities, 4)

	table := entityByKey(t, vocab, "sales")
	assert.Empty(t, table.Column)
	assert.Contains(t, termTexts(table), "sales")

	amount := entityByKey(t, vocab, "sales.sales_amount")
	assert.True(t, amount.IsMeasure)
	assert.Equal(t, "Sales_Amount", amount.Column)
}

func TestBuild_DirectionalSynonyms(t *testing.T) {
	b := NewBuilder(DefaultSynonyms(), nil, zap.NewNop())
	vocab, err := b.Build(context.Background(), testCatalog())
	require.NoError(t, err)

	// Numeric synonyms attach to the measure only.
	amount := entityByKey(t, vocab, "sales.sales_amount")
	assert.Contains(t, termTexts(amount), "revenue")
	assert.NotContains(t, termTexts(amount), "item")

	// Categorical synonyms attach to the dimension only.
	product := entityByKey(t, vocab, "sales.product")
	assert.Contains(t, termTexts(product), "item")
	assert.NotContains(t, termTexts(product), "revenue")

	country := entityByKey(t, vocab, "sales.country")
	assert.Contains(t, termTexts(country), "region")
}

func TestBuild_SeparatorAndPluralVariants(t *testing.T) {
	b := NewBuilder(DefaultSynonyms(), nil, zap.NewNop())
	vocab, err := b.Build(context.Background(), testCatalog())
	require.NoError(t, err)

	amount := entityByKey(t, vocab, "sales.sales_amount")
	texts := termTexts(amount)
	assert.Contains(t, texts, "sales_amount")
	assert.Contains(t, texts, "sales amount")

	product := entityByKey(t, vocab, "sales.product")
	assert.Contains(t, termTexts(product), "products")
}

func TestBuild_EveryEntityHasTerms(t *testing.T) {
	b := NewBuilder(DefaultSynonyms(), nil, zap.NewNop())
	vocab, err := b.Build(context.Background(), testCatalog())
	require.NoError(t, err)

	for _, e := range vocab.Entities {
		assert.NotEmpty(t, e.Terms, "entity %q has no terms", e.Key)
	}
}

func TestBuild_EmptyCatalog(t *testing.T) {
	b := NewBuilder(DefaultSynonyms(), nil, zap.NewNop())
	_, err := b.Build(context.Background(), &models.Catalog{})
	require.Error(t, err)
}

func TestBuild_ExpanderFailureFallsBack(t *testing.T) {
	failing := expanderFunc(func(ctx context.Context, field string, isMeasure bool, dataType string) ([]string, error) {
		return nil, errors.New("expansion service down")
	})

	b := NewBuilder(DefaultSynonyms(), failing, zap.NewNop())
	vocab, err := b.Build(context.Background(), testCatalog())
	require.NoError(t, err)

	amount := entityByKey(t, vocab, "sales.sales_amount")
	assert.Contains(t, termTexts(amount), "sales amount")
}

func TestBuild_ExpanderTermsMergedWithDeterministic(t *testing.T) {
	custom := expanderFunc(func(ctx context.Context, field string, isMeasure bool, dataType string) ([]string, error) {
		if field == "Product" {
			return []string{"Merchandise"}, nil
		}
		return nil, errors.New("skip")
	})

	b := NewBuilder(DefaultSynonyms(), custom, zap.NewNop())
	vocab, err := b.Build(context.Background(), testCatalog())
	require.NoError(t, err)

	product := entityByKey(t, vocab, "sales.product")
	texts := termTexts(product)
	assert.Contains(t, texts, "merchandise")
	assert.Contains(t, texts, "product")
}

func TestConceptTerms_ExcludesTableEntities(t *testing.T) {
	b := NewBuilder(DefaultSynonyms(), nil, zap.NewNop())
	vocab, err := b.Build(context.Background(), testCatalog())
	require.NoError(t, err)

	terms := vocab.ConceptTerms()
	assert.Len(t, terms, 3)
}

func TestConceptTerms_LeadsWithFieldName(t *testing.T) {
	// Synonyms that sort before the field name must not displace it:
	// the planner sees each concept under the field's own name variant.
	custom := expanderFunc(func(ctx context.Context, field string, isMeasure bool, dataType string) ([]string, error) {
		if field == "Product" {
			return []string{"article"}, nil
		}
		return nil, errors.New("skip")
	})

	b := NewBuilder(DefaultSynonyms(), custom, zap.NewNop())
	vocab, err := b.Build(context.Background(), testCatalog())
	require.NoError(t, err)

	assert.Equal(t, []string{"product", "sales_amount", "country"}, vocab.ConceptTerms())

	product := entityByKey(t, vocab, "sales.product")
	require.NotEmpty(t, product.Terms)
	assert.Equal(t, "product", product.Terms[0].Text)
	assert.Contains(t, termTexts(product), "article")
}

func TestLoadSynonyms_MergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "synonyms.yaml")
	content := "measures:\n  margin: [margin, profit, markup]\ndimensions:\n  product: [product, article]\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	table, err := LoadSynonyms(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"margin", "profit", "markup"}, table.Measures["margin"])
	assert.Equal(t, []string{"product", "article"}, table.Dimensions["product"])
	// Untouched defaults survive the merge.
	assert.Contains(t, table.Measures["sales"], "revenue")
}

func TestLoadSynonyms_EmptyPathReturnsDefaults(t *testing.T) {
	table, err := LoadSynonyms("")
	require.NoError(t, err)
	assert.Equal(t, DefaultSynonyms(), table)
}

func TestLLMExpander(t *testing.T) {
	mock := llm.NewMockClient()
	mock.CompleteFunc = func(ctx context.Context, prompt, system string, temperature float64) (*llm.CompletionResult, error) {
		return &llm.CompletionResult{
			Content:      `{"synonyms": ["Revenue", "turnover"]}`,
			TotalTokens:  10,
			PromptTokens: 8,
		}, nil
	}
	usage := llm.NewUsageCounter()

	expander := NewLLMExpander(mock, usage, zap.NewNop())
	terms, err := expander.ExpandTerms(context.Background(), "sales", true, "int64")
	require.NoError(t, err)
	assert.Equal(t, []string{"Revenue", "turnover"}, terms)
	assert.Equal(t, 1, usage.Summary().Calls)
	assert.Contains(t, mock.LastPrompt, "MEASURES")
}

func TestLLMExpander_MalformedResponse(t *testing.T) {
	mock := llm.NewMockClient()
	mock.CompleteFunc = func(ctx context.Context, prompt, system string, temperature float64) (*llm.CompletionResult, error) {
		return &llm.CompletionResult{Content: "sorry, I cannot help"}, nil
	}

	expander := NewLLMExpander(mock, llm.NopTracker{}, zap.NewNop())
	_, err := expander.ExpandTerms(context.Background(), "sales", true, "int64")
	require.Error(t, err)
}

// expanderFunc adapts a function to the TermExpander interface.
type expanderFunc func(ctx context.Context, fieldName string, isMeasure bool, dataType string) ([]string, error)

func (f expanderFunc) ExpandTerms(ctx context.Context, fieldName string, isMeasure bool, dataType string) ([]string, error) {
	return f(ctx, fieldName, isMeasure, dataType)
}
