package tmdl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dashforge-ai/dashforge/pkg/apperrors"
)

const salesTMDL = `table sales
	lineageTag: 0f1c

	column Product
		dataType: string
		lineageTag: 2ab0
		summarizeBy: none
		sourceColumn: Product

	column Amount
		dataType: int64
		formatString: 0
		summarizeBy: sum
		sourceColumn: Amount

	column 'Order Date'
		dataType: dateTime
		summarizeBy: none
		defaultHierarchy: LocalDateTable_8cc8.'Date Hierarchy'
		sourceColumn: Order Date
`

const hiddenTMDL = `table LocalDateTable_8cc8
	isHidden
	showAsVariationsOnly

	column Date
		dataType: dateTime
		isHidden
		summarizeBy: none
`

func TestParseTable(t *testing.T) {
	table := ParseTable(salesTMDL)
	require.NotNil(t, table)

	assert.Equal(t, "sales", table.Name)
	assert.False(t, table.IsHidden)
	require.Len(t, table.Columns, 3)

	product := table.Columns[0]
	assert.Equal(t, "Product", product.Name)
	assert.Equal(t, "string", product.DataType)
	assert.False(t, product.IsMeasure())

	amount := table.Columns[1]
	assert.Equal(t, "Amount", amount.Name)
	assert.Equal(t, "int64", amount.DataType)
	assert.Equal(t, "sum", amount.SummarizeBy)
	assert.True(t, amount.IsMeasure())

	orderDate := table.Columns[2]
	assert.Equal(t, "Order Date", orderDate.Name)
	assert.Equal(t, "datetime", orderDate.DataType)
	assert.Equal(t, "LocalDateTable_8cc8", orderDate.VariationTable)
}

func TestParseTable_HiddenTable(t *testing.T) {
	table := ParseTable(hiddenTMDL)
	require.NotNil(t, table)
	assert.Equal(t, "LocalDateTable_8cc8", table.Name)
	assert.True(t, table.IsHidden)
}

func TestParseTable_MissingMetadataDefaults(t *testing.T) {
	table := ParseTable("table bare\n\tcolumn Mystery\n\t\tsourceColumn: Mystery\n")
	require.NotNil(t, table)
	require.Len(t, table.Columns, 1)
	assert.Equal(t, "unknown", table.Columns[0].DataType)
	assert.Equal(t, "none", table.Columns[0].SummarizeBy)
}

func TestParseTable_NoTable(t *testing.T) {
	assert.Nil(t, ParseTable("expression foo = 1\n"))
}

func TestLoadModel(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sales.tmdl"), []byte(salesTMDL), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dates.tmdl"), []byte(hiddenTMDL), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0o644))

	catalog, err := NewParser(zap.NewNop()).LoadModel(dir)
	require.NoError(t, err)
	require.Len(t, catalog.Tables, 2)

	require.NotNil(t, catalog.Table("sales"))
	require.NotNil(t, catalog.Column("sales", "Amount"))
	assert.Nil(t, catalog.Column("sales", "Nope"))
}

func TestLoadModel_MissingDir(t *testing.T) {
	_, err := NewParser(zap.NewNop()).LoadModel("/definitely/not/here")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrModelPathMissing)
}
