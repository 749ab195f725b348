package models

// Catalog is the typed table/column catalog produced by schema discovery.
// It is built once per session and read-only afterwards.
type Catalog struct {
	Tables []CatalogTable `json:"tables"`
}

// CatalogTable is a discovered table from the semantic model definition.
type CatalogTable struct {
	Name     string          `json:"name"`
	IsHidden bool            `json:"is_hidden"`
	Columns  []CatalogColumn `json:"columns"`
}

// CatalogColumn carries the per-column metadata the compiler needs.
// SummarizeBy drives the measure/dimension heuristic; an absent or
// unrecognized data type is recorded as "unknown", never treated as an error.
type CatalogColumn struct {
	Name        string `json:"name"`
	DataType    string `json:"data_type"`
	SummarizeBy string `json:"summarize_by"`
	// VariationTable is the auto-generated date table backing this column's
	// default hierarchy, when one exists. Drives date-slicer injection.
	VariationTable string `json:"variation_table,omitempty"`
}

// summarizations that mark a column as an aggregatable measure.
var measureSummarizations = map[string]bool{
	"sum":     true,
	"count":   true,
	"average": true,
	"min":     true,
	"max":     true,
}

// IsMeasure reports whether the column's default summarization marks it
// as a measure rather than a dimension.
func (c CatalogColumn) IsMeasure() bool {
	return measureSummarizations[c.SummarizeBy]
}

// Table returns the table with the given name, or nil.
func (c *Catalog) Table(name string) *CatalogTable {
	for i := range c.Tables {
		if c.Tables[i].Name == name {
			return &c.Tables[i]
		}
	}
	return nil
}

// Column returns the named column of the named table, or nil.
func (c *Catalog) Column(table, column string) *CatalogColumn {
	t := c.Table(table)
	if t == nil {
		return nil
	}
	for i := range t.Columns {
		if t.Columns[i].Name == column {
			return &t.Columns[i]
		}
	}
	return nil
}
