// Package materializer compiles bound visuals into the wire-format
// documents consumed by the downstream rendering application, one
// self-contained document per visual.
package materializer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dashforge-ai/dashforge/pkg/models"
)

// Materializer builds and persists visual definition documents.
type Materializer struct {
	logger *zap.Logger
}

// New creates a Materializer.
func New(logger *zap.Logger) *Materializer {
	return &Materializer{logger: logger.Named("materializer")}
}

// Materialize builds the document for one bound visual and writes it to
// outputDir/<visual name>/visual.json. Creating the visual's folder is
// idempotent. Build failures and I/O failures are surfaced per visual;
// the caller decides whether to continue with the remaining visuals.
func (m *Materializer) Materialize(v *models.BoundVisual, outputDir string, index int) (*VisualContainer, error) {
	doc, err := m.Build(v, index)
	if err != nil {
		return nil, err
	}

	folder := filepath.Join(outputDir, doc.Name)
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return nil, fmt.Errorf("create visual folder: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode visual: %w", err)
	}

	path := filepath.Join(folder, "visual.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("write visual: %w", err)
	}

	m.logger.Debug("visual written",
		zap.String("visual", v.Title),
		zap.String("type", doc.Visual.VisualType),
		zap.String("path", path))
	return doc, nil
}

// ClearDir empties the visuals output directory so a full refresh never
// leaves documents from a previous plan behind. The directory is created
// if it does not exist.
func (m *Materializer) ClearDir(outputDir string) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return fmt.Errorf("read output dir: %w", err)
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(outputDir, entry.Name())); err != nil {
			return fmt.Errorf("clear output dir: %w", err)
		}
	}
	return nil
}

// Build compiles one bound visual into its wire-format document.
// Missing bindings are legal: a visual with zero dimensions and zero
// measures produces a document with empty projections.
func (m *Materializer) Build(v *models.BoundVisual, index int) (*VisualContainer, error) {
	spec, ok := kindRegistry[v.Kind]
	if !ok {
		return nil, fmt.Errorf("no wire mapping for visual kind %q", v.Kind)
	}

	doc := &VisualContainer{
		Schema:   containerSchema,
		Name:     fmt.Sprintf("Visual_%d_%s", index, shortID(6)),
		Position: position(v, index),
		Visual: Visual{
			VisualType:              spec.wireType,
			DrillFilterOtherVisuals: true,
		},
	}

	if v.Title != "" {
		doc.Visual.VisualContainerObjects = map[string][]ObjectProperties{
			"title": {{
				Properties: map[string]PropertyExpr{
					"text": {Expr: LiteralExpr{Literal: Literal{Value: "'" + v.Title + "'"}}},
				},
			}},
		}
	}

	if !spec.hasQuery {
		return doc, nil
	}

	dims, measures := m.applyFailsafes(v)
	doc.Visual.Query = &Query{QueryState: m.buildQueryState(v, spec, dims, measures)}

	var primaryDim, primaryMeasure *models.PhysicalBinding
	if len(dims) > 0 {
		primaryDim = &dims[0]
	}
	if len(measures) > 0 {
		primaryMeasure = &measures[0]
	}

	doc.Visual.Query.SortDefinition = sortDefinition(v, primaryDim, primaryMeasure)

	if v.TopN != nil && primaryDim != nil && primaryMeasure != nil {
		doc.FilterConfig = &FilterConfig{
			Filters: []Filter{topNFilter(*primaryDim, *primaryMeasure, *v.TopN)},
		}
	}

	return doc, nil
}

// applyFailsafes partitions bindings and repairs shapes the renderer
// cannot draw. Cards need exactly one measure; charts need an axis.
func (m *Materializer) applyFailsafes(v *models.BoundVisual) (dims, measures []models.PhysicalBinding) {
	for _, b := range v.Bindings {
		if b.Kind == models.KindMeasure {
			measures = append(measures, b)
		} else {
			dims = append(dims, b)
		}
	}

	switch v.Kind {
	case models.KindCard:
		if len(measures) == 0 && len(dims) > 0 {
			m.logger.Warn("card has no measure, counting first dimension",
				zap.String("visual", v.Title),
				zap.String("column", dims[0].Column))
			forced := dims[0]
			forced.Kind = models.KindMeasure
			forced.Aggregation = models.AggCount
			measures = []models.PhysicalBinding{forced}
		}
		if len(measures) > 1 {
			measures = measures[:1]
		}
		dims = nil
	case models.KindTable, models.KindDateSlicer, models.KindTextbox:
		// No shape requirements.
	default:
		// Axis safety: a chart with no dimension but several measures
		// gets its first measure demoted to the axis.
		if len(dims) == 0 && len(measures) >= 2 {
			m.logger.Warn("chart has no dimension, forcing first measure to axis",
				zap.String("visual", v.Title),
				zap.String("column", measures[0].Column))
			forced := measures[0]
			forced.Kind = models.KindDimension
			forced.Aggregation = ""
			dims = []models.PhysicalBinding{forced}
			measures = measures[1:]
		}
	}

	return dims, measures
}

// buildQueryState groups field projections under the kind's role keys.
// Empty roles are omitted.
func (m *Materializer) buildQueryState(v *models.BoundVisual, spec kindSpec, dims, measures []models.PhysicalBinding) map[string]RoleProjections {
	state := make(map[string]RoleProjections)

	add := func(role string, bindings []models.PhysicalBinding) {
		if role == "" || len(bindings) == 0 {
			return
		}
		projections := state[role].Projections
		for _, b := range bindings {
			p := Projection{
				Field:          fieldExpr(b),
				QueryRef:       queryRef(b),
				NativeQueryRef: nativeRef(b),
			}
			// The first Category dimension is the active axis field.
			if role == "Category" && b.Kind == models.KindDimension && len(projections) == 0 {
				p.Active = true
			}
			projections = append(projections, p)
		}
		state[role] = RoleProjections{Projections: projections}
	}

	if spec.dimensionRole == spec.measureRole {
		// Tables and slicers project every binding under one role, in
		// the visual's original binding order.
		add(spec.dimensionRole, v.Bindings)
		return state
	}

	add(spec.dimensionRole, dims)
	add(spec.measureRole, measures)
	return state
}

// sortDefinition picks the visual's sort. An explicit Top-N sort wins;
// otherwise ranked visuals sort descending by their primary measure and
// tables ascending by their primary dimension.
func sortDefinition(v *models.BoundVisual, primaryDim, primaryMeasure *models.PhysicalBinding) *SortDefinition {
	if v.TopN != nil && primaryMeasure != nil {
		return &SortDefinition{
			Sort:          []SortClause{{Field: fieldExpr(*primaryMeasure), Direction: sortDescending}},
			IsDefaultSort: true,
		}
	}

	switch v.Kind {
	case models.KindBar, models.KindColumn, models.KindPie, models.KindCard:
		if primaryMeasure != nil {
			return &SortDefinition{
				Sort:          []SortClause{{Field: fieldExpr(*primaryMeasure), Direction: sortDescending}},
				IsDefaultSort: true,
			}
		}
	case models.KindTable:
		if primaryDim != nil {
			return &SortDefinition{
				Sort:          []SortClause{{Field: fieldExpr(*primaryDim), Direction: sortAscending}},
				IsDefaultSort: true,
			}
		}
	}
	return nil
}

// topNFilter builds the "dimension value is in {top-N subquery}" filter.
// The subquery selects the dimension from its owning table, orders by the
// aggregated measure descending and limits to n rows; the outer query
// re-declares the entity under the same alias so the Where clause can
// reference it.
func topNFilter(dim, measure models.PhysicalBinding, n int) Filter {
	const alias = "d"

	subquery := SubqueryQuery{
		Version: 2,
		From:    []FromClause{{Name: alias, Entity: dim.Table, Type: fromTypeEntity}},
		Select: []SelectClause{{
			Column: aliasColumn(alias, dim.Column),
			Name:   "field",
		}},
		OrderBy: []OrderByClause{{
			Direction: orderDescending,
			Expression: Expr{Aggregation: &AggregationExpr{
				Expression: Expr{Column: ptr(aliasColumn(alias, measure.Column))},
				Function:   measure.Aggregation.Code(),
			}},
		}},
		Top: n,
	}

	return Filter{
		Name:  shortID(20),
		Type:  "TopN",
		Field: fieldExpr(models.PhysicalBinding{Table: dim.Table, Column: dim.Column, Kind: models.KindDimension}),
		Filter: FilterQuery{
			Version: 2,
			From: []FromClause{
				{Name: "subquery", Expression: &SubqueryExpr{Subquery: Subquery{Query: subquery}}, Type: fromTypeSubquery},
				{Name: alias, Entity: dim.Table, Type: fromTypeEntity},
			},
			Where: []WhereClause{{
				Condition: Condition{In: InExpression{
					Expressions: []Expr{{Column: ptr(aliasColumn(alias, dim.Column))}},
					Table:       SourceExpr{SourceRef: SourceRef{Source: "subquery"}},
				}},
			}},
		},
	}
}

// fieldExpr builds the entity-scoped field expression for a binding,
// wrapping measures in their aggregation.
func fieldExpr(b models.PhysicalBinding) Expr {
	col := Expr{Column: &ColumnRef{
		Expression: SourceExpr{SourceRef: SourceRef{Entity: b.Table}},
		Property:   b.Column,
	}}
	if b.Kind == models.KindMeasure {
		return Expr{Aggregation: &AggregationExpr{
			Expression: col,
			Function:   b.Aggregation.Code(),
		}}
	}
	return col
}

// aliasColumn scopes a column to a query-local alias for subquery use.
func aliasColumn(alias, column string) ColumnRef {
	return ColumnRef{
		Expression: SourceExpr{SourceRef: SourceRef{Source: alias}},
		Property:   column,
	}
}

// queryRef is the projection's query reference string:
// Func(table.column) for measures, table.column for dimensions.
func queryRef(b models.PhysicalBinding) string {
	if b.Kind == models.KindMeasure {
		return fmt.Sprintf("%s(%s.%s)", b.Aggregation.RefName(), b.Table, b.Column)
	}
	return fmt.Sprintf("%s.%s", b.Table, b.Column)
}

// nativeRef is the human-readable label shown for the projection.
func nativeRef(b models.PhysicalBinding) string {
	if b.Kind == models.KindMeasure {
		return fmt.Sprintf("%s of %s", b.Aggregation.RefName(), label(b.Column))
	}
	return label(b.Column)
}

// label replaces separators with spaces and title-cases the words.
func label(column string) string {
	words := strings.FieldsFunc(column, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = strings.ToUpper(string(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// position uses the planned layout when present and a deterministic
// cascade fallback otherwise.
func position(v *models.BoundVisual, index int) Position {
	if v.Layout != nil {
		return Position{
			X:        v.Layout.X,
			Y:        v.Layout.Y,
			Width:    v.Layout.Width,
			Height:   v.Layout.Height,
			TabOrder: v.Layout.TabOrder,
		}
	}
	return Position{
		X:        10 + (index-1)*20,
		Y:        10 + (index-1)*20,
		Width:    600,
		Height:   400,
		TabOrder: index,
	}
}

// shortID returns n hex characters of a fresh UUID.
func shortID(n int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:n]
}

func ptr[T any](v T) *T {
	return &v
}
