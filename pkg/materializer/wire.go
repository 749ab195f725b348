package materializer

// Wire-format document types for the report's visual definition files
// (visualContainer schema 2.4.0). Field names and casing follow the
// downstream rendering application's schema exactly.

const containerSchema = "https://developer.microsoft.com/json-schemas/fabric/item/report/definition/visualContainer/2.4.0/schema.json"

// VisualContainer is one self-contained visual definition document.
type VisualContainer struct {
	Schema       string        `json:"$schema"`
	Name         string        `json:"name"`
	Position     Position      `json:"position"`
	Visual       Visual        `json:"visual"`
	FilterConfig *FilterConfig `json:"filterConfig,omitempty"`
}

// Position is the visual's placement block.
type Position struct {
	X        int `json:"x"`
	Y        int `json:"y"`
	Z        int `json:"z"`
	Width    int `json:"width"`
	Height   int `json:"height"`
	TabOrder int `json:"tabOrder"`
}

// Visual holds the visual type, its query state and container objects.
type Visual struct {
	VisualType              string                        `json:"visualType"`
	Query                   *Query                        `json:"query,omitempty"`
	VisualContainerObjects  map[string][]ObjectProperties `json:"visualContainerObjects,omitempty"`
	DrillFilterOtherVisuals bool                          `json:"drillFilterOtherVisuals"`
}

// Query carries the role projections and optional sort definition.
type Query struct {
	QueryState     map[string]RoleProjections `json:"queryState"`
	SortDefinition *SortDefinition            `json:"sortDefinition,omitempty"`
}

// RoleProjections groups field projections under one role key.
type RoleProjections struct {
	Projections []Projection `json:"projections"`
}

// Projection is one field under a role.
type Projection struct {
	Field          Expr   `json:"field"`
	QueryRef       string `json:"queryRef"`
	Active         bool   `json:"active,omitempty"`
	NativeQueryRef string `json:"nativeQueryRef,omitempty"`
}

// Expr is a field expression: a bare column reference or an aggregation
// wrapper around one. Exactly one member is set.
type Expr struct {
	Column      *ColumnRef       `json:"Column,omitempty"`
	Aggregation *AggregationExpr `json:"Aggregation,omitempty"`
}

// ColumnRef scopes a column property to its source.
type ColumnRef struct {
	Expression SourceExpr `json:"Expression"`
	Property   string     `json:"Property"`
}

// SourceExpr wraps a source reference.
type SourceExpr struct {
	SourceRef SourceRef `json:"SourceRef"`
}

// SourceRef names either an entity (table) or a query-local alias.
type SourceRef struct {
	Entity string `json:"Entity,omitempty"`
	Source string `json:"Source,omitempty"`
}

// AggregationExpr wraps a column expression in an aggregation function.
type AggregationExpr struct {
	Expression Expr `json:"Expression"`
	Function   int  `json:"Function"`
}

// SortDefinition is the visual's sort block.
type SortDefinition struct {
	Sort          []SortClause `json:"sort"`
	IsDefaultSort bool         `json:"isDefaultSort"`
}

// SortClause sorts by one field.
type SortClause struct {
	Field     Expr   `json:"field"`
	Direction string `json:"direction"`
}

const (
	sortAscending  = "Ascending"
	sortDescending = "Descending"
)

// orderDescending is the numeric direction code used inside subqueries.
const orderDescending = 2

// FilterConfig is the container-level filter block.
type FilterConfig struct {
	Filters []Filter `json:"filters"`
}

// Filter is one filter definition; for Top-N its body is a Version-2
// query with a nested subquery.
type Filter struct {
	Name   string      `json:"name"`
	Type   string      `json:"type"`
	Field  Expr        `json:"field"`
	Filter FilterQuery `json:"filter"`
}

// FilterQuery is the filter's query body.
type FilterQuery struct {
	Version int           `json:"Version"`
	From    []FromClause  `json:"From"`
	Where   []WhereClause `json:"Where"`
}

// FromClause is a query source: an entity alias (Type 0) or a subquery
// definition (Type 2).
type FromClause struct {
	Name       string        `json:"Name"`
	Entity     string        `json:"Entity,omitempty"`
	Expression *SubqueryExpr `json:"Expression,omitempty"`
	Type       int           `json:"Type"`
}

const (
	fromTypeEntity   = 0
	fromTypeSubquery = 2
)

// SubqueryExpr embeds a nested query as an expression.
type SubqueryExpr struct {
	Subquery Subquery `json:"Subquery"`
}

// Subquery holds the nested query.
type Subquery struct {
	Query SubqueryQuery `json:"Query"`
}

// SubqueryQuery is the nested select-order-limit query realizing Top-N.
type SubqueryQuery struct {
	Version int             `json:"Version"`
	From    []FromClause    `json:"From"`
	Select  []SelectClause  `json:"Select"`
	OrderBy []OrderByClause `json:"OrderBy"`
	Top     int             `json:"Top"`
}

// SelectClause projects one column out of the subquery.
type SelectClause struct {
	Column ColumnRef `json:"Column"`
	Name   string    `json:"Name"`
}

// OrderByClause orders the subquery.
type OrderByClause struct {
	Direction  int  `json:"Direction"`
	Expression Expr `json:"Expression"`
}

// WhereClause is one condition on the outer filter query.
type WhereClause struct {
	Condition Condition `json:"Condition"`
}

// Condition holds the supported condition kinds; only In is used.
type Condition struct {
	In InExpression `json:"In"`
}

// InExpression tests column membership against a table-valued source.
type InExpression struct {
	Expressions []Expr     `json:"Expressions"`
	Table       SourceExpr `json:"Table"`
}

// ObjectProperties is one entry in a visualContainerObjects list.
type ObjectProperties struct {
	Properties map[string]PropertyExpr `json:"properties"`
}

// PropertyExpr is a literal-valued object property.
type PropertyExpr struct {
	Expr LiteralExpr `json:"expr"`
}

// LiteralExpr wraps a literal value.
type LiteralExpr struct {
	Literal Literal `json:"Literal"`
}

// Literal is a quoted literal value.
type Literal struct {
	Value string `json:"Value"`
}
