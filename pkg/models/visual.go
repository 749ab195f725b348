package models

import (
	"fmt"
	"strings"
)

// VisualKind is the closed set of visual types the compiler understands.
// The planner may only produce the first six; DateSlicer and Textbox are
// injected by the pipeline itself and never appear in planner output.
type VisualKind string

const (
	KindTable      VisualKind = "table"
	KindBar        VisualKind = "bar"
	KindColumn     VisualKind = "column"
	KindLine       VisualKind = "line"
	KindPie        VisualKind = "pie"
	KindCard       VisualKind = "card"
	KindDateSlicer VisualKind = "date_slicer"
	KindTextbox    VisualKind = "textbox"
)

// plannerKinds are the kinds a planning response is allowed to name.
var plannerKinds = map[VisualKind]bool{
	KindTable:  true,
	KindBar:    true,
	KindColumn: true,
	KindLine:   true,
	KindPie:    true,
	KindCard:   true,
}

// ParseVisualKind validates a visual kind from an untrusted planning
// response. Only the planner-facing subset is accepted.
func ParseVisualKind(s string) (VisualKind, error) {
	k := VisualKind(strings.ToLower(strings.TrimSpace(s)))
	if !plannerKinds[k] {
		return "", fmt.Errorf("unknown visual type %q", s)
	}
	return k, nil
}

// VisualIntent is the abstract IR produced by the planning service.
// It contains zero physical schema identifiers; concepts are free text
// and may only become table/column references through the resolver.
type VisualIntent struct {
	Title    string     `json:"title"`
	Kind     VisualKind `json:"visual_type"`
	Concepts []string   `json:"concepts"`
	TopN     *int       `json:"top_n,omitempty"`
}

// Validate checks the structural requirements on a planned intent.
func (v VisualIntent) Validate() error {
	if strings.TrimSpace(v.Title) == "" {
		return fmt.Errorf("intent has no title")
	}
	if _, err := ParseVisualKind(string(v.Kind)); err != nil {
		return err
	}
	if v.TopN != nil && *v.TopN <= 0 {
		return fmt.Errorf("top_n must be positive, got %d", *v.TopN)
	}
	return nil
}

// BindingKind distinguishes grouping columns from aggregatable ones.
type BindingKind string

const (
	KindDimension BindingKind = "dimension"
	KindMeasure   BindingKind = "measure"
)

// Aggregation is an aggregation function name on a measure binding.
type Aggregation string

const (
	AggSum   Aggregation = "sum"
	AggAvg   Aggregation = "avg"
	AggMin   Aggregation = "min"
	AggMax   Aggregation = "max"
	AggCount Aggregation = "count"
)

// aggregationCodes is the wire format's numeric function code table.
var aggregationCodes = map[Aggregation]int{
	AggSum:   0,
	AggAvg:   1,
	AggMin:   2,
	AggMax:   3,
	AggCount: 4,
}

// aggregationNames maps function codes back to their query-reference names.
var aggregationNames = [...]string{"Sum", "Avg", "Min", "Max", "Count"}

// Code returns the wire format's numeric code for the aggregation.
// Unknown aggregations code as Sum.
func (a Aggregation) Code() int {
	if code, ok := aggregationCodes[a]; ok {
		return code
	}
	return 0
}

// RefName returns the aggregation's name as used in query references,
// e.g. "Sum" in "Sum(sales.Amount)".
func (a Aggregation) RefName() string {
	return aggregationNames[a.Code()]
}

// PhysicalBinding is a validated mapping from a free-text concept to a
// concrete column. Invariant: Kind == measure iff Aggregation is set.
type PhysicalBinding struct {
	ConceptName string      `json:"concept_name"`
	Table       string      `json:"table"`
	Column      string      `json:"column"`
	Kind        BindingKind `json:"kind"`
	DataType    string      `json:"data_type,omitempty"`
	Aggregation Aggregation `json:"aggregation,omitempty"`
}

// Validate enforces the kind/aggregation invariant.
func (b PhysicalBinding) Validate() error {
	switch b.Kind {
	case KindMeasure:
		if b.Aggregation == "" {
			return fmt.Errorf("measure %q has no aggregation", b.Column)
		}
	case KindDimension:
		if b.Aggregation != "" {
			return fmt.Errorf("dimension %q has aggregation %q", b.Column, b.Aggregation)
		}
	default:
		return fmt.Errorf("binding %q has unknown kind %q", b.Column, b.Kind)
	}
	return nil
}

// IsDate reports whether the binding's data type is a date or datetime.
func (b PhysicalBinding) IsDate() bool {
	switch strings.ToLower(b.DataType) {
	case "date", "datetime":
		return true
	}
	return false
}

// VisualLayout is screen geometry assigned by the layout planner.
type VisualLayout struct {
	X        int `json:"x"`
	Y        int `json:"y"`
	Width    int `json:"width"`
	Height   int `json:"height"`
	TabOrder int `json:"tabOrder"`
}

// BoundVisual is a fully resolved, physically bound visual description.
// Layout is nil until the layout planner runs; it is assigned exactly once.
type BoundVisual struct {
	Name     string            `json:"visual_name"`
	Kind     VisualKind        `json:"visual_type"`
	Title    string            `json:"title"`
	Bindings []PhysicalBinding `json:"bindings"`
	TopN     *int              `json:"top_n,omitempty"`
	Layout   *VisualLayout     `json:"layout,omitempty"`
	// VariationTable names the date table backing a date slicer's column.
	VariationTable string `json:"variation_table,omitempty"`
}

// Dimensions returns the dimension bindings in order.
func (v *BoundVisual) Dimensions() []PhysicalBinding {
	var dims []PhysicalBinding
	for _, b := range v.Bindings {
		if b.Kind == KindDimension {
			dims = append(dims, b)
		}
	}
	return dims
}

// Measures returns the measure bindings in order.
func (v *BoundVisual) Measures() []PhysicalBinding {
	var measures []PhysicalBinding
	for _, b := range v.Bindings {
		if b.Kind == KindMeasure {
			measures = append(measures, b)
		}
	}
	return measures
}
