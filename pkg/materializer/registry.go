package materializer

import (
	"github.com/dashforge-ai/dashforge/pkg/models"
)

// kindSpec maps a visual kind to its wire type name and role keys.
type kindSpec struct {
	wireType string
	// dimensionRole and measureRole are the queryState keys for the two
	// binding kinds. An empty role means bindings of that kind are not
	// projected for this visual.
	dimensionRole string
	measureRole   string
	// hasQuery is false for visuals with no query state at all.
	hasQuery bool
}

// kindRegistry is the closed registry over every visual kind the
// materializer can emit. Keeping it exhaustive here means an unknown kind
// is a programming error caught at materialization time, not a silently
// empty document.
var kindRegistry = map[models.VisualKind]kindSpec{
	models.KindTable:      {wireType: "tableEx", dimensionRole: "Values", measureRole: "Values", hasQuery: true},
	models.KindBar:        {wireType: "clusteredBarChart", dimensionRole: "Category", measureRole: "Y", hasQuery: true},
	models.KindColumn:     {wireType: "clusteredColumnChart", dimensionRole: "Category", measureRole: "Y", hasQuery: true},
	models.KindLine:       {wireType: "lineChart", dimensionRole: "Category", measureRole: "Y", hasQuery: true},
	models.KindPie:        {wireType: "pieChart", dimensionRole: "Category", measureRole: "Y", hasQuery: true},
	models.KindCard:       {wireType: "card", dimensionRole: "", measureRole: "Data", hasQuery: true},
	models.KindDateSlicer: {wireType: "slicer", dimensionRole: "Values", measureRole: "Values", hasQuery: true},
	models.KindTextbox:    {wireType: "textbox", hasQuery: false},
}
