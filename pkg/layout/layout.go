// Package layout assigns non-overlapping screen geometry to bound visuals
// on a fixed canvas: a header band, a KPI card stack, then a content grid.
package layout

import (
	"go.uber.org/zap"

	"github.com/dashforge-ai/dashforge/pkg/models"
)

// Config holds the canvas geometry constants.
type Config struct {
	CanvasWidth  int
	CanvasHeight int
	Padding      int
	HeaderHeight int
	CardHeight   int
}

// DefaultConfig returns the standard 1280x720 canvas.
func DefaultConfig() Config {
	return Config{
		CanvasWidth:  1280,
		CanvasHeight: 720,
		Padding:      20,
		HeaderHeight: 50,
		CardHeight:   110,
	}
}

// headerY pins the title band near the top edge, above the padded region.
const headerY = 10

// Planner assigns position, size and tab order deterministically.
// The algorithm is total: any input list, including an empty one, yields
// a valid layout (header-only in the empty case).
type Planner struct {
	cfg    Config
	logger *zap.Logger
}

// New creates a Planner.
func New(cfg Config, logger *zap.Logger) *Planner {
	return &Planner{cfg: cfg, logger: logger.Named("layout")}
}

// PlanLayout assigns layout to every visual and prepends a synthetic
// header textbox carrying the dashboard title at tab order 0. Cards stack
// full-width below the header; everything else fills a grid below the
// card stack. Relative order within each partition is preserved.
//
// The vertical space below the header is divided across all stacked rows
// (card rows plus grid rows), so cards shrink below their standard height
// rather than push any rectangle past the canvas edge. The row heights
// never sum past the content band, whatever the input list.
func (p *Planner) PlanLayout(visuals []*models.BoundVisual, dashboardTitle string) []*models.BoundVisual {
	header := &models.BoundVisual{
		Name:  "dashboard_header",
		Kind:  models.KindTextbox,
		Title: dashboardTitle,
		Layout: &models.VisualLayout{
			X:        p.cfg.Padding,
			Y:        headerY,
			Width:    p.cfg.CanvasWidth - 2*p.cfg.Padding,
			Height:   p.cfg.HeaderHeight,
			TabOrder: 0,
		},
	}

	var cards, others []*models.BoundVisual
	for _, v := range visuals {
		if v.Kind == models.KindCard {
			cards = append(cards, v)
		} else {
			others = append(others, v)
		}
	}

	placed := []*models.BoundVisual{header}

	cols := 1
	if len(others) > 1 {
		cols = 2
	}
	gridRows := (len(others) + cols - 1) / cols
	rows := len(cards) + gridRows
	if rows == 0 {
		return placed
	}

	contentTop := headerY + p.cfg.HeaderHeight + p.cfg.Padding
	contentHeight := p.cfg.CanvasHeight - contentTop - p.cfg.Padding

	// Shrink the row gap when the standard padding alone would not leave
	// every row at least one pixel.
	gap := p.cfg.Padding
	if rows > 1 && (rows-1)*gap > contentHeight-rows {
		gap = (contentHeight - rows) / (rows - 1)
		if gap < 0 {
			gap = 0
		}
	}

	usable := contentHeight - (rows-1)*gap
	fair := usable / rows

	// Cards keep their standard height while it fits the fair share.
	cardHeight := p.cfg.CardHeight
	if cardHeight > fair {
		cardHeight = fair
	}
	if cardHeight < 1 {
		cardHeight = 1
	}

	availWidth := p.cfg.CanvasWidth - 2*p.cfg.Padding
	currentY := contentTop
	tabOrder := 1

	for _, card := range cards {
		card.Layout = &models.VisualLayout{
			X:        p.cfg.Padding,
			Y:        currentY,
			Width:    availWidth,
			Height:   cardHeight,
			TabOrder: tabOrder,
		}
		placed = append(placed, card)
		currentY += cardHeight + gap
		tabOrder++
	}

	// Content grid gets whatever the card stack left of the band.
	if gridRows > 0 {
		cellWidth := (availWidth - (cols-1)*p.cfg.Padding) / cols
		cellHeight := (usable - len(cards)*cardHeight) / gridRows
		if cellHeight < 1 {
			cellHeight = 1
		}

		for i, v := range others {
			row := i / cols
			col := i % cols
			v.Layout = &models.VisualLayout{
				X:        p.cfg.Padding + col*(cellWidth+p.cfg.Padding),
				Y:        currentY + row*(cellHeight+gap),
				Width:    cellWidth,
				Height:   cellHeight,
				TabOrder: tabOrder,
			}
			placed = append(placed, v)
			tabOrder++
		}
	}

	p.logger.Debug("layout planned",
		zap.String("title", dashboardTitle),
		zap.Int("cards", len(cards)),
		zap.Int("grid", len(others)))
	return placed
}
