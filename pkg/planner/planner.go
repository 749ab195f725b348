// Package planner turns a natural-language request into abstract visual
// intents. The planner sees concept terms only; physical table and
// column names never reach the model.
package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/dashforge-ai/dashforge/pkg/llm"
	"github.com/dashforge-ai/dashforge/pkg/models"
)

const systemPrompt = "You are a BI dashboard architect. You plan report visuals " +
	"from business concepts and respond with JSON only."

const defaultTemperature = 0.2

const promptTemplate = `Analyze the user query and plan the dashboard visuals using ONLY the provided concepts.

User Query: %q
Available Concepts: %s
%s
### VISUAL SELECTION RULES:
1. **Single Value / KPI**: If the user asks for a single aggregate (e.g. "total sales", "count of orders"), use "card".
2. **Comparison**: If comparing a measure across categories (e.g. "sales by region"), use "bar" or "column".
3. **Trend**: If analyzing over time (e.g. "sales over time", "monthly revenue"), use "line".
4. **Distribution**: If asking for parts of a whole (e.g. "sales share by category"), use "pie".
5. **Detailed List**: If asking for raw data or multiple columns without aggregation (e.g. "list products and prices"), use "table".
6. **Top N**: If a ranking is implied (e.g. "top 5 products"), use "bar" and set "top_n".

Return a JSON object with a "dashboard_title" string and a "charts" array.
Each chart must follow this schema:
{
  "title": "Title",
  "visual_type": "table | bar | column | line | pie | card",
  "concepts": ["concept1", "concept2"],
  "top_n": null
}`

const refinementTemplate = `
The dashboard currently contains these visuals:
%s
Treat the user query as a refinement: keep visuals the user did not ask to
change, and return the COMPLETE updated dashboard, not just the delta.
`

// planResponse is the model's reply shape.
type planResponse struct {
	DashboardTitle string                `json:"dashboard_title"`
	Charts         []models.VisualIntent `json:"charts"`
}

// Planner plans visual intents through an LLM.
type Planner struct {
	client      llm.Client
	usage       llm.UsageTracker
	temperature float64
	logger      *zap.Logger
}

// New creates a Planner. A non-positive temperature selects the default.
func New(client llm.Client, usage llm.UsageTracker, temperature float64, logger *zap.Logger) *Planner {
	if usage == nil {
		usage = llm.NopTracker{}
	}
	if temperature <= 0 {
		temperature = defaultTemperature
	}
	return &Planner{client: client, usage: usage, temperature: temperature, logger: logger.Named("planner")}
}

// PlanVisuals plans the dashboard for one user query. currentIntents is
// the dashboard's existing abstract state; when non-empty the model is
// asked to refine it rather than plan from scratch. A malformed model
// reply yields zero intents and the fallback title, never an error from
// parsing alone.
func (p *Planner) PlanVisuals(ctx context.Context, query string, conceptTerms []string, currentIntents []models.VisualIntent) (string, []models.VisualIntent, error) {
	prompt := p.buildPrompt(query, conceptTerms, currentIntents)

	result, err := p.client.Complete(ctx, prompt, systemPrompt, p.temperature)
	if err != nil {
		return "", nil, fmt.Errorf("plan visuals: %w", err)
	}
	p.usage.Record(result.Usage())

	parsed, err := llm.ParseJSONResponse[planResponse](result.Content)
	if err != nil {
		p.logger.Warn("unparseable planner response", zap.Error(err))
		return defaultTitle, nil, nil
	}

	title := strings.TrimSpace(parsed.DashboardTitle)
	if title == "" {
		title = defaultTitle
	}

	intents := make([]models.VisualIntent, 0, len(parsed.Charts))
	for i, intent := range parsed.Charts {
		if err := intent.Validate(); err != nil {
			p.logger.Warn("dropping invalid visual intent",
				zap.Int("index", i),
				zap.String("title", intent.Title),
				zap.Error(err))
			continue
		}
		intents = append(intents, intent)
	}

	p.logger.Info("visuals planned",
		zap.String("title", title),
		zap.Int("requested", len(parsed.Charts)),
		zap.Int("accepted", len(intents)))
	return title, intents, nil
}

const defaultTitle = "Dashboard"

func (p *Planner) buildPrompt(query string, conceptTerms []string, currentIntents []models.VisualIntent) string {
	concepts, err := json.Marshal(conceptTerms)
	if err != nil {
		concepts = []byte("[]")
	}

	refinement := ""
	if len(currentIntents) > 0 {
		state, err := json.MarshalIndent(currentIntents, "", "  ")
		if err == nil {
			refinement = fmt.Sprintf(refinementTemplate, state)
		}
	}

	return fmt.Sprintf(promptTemplate, query, concepts, refinement)
}
