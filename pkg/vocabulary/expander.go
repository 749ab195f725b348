package vocabulary

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/dashforge-ai/dashforge/pkg/llm"
)

const expanderSystemMessage = "You are a data semantics expert specializing in business intelligence."

const measureExpansionPrompt = `Generate relevant synonyms for a numeric measure field named: %q (data type: %s)

CRITICAL RULES FOR MEASURES:
1. Only include synonyms that represent QUANTITATIVE/NUMERIC concepts
2. Include business terms users might use when asking about this metric
3. Include aggregation terms (e.g., "total", "sum", "count", "amount")
4. DO NOT include non-numeric or categorical terms
5. Keep synonyms concise (1-3 words each)
6. Include 3-8 high-quality synonyms (quality over quantity)

Return ONLY a JSON object with this structure:
{"synonyms": ["synonym1", "synonym2"]}`

const dimensionExpansionPrompt = `Generate relevant synonyms for a categorical dimension field named: %q (data type: %s)

CRITICAL RULES FOR DIMENSIONS:
1. Only include synonyms that represent CATEGORICAL/DESCRIPTIVE concepts
2. Include natural language terms users might use to refer to this attribute
3. DO NOT include numeric, quantitative, or aggregation terms
4. Keep synonyms concise (1-3 words each)
5. Include 2-6 high-quality synonyms (quality over quantity)

Return ONLY a JSON object with this structure:
{"synonyms": ["synonym1", "synonym2"]}`

// expansionTemperature is kept low for consistent term sets.
const expansionTemperature = 0.3

// LLMExpander asks an LLM for contextually relevant synonyms. Prompts
// differ for measures and dimensions so numeric terms never leak onto
// categorical fields. Failures surface as errors; the vocabulary builder
// handles the deterministic fallback.
type LLMExpander struct {
	client llm.Client
	usage  llm.UsageTracker
	logger *zap.Logger
}

// NewLLMExpander creates an LLM-backed term expander.
func NewLLMExpander(client llm.Client, usage llm.UsageTracker, logger *zap.Logger) *LLMExpander {
	if usage == nil {
		usage = llm.NopTracker{}
	}
	return &LLMExpander{
		client: client,
		usage:  usage,
		logger: logger.Named("expander"),
	}
}

type synonymResponse struct {
	Synonyms []string `json:"synonyms"`
}

// ExpandTerms implements TermExpander.
func (e *LLMExpander) ExpandTerms(ctx context.Context, fieldName string, isMeasure bool, dataType string) ([]string, error) {
	template := dimensionExpansionPrompt
	if isMeasure {
		template = measureExpansionPrompt
	}
	prompt := fmt.Sprintf(template, fieldName, dataType)

	result, err := e.client.Complete(ctx, prompt, expanderSystemMessage, expansionTemperature)
	if err != nil {
		return nil, fmt.Errorf("expand terms for %q: %w", fieldName, err)
	}
	e.usage.Record(result.Usage())

	parsed, err := llm.ParseJSONResponse[synonymResponse](result.Content)
	if err != nil {
		return nil, fmt.Errorf("parse synonyms for %q: %w", fieldName, err)
	}
	if len(parsed.Synonyms) == 0 {
		return nil, fmt.Errorf("empty synonym list for %q", fieldName)
	}

	e.logger.Debug("terms expanded",
		zap.String("field", fieldName),
		zap.Bool("measure", isMeasure),
		zap.Int("count", len(parsed.Synonyms)))
	return parsed.Synonyms, nil
}

var _ TermExpander = (*LLMExpander)(nil)
