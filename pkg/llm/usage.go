package llm

// Usage is the token accounting for one completed LLM call.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// UsageTracker accumulates LLM usage across a session. Callers that do not
// care about usage accounting supply NopTracker. Implementations are not
// required to be safe for concurrent use; turns are serialized by the caller.
type UsageTracker interface {
	// Reset clears all accumulated counts.
	Reset()

	// Record adds one call's usage to the running totals.
	Record(u Usage)
}

// UsageSummary is a point-in-time snapshot of accumulated usage.
type UsageSummary struct {
	Calls            int `json:"calls"`
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// UsageCounter is the standard UsageTracker implementation.
type UsageCounter struct {
	summary UsageSummary
}

// NewUsageCounter creates an empty counter.
func NewUsageCounter() *UsageCounter {
	return &UsageCounter{}
}

// Reset implements UsageTracker.
func (c *UsageCounter) Reset() {
	c.summary = UsageSummary{}
}

// Record implements UsageTracker.
func (c *UsageCounter) Record(u Usage) {
	c.summary.Calls++
	c.summary.PromptTokens += u.PromptTokens
	c.summary.CompletionTokens += u.CompletionTokens
	c.summary.TotalTokens += u.TotalTokens
}

// Summary returns the accumulated usage.
func (c *UsageCounter) Summary() UsageSummary {
	return c.summary
}

// NopTracker discards all usage.
type NopTracker struct{}

// Reset implements UsageTracker.
func (NopTracker) Reset() {}

// Record implements UsageTracker.
func (NopTracker) Record(Usage) {}

var (
	_ UsageTracker = (*UsageCounter)(nil)
	_ UsageTracker = NopTracker{}
)
