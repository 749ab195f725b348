package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("MODEL_PATH", "/models/Sales.SemanticModel/definition/tables")
	t.Setenv("PLANNER_API_KEY", "sk-test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "/models/Sales.SemanticModel/definition/tables", cfg.ModelPath)
	assert.Equal(t, "sk-test", cfg.Planner.APIKey)
	assert.Equal(t, "openai", cfg.Planner.Provider)
	assert.InDelta(t, 0.45, cfg.Resolver.AcceptThreshold, 1e-9)
	assert.InDelta(t, 0.25, cfg.Resolver.ContainmentBonus, 1e-9)
	assert.False(t, cfg.Vocabulary.UseLLMExpansion)
}

func TestLoadDefaultsReportPath(t *testing.T) {
	t.Setenv("MODEL_PATH", "/models/Sales.SemanticModel/tables")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/models/Sales.SemanticModel/Report/definition/pages/page-1/visuals", cfg.ReportPath)
}

func TestLoadRequiresModelPath(t *testing.T) {
	t.Setenv("MODEL_PATH", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model_path")
}

func TestLoadRejectsBadResolverConstants(t *testing.T) {
	t.Setenv("MODEL_PATH", "/models/tables")
	t.Setenv("RESOLVER_ACCEPT_THRESHOLD", "1.5")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accept_threshold")
}
