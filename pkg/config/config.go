package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for dashforge.
// Configuration can come from a YAML file (config.yaml) or environment
// variables; environment variables always override YAML values.
// Secrets (API keys) must only come from environment variables.
type Config struct {
	// Env is the runtime environment name, used to pick the log profile.
	Env string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`

	// ModelPath is the semantic model's table-definition directory
	// (the folder holding the .tmdl files).
	ModelPath string `yaml:"model_path" env:"MODEL_PATH" env-default:""`

	// ReportPath is the report's visuals directory. Its contents are
	// fully cleared and rewritten on every turn.
	ReportPath string `yaml:"report_path" env:"REPORT_PATH" env-default:""`

	Resolver   ResolverConfig   `yaml:"resolver"`
	Planner    PlannerConfig    `yaml:"planner"`
	Vocabulary VocabularyConfig `yaml:"vocabulary"`
}

// ResolverConfig holds the concept resolver's tuning constants.
// Both values are empirically chosen; they are configurable rather than
// hard-coded so deployments can tighten or loosen matching.
type ResolverConfig struct {
	// AcceptThreshold is the minimum candidate score for a successful
	// resolution. Below it the concept hard-fails.
	AcceptThreshold float64 `yaml:"accept_threshold" env:"RESOLVER_ACCEPT_THRESHOLD" env-default:"0.45"`

	// ContainmentBonus is added when one normalized string contains the other.
	ContainmentBonus float64 `yaml:"containment_bonus" env:"RESOLVER_CONTAINMENT_BONUS" env-default:"0.25"`
}

// PlannerConfig holds the natural-language planning service endpoint.
type PlannerConfig struct {
	// Provider selects the client implementation: "openai" (any
	// OpenAI-compatible endpoint) or "anthropic".
	Provider string `yaml:"provider" env:"PLANNER_PROVIDER" env-default:"openai"`

	// Endpoint is the base URL for OpenAI-compatible providers.
	Endpoint string `yaml:"endpoint" env:"PLANNER_ENDPOINT" env-default:"https://api.openai.com/v1"`

	// Model is the model name used for planning calls.
	Model string `yaml:"model" env:"PLANNER_MODEL" env-default:"gpt-4o-mini"`

	// APIKey is the provider credential. Secret - not in YAML.
	APIKey string `yaml:"-" env:"PLANNER_API_KEY"`

	Temperature float64 `yaml:"temperature" env:"PLANNER_TEMPERATURE" env-default:"0.2"`
}

// VocabularyConfig controls linguistic index construction.
type VocabularyConfig struct {
	// SynonymsPath points to an optional YAML synonym table merged over
	// the built-in defaults.
	SynonymsPath string `yaml:"synonyms_path" env:"VOCABULARY_SYNONYMS_PATH" env-default:""`

	// UseLLMExpansion enables the LLM term-expansion collaborator.
	// Expansion failures always fall back to deterministic terms.
	UseLLMExpansion bool `yaml:"use_llm_expansion" env:"VOCABULARY_USE_LLM_EXPANSION" env-default:"false"`
}

// Load reads configuration from config.yaml with environment variable
// overrides. A missing config.yaml is not an error; the environment
// alone is used in that case.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("read environment: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.ModelPath == "" {
		return fmt.Errorf("model_path is required")
	}
	if c.ReportPath == "" {
		// Default next to the model: <model root>/../Report/.../visuals.
		c.ReportPath = filepath.Join(filepath.Dir(c.ModelPath), "Report", "definition", "pages", "page-1", "visuals")
	}
	if c.Resolver.AcceptThreshold <= 0 || c.Resolver.AcceptThreshold > 1 {
		return fmt.Errorf("resolver accept_threshold must be in (0, 1], got %v", c.Resolver.AcceptThreshold)
	}
	if c.Resolver.ContainmentBonus < 0 {
		return fmt.Errorf("resolver containment_bonus must not be negative, got %v", c.Resolver.ContainmentBonus)
	}
	return nil
}
