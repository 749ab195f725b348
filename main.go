package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/dashforge-ai/dashforge/pkg/binder"
	"github.com/dashforge-ai/dashforge/pkg/config"
	"github.com/dashforge-ai/dashforge/pkg/layout"
	"github.com/dashforge-ai/dashforge/pkg/llm"
	"github.com/dashforge-ai/dashforge/pkg/materializer"
	"github.com/dashforge-ai/dashforge/pkg/planner"
	"github.com/dashforge-ai/dashforge/pkg/resolver"
	"github.com/dashforge-ai/dashforge/pkg/session"
	"github.com/dashforge-ai/dashforge/pkg/tmdl"
	"github.com/dashforge-ai/dashforge/pkg/vocabulary"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	logger.Info("starting dashforge",
		zap.String("version", Version),
		zap.String("env", cfg.Env),
		zap.String("model_path", cfg.ModelPath),
		zap.String("report_path", cfg.ReportPath))

	if err := run(cfg, logger); err != nil {
		logger.Fatal("session failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx := context.Background()

	catalog, err := tmdl.NewParser(logger).LoadModel(cfg.ModelPath)
	if err != nil {
		return fmt.Errorf("load semantic model: %w", err)
	}

	client, err := llm.New(&llm.Config{
		Provider: cfg.Planner.Provider,
		Endpoint: cfg.Planner.Endpoint,
		Model:    cfg.Planner.Model,
		APIKey:   cfg.Planner.APIKey,
	}, logger)
	if err != nil {
		return fmt.Errorf("create llm client: %w", err)
	}
	usage := llm.NewUsageCounter()

	synonyms, err := vocabulary.LoadSynonyms(cfg.Vocabulary.SynonymsPath)
	if err != nil {
		return fmt.Errorf("load synonyms: %w", err)
	}

	var expander vocabulary.TermExpander
	if cfg.Vocabulary.UseLLMExpansion {
		expander = vocabulary.NewLLMExpander(client, usage, logger)
	}

	vocab, err := vocabulary.NewBuilder(synonyms, expander, logger).Build(ctx, catalog)
	if err != nil {
		return fmt.Errorf("build vocabulary: %w", err)
	}

	res := resolver.New(vocab, resolver.Config{
		AcceptThreshold:  cfg.Resolver.AcceptThreshold,
		ContainmentBonus: cfg.Resolver.ContainmentBonus,
	}, logger)

	sess := session.New(session.Config{
		Catalog:      catalog,
		Vocabulary:   vocab,
		Planner:      planner.New(client, usage, cfg.Planner.Temperature, logger),
		Binder:       binder.New(res, logger),
		Layout:       layout.New(layout.DefaultConfig(), logger),
		Materializer: materializer.New(logger),
		OutputDir:    cfg.ReportPath,
	}, logger)

	return repl(ctx, sess, logger)
}

// repl reads user queries from stdin until EOF or an exit command.
func repl(ctx context.Context, sess *session.Session, logger *zap.Logger) error {
	fmt.Println("Conversational mode. Type your query; 'exit' or 'quit' to stop.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("User> ")
		if !scanner.Scan() {
			break
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		if strings.EqualFold(query, "exit") || strings.EqualFold(query, "quit") {
			break
		}

		result, err := sess.Turn(ctx, query)
		if err != nil {
			logger.Error("turn failed", zap.Error(err))
			fmt.Println("Could not update the dashboard; see the log for details.")
			continue
		}
		fmt.Printf("Dashboard %q updated with %d visuals.\n", result.Title, result.Produced)
	}
	return scanner.Err()
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
