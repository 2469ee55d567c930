package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/ziadkadry99/regaudit/internal/audit"
	"github.com/ziadkadry99/regaudit/internal/config"
	"github.com/ziadkadry99/regaudit/internal/db"
	"github.com/ziadkadry99/regaudit/internal/document"
	"github.com/ziadkadry99/regaudit/internal/embeddings"
	"github.com/ziadkadry99/regaudit/internal/llm"
	"github.com/ziadkadry99/regaudit/internal/metrics"
	"github.com/ziadkadry99/regaudit/internal/vectordb"
	"github.com/ziadkadry99/regaudit/internal/workflow"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `regaudit init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// buildProvider creates the model provider with the configured rate limit
// and retry policy layered on top.
func buildProvider(cfg *config.Config, logger *slog.Logger) (llm.Provider, error) {
	provider, err := llm.NewProvider(string(cfg.Provider), cfg.Model, cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("creating LLM provider: %w", err)
	}
	if cfg.Analysis.RateLimitRPM > 0 {
		provider = llm.NewRateLimitedProvider(provider, cfg.Analysis.RateLimitRPM)
	}
	if cfg.Analysis.MaxRetries > 0 {
		provider = llm.NewRetryingProvider(provider, llm.DefaultRetryPolicy(cfg.Analysis.MaxRetries), logger)
	}
	return provider, nil
}

func buildChunker(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) *document.Chunker {
	opts := document.DefaultOptions()
	opts.ChunkSize = cfg.Chunking.ChunkSize
	opts.ChunkOverlap = cfg.Chunking.ChunkOverlap
	opts.Encoding = cfg.Chunking.Encoding
	if cfg.Chunking.MaxFileMB > 0 {
		opts.MaxFileBytes = int64(cfg.Chunking.MaxFileMB) << 20
	}
	return document.NewChunker(opts, logger, m)
}

func buildOrchestrator(cfg *config.Config, provider llm.Provider, chunker workflow.Chunker, logger *slog.Logger) *workflow.Orchestrator {
	return workflow.New(provider, chunker, workflow.Options{
		Model:       cfg.Model,
		MaxChunks:   cfg.Analysis.MaxChunks,
		MaxTokens:   cfg.Analysis.MaxTokens,
		Temperature: cfg.Analysis.Temperature,
		JSONMode:    cfg.Analysis.JSONMode,
		Timeout:     time.Duration(cfg.Analysis.TimeoutSeconds) * time.Second,
	}, logger)
}

// buildIndex returns nil when no embedding provider is configured.
func buildIndex(cfg *config.Config, logger *slog.Logger) (vectordb.Index, error) {
	embedder, err := embeddings.New(string(cfg.EmbeddingProvider), cfg.EmbeddingModel, "")
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}
	if embedder == nil {
		return nil, nil
	}
	return vectordb.NewChromemIndex(embedder, logger), nil
}

func openAudit(cfg *config.Config) (*db.DB, *audit.Store, error) {
	database, err := db.Open(filepath.Join(cfg.DataDir, db.FileName))
	if err != nil {
		return nil, nil, fmt.Errorf("opening audit database: %w", err)
	}
	return database, audit.NewStore(database), nil
}
