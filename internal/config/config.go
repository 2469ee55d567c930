package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix for environment overrides. A double underscore
// separates nested keys: REGAUDIT_SERVER__PORT sets server.port.
const EnvPrefix = "REGAUDIT_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (REGAUDIT_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if cfg.Model == "" {
		cfg.Model = DefaultModel(cfg.Provider)
	}
	if cfg.EmbeddingProvider != "" && cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = DefaultEmbeddingModel(cfg.EmbeddingProvider)
	}

	return cfg, nil
}

// envKey maps REGAUDIT_ANALYSIS__MAX_CHUNKS to analysis.max_chunks.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validProviders = map[ProviderType]bool{
	ProviderOpenAI:     true,
	ProviderAnthropic:  true,
	ProviderOllama:     true,
	ProviderOpenRouter: true,
	ProviderWatsonx:    true,
}

var validEmbeddingProviders = map[ProviderType]bool{
	ProviderOpenAI: true,
	ProviderOllama: true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Provider == "" {
		return errors.New("provider is required")
	}
	if !validProviders[c.Provider] {
		return fmt.Errorf("invalid provider %q: must be one of openai, anthropic, ollama, openrouter, watsonx", c.Provider)
	}
	if c.Model == "" {
		return errors.New("model is required")
	}
	if c.EmbeddingProvider != "" && !validEmbeddingProviders[c.EmbeddingProvider] {
		return fmt.Errorf("invalid embedding_provider %q: must be openai or ollama", c.EmbeddingProvider)
	}
	if c.DataDir == "" {
		return errors.New("data_dir is required")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.UploadDir == "" {
		return errors.New("server.upload_dir is required")
	}
	if c.Server.MaxUploadMB <= 0 {
		return errors.New("server.max_upload_mb must be positive")
	}
	if c.Server.RequestTimeoutSeconds < 0 {
		return errors.New("server.request_timeout_seconds must be non-negative")
	}

	if c.Chunking.ChunkSize <= 0 {
		return errors.New("chunking.chunk_size must be positive")
	}
	if c.Chunking.ChunkOverlap < 0 || c.Chunking.ChunkOverlap >= c.Chunking.ChunkSize {
		return fmt.Errorf("chunking.chunk_overlap must be in [0, %d)", c.Chunking.ChunkSize)
	}
	if c.Chunking.MaxFileMB < 0 {
		return errors.New("chunking.max_file_mb must be non-negative")
	}

	a := c.Analysis
	switch {
	case a.MaxChunks <= 0:
		return errors.New("analysis.max_chunks must be positive")
	case a.MaxTokens < 0:
		return errors.New("analysis.max_tokens must be non-negative")
	case a.Temperature < 0 || a.Temperature > 2:
		return errors.New("analysis.temperature must be between 0 and 2")
	case a.TimeoutSeconds < 0:
		return errors.New("analysis.timeout_seconds must be non-negative")
	case a.RateLimitRPM < 0:
		return errors.New("analysis.rate_limit_rpm must be non-negative")
	case a.MaxRetries < 0:
		return errors.New("analysis.max_retries must be non-negative")
	case a.AgentMaxIterations <= 0:
		return errors.New("analysis.agent_max_iterations must be positive")
	}

	return nil
}

// APIKeyEnvVar returns the conventional environment variable name for
// the API key of the given provider.
func APIKeyEnvVar(provider ProviderType) string {
	switch provider {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case ProviderOpenRouter:
		return "OPENROUTER_API_KEY"
	case ProviderWatsonx:
		return "WATSONX_APIKEY"
	default:
		return ""
	}
}
