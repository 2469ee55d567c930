package config

// DefaultFileName is the config file looked up in the working directory.
const DefaultFileName = ".regaudit.yml"

// providerModels maps each provider to the model used when none is configured.
var providerModels = map[ProviderType]string{
	ProviderOpenAI:     "gpt-4o-mini",
	ProviderAnthropic:  "claude-sonnet-4-5-20250929",
	ProviderOllama:     "llama3",
	ProviderOpenRouter: "openai/gpt-4o-mini",
	ProviderWatsonx:    "ibm/granite-3-8b-instruct",
}

// embeddingModels maps each embedding provider to its default model.
var embeddingModels = map[ProviderType]string{
	ProviderOpenAI: "text-embedding-3-small",
	ProviderOllama: "nomic-embed-text",
}

// DefaultIncludes are the document globs picked up when a directory is analyzed.
var DefaultIncludes = []string{"**/*.{pdf,docx,txt,md}"}

// DefaultExcludes are glob patterns never analyzed.
var DefaultExcludes = []string{
	".git/**",
	"node_modules/**",
	"vendor/**",
	".regaudit/**",
	"**/~$*",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderOpenAI,
		Model:    providerModels[ProviderOpenAI],
		DataDir:  ".regaudit",
		Include:  DefaultIncludes,
		Exclude:  DefaultExcludes,
		Server: ServerConfig{
			Port:                  5000,
			UploadDir:             "uploads",
			MaxUploadMB:           50,
			CORSAllowAll:          true,
			RequestTimeoutSeconds: 300,
		},
		Chunking: ChunkingConfig{
			ChunkSize:    300,
			ChunkOverlap: 50,
			MaxFileMB:    50,
		},
		Analysis: AnalysisConfig{
			MaxChunks:          50,
			MaxTokens:          4096,
			Temperature:        0.1,
			JSONMode:           true,
			TimeoutSeconds:     120,
			RateLimitRPM:       60,
			MaxRetries:         3,
			AgentMaxIterations: 5,
		},
	}
}

// DefaultModel returns the model used for provider when none is configured.
func DefaultModel(provider ProviderType) string {
	if m, ok := providerModels[provider]; ok {
		return m
	}
	return providerModels[ProviderOpenAI]
}

// DefaultEmbeddingModel returns the embedding model for provider, or "".
func DefaultEmbeddingModel(provider ProviderType) string {
	return embeddingModels[provider]
}
