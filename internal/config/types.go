package config

// ProviderType identifies a model backend.
type ProviderType string

const (
	ProviderOpenAI     ProviderType = "openai"
	ProviderAnthropic  ProviderType = "anthropic"
	ProviderOllama     ProviderType = "ollama"
	ProviderOpenRouter ProviderType = "openrouter"
	ProviderWatsonx    ProviderType = "watsonx"
)

// Config is the top-level regaudit configuration, corresponding to .regaudit.yml.
type Config struct {
	Provider          ProviderType   `yaml:"provider" koanf:"provider"`
	Model             string         `yaml:"model" koanf:"model"`
	BaseURL           string         `yaml:"base_url" koanf:"base_url"`
	EmbeddingProvider ProviderType   `yaml:"embedding_provider" koanf:"embedding_provider"`
	EmbeddingModel    string         `yaml:"embedding_model" koanf:"embedding_model"`
	DataDir           string         `yaml:"data_dir" koanf:"data_dir"`
	Include           []string       `yaml:"include" koanf:"include"`
	Exclude           []string       `yaml:"exclude" koanf:"exclude"`
	Server            ServerConfig   `yaml:"server" koanf:"server"`
	Chunking          ChunkingConfig `yaml:"chunking" koanf:"chunking"`
	Analysis          AnalysisConfig `yaml:"analysis" koanf:"analysis"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Port                  int    `yaml:"port" koanf:"port"`
	UploadDir             string `yaml:"upload_dir" koanf:"upload_dir"`
	MaxUploadMB           int    `yaml:"max_upload_mb" koanf:"max_upload_mb"`
	CORSAllowAll          bool   `yaml:"cors_allow_all" koanf:"cors_allow_all"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds" koanf:"request_timeout_seconds"`
}

// ChunkingConfig controls how documents are split before analysis.
type ChunkingConfig struct {
	ChunkSize    int    `yaml:"chunk_size" koanf:"chunk_size"`
	ChunkOverlap int    `yaml:"chunk_overlap" koanf:"chunk_overlap"`
	Encoding     string `yaml:"encoding" koanf:"encoding"`
	MaxFileMB    int    `yaml:"max_file_mb" koanf:"max_file_mb"`
}

// AnalysisConfig controls model calls made during analysis and reporting.
type AnalysisConfig struct {
	MaxChunks          int     `yaml:"max_chunks" koanf:"max_chunks"`
	MaxTokens          int     `yaml:"max_tokens" koanf:"max_tokens"`
	Temperature        float64 `yaml:"temperature" koanf:"temperature"`
	JSONMode           bool    `yaml:"json_mode" koanf:"json_mode"`
	TimeoutSeconds     int     `yaml:"timeout_seconds" koanf:"timeout_seconds"`
	RateLimitRPM       int     `yaml:"rate_limit_rpm" koanf:"rate_limit_rpm"`
	MaxRetries         int     `yaml:"max_retries" koanf:"max_retries"`
	AgentMaxIterations int     `yaml:"agent_max_iterations" koanf:"agent_max_iterations"`
}
