package embeddings

import (
	"fmt"
	"os"
	"strings"
)

// Supported embedding providers.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// nomicDimensions is the vector size of nomic-embed-text, the default
// Ollama embedding model.
const nomicDimensions = 768

// New builds the embedder named by provider. An empty provider disables
// semantic search and returns (nil, nil).
func New(provider, model, baseURL string) (Embedder, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "":
		return nil, nil
	case ProviderOpenAI:
		key := os.Getenv("OPENAI_API_KEY")
		if key == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is not set")
		}
		if model == "" {
			model = string(ModelTextEmbedding3Small)
		}
		return NewOpenAIEmbedder(key, OpenAIModel(model), baseURL), nil
	case ProviderOllama:
		if model == "" {
			model = "nomic-embed-text"
		}
		if baseURL == "" {
			baseURL = os.Getenv("OLLAMA_HOST")
		}
		return NewOllamaEmbedder(model, nomicDimensions, baseURL), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", provider)
	}
}
