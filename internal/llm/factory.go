package llm

import (
	"fmt"
	"os"
)

// NewProvider creates a model backend for the given provider type.
// Supported: "openai", "anthropic", "ollama", "openrouter", "watsonx".
// baseURL overrides the provider endpoint and is required for watsonx.
func NewProvider(providerType, model, baseURL string) (Provider, error) {
	switch providerType {
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
		}
		return NewOpenAICompatibleProvider("openai", apiKey, model, baseURL), nil

	case "openrouter":
		apiKey := os.Getenv("OPENROUTER_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENROUTER_API_KEY environment variable is not set")
		}
		if baseURL == "" {
			baseURL = openRouterBaseURL
		}
		return NewOpenAICompatibleProvider("openrouter", apiKey, model, baseURL), nil

	case "watsonx":
		apiKey := os.Getenv("WATSONX_APIKEY")
		if apiKey == "" {
			return nil, fmt.Errorf("WATSONX_APIKEY environment variable is not set")
		}
		if baseURL == "" {
			baseURL = os.Getenv("WATSONX_URL")
		}
		if baseURL == "" {
			return nil, fmt.Errorf("watsonx requires base_url or WATSONX_URL pointing at an OpenAI-compatible gateway")
		}
		return NewOpenAICompatibleProvider("watsonx", apiKey, model, baseURL), nil

	case "anthropic":
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable is not set")
		}
		return NewAnthropicProvider(apiKey, model, baseURL), nil

	case "ollama":
		host := baseURL
		if host == "" {
			host = os.Getenv("OLLAMA_HOST")
		}
		if host == "" {
			host = DefaultOllamaHost
		}
		return NewOllamaProvider(host, model), nil

	default:
		return nil, fmt.Errorf("unsupported provider type: %s", providerType)
	}
}
