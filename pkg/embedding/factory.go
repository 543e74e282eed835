package embedding

import "fmt"

func NewProvider(provider, model, ollamaBaseURL, openAIKey, openAIBaseURL string) (EmbeddingProvider, error) {
	switch provider {
	case "ollama":
		return NewOllamaProvider(ollamaBaseURL, model), nil
	case "openai":
		return NewOpenAIProvider(openAIKey, model, openAIBaseURL)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", provider)
	}
}
