package embedding

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// OpenAIProvider embeds through langchaingo's OpenAI client (text-embedding-3-small by default).
type OpenAIProvider struct {
	embedder embeddings.Embedder
}

func NewOpenAIProvider(apiKey, model, baseURL string) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key required")
	}
	if model == "" {
		model = "text-embedding-3-small"
	}

	opts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithEmbeddingModel(model),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create openai client: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(client)
	if err != nil {
		return nil, fmt.Errorf("create openai embedder: %w", err)
	}
	return NewWithEmbedder(embedder), nil
}

func NewWithEmbedder(e embeddings.Embedder) *OpenAIProvider {
	return &OpenAIProvider{embedder: e}
}

func (p *OpenAIProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	var (
		vec []float32
		err error
	)
	if taskType == TaskRetrievalQuery {
		vec, err = p.embedder.EmbedQuery(ctx, text)
	} else {
		var vectors [][]float32
		vectors, err = p.embedder.EmbedDocuments(ctx, []string{text})
		if err == nil {
			if len(vectors) == 0 {
				return nil, fmt.Errorf("no embedding returned")
			}
			vec = vectors[0]
		}
	}
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}

	return &EmbeddingResponse{
		Embedding: EmbeddingResponseEmbedding{Values: normalizeVector(vec)},
	}, nil
}
