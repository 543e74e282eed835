// Package openai adapts langchaingo's OpenAI client to llm.LLMProvider.
package openai

import (
	"context"
	"fmt"
	"strings"

	"rag-chatbot-be/pkg/llm"

	"github.com/tmc/langchaingo/llms"
	lcopenai "github.com/tmc/langchaingo/llms/openai"
)

type OpenAIProvider struct {
	model     llms.Model
	modelName string
}

var _ llm.LLMProvider = &OpenAIProvider{}

func NewOpenAIProvider(apiKey, modelName, baseURL string) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key required")
	}

	opts := []lcopenai.Option{
		lcopenai.WithToken(apiKey),
		lcopenai.WithModel(modelName),
	}
	if baseURL != "" {
		opts = append(opts, lcopenai.WithBaseURL(baseURL))
	}

	model, err := lcopenai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create openai model: %w", err)
	}
	return NewWithModel(model, modelName), nil
}

// NewWithModel wraps an already constructed langchaingo model.
func NewWithModel(model llms.Model, modelName string) *OpenAIProvider {
	return &OpenAIProvider{model: model, modelName: modelName}
}

func toMessageContent(history []llm.Message) []llms.MessageContent {
	out := make([]llms.MessageContent, 0, len(history))
	for _, msg := range history {
		var role llms.ChatMessageType
		switch msg.Role {
		case "system":
			role = llms.ChatMessageTypeSystem
		case "assistant", "model":
			role = llms.ChatMessageTypeAI
		default:
			role = llms.ChatMessageTypeHuman
		}
		out = append(out, llms.TextParts(role, msg.Content))
	}
	return out
}

func (p *OpenAIProvider) callOptions(opts []llm.Option) []llms.CallOption {
	options := llm.ApplyOptions(llm.Options{Temperature: 0.7}, opts...)

	callOpts := []llms.CallOption{llms.WithTemperature(options.Temperature)}
	if options.Model != "" {
		callOpts = append(callOpts, llms.WithModel(options.Model))
	}
	if options.MaxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(options.MaxTokens))
	}
	if options.JSONMode {
		callOpts = append(callOpts, llms.WithJSONMode())
	}
	return callOpts
}

func (p *OpenAIProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	resp, err := p.model.GenerateContent(ctx, toMessageContent(history), p.callOptions(opts)...)
	if err != nil {
		return "", fmt.Errorf("openai chat: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices")
	}
	return resp.Choices[0].Content, nil
}

func (p *OpenAIProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

func (p *OpenAIProvider) Stream(ctx context.Context, history []llm.Message, onChunk llm.ChunkHandler, opts ...llm.Option) (string, error) {
	var full strings.Builder
	callOpts := append(p.callOptions(opts), llms.WithStreamingFunc(func(_ context.Context, chunk []byte) error {
		full.Write(chunk)
		if onChunk == nil {
			return nil
		}
		return onChunk(string(chunk))
	}))

	if _, err := p.model.GenerateContent(ctx, toMessageContent(history), callOpts...); err != nil {
		return full.String(), fmt.Errorf("openai stream: %w", err)
	}
	return full.String(), nil
}
