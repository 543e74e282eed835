// Package answer produces retrieval-grounded answers over the document corpus.
package answer

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"rag-chatbot-be/internal/constant"
	"rag-chatbot-be/internal/entity"
	"rag-chatbot-be/internal/pkg/apperror"
	"rag-chatbot-be/internal/pkg/logger"
	"rag-chatbot-be/pkg/embedding"
	"rag-chatbot-be/pkg/llm"
)

const (
	minAnswerRunes = 15
	// holdWindow is how much of a streamed grounded answer is buffered before
	// the fallback decision is made.
	holdWindow = 200
)

type ChunkSearcher interface {
	SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]*entity.DocumentChunk, error)
}

type Answerer struct {
	llm      llm.LLMProvider
	embedder embedding.EmbeddingProvider
	searcher ChunkSearcher
	topK     int
	logger   logger.ILogger
}

func NewAnswerer(provider llm.LLMProvider, embedder embedding.EmbeddingProvider, searcher ChunkSearcher, topK int, logger logger.ILogger) *Answerer {
	if topK <= 0 {
		topK = 3
	}
	return &Answerer{llm: provider, embedder: embedder, searcher: searcher, topK: topK, logger: logger}
}

// Answer returns the grounded answer for query, or a plain model answer when
// nothing relevant was retrieved or the grounded answer is unusable.
func (a *Answerer) Answer(ctx context.Context, query string, history []llm.Message) (string, error) {
	chunks, err := a.retrieve(ctx, query)
	if err != nil {
		return "", err
	}

	if len(chunks) > 0 {
		grounded, err := a.llm.Chat(ctx, a.groundedMessages(query, history, chunks), llm.WithTemperature(0.2))
		if err != nil {
			return "", apperror.Upstream("generate answer", err)
		}
		if !shouldFallback(grounded) {
			return strings.TrimSpace(grounded), nil
		}
		a.logger.Debug("Answerer", "Grounded answer unusable, falling back", map[string]interface{}{
			"answer": grounded,
		})
	}

	plain, err := a.llm.Chat(ctx, fallbackMessages(query, history))
	if err != nil {
		return "", apperror.Upstream("generate fallback answer", err)
	}
	return strings.TrimSpace(plain), nil
}

// Stream delivers the same final text as Answer. The first holdWindow runes of
// a grounded answer are held back until it is clear no fallback is needed.
func (a *Answerer) Stream(ctx context.Context, query string, history []llm.Message, onChunk llm.ChunkHandler) (string, error) {
	chunks, err := a.retrieve(ctx, query)
	if err != nil {
		return "", err
	}

	if len(chunks) > 0 {
		var held strings.Builder
		released := false

		full, err := a.llm.Stream(ctx, a.groundedMessages(query, history, chunks), func(fragment string) error {
			if released {
				return onChunk(fragment)
			}
			held.WriteString(fragment)
			if utf8.RuneCountInString(held.String()) < holdWindow || saysUnknown(held.String()) {
				return nil
			}
			released = true
			return onChunk(held.String())
		}, llm.WithTemperature(0.2))
		if err != nil {
			return "", apperror.Upstream("stream answer", err)
		}

		if released {
			return full, nil
		}
		if !shouldFallback(full) {
			if err := onChunk(held.String()); err != nil {
				return "", err
			}
			return full, nil
		}
		a.logger.Debug("Answerer", "Grounded answer unusable, falling back", map[string]interface{}{
			"answer": full,
		})
	}

	full, err := a.llm.Stream(ctx, fallbackMessages(query, history), onChunk)
	if err != nil {
		return "", apperror.Upstream("stream fallback answer", err)
	}
	return full, nil
}

func (a *Answerer) retrieve(ctx context.Context, query string) ([]*entity.DocumentChunk, error) {
	emb, err := a.embedder.Generate(ctx, query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, apperror.Upstream("embed query", err)
	}

	chunks, err := a.searcher.SearchSimilar(ctx, emb.Embedding.Values, a.topK)
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}

	a.logger.Debug("Answerer", "Retrieved chunks", map[string]interface{}{
		"query": query, "count": len(chunks),
	})
	return chunks, nil
}

func (a *Answerer) groundedMessages(query string, history []llm.Message, chunks []*entity.DocumentChunk) []llm.Message {
	var sb strings.Builder
	for i, c := range chunks {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(c.Content)
	}

	msgs := make([]llm.Message, 0, len(history)+2)
	msgs = append(msgs, llm.Message{Role: constant.ChatMessageRoleSystem, Content: constant.AnswerSystemPrompt})
	msgs = append(msgs, history...)
	msgs = append(msgs, llm.Message{
		Role:    constant.ChatMessageRoleUser,
		Content: fmt.Sprintf(constant.AnswerUserPrompt, sb.String(), query),
	})
	return msgs
}

func fallbackMessages(query string, history []llm.Message) []llm.Message {
	msgs := make([]llm.Message, 0, len(history)+2)
	msgs = append(msgs, llm.Message{Role: constant.ChatMessageRoleSystem, Content: constant.FallbackSystemPrompt})
	msgs = append(msgs, history...)
	return append(msgs, llm.Message{Role: constant.ChatMessageRoleUser, Content: query})
}

func shouldFallback(answer string) bool {
	answer = strings.TrimSpace(answer)
	return utf8.RuneCountInString(answer) < minAnswerRunes || saysUnknown(answer)
}

// saysUnknown reports whether the start of the answer admits not knowing.
func saysUnknown(answer string) bool {
	r := []rune(answer)
	if len(r) > holdWindow {
		r = r[:holdWindow]
	}
	s := strings.ReplaceAll(strings.ToLower(string(r)), "’", "'")
	return strings.Contains(s, "i don't know")
}
