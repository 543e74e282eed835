package intent

import (
	"context"
	"fmt"

	"rag-chatbot-be/internal/pkg/logger"
	"rag-chatbot-be/pkg/llm"
)

// HybridClassifier trusts the keyword rules when they fire and asks the model otherwise.
type HybridClassifier struct {
	keyword *KeywordClassifier
	model   Classifier
}

var _ Classifier = (*HybridClassifier)(nil)

func NewHybridClassifier(keyword *KeywordClassifier, model Classifier) *HybridClassifier {
	return &HybridClassifier{keyword: keyword, model: model}
}

func (c *HybridClassifier) Classify(ctx context.Context, query string, history []llm.Message) Action {
	if a := c.keyword.Classify(ctx, query, history); a != ActionNone {
		return a
	}
	return c.model.Classify(ctx, query, history)
}

// New builds the classifier for mode. provider may be nil only in keyword mode.
func New(mode string, provider llm.LLMProvider, log logger.ILogger) (Classifier, error) {
	switch mode {
	case ModeKeyword:
		return NewKeywordClassifier(), nil
	case ModeLLM, ModeHybrid:
		if provider == nil {
			return nil, fmt.Errorf("classifier mode %q needs an LLM provider", mode)
		}
		model := NewLLMClassifier(provider, log)
		if mode == ModeLLM {
			return model, nil
		}
		return NewHybridClassifier(NewKeywordClassifier(), model), nil
	default:
		return nil, fmt.Errorf("unsupported classifier mode: %s", mode)
	}
}
