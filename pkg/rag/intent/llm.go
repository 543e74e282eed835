package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"rag-chatbot-be/internal/constant"
	"rag-chatbot-be/internal/pkg/logger"
	"rag-chatbot-be/pkg/llm"
)

// LLMClassifier asks the model for a JSON verdict and falls back to ActionNone
// on transport errors, malformed JSON or unknown actions.
type LLMClassifier struct {
	provider     llm.LLMProvider
	logger       logger.ILogger
	historyTurns int
}

var _ Classifier = (*LLMClassifier)(nil)

func NewLLMClassifier(provider llm.LLMProvider, logger logger.ILogger) *LLMClassifier {
	return &LLMClassifier{provider: provider, logger: logger, historyTurns: 6}
}

type verdict struct {
	Action *string `json:"action"`
}

func (c *LLMClassifier) Classify(ctx context.Context, query string, history []llm.Message) Action {
	prompt := fmt.Sprintf(constant.IntentClassificationPrompt, formatHistory(history, c.historyTurns), query)

	raw, err := c.provider.Generate(ctx, prompt, llm.WithTemperature(0), llm.WithJSONMode(), llm.WithMaxTokens(50))
	if err != nil {
		c.logger.Warn("Classifier", "Intent classification failed, defaulting to none", map[string]interface{}{
			"error": err.Error(),
		})
		return ActionNone
	}

	action, err := DecodeVerdict(raw)
	if err != nil {
		c.logger.Warn("Classifier", "Unusable classifier output, defaulting to none", map[string]interface{}{
			"error": err.Error(), "raw": truncate(raw, 200),
		})
		return ActionNone
	}
	return action
}

// DecodeVerdict accepts a single JSON object with a known "action", optionally
// wrapped in a markdown code fence. Everything else is an error.
func DecodeVerdict(raw string) (Action, error) {
	body := strings.TrimSpace(raw)
	body = strings.TrimPrefix(body, "```json")
	body = strings.TrimPrefix(body, "```")
	body = strings.TrimSuffix(body, "```")
	body = strings.TrimSpace(body)

	dec := json.NewDecoder(strings.NewReader(body))
	dec.DisallowUnknownFields()

	var v verdict
	if err := dec.Decode(&v); err != nil {
		return ActionNone, fmt.Errorf("decode verdict: %w", err)
	}
	if dec.More() {
		return ActionNone, fmt.Errorf("decode verdict: trailing data")
	}
	if v.Action == nil {
		return ActionNone, fmt.Errorf("decode verdict: missing action")
	}

	action, ok := ParseAction(strings.ToLower(strings.TrimSpace(*v.Action)))
	if !ok {
		return ActionNone, fmt.Errorf("decode verdict: unknown action %q", *v.Action)
	}
	return action, nil
}

func formatHistory(history []llm.Message, limit int) string {
	if len(history) > limit {
		history = history[len(history)-limit:]
	}
	var sb strings.Builder
	for _, msg := range history {
		role := "User"
		if msg.Role == constant.ChatMessageRoleAssistant {
			role = "Assistant"
		}
		sb.WriteString(fmt.Sprintf("%s: %s\n", role, truncate(msg.Content, 200)))
	}
	if sb.Len() == 0 {
		return "(none)\n"
	}
	return sb.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
