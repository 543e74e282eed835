package session

import (
	"context"
	"fmt"
	"strings"

	"rag-chatbot-be/internal/constant"
	"rag-chatbot-be/internal/pkg/logger"
	"rag-chatbot-be/pkg/llm"
)

const maxTitleRunes = 60

// Titler summarises a session's first user message into a short title.
type Titler struct {
	llm    llm.LLMProvider
	logger logger.ILogger
}

// NewTitler builds a titler. provider may be nil, in which case titles are
// truncated message text.
func NewTitler(provider llm.LLMProvider, logger logger.ILogger) *Titler {
	return &Titler{llm: provider, logger: logger}
}

// Title never fails; if the model is unavailable the message itself is used.
func (t *Titler) Title(ctx context.Context, firstMessage string) string {
	if t.llm != nil {
		raw, err := t.llm.Generate(ctx, fmt.Sprintf(constant.TitlePrompt, firstMessage),
			llm.WithTemperature(0.3), llm.WithMaxTokens(20))
		if err == nil {
			if title := cleanTitle(raw); title != "" {
				return title
			}
		} else {
			t.logger.Warn("Titler", "Title generation failed", map[string]interface{}{"error": err.Error()})
		}
	}
	return clip(strings.Join(strings.Fields(firstMessage), " "))
}

func cleanTitle(raw string) string {
	line := strings.TrimSpace(raw)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimPrefix(line, "Title:")
	line = strings.Trim(strings.TrimSpace(line), `"'*#.`)
	return clip(strings.TrimSpace(line))
}

func clip(s string) string {
	r := []rune(s)
	if len(r) <= maxTitleRunes {
		return s
	}
	return strings.TrimSpace(string(r[:maxTitleRunes-3])) + "..."
}
