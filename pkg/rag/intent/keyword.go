package intent

import (
	"context"
	"regexp"

	"rag-chatbot-be/pkg/llm"
)

type keywordRule struct {
	action  Action
	pattern *regexp.Regexp
}

// KeywordClassifier recognises explicit requests about "my application".
type KeywordClassifier struct {
	rules []keywordRule
}

var _ Classifier = (*KeywordClassifier)(nil)

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{
		rules: []keywordRule{
			{ActionUpdate, regexp.MustCompile(`(?i)\b(update|change|edit|modify)\b.*\bto\b`)},
			{ActionDelete, regexp.MustCompile(`(?i)\b(delete|remove|withdraw)\b.*\b(application|applications)\b`)},
			{ActionView, regexp.MustCompile(`(?i)\b(view|show|see|display|check)\b.*\b(application|details)\b`)},
			{ActionStart, regexp.MustCompile(`(?i)\b(start|begin|submit|new)\b.*\bapplication\b`)},
		},
	}
}

func (c *KeywordClassifier) Classify(ctx context.Context, query string, history []llm.Message) Action {
	for _, r := range c.rules {
		if r.pattern.MatchString(query) {
			return r.action
		}
	}
	return ActionNone
}
