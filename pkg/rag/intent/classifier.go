// Package intent classifies free text into workflow-management actions.
package intent

import (
	"context"

	"rag-chatbot-be/pkg/llm"
)

type Action string

const (
	ActionStart  Action = "start"
	ActionView   Action = "view"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionNone   Action = "none"
)

func ParseAction(s string) (Action, bool) {
	switch a := Action(s); a {
	case ActionStart, ActionView, ActionUpdate, ActionDelete, ActionNone:
		return a, true
	}
	return ActionNone, false
}

// Classifier never fails: anything it cannot decide is ActionNone.
type Classifier interface {
	Classify(ctx context.Context, query string, history []llm.Message) Action
}

const (
	ModeKeyword = "keyword"
	ModeLLM     = "llm"
	ModeHybrid  = "hybrid"
)
