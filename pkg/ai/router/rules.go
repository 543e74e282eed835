package router

import (
	"rag-chatbot-be/pkg/rag/workflow"
)

// Action is what the orchestrator should do with a turn.
type Action string

const (
	ActionCancel         Action = "CANCEL"
	ActionStart          Action = "START"
	ActionAlreadyStarted Action = "ALREADY_STARTED"
	ActionConfirm        Action = "CONFIRM"
	ActionCollect        Action = "COLLECT"
	ActionClassify       Action = "CLASSIFY"
)

// Turn is the routing input: the raw text plus the state of the session's draft.
type Turn struct {
	Text       string
	Normalized string
	DraftState workflow.State
}

func NewTurn(text string, draft *workflow.Draft) Turn {
	state := workflow.StateNone
	if draft != nil {
		state = draft.State
	}
	return Turn{Text: text, Normalized: Normalize(text), DraftState: state}
}

func (t Turn) HasDraft() bool {
	return t.DraftState != workflow.StateNone && !t.DraftState.IsTerminal()
}

type Rule struct {
	Name   string
	Action Action
	Match  func(Turn) bool
}

// DefaultRules returns the routing table in priority order.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:   "cancel-active-draft",
			Action: ActionCancel,
			Match:  func(t Turn) bool { return t.HasDraft() && IsCancel(t.Normalized) },
		},
		{
			Name:   "start-trigger",
			Action: ActionStart,
			Match:  func(t Turn) bool { return !t.HasDraft() && IsStartTrigger(t.Normalized) },
		},
		{
			Name:   "start-trigger-while-active",
			Action: ActionAlreadyStarted,
			Match:  func(t Turn) bool { return t.HasDraft() && IsStartTrigger(t.Normalized) },
		},
		{
			Name:   "confirm",
			Action: ActionConfirm,
			Match: func(t Turn) bool {
				return t.DraftState == workflow.StateAwaitingConfirmation && IsAffirmative(t.Normalized)
			},
		},
		{
			Name:   "collect",
			Action: ActionCollect,
			Match:  func(t Turn) bool { return t.HasDraft() },
		},
	}
}

// Engine evaluates rules in order; the first match wins. A turn no rule
// matches goes to the intent classifier.
type Engine struct {
	rules []Rule
}

func NewEngine(rules []Rule) *Engine {
	return &Engine{rules: rules}
}

func (e *Engine) Decide(t Turn) (Action, string) {
	for _, r := range e.rules {
		if r.Match(t) {
			return r.Action, r.Name
		}
	}
	return ActionClassify, "classify"
}
