// Package orchestrator routes each chat turn to the application workflow, the
// record store or the retrieval answerer, and records both sides of the turn.
package orchestrator

import (
	"context"
	"fmt"

	"rag-chatbot-be/internal/constant"
	"rag-chatbot-be/internal/entity"
	"rag-chatbot-be/internal/pkg/logger"
	"rag-chatbot-be/pkg/ai/router"
	"rag-chatbot-be/pkg/llm"
	"rag-chatbot-be/pkg/rag/intent"
	"rag-chatbot-be/pkg/rag/workflow"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type MessageStore interface {
	Append(ctx context.Context, sessionID, role, content string, title *string) (*entity.ChatMessage, error)
	// ListRecent returns at most limit messages, oldest first.
	ListRecent(ctx context.Context, sessionID string, limit int) ([]*entity.ChatMessage, error)
}

// RecordStore holds confirmed applications. Get, UpdateField and Delete fail
// with apperror.ErrNotFound when the session has none.
type RecordStore interface {
	Get(ctx context.Context, sessionID string) (*entity.JobApplication, error)
	Upsert(ctx context.Context, application *entity.JobApplication) error
	UpdateField(ctx context.Context, sessionID string, field workflow.Field, value string) error
	Delete(ctx context.Context, sessionID string) error
}

type Answerer interface {
	Answer(ctx context.Context, query string, history []llm.Message) (string, error)
	Stream(ctx context.Context, query string, history []llm.Message, onChunk llm.ChunkHandler) (string, error)
}

type Titler interface {
	Title(ctx context.Context, firstMessage string) string
}

type Deps struct {
	Messages     MessageStore
	Records      RecordStore
	Machine      *workflow.Machine
	Classifier   intent.Classifier
	Answerer     Answerer
	Titler       Titler
	Logger       logger.ILogger
	HistoryLimit int
}

type Orchestrator struct {
	messages     MessageStore
	records      RecordStore
	machine      *workflow.Machine
	rules        *router.Engine
	classifier   intent.Classifier
	answerer     Answerer
	titler       Titler
	logger       logger.ILogger
	historyLimit int
}

func New(d Deps) *Orchestrator {
	limit := d.HistoryLimit
	if limit <= 0 {
		limit = 10
	}
	return &Orchestrator{
		messages:     d.Messages,
		records:      d.Records,
		machine:      d.Machine,
		rules:        router.NewEngine(router.DefaultRules()),
		classifier:   d.Classifier,
		answerer:     d.Answerer,
		titler:       d.Titler,
		logger:       d.Logger,
		historyLimit: limit,
	}
}

// HandleTurn processes one user message and returns the assistant reply. The
// user message and the reply are both stored, in that order. Only message
// store failures are returned as errors.
func (o *Orchestrator) HandleTurn(ctx context.Context, sessionID, text string) (string, error) {
	return o.turn(ctx, sessionID, text, nil)
}

// StreamTurn is HandleTurn with incremental delivery. Replies that are not
// generated token by token are delivered as a single chunk.
func (o *Orchestrator) StreamTurn(ctx context.Context, sessionID, text string, onChunk llm.ChunkHandler) (string, error) {
	return o.turn(ctx, sessionID, text, onChunk)
}

func (o *Orchestrator) turn(ctx context.Context, sessionID, text string, onChunk llm.ChunkHandler) (string, error) {
	ctx, span := otel.Tracer("rag-chatbot-be/orchestrator").Start(ctx, "orchestrator.turn")
	defer span.End()
	span.SetAttributes(attribute.String("chat.session_id", sessionID), attribute.Bool("chat.streaming", onChunk != nil))

	recent, err := o.messages.ListRecent(ctx, sessionID, o.historyLimit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load history")
		return "", fmt.Errorf("load history: %w", err)
	}

	var title *string
	if len(recent) == 0 && o.titler != nil {
		t := o.titler.Title(ctx, text)
		title = &t
	}
	if _, err := o.messages.Append(ctx, sessionID, entity.RoleUser, text, title); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store user message")
		return "", fmt.Errorf("store user message: %w", err)
	}

	reply, streamed, route := o.route(ctx, sessionID, text, toLLMMessages(recent), onChunk)
	span.SetAttributes(attribute.String("chat.route", route))

	if _, err := o.messages.Append(ctx, sessionID, entity.RoleAssistant, reply, nil); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store assistant message")
		return reply, fmt.Errorf("store assistant message: %w", err)
	}

	if onChunk != nil && !streamed {
		if err := onChunk(reply); err != nil {
			o.logger.Warn("Orchestrator", "Reply delivery failed", map[string]interface{}{
				"session_id": sessionID, "error": err.Error(),
			})
		}
	}

	o.logger.Info("Orchestrator", "Turn handled", map[string]interface{}{
		"session_id": sessionID, "route": route,
	})
	return reply, nil
}

// route decides what the turn does. streamed reports whether the reply has
// already been delivered through onChunk.
func (o *Orchestrator) route(ctx context.Context, sessionID, text string, history []llm.Message, onChunk llm.ChunkHandler) (reply string, streamed bool, route string) {
	draft, _ := o.machine.Current(sessionID)
	action, rule := o.rules.Decide(router.NewTurn(text, draft))

	switch action {
	case router.ActionCancel:
		o.machine.Cancel(sessionID)
		return constant.MsgApplicationCancelled, false, rule
	case router.ActionStart:
		return o.start(sessionID), false, rule
	case router.ActionAlreadyStarted:
		return alreadyStarted(draft), false, rule
	case router.ActionConfirm:
		return o.confirm(ctx, sessionID), false, rule
	case router.ActionCollect:
		return o.collect(sessionID, text, draft), false, rule
	}

	switch act := o.classifier.Classify(ctx, text, history); act {
	case intent.ActionStart:
		return o.start(sessionID), false, "intent:" + string(act)
	case intent.ActionView:
		return o.view(ctx, sessionID), false, "intent:" + string(act)
	case intent.ActionUpdate:
		return o.update(ctx, sessionID, text), false, "intent:" + string(act)
	case intent.ActionDelete:
		return o.remove(ctx, sessionID), false, "intent:" + string(act)
	}

	reply, streamed = o.answer(ctx, sessionID, text, history, onChunk)
	return reply, streamed, "answer"
}

func toLLMMessages(msgs []*entity.ChatMessage) []llm.Message {
	out := make([]llm.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, llm.Message{Role: m.Role, Content: m.Content})
	}
	return out
}
