package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"rag-chatbot-be/internal/constant"
	"rag-chatbot-be/internal/entity"
	"rag-chatbot-be/internal/pkg/apperror"
	"rag-chatbot-be/pkg/ai/router"
	"rag-chatbot-be/pkg/llm"
	"rag-chatbot-be/pkg/rag/workflow"
)

func (o *Orchestrator) start(sessionID string) string {
	if _, err := o.machine.Start(sessionID); err != nil {
		draft, _ := o.machine.Current(sessionID)
		return alreadyStarted(draft)
	}
	return constant.MsgApplicationStarted
}

func alreadyStarted(draft *workflow.Draft) string {
	return constant.MsgApplicationInProgress + " " + nextPrompt(draft)
}

// nextPrompt asks for the next missing field, or for confirmation once the
// draft is complete.
func nextPrompt(draft *workflow.Draft) string {
	if draft == nil {
		return constant.MsgApplicationStarted
	}
	if field, missing := draft.NextMissingField(); missing {
		return fmt.Sprintf(constant.MsgProvideField, field.Prompt())
	}
	return fmt.Sprintf(constant.MsgReviewApplication, formatFields(draft.AsMap()))
}

func (o *Orchestrator) collect(sessionID, text string, draft *workflow.Draft) string {
	if draft.State == workflow.StateAwaitingConfirmation {
		return nextPrompt(draft)
	}

	field, _ := draft.NextMissingField()
	if router.IsMetaQuestion(text) {
		return fmt.Sprintf(constant.MsgClarifyField, field.Prompt())
	}

	updated, err := o.machine.UpdateField(sessionID, field, text)
	if err != nil {
		o.logger.Warn("Orchestrator", "Field update rejected", map[string]interface{}{
			"session_id": sessionID, "field": field, "error": err.Error(),
		})
		return fmt.Sprintf(constant.MsgSomethingWentWrong, err.Error())
	}
	return nextPrompt(updated)
}

func (o *Orchestrator) confirm(ctx context.Context, sessionID string) string {
	persist := func(ctx context.Context, d *workflow.Draft) error {
		return o.records.Upsert(ctx, &entity.JobApplication{
			SessionId:  sessionID,
			Status:     entity.ApplicationStatusConfirmed,
			Name:       d.Values[workflow.FieldName],
			Email:      d.Values[workflow.FieldEmail],
			Company:    d.Values[workflow.FieldCompany],
			JobRole:    d.Values[workflow.FieldJobRole],
			Experience: d.Values[workflow.FieldExperience],
		})
	}

	confirmed, err := o.machine.Confirm(ctx, sessionID, persist)
	if err != nil {
		o.logger.Error("Orchestrator", "Application confirmation failed", map[string]interface{}{
			"session_id": sessionID, "error": err.Error(),
		})
		return fmt.Sprintf(constant.MsgConfirmFailed, err.Error())
	}
	return fmt.Sprintf(constant.MsgApplicationConfirmed, formatFields(confirmed.AsMap()))
}

func (o *Orchestrator) view(ctx context.Context, sessionID string) string {
	app, err := o.records.Get(ctx, sessionID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return constant.MsgApplicationNotFound
		}
		return o.unexpected(sessionID, "view application", err)
	}
	return fmt.Sprintf(constant.MsgApplicationDetails, formatFields(app.Fields()))
}

func (o *Orchestrator) update(ctx context.Context, sessionID, text string) string {
	if _, err := o.records.Get(ctx, sessionID); err != nil {
		if apperror.IsNotFound(err) {
			return constant.MsgNothingToUpdate
		}
		return o.unexpected(sessionID, "load application", err)
	}

	clauses, err := router.ParseUpdateCommand(text)
	if err != nil {
		return constant.MsgNoUpdateClauses
	}

	lines := make([]string, 0, len(clauses))
	for _, c := range clauses {
		if !c.OK() {
			lines = append(lines, clauseWarning(c))
			continue
		}
		if err := o.records.UpdateField(ctx, sessionID, c.Field, c.Value); err != nil {
			if apperror.IsNotFound(err) {
				lines = append(lines, constant.MsgNothingToUpdate)
				break
			}
			lines = append(lines, o.unexpected(sessionID, "update application", err))
			continue
		}
		lines = append(lines, fmt.Sprintf(constant.MsgFieldUpdated, c.Field.Prompt(), c.Value))
	}

	o.logger.Debug("Orchestrator", "Update command applied", map[string]interface{}{
		"session_id": sessionID, "clauses": len(clauses),
	})
	return strings.Join(lines, "\n")
}

func clauseWarning(c router.UpdateClause) string {
	switch {
	case apperror.IsValidation(c.Err) && c.FieldRef != "" && c.Field == "":
		return fmt.Sprintf(constant.MsgInvalidField, c.FieldRef, router.ValidFieldNames())
	default:
		return fmt.Sprintf(constant.MsgMalformedClause, c.Raw)
	}
}

func (o *Orchestrator) remove(ctx context.Context, sessionID string) string {
	if err := o.records.Delete(ctx, sessionID); err != nil {
		if apperror.IsNotFound(err) {
			return constant.MsgNothingToDelete
		}
		return o.unexpected(sessionID, "delete application", err)
	}
	return constant.MsgApplicationDeleted
}

func (o *Orchestrator) answer(ctx context.Context, sessionID, text string, history []llm.Message, onChunk llm.ChunkHandler) (string, bool) {
	var (
		reply string
		err   error
	)
	if onChunk != nil {
		reply, err = o.answerer.Stream(ctx, text, history, onChunk)
	} else {
		reply, err = o.answerer.Answer(ctx, text, history)
	}
	if err == nil {
		return strings.TrimSpace(reply), onChunk != nil
	}

	o.logger.Error("Orchestrator", "Answering failed", map[string]interface{}{
		"session_id": sessionID, "error": err.Error(),
	})
	if apperror.IsUpstream(err) {
		return constant.MsgAnswerUnavailable, false
	}
	return fmt.Sprintf(constant.MsgSomethingWentWrong, err.Error()), false
}

func (o *Orchestrator) unexpected(sessionID, op string, err error) string {
	o.logger.Error("Orchestrator", "Record store failure", map[string]interface{}{
		"session_id": sessionID, "op": op, "error": err.Error(),
	})
	return fmt.Sprintf(constant.MsgSomethingWentWrong, err.Error())
}

func formatFields(values map[string]string) string {
	lines := make([]string, 0, len(workflow.Fields))
	for _, f := range workflow.Fields {
		v := values[string(f)]
		if v == "" {
			v = constant.MsgNotAvailable
		}
		lines = append(lines, fmt.Sprintf("%s: %s", f.Label(), v))
	}
	return strings.Join(lines, "\n\n")
}
