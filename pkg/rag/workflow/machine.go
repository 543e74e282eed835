package workflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"rag-chatbot-be/internal/pkg/apperror"
	"rag-chatbot-be/internal/pkg/logger"
)

// PersistFunc durably stores a completed draft.
type PersistFunc func(ctx context.Context, draft *Draft) error

type Machine struct {
	store  Store
	logger logger.ILogger
	mu     sync.Mutex
}

func NewMachine(store Store, logger logger.ILogger) *Machine {
	return &Machine{store: store, logger: logger}
}

// Current returns a copy of the session's active draft.
func (m *Machine) Current(sessionID string) (*Draft, bool) {
	d, ok := m.store.Get(sessionID)
	if !ok || d.State.IsTerminal() {
		return nil, false
	}
	return d, true
}

func (m *Machine) Start(sessionID string) (*Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, active := m.Current(sessionID); active {
		return nil, apperror.Validation("an application is already in progress for session %s", sessionID)
	}

	d := newDraft(sessionID)
	m.store.Save(d)
	m.logger.Info("Workflow", "Draft started", map[string]interface{}{"session_id": sessionID})
	return d.Clone(), nil
}

// UpdateField sets or clears one field. When every field is set the draft
// moves to AWAITING_CONFIRMATION.
func (m *Machine) UpdateField(sessionID string, field Field, value string) (*Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.Current(sessionID)
	if !ok {
		return nil, apperror.NotFound("no application in progress for session %s", sessionID)
	}
	if d.State != StateStarted && d.State != StateCollecting {
		return nil, apperror.Validation("cannot update %s while %s", field, d.State)
	}
	if _, known := fieldLabels[field]; !known {
		return nil, apperror.Validation("unknown field %q", field)
	}

	if v, set := NormalizeValue(value); set {
		d.Values[field] = v
	} else {
		delete(d.Values, field)
	}

	from := d.State
	d.State = StateCollecting
	if d.IsComplete() {
		d.State = StateAwaitingConfirmation
	}
	d.UpdatedAt = time.Now()
	m.store.Save(d)

	if from != d.State {
		m.logger.Debug("Workflow", "Draft transitioned", map[string]interface{}{
			"session_id": sessionID, "from": from, "to": d.State,
		})
	}
	return d.Clone(), nil
}

// Confirm persists the draft. On failure the draft is left untouched so the
// user can retry.
func (m *Machine) Confirm(ctx context.Context, sessionID string, persist PersistFunc) (*Draft, error) {
	d, ok := m.Current(sessionID)
	if !ok {
		return nil, apperror.NotFound("no application in progress for session %s", sessionID)
	}
	if d.State != StateAwaitingConfirmation {
		return nil, apperror.Validation("cannot confirm while %s", d.State)
	}

	if err := persist(ctx, d.Clone()); err != nil {
		m.logger.Warn("Workflow", "Confirmation persistence failed", map[string]interface{}{
			"session_id": sessionID, "error": err.Error(),
		})
		return nil, fmt.Errorf("persist application: %w", err)
	}

	m.mu.Lock()
	m.store.Delete(sessionID)
	m.mu.Unlock()

	d.State = StateConfirmed
	m.logger.Info("Workflow", "Draft confirmed", map[string]interface{}{"session_id": sessionID})
	return d, nil
}

// Cancel discards the active draft. It reports whether there was one.
func (m *Machine) Cancel(sessionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Current(sessionID); !ok {
		return false
	}
	m.store.Delete(sessionID)
	m.logger.Info("Workflow", "Draft cancelled", map[string]interface{}{"session_id": sessionID})
	return true
}

// Discard drops any draft for the session without logging a cancellation.
func (m *Machine) Discard(sessionID string) {
	m.mu.Lock()
	m.store.Delete(sessionID)
	m.mu.Unlock()
}
