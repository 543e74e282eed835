// Package events defines the domain events published on the message bus.
package events

import "time"

// Event is anything that can be published under events.<EventType>.
type Event interface {
	EventType() string
	Payload() map[string]interface{}
	Timestamp() time.Time
}

// BaseEvent is the concrete event used by publishers and rebuilt by subscribers.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string               { return e.Type }
func (e BaseEvent) Payload() map[string]interface{} { return e.Data }
func (e BaseEvent) Timestamp() time.Time            { return e.OccurredAt }

const (
	ApplicationConfirmed = "APPLICATION_CONFIRMED"
	ApplicationUpdated   = "APPLICATION_UPDATED"
	ApplicationDeleted   = "APPLICATION_DELETED"
)

// NewApplicationEvent builds a lifecycle event for the job application of a session.
// fields may be nil for deletions.
func NewApplicationEvent(eventType, sessionID string, fields map[string]string) BaseEvent {
	data := map[string]interface{}{
		"session_id": sessionID,
	}
	if len(fields) > 0 {
		f := make(map[string]interface{}, len(fields))
		for k, v := range fields {
			f[k] = v
		}
		data["fields"] = f
	}

	now := time.Now().UTC()
	data["occurred_at"] = now.Format(time.RFC3339Nano)

	return BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: now,
	}
}
