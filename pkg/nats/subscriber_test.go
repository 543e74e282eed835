package nats

import (
	"context"
	"testing"

	"rag-chatbot-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEvent(t *testing.T) {
	e, err := decodeEvent("events.APPLICATION_CONFIRMED",
		[]byte(`{"session_id":"s-1","occurred_at":"2024-05-01T10:00:00Z"}`))

	require.NoError(t, err)
	assert.Equal(t, events.ApplicationConfirmed, e.EventType())
	assert.Equal(t, "s-1", e.Payload()["session_id"])
	assert.Equal(t, 2024, e.Timestamp().Year())
}

func TestDecodeEvent_BadPayload(t *testing.T) {
	_, err := decodeEvent("events.X", []byte("not json"))
	assert.Error(t, err)
}

func TestNilPublisherIsNoop(t *testing.T) {
	var p *Publisher
	err := p.Publish(context.Background(), events.NewApplicationEvent(events.ApplicationDeleted, "s", nil))
	assert.NoError(t, err)
	assert.NotPanics(t, p.Close)
}
