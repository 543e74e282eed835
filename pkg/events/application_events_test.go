package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewApplicationEvent(t *testing.T) {
	e := NewApplicationEvent(ApplicationUpdated, "s-1", map[string]string{"email": "a@b.c"})

	assert.Equal(t, ApplicationUpdated, e.EventType())
	assert.Equal(t, "s-1", e.Payload()["session_id"])
	assert.Equal(t, map[string]interface{}{"email": "a@b.c"}, e.Payload()["fields"])
	assert.False(t, e.Timestamp().IsZero())
}

func TestNewApplicationEvent_NoFields(t *testing.T) {
	e := NewApplicationEvent(ApplicationDeleted, "s-1", nil)
	_, ok := e.Payload()["fields"]
	assert.False(t, ok)
}
