package memory

import (
	"testing"
	"time"

	"rag-chatbot-be/pkg/rag/workflow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkflowRepository_SaveGetDelete(t *testing.T) {
	repo := NewWorkflowRepository(time.Minute)

	d := &workflow.Draft{
		SessionID: "s1",
		State:     workflow.StateCollecting,
		Values:    map[workflow.Field]string{workflow.FieldName: "Ada"},
	}
	repo.Save(d)
	d.Values[workflow.FieldName] = "changed after save"

	got, ok := repo.Get("s1")
	require.True(t, ok)
	assert.Equal(t, "Ada", got.Values[workflow.FieldName])

	got.Values[workflow.FieldEmail] = "leak@example.com"
	again, _ := repo.Get("s1")
	assert.Empty(t, again.Values[workflow.FieldEmail])

	repo.Delete("s1")
	_, ok = repo.Get("s1")
	assert.False(t, ok)
	assert.Zero(t, repo.Count())
}

func TestWorkflowRepository_Expires(t *testing.T) {
	repo := NewWorkflowRepository(50 * time.Millisecond)
	repo.Save(&workflow.Draft{SessionID: "s1", State: workflow.StateStarted, Values: map[workflow.Field]string{}})

	time.Sleep(120 * time.Millisecond)

	_, ok := repo.Get("s1")
	assert.False(t, ok)
}
