package cli

import (
	"context"
	"testing"
	"time"

	"rag-chatbot-be/pkg/events"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_RegistersSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"chat", "ask", "sessions", "history", "delete", "ingest", "events"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestArgumentValidation(t *testing.T) {
	tests := []struct {
		name    string
		cmd     *cobra.Command
		in      []string
		wantErr bool
	}{
		{"history needs an id", historyCmd, nil, true},
		{"history takes one id", historyCmd, []string{"s1"}, false},
		{"delete rejects two ids", deleteCmd, []string{"a", "b"}, true},
		{"ask joins words", askCmd, []string{"how", "many", "days"}, false},
		{"ingest needs a file", ingestCmd, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Args(tt.cmd, tt.in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPrintEvent(t *testing.T) {
	err := printEvent(context.Background(), events.BaseEvent{
		Type:       "APPLICATION_CONFIRMED",
		Data:       map[string]interface{}{"session_id": "s1"},
		OccurredAt: time.Now(),
	})
	require.NoError(t, err)
}
