package integration

import (
	"context"
	"log"
	"os"
	"testing"

	"rag-chatbot-be/internal/constant"
	"rag-chatbot-be/internal/entity"
	"rag-chatbot-be/internal/model"
	"rag-chatbot-be/internal/pkg/logger"
	"rag-chatbot-be/internal/repository/implementation"
	"rag-chatbot-be/internal/repository/memory"
	"rag-chatbot-be/internal/repository/specification"
	"rag-chatbot-be/internal/repository/unitofwork"
	"rag-chatbot-be/internal/service"
	"rag-chatbot-be/pkg/database"
	"rag-chatbot-be/pkg/llm"
	"rag-chatbot-be/pkg/rag/intent"
	"rag-chatbot-be/pkg/rag/orchestrator"
	"rag-chatbot-be/pkg/rag/session"
	"rag-chatbot-be/pkg/rag/workflow"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cannedAnswerer struct{}

func (cannedAnswerer) Answer(ctx context.Context, query string, history []llm.Message) (string, error) {
	return "canned answer", nil
}

func (cannedAnswerer) Stream(ctx context.Context, query string, history []llm.Message, onChunk llm.ChunkHandler) (string, error) {
	if onChunk != nil {
		if err := onChunk("canned answer"); err != nil {
			return "", err
		}
	}
	return "canned answer", nil
}

type staticTitler struct{}

func (staticTitler) Title(ctx context.Context, first string) string { return "Integration" }

// TestApplicationFlow_Postgres drives a full application conversation against
// the database named by DB_CONNECTION_STRING.
func TestApplicationFlow_Postgres(t *testing.T) {
	// Load .env from root
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	ctx := context.Background()
	gormDB, err := database.NewGormDBFromDSN(dsn)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(ctx, gormDB, model.All()...))

	nop := logger.NewNopLogger()
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	directory := session.NewDirectory(implementation.NewChatMessageRepository(gormDB), nil, nop)
	messages := service.NewMessageService(uowFactory, directory, nop)
	records := service.NewApplicationService(uowFactory, nil, nop)
	machine := workflow.NewMachine(memory.NewWorkflowRepository(0), nop)

	turns := orchestrator.New(orchestrator.Deps{
		Messages:   messages,
		Records:    records,
		Machine:    machine,
		Classifier: intent.NewKeywordClassifier(),
		Answerer:   cannedAnswerer{},
		Titler:     staticTitler{},
		Logger:     nop,
	})

	sessionID := "it-" + uuid.NewString()
	t.Cleanup(func() {
		_ = records.Delete(ctx, sessionID)
		_, _ = messages.DeleteAll(ctx, sessionID)
	})

	script := []string{
		"I want to start a job application",
		"Ada Lovelace",
		"ada@example.com",
		"Analytical Engines Ltd",
		"Programmer",
		"10 years",
		"confirm",
	}
	var reply string
	for _, line := range script {
		reply, err = turns.HandleTurn(ctx, sessionID, line)
		require.NoError(t, err, "turn %q", line)
	}
	assert.Contains(t, reply, "Application confirmed")

	t.Run("confirmed application is stored", func(t *testing.T) {
		app, err := records.Get(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, entity.ApplicationStatusConfirmed, app.Status)
		assert.Equal(t, "Ada Lovelace", app.Name)
		assert.Equal(t, "10 years", app.Experience)
	})

	t.Run("every turn is recorded in order", func(t *testing.T) {
		uow := uowFactory.NewUnitOfWork(ctx)
		count, err := uow.ChatMessageRepository().Count(ctx, specification.BySessionID{SessionID: sessionID})
		require.NoError(t, err)
		assert.Equal(t, int64(2*len(script)), count)

		history, err := messages.List(ctx, sessionID)
		require.NoError(t, err)
		require.NotEmpty(t, history)
		assert.Equal(t, constant.ChatMessageRoleUser, history[0].Role)
		require.NotNil(t, history[0].Title)
		assert.Equal(t, "Integration", *history[0].Title)
		for i := 1; i < len(history); i++ {
			assert.True(t, history[i].CreatedAt.After(history[i-1].CreatedAt))
		}
	})

	t.Run("update and delete reach the stored record", func(t *testing.T) {
		reply, err := turns.HandleTurn(ctx, sessionID, "update company to Babbage & Co")
		require.NoError(t, err)
		assert.Contains(t, reply, "Babbage & Co")

		reply, err = turns.HandleTurn(ctx, sessionID, "delete my application")
		require.NoError(t, err)
		assert.Equal(t, constant.MsgApplicationDeleted, reply)

		_, err = records.Get(ctx, sessionID)
		assert.Error(t, err)
	})
}
