package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"rag-chatbot-be/internal/constant"
	"rag-chatbot-be/internal/entity"
	"rag-chatbot-be/internal/pkg/apperror"
	"rag-chatbot-be/internal/pkg/logger"
	"rag-chatbot-be/internal/repository/memory"
	"rag-chatbot-be/pkg/llm"
	"rag-chatbot-be/pkg/rag/intent"
	"rag-chatbot-be/pkg/rag/workflow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type memMessages struct {
	mu   sync.Mutex
	rows []*entity.ChatMessage
	fail bool
}

func (m *memMessages) Append(ctx context.Context, sessionID, role, content string, title *string) (*entity.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return nil, apperror.Upstream("insert message", errors.New("connection refused"))
	}
	msg := &entity.ChatMessage{SessionId: sessionID, Role: role, Content: content, Title: title}
	m.rows = append(m.rows, msg)
	return msg, nil
}

func (m *memMessages) ListRecent(ctx context.Context, sessionID string, limit int) ([]*entity.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.ChatMessage
	for _, r := range m.rows {
		if r.SessionId == sessionID {
			out = append(out, r)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (m *memMessages) session(id string) []*entity.ChatMessage {
	all, _ := m.ListRecent(context.Background(), id, 1<<20)
	return all
}

type memRecords struct {
	apps    map[string]*entity.JobApplication
	upserts int
	failing error
}

func newMemRecords() *memRecords {
	return &memRecords{apps: map[string]*entity.JobApplication{}}
}

func (r *memRecords) Get(ctx context.Context, sessionID string) (*entity.JobApplication, error) {
	app, ok := r.apps[sessionID]
	if !ok {
		return nil, apperror.NotFound("no application for %s", sessionID)
	}
	cp := *app
	return &cp, nil
}

func (r *memRecords) Upsert(ctx context.Context, app *entity.JobApplication) error {
	if r.failing != nil {
		return r.failing
	}
	r.upserts++
	cp := *app
	r.apps[app.SessionId] = &cp
	return nil
}

func (r *memRecords) UpdateField(ctx context.Context, sessionID string, field workflow.Field, value string) error {
	app, ok := r.apps[sessionID]
	if !ok {
		return apperror.NotFound("no application for %s", sessionID)
	}
	switch field {
	case workflow.FieldName:
		app.Name = value
	case workflow.FieldEmail:
		app.Email = value
	case workflow.FieldCompany:
		app.Company = value
	case workflow.FieldJobRole:
		app.JobRole = value
	case workflow.FieldExperience:
		app.Experience = value
	}
	return nil
}

func (r *memRecords) Delete(ctx context.Context, sessionID string) error {
	if _, ok := r.apps[sessionID]; !ok {
		return apperror.NotFound("no application for %s", sessionID)
	}
	delete(r.apps, sessionID)
	return nil
}

type mockClassifier struct{ mock.Mock }

func (m *mockClassifier) Classify(ctx context.Context, query string, history []llm.Message) intent.Action {
	return m.Called(query).Get(0).(intent.Action)
}

type fakeAnswerer struct {
	reply   string
	err     error
	calls   int
	history []llm.Message
}

func (f *fakeAnswerer) Answer(ctx context.Context, query string, history []llm.Message) (string, error) {
	f.calls++
	f.history = history
	return f.reply, f.err
}

func (f *fakeAnswerer) Stream(ctx context.Context, query string, history []llm.Message, onChunk llm.ChunkHandler) (string, error) {
	f.calls++
	f.history = history
	if f.err != nil {
		return "", f.err
	}
	for _, w := range strings.SplitAfter(f.reply, " ") {
		if err := onChunk(w); err != nil {
			return "", err
		}
	}
	return f.reply, nil
}

type fixedTitler struct{ calls int }

func (t *fixedTitler) Title(ctx context.Context, first string) string {
	t.calls++
	return "Title for " + first
}

type harness struct {
	orch       *Orchestrator
	messages   *memMessages
	records    *memRecords
	classifier *mockClassifier
	answerer   *fakeAnswerer
	titler     *fixedTitler
	machine    *workflow.Machine
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		messages:   &memMessages{},
		records:    newMemRecords(),
		classifier: &mockClassifier{},
		answerer:   &fakeAnswerer{reply: "Employees get 20 vacation days."},
		titler:     &fixedTitler{},
		machine:    workflow.NewMachine(memory.NewWorkflowRepository(0), logger.NewNopLogger()),
	}
	h.orch = New(Deps{
		Messages:     h.messages,
		Records:      h.records,
		Machine:      h.machine,
		Classifier:   h.classifier,
		Answerer:     h.answerer,
		Titler:       h.titler,
		Logger:       logger.NewNopLogger(),
		HistoryLimit: 10,
	})
	return h
}

func (h *harness) say(t *testing.T, session, text string) string {
	t.Helper()
	reply, err := h.orch.HandleTurn(context.Background(), session, text)
	require.NoError(t, err)
	return reply
}

func (h *harness) applyAndFill(t *testing.T, session string) string {
	t.Helper()
	assert.Equal(t, constant.MsgApplicationStarted, h.say(t, session, "I want to apply for a job"))
	assert.Equal(t, "Please provide your email:", h.say(t, session, "Ada Lovelace"))
	assert.Equal(t, "Please provide your company:", h.say(t, session, "ada@example.com"))
	assert.Equal(t, "Please provide your job role:", h.say(t, session, "Acme"))
	assert.Equal(t, "Please provide your experience:", h.say(t, session, "Engineer"))
	return h.say(t, session, "5 years")
}

func TestApplyFillConfirm(t *testing.T) {
	h := newHarness(t)

	review := h.applyAndFill(t, "s1")
	assert.Contains(t, review, "Please review your application")
	assert.Contains(t, review, "Job Role: Engineer")

	d, ok := h.machine.Current("s1")
	require.True(t, ok)
	assert.Equal(t, workflow.StateAwaitingConfirmation, d.State)

	confirmed := h.say(t, "s1", "confirm")
	assert.True(t, strings.HasPrefix(confirmed, "✅ Application confirmed"))
	assert.Contains(t, confirmed, "Name: Ada Lovelace\n\nEmail: ada@example.com")

	app := h.records.apps["s1"]
	require.NotNil(t, app)
	assert.Equal(t, "Acme", app.Company)
	assert.Equal(t, entity.ApplicationStatusConfirmed, app.Status)

	_, active := h.machine.Current("s1")
	assert.False(t, active)
	h.classifier.AssertNotCalled(t, "Classify", mock.Anything)
	assert.Zero(t, h.answerer.calls)
}

func TestConfirmTwice_StoresOneRecord(t *testing.T) {
	h := newHarness(t)
	h.applyAndFill(t, "s1")
	h.say(t, "s1", "yes")

	h.classifier.On("Classify", "yes").Return(intent.ActionNone)
	h.say(t, "s1", "yes")

	assert.Equal(t, 1, h.records.upserts)
	assert.Len(t, h.records.apps, 1)
}

func TestConfirmFailure_KeepsDraft(t *testing.T) {
	h := newHarness(t)
	h.applyAndFill(t, "s1")
	h.records.failing = errors.New("duplicate key")

	reply := h.say(t, "s1", "confirm")
	assert.Equal(t, fmt.Sprintf(constant.MsgConfirmFailed, "persist application: duplicate key"), reply)

	d, ok := h.machine.Current("s1")
	require.True(t, ok)
	assert.Equal(t, workflow.StateAwaitingConfirmation, d.State)

	h.records.failing = nil
	assert.Contains(t, h.say(t, "s1", "confirm"), "Application confirmed")
}

func TestAwaitingConfirmation_NonAffirmativeReprompts(t *testing.T) {
	h := newHarness(t)
	h.applyAndFill(t, "s1")

	reply := h.say(t, "s1", "hmm, maybe")
	assert.Contains(t, reply, "Type 'confirm' to submit")
	assert.Empty(t, h.records.apps)
	h.classifier.AssertNotCalled(t, "Classify", mock.Anything)
}

func TestCancelBeatsClassifier(t *testing.T) {
	h := newHarness(t)
	h.say(t, "s1", "apply for a job")
	h.say(t, "s1", "Ada")

	assert.Equal(t, constant.MsgApplicationCancelled, h.say(t, "s1", "Cancel"))
	_, active := h.machine.Current("s1")
	assert.False(t, active)
	h.classifier.AssertNotCalled(t, "Classify", mock.Anything)
}

func TestCancelWithoutDraft_GoesToClassifier(t *testing.T) {
	h := newHarness(t)
	h.classifier.On("Classify", "stop").Return(intent.ActionNone).Once()

	assert.Equal(t, h.answerer.reply, h.say(t, "s1", "stop"))
	h.classifier.AssertExpectations(t)
}

func TestCollect(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"null keeps field unset", "null", "Please provide your name:"},
		{"blank keeps field unset", "   ", "Please provide your name:"},
		{"meta question", "what do you need this for?", fmt.Sprintf(constant.MsgClarifyField, "name")},
		{"long sentence", "I am not sure which name I should give you here", fmt.Sprintf(constant.MsgClarifyField, "name")},
		{"tell me", "tell me more", fmt.Sprintf(constant.MsgClarifyField, "name")},
		{"value", "Ada", "Please provide your email:"},
		{"second trigger", "apply for a job", constant.MsgApplicationInProgress + " Please provide your name:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.say(t, "s1", "apply for a job")
			assert.Equal(t, tt.want, h.say(t, "s1", tt.input))
		})
	}
}

func TestClassifierRoutes(t *testing.T) {
	stored := &entity.JobApplication{
		SessionId: "s1", Name: "Ada", Email: "ada@example.com", Company: "Acme", JobRole: "Engineer",
	}

	tests := []struct {
		name     string
		action   intent.Action
		input    string
		existing bool
		want     string
	}{
		{"view", intent.ActionView, "show my application", true, "📄 Here are your application details:\n\nName: Ada\n\nEmail: ada@example.com\n\nCompany: Acme\n\nJob Role: Engineer\n\nExperience: N/A"},
		{"view missing", intent.ActionView, "show my application", false, constant.MsgApplicationNotFound},
		{"delete", intent.ActionDelete, "delete my application", true, constant.MsgApplicationDeleted},
		{"delete missing", intent.ActionDelete, "delete my application", false, constant.MsgNothingToDelete},
		{"update missing", intent.ActionUpdate, "update my email to x@y.z", false, constant.MsgNothingToUpdate},
		{"start", intent.ActionStart, "sign me up", false, constant.MsgApplicationStarted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			if tt.existing {
				cp := *stored
				h.records.apps["s1"] = &cp
			}
			h.classifier.On("Classify", tt.input).Return(tt.action)

			assert.Equal(t, tt.want, h.say(t, "s1", tt.input))
			assert.Zero(t, h.answerer.calls)
		})
	}
}

func TestUpdateCommand_PerClauseResults(t *testing.T) {
	h := newHarness(t)
	h.records.apps["s1"] = &entity.JobApplication{SessionId: "s1", Email: "old@example.com", JobRole: "Dev"}
	input := "update my mail to new@example.com and salary to 1000 and role to CTO, company"
	h.classifier.On("Classify", input).Return(intent.ActionUpdate)

	reply := h.say(t, "s1", input)
	lines := strings.Split(reply, "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "✅ Your email has been updated to 'new@example.com'.", lines[0])
	assert.Equal(t, "⚠️ 'salary' is not a valid field. Valid fields are: name, email, company, job_role, experience", lines[1])
	assert.Equal(t, "✅ Your job role has been updated to 'CTO'.", lines[2])
	assert.Equal(t, fmt.Sprintf(constant.MsgMalformedClause, "company"), lines[3])

	assert.Equal(t, "new@example.com", h.records.apps["s1"].Email)
	assert.Equal(t, "CTO", h.records.apps["s1"].JobRole)
}

func TestFallbackToAnswerer(t *testing.T) {
	h := newHarness(t)
	h.classifier.On("Classify", mock.Anything).Return(intent.ActionNone)

	assert.Equal(t, "Employees get 20 vacation days.", h.say(t, "s1", "How many vacation days do I get?"))
	h.say(t, "s1", "And sick days?")

	assert.Equal(t, 2, h.answerer.calls)
	require.Len(t, h.answerer.history, 2)
	assert.Equal(t, entity.RoleUser, h.answerer.history[0].Role)
	assert.Equal(t, entity.RoleAssistant, h.answerer.history[1].Role)
}

func TestAnswererFailures_BecomeReplies(t *testing.T) {
	h := newHarness(t)
	h.classifier.On("Classify", mock.Anything).Return(intent.ActionNone)

	h.answerer.err = apperror.Upstream("generate answer", errors.New("timeout"))
	assert.Equal(t, constant.MsgAnswerUnavailable, h.say(t, "s1", "hello"))

	h.answerer.err = errors.New("boom")
	assert.Equal(t, fmt.Sprintf(constant.MsgSomethingWentWrong, "boom"), h.say(t, "s1", "hello again"))

	assert.Len(t, h.messages.session("s1"), 4)
}

func TestEveryTurnStoresUserThenAssistant(t *testing.T) {
	h := newHarness(t)
	h.classifier.On("Classify", mock.Anything).Return(intent.ActionNone)

	inputs := []string{"hi", "apply for a job", "what is this?", "Ada", "cancel", "what is the leave policy?"}
	for _, in := range inputs {
		h.say(t, "s1", in)
	}

	rows := h.messages.session("s1")
	require.Len(t, rows, 2*len(inputs))
	for i, r := range rows {
		if i%2 == 0 {
			assert.Equal(t, entity.RoleUser, r.Role)
			assert.Equal(t, inputs[i/2], r.Content)
		} else {
			assert.Equal(t, entity.RoleAssistant, r.Role)
		}
	}
}

func TestTitleOnlyOnFirstTurn(t *testing.T) {
	h := newHarness(t)
	h.classifier.On("Classify", mock.Anything).Return(intent.ActionNone)

	h.say(t, "s1", "vacation policy?")
	h.say(t, "s1", "and sick leave?")

	rows := h.messages.session("s1")
	require.NotNil(t, rows[0].Title)
	assert.Equal(t, "Title for vacation policy?", *rows[0].Title)
	for _, r := range rows[1:] {
		assert.Nil(t, r.Title)
	}
	assert.Equal(t, 1, h.titler.calls)
}

func TestStreamTurn(t *testing.T) {
	h := newHarness(t)
	h.classifier.On("Classify", mock.Anything).Return(intent.ActionNone)

	var chunks []string
	collect := func(c string) error {
		chunks = append(chunks, c)
		return nil
	}

	reply, err := h.orch.StreamTurn(context.Background(), "s1", "vacation?", collect)
	require.NoError(t, err)
	assert.Equal(t, h.answerer.reply, reply)
	assert.Greater(t, len(chunks), 1)
	assert.Equal(t, reply, strings.Join(chunks, ""))

	chunks = nil
	reply, err = h.orch.StreamTurn(context.Background(), "s1", "apply for a job", collect)
	require.NoError(t, err)
	assert.Equal(t, []string{constant.MsgApplicationStarted}, chunks)

	plain, err := newHarness(t).orch.HandleTurn(context.Background(), "s1", "apply for a job")
	require.NoError(t, err)
	assert.Equal(t, plain, reply)
}

func TestMessageStoreFailure_Surfaces(t *testing.T) {
	h := newHarness(t)
	h.messages.fail = true

	_, err := h.orch.HandleTurn(context.Background(), "s1", "hi")
	assert.True(t, apperror.IsUpstream(err))
	_, active := h.machine.Current("s1")
	assert.False(t, active)
}

func TestSessionsAreIndependent(t *testing.T) {
	h := newHarness(t)
	h.classifier.On("Classify", mock.Anything).Return(intent.ActionNone)

	h.say(t, "a", "apply for a job")
	assert.Equal(t, h.answerer.reply, h.say(t, "b", "Ada"))
	assert.Equal(t, "Please provide your email:", h.say(t, "a", "Ada"))
}
