package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"rag-chatbot-be/internal/entity"
	"rag-chatbot-be/internal/repository/contract"
	"rag-chatbot-be/internal/repository/specification"
	"rag-chatbot-be/internal/repository/unitofwork"
	"rag-chatbot-be/pkg/events"

	"github.com/google/uuid"
)

// store is the shared in-memory state behind the fake repositories.
type store struct {
	mu         sync.Mutex
	messages   []*entity.ChatMessage
	apps       map[string]*entity.JobApplication
	documents  []*entity.Document
	chunks     []*entity.DocumentChunk
	commits    int
	rollbacks  int
	failCreate error
}

func newStore() *store {
	return &store{apps: map[string]*entity.JobApplication{}}
}

type fakeFactory struct{ s *store }

func (f fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUow{s: f.s}
}

type fakeUow struct {
	s      *store
	active bool
}

func (u *fakeUow) Begin(ctx context.Context) error {
	u.active = true
	return nil
}

func (u *fakeUow) Commit() error {
	u.active = false
	u.s.commits++
	return nil
}

func (u *fakeUow) Rollback() error {
	if u.active {
		u.s.rollbacks++
	}
	u.active = false
	return nil
}

func (u *fakeUow) ChatMessageRepository() contract.ChatMessageRepository {
	return &fakeChatRepo{u.s}
}

func (u *fakeUow) JobApplicationRepository() contract.JobApplicationRepository {
	return &fakeJobRepo{u.s}
}

func (u *fakeUow) DocumentRepository() contract.DocumentRepository {
	return &fakeDocRepo{u.s}
}

type fakeChatRepo struct{ s *store }

func (r *fakeChatRepo) Create(ctx context.Context, m *entity.ChatMessage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failCreate != nil {
		return r.s.failCreate
	}
	cp := *m
	r.s.messages = append(r.s.messages, &cp)
	return nil
}

// FindOne and FindAll ignore specifications other than the session filter and
// always return rows oldest first, or newest first with Desc ordering.
func (r *fakeChatRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var sid string
	desc, limit := false, 0
	for _, sp := range specs {
		switch v := sp.(type) {
		case specification.BySessionID:
			sid = v.SessionID
		case specification.OrderBy:
			desc = v.Desc
		case specification.Limit:
			limit = v.N
		}
	}

	var out []*entity.ChatMessage
	for _, m := range r.s.messages {
		if m.SessionId == sid {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeChatRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatMessage, error) {
	all, _ := r.FindAll(ctx, specs...)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r *fakeChatRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

func (r *fakeChatRepo) LockSession(ctx context.Context, sessionId string) error { return nil }

func (r *fakeChatRepo) LatestCreatedAt(ctx context.Context, sessionId string) (*time.Time, error) {
	all, _ := r.FindAll(ctx, specification.BySessionID{SessionID: sessionId})
	if len(all) == 0 {
		return nil, nil
	}
	t := all[len(all)-1].CreatedAt
	return &t, nil
}

func (r *fakeChatRepo) ListSessions(ctx context.Context) ([]*entity.SessionSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	index := map[string]*entity.SessionSummary{}
	var out []*entity.SessionSummary
	for _, m := range r.s.messages {
		s, ok := index[m.SessionId]
		if !ok {
			s = &entity.SessionSummary{SessionId: m.SessionId, Title: m.SessionId}
			index[m.SessionId] = s
			out = append(out, s)
		}
		if m.Title != nil {
			s.Title = *m.Title
		}
		if m.CreatedAt.After(s.LastActivity) {
			s.LastActivity = m.CreatedAt
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastActivity.After(out[j].LastActivity) })
	return out, nil
}

func (r *fakeChatRepo) DeleteBySessionId(ctx context.Context, sessionId string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.messages[:0]
	var n int64
	for _, m := range r.s.messages {
		if m.SessionId == sessionId {
			n++
			continue
		}
		kept = append(kept, m)
	}
	r.s.messages = kept
	return n, nil
}

type fakeJobRepo struct{ s *store }

func (r *fakeJobRepo) FindBySessionId(ctx context.Context, sessionId string) (*entity.JobApplication, error) {
	app, ok := r.s.apps[sessionId]
	if !ok {
		return nil, nil
	}
	cp := *app
	return &cp, nil
}

func (r *fakeJobRepo) Upsert(ctx context.Context, app *entity.JobApplication) error {
	if existing, ok := r.s.apps[app.SessionId]; ok {
		app.Id = existing.Id
	} else {
		app.Id = uuid.New()
	}
	cp := *app
	r.s.apps[app.SessionId] = &cp
	return nil
}

func (r *fakeJobRepo) UpdateField(ctx context.Context, sessionId, column, value string) (int64, error) {
	app, ok := r.s.apps[sessionId]
	if !ok {
		return 0, nil
	}
	switch column {
	case "name":
		app.Name = value
	case "email":
		app.Email = value
	case "company":
		app.Company = value
	case "job_role":
		app.JobRole = value
	case "experience":
		app.Experience = value
	}
	return 1, nil
}

func (r *fakeJobRepo) DeleteBySessionId(ctx context.Context, sessionId string) (int64, error) {
	if _, ok := r.s.apps[sessionId]; !ok {
		return 0, nil
	}
	delete(r.s.apps, sessionId)
	return 1, nil
}

type fakeDocRepo struct{ s *store }

func (r *fakeDocRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sp := range specs {
		if t, ok := sp.(specification.ByTitle); ok {
			for _, d := range r.s.documents {
				if d.Title == t.Title {
					return d, nil
				}
			}
		}
	}
	return nil, nil
}

func (r *fakeDocRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]*entity.Document(nil), r.s.documents...), nil
}

func (r *fakeDocRepo) Create(ctx context.Context, d *entity.Document) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.documents = append(r.s.documents, d)
	return nil
}

func (r *fakeDocRepo) CreateChunks(ctx context.Context, chunks []*entity.DocumentChunk) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.chunks = append(r.s.chunks, chunks...)
	return nil
}

func (r *fakeDocRepo) DeleteChunksByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.chunks[:0]
	for _, c := range r.s.chunks {
		if c.DocumentId != documentId {
			kept = append(kept, c)
		}
	}
	r.s.chunks = kept
	return nil
}

func (r *fakeDocRepo) CountChunks(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.chunks)), nil
}

func (r *fakeDocRepo) SearchSimilar(ctx context.Context, emb []float32, limit int) ([]*entity.DocumentChunk, error) {
	return nil, nil
}

func (s *store) chunkCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.chunks)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, evt events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}
