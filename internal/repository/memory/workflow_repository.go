package memory

import (
	"time"

	"rag-chatbot-be/pkg/rag/workflow"

	"github.com/patrickmn/go-cache"
)

// WorkflowRepository keeps job application drafts in process memory. Drafts
// expire after ttl of inactivity and never survive a restart.
type WorkflowRepository struct {
	cache *cache.Cache
}

var _ workflow.Store = (*WorkflowRepository)(nil)

func NewWorkflowRepository(ttl time.Duration) *WorkflowRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	cleanup := ttl / 6
	if cleanup < time.Second {
		cleanup = time.Second
	}
	return &WorkflowRepository{
		cache: cache.New(ttl, cleanup),
	}
}

func (r *WorkflowRepository) Save(draft *workflow.Draft) {
	r.cache.Set(draft.SessionID, draft.Clone(), cache.DefaultExpiration)
}

func (r *WorkflowRepository) Get(sessionID string) (*workflow.Draft, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*workflow.Draft).Clone(), true
	}
	return nil, false
}

func (r *WorkflowRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}

func (r *WorkflowRepository) Count() int {
	return r.cache.ItemCount()
}
