// Package session lists chat sessions and names them.
package session

import (
	"context"

	"rag-chatbot-be/internal/entity"
	"rag-chatbot-be/internal/pkg/logger"
)

type Lister interface {
	ListSessions(ctx context.Context) ([]*entity.SessionSummary, error)
}

// Cache holds the last computed directory. Implementations may drop entries at
// any time; a miss only costs a query.
type Cache interface {
	Get(ctx context.Context) ([]*entity.SessionSummary, bool)
	Set(ctx context.Context, sessions []*entity.SessionSummary)
	Invalidate(ctx context.Context)
}

type Directory struct {
	lister Lister
	cache  Cache
	logger logger.ILogger
}

// NewDirectory builds a directory. cache may be nil.
func NewDirectory(lister Lister, cache Cache, logger logger.ILogger) *Directory {
	return &Directory{lister: lister, cache: cache, logger: logger}
}

// List returns sessions ordered by most recent activity.
func (d *Directory) List(ctx context.Context) ([]*entity.SessionSummary, error) {
	if d.cache != nil {
		if sessions, ok := d.cache.Get(ctx); ok {
			return sessions, nil
		}
	}

	sessions, err := d.lister.ListSessions(ctx)
	if err != nil {
		return nil, err
	}
	for _, s := range sessions {
		if s.Title == "" {
			s.Title = s.SessionId
		}
	}

	if d.cache != nil {
		d.cache.Set(ctx, sessions)
	}
	return sessions, nil
}

// Invalidate must be called whenever a message is appended or a session deleted.
func (d *Directory) Invalidate(ctx context.Context) {
	if d.cache != nil {
		d.cache.Invalidate(ctx)
	}
}
