package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"rag-chatbot-be/internal/entity"
	"rag-chatbot-be/internal/pkg/logger"
	"rag-chatbot-be/pkg/rag/session"

	"github.com/redis/go-redis/v9"
)

const sessionDirectoryKey = "chat:sessions:directory"

type sessionRow struct {
	SessionId    string    `json:"session_id"`
	Title        string    `json:"title"`
	LastActivity time.Time `json:"last_activity"`
}

// SessionDirectoryCache stores the rendered session list in Redis so every
// instance serves the same directory until a write invalidates it.
type SessionDirectoryCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger logger.ILogger
}

var _ session.Cache = (*SessionDirectoryCache)(nil)

func NewSessionDirectoryCache(rdb *redis.Client, ttl time.Duration, logger logger.ILogger) *SessionDirectoryCache {
	return &SessionDirectoryCache{rdb: rdb, ttl: ttl, logger: logger}
}

func (c *SessionDirectoryCache) Get(ctx context.Context) ([]*entity.SessionSummary, bool) {
	data, err := c.rdb.Get(ctx, sessionDirectoryKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("SessionCache", "Redis read failed", map[string]interface{}{"error": err.Error()})
		return nil, false
	}

	var rows []sessionRow
	if err := json.Unmarshal(data, &rows); err != nil {
		c.logger.Warn("SessionCache", "Discarding unreadable cache entry", map[string]interface{}{"error": err.Error()})
		return nil, false
	}

	out := make([]*entity.SessionSummary, len(rows))
	for i, r := range rows {
		out[i] = &entity.SessionSummary{SessionId: r.SessionId, Title: r.Title, LastActivity: r.LastActivity}
	}
	return out, true
}

func (c *SessionDirectoryCache) Set(ctx context.Context, sessions []*entity.SessionSummary) {
	rows := make([]sessionRow, len(sessions))
	for i, s := range sessions {
		rows[i] = sessionRow{SessionId: s.SessionId, Title: s.Title, LastActivity: s.LastActivity}
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, sessionDirectoryKey, data, c.ttl).Err(); err != nil {
		c.logger.Warn("SessionCache", "Redis write failed", map[string]interface{}{"error": err.Error()})
	}
}

func (c *SessionDirectoryCache) Invalidate(ctx context.Context) {
	if err := c.rdb.Del(ctx, sessionDirectoryKey).Err(); err != nil {
		c.logger.Warn("SessionCache", "Redis invalidation failed", map[string]interface{}{"error": err.Error()})
	}
}
