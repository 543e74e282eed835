package workflow

// Store keeps drafts keyed by session id. Implementations must hand out and
// keep copies so callers never share a *Draft. Entries may expire on their own;
// an expired draft reads as no draft.
type Store interface {
	Get(sessionID string) (*Draft, bool)
	Save(draft *Draft)
	Delete(sessionID string)
}
