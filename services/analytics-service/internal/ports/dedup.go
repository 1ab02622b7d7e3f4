package ports

import "context"

// Deduplicator remembers processed event ids for a bounded time.
type Deduplicator interface {
	// MarkSeen returns true the first time an id is marked.
	MarkSeen(ctx context.Context, eventID string) (bool, error)
}
