package cache

import (
	"context"
	"sync"
	"time"
)

type MemoryDeduplicator struct {
	mu    sync.Mutex
	seen  map[string]time.Time
	ttl   time.Duration
	nowFn func() time.Time
}

func NewMemoryDeduplicator(ttl time.Duration) *MemoryDeduplicator {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &MemoryDeduplicator{
		seen:  make(map[string]time.Time),
		ttl:   ttl,
		nowFn: time.Now,
	}
}

func (d *MemoryDeduplicator) MarkSeen(_ context.Context, eventID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := d.nowFn()
	if expiresAt, ok := d.seen[eventID]; ok && now.Before(expiresAt) {
		return false, nil
	}
	d.seen[eventID] = now.Add(d.ttl)
	if len(d.seen)%1024 == 0 {
		d.sweep(now)
	}
	return true, nil
}

func (d *MemoryDeduplicator) sweep(now time.Time) {
	for id, expiresAt := range d.seen {
		if !now.Before(expiresAt) {
			delete(d.seen, id)
		}
	}
}
