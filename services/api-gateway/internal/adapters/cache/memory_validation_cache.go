package cache

import (
	"context"
	"sync"
	"time"

	"github.com/patientmesh/mesh/platform/tokens"
)

type memoryEntry struct {
	claims    tokens.Claims
	expiresAt time.Time
}

// MemoryValidationCache is the single-instance fallback when no Redis URL is
// configured.
type MemoryValidationCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	maxSize int
	nowFn   func() time.Time
}

func NewMemoryValidationCache(maxSize int) *MemoryValidationCache {
	if maxSize <= 0 {
		maxSize = 10000
	}
	return &MemoryValidationCache{
		entries: make(map[string]memoryEntry),
		maxSize: maxSize,
		nowFn:   time.Now,
	}
}

func (c *MemoryValidationCache) Get(_ context.Context, fingerprint string) (tokens.Claims, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[fingerprint]
	if !ok {
		return tokens.Claims{}, false, nil
	}
	if !c.nowFn().Before(entry.expiresAt) {
		delete(c.entries, fingerprint)
		return tokens.Claims{}, false, nil
	}
	return entry.claims, true, nil
}

func (c *MemoryValidationCache) Put(_ context.Context, fingerprint string, claims tokens.Claims, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.nowFn()
	if len(c.entries) >= c.maxSize {
		for key, entry := range c.entries {
			if !now.Before(entry.expiresAt) {
				delete(c.entries, key)
			}
		}
		// Still full: drop everything rather than grow without bound.
		if len(c.entries) >= c.maxSize {
			c.entries = make(map[string]memoryEntry)
		}
	}
	c.entries[fingerprint] = memoryEntry{claims: claims, expiresAt: now.Add(ttl)}
	return nil
}
