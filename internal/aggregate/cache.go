package aggregate

import (
	"sync"
	"time"

	"github.com/skyiq/backend/internal/models"
)

const DefaultCacheTTL = 30 * time.Minute

// Cache holds one aggregation bundle per tenant. It is the only shared
// mutable state in the pipeline; implementations must be safe for
// concurrent use. Two racing recomputes may both write — the last writer's
// entry is retained, which is acceptable duplicate work.
type Cache interface {
	Get(tenantID string) (models.AggregatedBusinessData, bool)
	Set(tenantID string, data models.AggregatedBusinessData)
	Clear(tenantID string)
}

type memoryEntry struct {
	data      models.AggregatedBusinessData
	expiresAt time.Time
}

// MemoryCache is the in-process Cache with a time-to-live per entry. The
// clock is injectable so tests can expire entries without sleeping.
type MemoryCache struct {
	TTL time.Duration
	Now func() time.Time

	mu      sync.RWMutex
	entries map[string]memoryEntry
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &MemoryCache{
		TTL:     ttl,
		Now:     time.Now,
		entries: map[string]memoryEntry{},
	}
}

func (c *MemoryCache) Get(tenantID string) (models.AggregatedBusinessData, bool) {
	c.mu.RLock()
	entry, ok := c.entries[tenantID]
	c.mu.RUnlock()
	if !ok || c.Now().After(entry.expiresAt) {
		return models.AggregatedBusinessData{}, false
	}
	return entry.data, true
}

func (c *MemoryCache) Set(tenantID string, data models.AggregatedBusinessData) {
	c.mu.Lock()
	c.entries[tenantID] = memoryEntry{data: data, expiresAt: c.Now().Add(c.TTL)}
	c.mu.Unlock()
}

func (c *MemoryCache) Clear(tenantID string) {
	c.mu.Lock()
	delete(c.entries, tenantID)
	c.mu.Unlock()
}
