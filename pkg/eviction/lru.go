package eviction

import "github.com/krishna8167/cachecore/pkg/metadata"

// LRU evicts the item with the smallest lastAccessedAt: the least
// recently used entry. Generalized from the teacher's container/list +
// map LRU (Krishna8167-tempuscache/cache.go's evictOldest/removeElement)
// into a standalone policy over metadata.Provider rather than an
// inlined list.
type LRU struct {
	now func() int64
}

// NewLRU builds an LRU strategy. now defaults to the wall clock; tests
// may inject a deterministic clock.
func NewLRU(now func() int64) *LRU {
	if now == nil {
		now = defaultClock
	}
	return &LRU{now: now}
}

func (s *LRU) Name() string { return "lru" }

func (s *LRU) SelectForEviction(provider metadata.Provider, ctx Context) []string {
	return selectByPriority(provider, ctx, func(m metadata.Metadata) float64 {
		return float64(m.LastAccessedAt)
	})
}

func (s *LRU) OnItemAdded(key string, sizeBytes int64, provider metadata.Provider) {}

func (s *LRU) OnItemAccessed(key string, provider metadata.Provider) {
	m, ok := provider.GetMetadata(key)
	if !ok {
		return
	}
	m.LastAccessedAt = s.now()
	m.AccessCount++
	provider.SetMetadata(key, m)
}

func (s *LRU) OnItemRemoved(key string, provider metadata.Provider) {}
