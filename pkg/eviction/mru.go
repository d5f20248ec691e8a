package eviction

import "github.com/krishna8167/cachecore/pkg/metadata"

// MRU evicts the item with the largest lastAccessedAt: the most recently
// used entry. Mirrors LRU with the priority sign flipped.
type MRU struct {
	now func() int64
}

func NewMRU(now func() int64) *MRU {
	if now == nil {
		now = defaultClock
	}
	return &MRU{now: now}
}

func (s *MRU) Name() string { return "mru" }

func (s *MRU) SelectForEviction(provider metadata.Provider, ctx Context) []string {
	return selectByPriority(provider, ctx, func(m metadata.Metadata) float64 {
		return -float64(m.LastAccessedAt)
	})
}

func (s *MRU) OnItemAdded(key string, sizeBytes int64, provider metadata.Provider) {}

func (s *MRU) OnItemAccessed(key string, provider metadata.Provider) {
	m, ok := provider.GetMetadata(key)
	if !ok {
		return
	}
	m.LastAccessedAt = s.now()
	m.AccessCount++
	provider.SetMetadata(key, m)
}

func (s *MRU) OnItemRemoved(key string, provider metadata.Provider) {}
