package eviction

import "github.com/krishna8167/cachecore/pkg/metadata"

// FIFO evicts the item with the smallest addedAt. Accesses never affect
// ordering, unlike LRU/MRU.
type FIFO struct{}

func NewFIFO() *FIFO { return &FIFO{} }

func (s *FIFO) Name() string { return "fifo" }

func (s *FIFO) SelectForEviction(provider metadata.Provider, ctx Context) []string {
	return selectByPriority(provider, ctx, func(m metadata.Metadata) float64 {
		return float64(m.AddedAt)
	})
}

func (s *FIFO) OnItemAdded(key string, sizeBytes int64, provider metadata.Provider)  {}
func (s *FIFO) OnItemAccessed(key string, provider metadata.Provider)                {}
func (s *FIFO) OnItemRemoved(key string, provider metadata.Provider)                 {}
