package eviction

import (
	"sync"

	"github.com/krishna8167/cachecore/pkg/metadata"
)

// Manager invokes a Strategy when insertion would exceed the configured
// bounds, and fans out the three bookkeeping hooks on access/remove
// (spec.md §4.4). It owns the lock strategy-internal state and the
// metadata it reads share, per spec.md §5.
type Manager struct {
	mu       sync.Mutex
	strategy Strategy
	provider metadata.Provider
}

// NewManager builds a Manager around the given strategy and metadata
// provider.
func NewManager(strategy Strategy, provider metadata.Provider) *Manager {
	return &Manager{strategy: strategy, provider: provider}
}

// Strategy returns the active eviction policy.
func (m *Manager) Strategy() Strategy { return m.strategy }

// BeforeInsert asks the strategy which victims (if any) must be removed
// to admit a new item of newItemSize bytes, removes them via remover,
// and returns the evicted key strings. Called before a brand-new key is
// written; an overwrite of an existing key does not change the item
// count and should not invoke this.
func (m *Manager) BeforeInsert(newItemSize int64, remover Remover) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ctx := Context{
		CurrentSize: m.provider.GetCurrentSize(),
		Limits:      m.provider.GetSizeLimits(),
		NewItemSize: newItemSize,
	}

	victims := m.strategy.SelectForEviction(m.provider, ctx)
	for _, key := range victims {
		remover.Delete(key)
		m.strategy.OnItemRemoved(key, m.provider)
	}
	return victims
}

// AfterInsert notifies the strategy that key was admitted with the given
// size, so strategies with their own admission queues (ARC, 2Q) can
// update them.
func (m *Manager) AfterInsert(key string, sizeBytes int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.strategy.OnItemAdded(key, sizeBytes, m.provider)
}

// OnAccess notifies the strategy of a cache hit for key.
func (m *Manager) OnAccess(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.strategy.OnItemAccessed(key, m.provider)
}

// OnRemove notifies the strategy that key left the cache outside of an
// eviction this Manager itself drove (explicit delete, TTL expiry,
// location invalidation).
func (m *Manager) OnRemove(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.strategy.OnItemRemoved(key, m.provider)
}
