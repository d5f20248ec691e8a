package eviction

import "github.com/krishna8167/cachecore/pkg/metadata"

// LFUConfig configures the optional time-windowed decay enhancement
// (spec.md §4.3). A zero DecayInterval disables decay and falls back to
// a plain access-count comparison.
type LFUConfig struct {
	DecayFactor   float64 // in [0, 1); fraction of the old score retained is (1 - DecayFactor)
	DecayInterval int64   // ms; 0 disables decay
}

// LFU evicts the item with the smallest effective frequency: AccessCount
// when decay is disabled, or a time-decayed FrequencyScore when enabled.
type LFU struct {
	cfg LFUConfig
	now func() int64
}

func NewLFU(cfg LFUConfig, now func() int64) *LFU {
	if now == nil {
		now = defaultClock
	}
	return &LFU{cfg: cfg, now: now}
}

func (s *LFU) Name() string { return "lfu" }

func (s *LFU) SelectForEviction(provider metadata.Provider, ctx Context) []string {
	return selectByPriority(provider, ctx, s.effectiveFrequency)
}

func (s *LFU) effectiveFrequency(m metadata.Metadata) float64 {
	if s.cfg.DecayInterval > 0 {
		return m.FrequencyScore
	}
	return float64(m.AccessCount)
}

func (s *LFU) OnItemAdded(key string, sizeBytes int64, provider metadata.Provider) {}

func (s *LFU) OnItemAccessed(key string, provider metadata.Provider) {
	m, ok := provider.GetMetadata(key)
	if !ok {
		return
	}
	m.LastAccessedAt = s.now()
	m.AccessCount++
	m.RawFrequency++

	if s.cfg.DecayInterval > 0 {
		now := s.now()
		if m.LastFrequencyUpdate == 0 {
			m.LastFrequencyUpdate = now
		}
		elapsed := now - m.LastFrequencyUpdate
		windows := elapsed / s.cfg.DecayInterval
		for i := int64(0); i < windows; i++ {
			m.FrequencyScore *= 1 - s.cfg.DecayFactor
		}
		m.FrequencyScore += 1
		if windows > 0 {
			m.LastFrequencyUpdate = now
		}
	}

	provider.SetMetadata(key, m)
}

func (s *LFU) OnItemRemoved(key string, provider metadata.Provider) {}
