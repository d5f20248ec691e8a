package eviction

import (
	"fmt"
)

// PolicyName is one of the seven supported eviction policies. Matching is
// lowercase and case-sensitive, per spec.md §6.
type PolicyName string

const (
	PolicyLRU    PolicyName = "lru"
	PolicyLFU    PolicyName = "lfu"
	PolicyFIFO   PolicyName = "fifo"
	PolicyMRU    PolicyName = "mru"
	PolicyRandom PolicyName = "random"
	PolicyARC    PolicyName = "arc"
	Policy2Q     PolicyName = "2q"
)

// Config is the union of every strategy's tunables, as a factory accepts
// a single optional config object (spec.md §4.3). Unset/invalid fields
// fall back to defaults rather than causing an error; only an unknown
// PolicyName fails loudly.
type Config struct {
	LFU  LFUConfig
	TwoQ TwoQConfig
}

// New builds the named strategy, applying config where relevant.
// Invalid field values in config never cause an error — they are
// silently replaced with defaults, per spec.md §4.3's "config
// validation" rule. An unrecognized name returns an error.
func New(name PolicyName, cfg Config, now func() int64) (Strategy, error) {
	switch name {
	case PolicyLRU:
		return NewLRU(now), nil
	case PolicyMRU:
		return NewMRU(now), nil
	case PolicyFIFO:
		return NewFIFO(), nil
	case PolicyRandom:
		return NewRandom(nil), nil
	case PolicyLFU:
		return NewLFU(sanitizeLFU(cfg.LFU), now), nil
	case PolicyARC:
		return NewARC(), nil
	case Policy2Q:
		return NewTwoQ(cfg.TwoQ, now), nil
	default:
		return nil, fmt.Errorf("eviction: unknown policy %q", name)
	}
}

// sanitizeLFU replaces invalid config values with safe defaults instead
// of erroring, per the factory's "never throw on bad config" contract.
func sanitizeLFU(c LFUConfig) LFUConfig {
	if c.DecayFactor < 0 || c.DecayFactor >= 1 {
		c.DecayFactor = 0
	}
	if c.DecayInterval < 0 {
		c.DecayInterval = 0
	}
	return c
}
