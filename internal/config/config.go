// Package config loads the construction surface a cache instance needs
// — cache type, bounds, eviction policy, TTL, bypass flag — from file,
// env, or defaults via viper, the layered-config library
// vellankikoti-kubilitics-os-emergent and jontk-s9s both build their
// settings loaders on.
package config

import (
	"fmt"

	"github.com/krishna8167/cachecore/internal/cerr"
	"github.com/krishna8167/cachecore/pkg/ckey"
	"github.com/krishna8167/cachecore/pkg/eviction"
	"github.com/krishna8167/cachecore/pkg/sizeof"
	"github.com/spf13/viper"
)

// Settings is the parsed, validated construction surface (spec.md §4.3).
type Settings struct {
	CacheType      ckey.Kind
	LocationKinds  []ckey.Kind
	MaxItems       int
	MaxSizeBytes   int64
	EvictionPolicy eviction.PolicyName
	EvictionConfig eviction.Config
	TTLMillis      int64
	BypassCache    bool
}

// Load reads settings from the given viper instance, applying cachecore's
// defaults for any key left unset. v is typically built by the caller
// with viper.SetConfigFile/AutomaticEnv already configured; Load only
// reads and validates.
func Load(v *viper.Viper) (Settings, error) {
	setDefaults(v)

	s := Settings{
		CacheType:      ckey.Kind(v.GetString("cacheType")),
		MaxItems:       v.GetInt("maxItems"),
		EvictionPolicy: eviction.PolicyName(v.GetString("evictionPolicy")),
		BypassCache:    v.GetBool("bypassCache"),
	}

	for _, k := range v.GetStringSlice("locationKinds") {
		s.LocationKinds = append(s.LocationKinds, ckey.Kind(k))
	}

	if raw := v.GetString("maxSizeBytes"); raw != "" {
		n, err := sizeof.ParseSize(raw)
		if err != nil {
			return Settings{}, fmt.Errorf("%w: maxSizeBytes: %v", cerr.ErrBounds, err)
		}
		s.MaxSizeBytes = n
	}

	if raw := v.GetString("ttl"); raw != "" {
		ms, err := parseTTL(raw)
		if err != nil {
			return Settings{}, fmt.Errorf("%w: ttl: %v", cerr.ErrBounds, err)
		}
		s.TTLMillis = ms
	}

	s.EvictionConfig = eviction.Config{
		LFU: eviction.LFUConfig{
			DecayFactor:   v.GetFloat64("evictionConfig.lfu.decayFactor"),
			DecayInterval: v.GetInt64("evictionConfig.lfu.decayInterval"),
		},
		TwoQ: eviction.TwoQConfig{
			A1Fraction:                  v.GetFloat64("evictionConfig.twoQ.a1Fraction"),
			PromotionThreshold:          v.GetFloat64("evictionConfig.twoQ.promotionThreshold"),
			FrequencyWeightedAmEviction: v.GetBool("evictionConfig.twoQ.frequencyWeightedAmEviction"),
		},
	}

	if err := s.validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("maxItems", 0)
	v.SetDefault("evictionPolicy", string(eviction.PolicyLRU))
	v.SetDefault("bypassCache", false)
}

func (s Settings) validate() error {
	if s.CacheType == "" {
		return fmt.Errorf("%w: cacheType must not be empty", cerr.ErrBounds)
	}
	if s.MaxItems < 0 {
		return fmt.Errorf("%w: maxItems must not be negative", cerr.ErrBounds)
	}
	if s.MaxSizeBytes < 0 {
		return fmt.Errorf("%w: maxSizeBytes must not be negative", cerr.ErrBounds)
	}
	switch s.EvictionPolicy {
	case eviction.PolicyLRU, eviction.PolicyLFU, eviction.PolicyFIFO, eviction.PolicyMRU,
		eviction.PolicyRandom, eviction.PolicyARC, eviction.Policy2Q:
	default:
		return fmt.Errorf("%w: unknown evictionPolicy %q", cerr.ErrBounds, s.EvictionPolicy)
	}
	return nil
}

// parseTTL accepts either a bare millisecond integer or a Go duration
// string ("30s", "5m"), matching the two forms operators tend to reach
// for in a config file.
func parseTTL(raw string) (int64, error) {
	if d, err := parseDuration(raw); err == nil {
		return d.Milliseconds(), nil
	}
	n, err := parseInt(raw)
	if err != nil {
		return 0, fmt.Errorf("not a duration or integer millisecond count: %q", raw)
	}
	return n, nil
}
