// Package eviction implements the seven interchangeable replacement
// policies (LRU, LFU, FIFO, MRU, Random, ARC, 2Q) over the shared
// metadata model in pkg/metadata, plus the Manager that invokes them
// when an insertion would exceed configured bounds (spec.md §4.3, §4.4).
//
// Every strategy is a pure policy over metadata.Provider: it never
// touches a CacheMap directly. The Manager bridges policy decisions to
// actual removal through the narrow Remover interface, keeping this
// package importable by pkg/cachemap without a dependency cycle.
package eviction

import "github.com/krishna8167/cachecore/pkg/metadata"

// Context carries the demand signal a strategy needs to decide how many
// victims (if any) are required.
type Context struct {
	CurrentSize metadata.CurrentSize
	Limits      metadata.Limits
	NewItemSize int64
}

// exceedsBounds reports whether the given projected size breaches ctx's
// limits. A zero limit means that dimension is unbounded.
func (c Context) exceedsBounds(itemCount int, sizeBytes int64) bool {
	if c.Limits.MaxItems > 0 && itemCount > c.Limits.MaxItems {
		return true
	}
	if c.Limits.MaxSizeBytes > 0 && sizeBytes > c.Limits.MaxSizeBytes {
		return true
	}
	return false
}

// Strategy is the contract every eviction policy implements (spec.md
// §4.3). SelectForEviction must return an ordered victim list sufficient
// to bring the cache under limits after the pending insertion, or an
// empty list when no eviction is required.
type Strategy interface {
	Name() string
	SelectForEviction(provider metadata.Provider, ctx Context) []string
	OnItemAdded(key string, sizeBytes int64, provider metadata.Provider)
	OnItemAccessed(key string, provider metadata.Provider)
	OnItemRemoved(key string, provider metadata.Provider)
}

// Remover is the narrow slice of CacheMap the Manager needs to actually
// carry out an eviction decision, kept separate from the full CacheMap
// contract so this package has no import-cycle dependency on
// pkg/cachemap.
type Remover interface {
	Delete(keyString string)
}
