// Package cachemap implements the in-memory item store a single cache
// instance owns: the items map, their insertion order, and the
// query-result reverse index, generalised from
// Krishna8167-tempuscache/cache.go's "map plus container/list plus one
// sync.RWMutex" shape to delegate eviction and expiry to pluggable
// collaborators instead of inlining an LRU list (spec.md §4.1).
package cachemap

import (
	"encoding/json"
	"fmt"

	"github.com/krishna8167/cachecore/internal/cerr"
	"github.com/krishna8167/cachecore/pkg/citem"
	"github.com/krishna8167/cachecore/pkg/ckey"
	"github.com/krishna8167/cachecore/pkg/eviction"
	"github.com/krishna8167/cachecore/pkg/metadata"
	"github.com/krishna8167/cachecore/pkg/sizeof"
	"github.com/krishna8167/cachecore/pkg/ttlmgr"
	"sync"
)

// CacheMap stores items of a single primary Kind, keyed by ckey.Key,
// alongside the query-result index the read-through operations populate
// (spec.md §4.1.1). It is safe for concurrent use.
type CacheMap struct {
	mu sync.RWMutex

	primaryKind ckey.Kind
	kta         []ckey.Kind // [primaryKind, locationKind1, locationKind2, ...]

	items map[string]citem.Item
	order []string // insertion order of currently-live keys, for deterministic iteration

	queryResults map[string][]ckey.Key      // queryHash -> ordered member keys
	reverseIndex map[string]map[string]bool // keyString -> set of queryHashes referencing it

	metadataProvider metadata.Provider
	evictionMgr      *eviction.Manager
	ttl              *ttlmgr.Manager

	remover remover
	now     func() int64

	onEvicted func(keyStr string)
	onExpired func(keyStr string)
}

// SetHooks installs optional observers for eviction and TTL-expiry
// removals, e.g. so an owning Cache can maintain its own stats
// counters. Either argument may be nil. Must be called before any
// concurrent use begins.
func (c *CacheMap) SetHooks(onEvicted, onExpired func(keyStr string)) {
	c.onEvicted = onEvicted
	c.onExpired = onExpired
}

// New builds an empty CacheMap. kta names the fixed kind chain every
// key stored here must match: kta[0] is the primary kind, kta[1:] the
// required location kind chain for ComKeys (spec.md §3.2).
func New(kta []ckey.Kind, metadataProvider metadata.Provider, evictionMgr *eviction.Manager, ttl *ttlmgr.Manager, now func() int64) *CacheMap {
	if now == nil {
		now = defaultClock
	}
	c := &CacheMap{
		primaryKind:      kta[0],
		kta:              kta,
		items:            make(map[string]citem.Item),
		queryResults:     make(map[string][]ckey.Key),
		reverseIndex:     make(map[string]map[string]bool),
		metadataProvider: metadataProvider,
		evictionMgr:      evictionMgr,
		ttl:              ttl,
		now:              now,
	}
	c.remover = remover{cm: c}
	return c
}

// remover adapts CacheMap to eviction.Remover without exposing the
// string-keyed delete path as public API: eviction.Manager calls
// Delete and then notifies the strategy itself, so this must not also
// touch the strategy (see CacheMap.Delete, which does both in the
// right order for an explicit caller-driven removal).
type remover struct{ cm *CacheMap }

func (r remover) Delete(keyStr string) { r.cm.deleteByKeyString(keyStr) }

// Set stores item under key, validating that item's own key matches
// both the key argument and this CacheMap's declared kind chain
// (spec.md §3.2). Overwriting an existing key preserves addedAt but
// refreshes lastAccessedAt and re-estimates size; it does not run
// eviction, since the item count does not grow. ttlMillis of 0 means
// no expiry.
func (c *CacheMap) Set(key ckey.Key, item citem.Item, ttlMillis int64) error {
	if err := c.validate(key, item); err != nil {
		return err
	}

	keyStr := key.String()
	sizeBytes := estimateSize(item)
	now := c.now()

	c.mu.RLock()
	_, exists := c.items[keyStr]
	c.mu.RUnlock()

	if !exists {
		victims := c.evictionMgr.BeforeInsert(sizeBytes, c.remover)
		if c.onEvicted != nil {
			for _, v := range victims {
				c.onEvicted(v)
			}
		}
	}

	c.mu.Lock()
	old, hadMeta := c.metadataProvider.GetMetadata(keyStr)
	m := old
	if !exists || !hadMeta {
		m = metadata.Metadata{AddedAt: now}
		c.order = append(c.order, keyStr)
	}
	m.LastAccessedAt = now
	m.EstimatedSize = sizeBytes
	c.metadataProvider.SetMetadata(keyStr, m)
	c.items[keyStr] = item
	c.mu.Unlock()

	c.ttl.Set(keyStr, ttlMillis)

	if !exists {
		c.evictionMgr.AfterInsert(keyStr, sizeBytes)
	}
	return nil
}

// Get returns the item stored under key, or (nil, false) if absent or
// its TTL has passed. A hit notifies the eviction strategy.
func (c *CacheMap) Get(key ckey.Key) (citem.Item, bool) {
	keyStr := key.String()

	if c.ttl.IsExpired(keyStr) {
		c.deleteByKeyString(keyStr)
		c.evictionMgr.OnRemove(keyStr)
		if c.onExpired != nil {
			c.onExpired(keyStr)
		}
		return nil, false
	}

	c.mu.RLock()
	item, ok := c.items[keyStr]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	c.evictionMgr.OnAccess(keyStr)
	return item, true
}

// IncludesKey is a pure presence check: it neither touches metadata nor
// expires the key, so callers needing TTL-aware presence should Get
// instead (spec.md §4.1).
func (c *CacheMap) IncludesKey(key ckey.Key) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.items[key.String()]
	return ok
}

// Delete removes key, notifying the eviction strategy exactly once
// (unlike the internal remover path the eviction Manager itself drives,
// which already notifies the strategy on its own).
func (c *CacheMap) Delete(key ckey.Key) {
	keyStr := key.String()
	c.deleteByKeyString(keyStr)
	c.evictionMgr.OnRemove(keyStr)
}

func (c *CacheMap) deleteByKeyString(keyStr string) {
	c.mu.Lock()
	if _, existed := c.items[keyStr]; existed {
		delete(c.items, keyStr)
		c.removeFromOrderLocked(keyStr)
	}
	c.invalidateQueryResultsForKeyLocked(keyStr)
	c.mu.Unlock()

	c.metadataProvider.DeleteMetadata(keyStr)
	c.ttl.Remove(keyStr)
}

func (c *CacheMap) removeFromOrderLocked(keyStr string) {
	for i, ks := range c.order {
		if ks == keyStr {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

// Keys returns every live key, in insertion order.
func (c *CacheMap) Keys() []ckey.Key {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]ckey.Key, 0, len(c.order))
	for _, ks := range c.order {
		if item, ok := c.items[ks]; ok {
			out = append(out, item.ItemKey())
		}
	}
	return out
}

// Values returns every live item, in insertion order.
func (c *CacheMap) Values() []citem.Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]citem.Item, 0, len(c.order))
	for _, ks := range c.order {
		if item, ok := c.items[ks]; ok {
			out = append(out, item)
		}
	}
	return out
}

// AllIn returns every live item whose key's location chain has loc as a
// prefix, in insertion order. An empty loc returns every item.
func (c *CacheMap) AllIn(loc ckey.LocKeyArray) []citem.Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []citem.Item
	for _, ks := range c.order {
		item, ok := c.items[ks]
		if !ok {
			continue
		}
		if ckey.HasLocationPrefix(item.ItemKey(), loc) {
			out = append(out, item)
		}
	}
	return out
}

// Predicate is the in-memory query shape QueryIn evaluates: equality on
// every named field (matched against the item's JSON-marshalled
// payload) plus an optional result-count limit. A Predicate with no
// Filters matches every item.
type Predicate struct {
	Filters map[string]interface{}
	Limit   int
}

// QueryIn evaluates pred against every live item whose key has loc as a
// location prefix, in insertion order, honoring pred.Limit if positive.
func (c *CacheMap) QueryIn(pred Predicate, loc ckey.LocKeyArray) []citem.Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []citem.Item
	for _, ks := range c.order {
		item, ok := c.items[ks]
		if !ok {
			continue
		}
		if !ckey.HasLocationPrefix(item.ItemKey(), loc) {
			continue
		}
		if !matchesPredicate(item, pred) {
			continue
		}
		out = append(out, item)
		if pred.Limit > 0 && len(out) >= pred.Limit {
			break
		}
	}
	return out
}

// SetQueryResult records keys as the member set of the query
// fingerprinted by hash, replacing any prior entry for that hash and
// its reverse-index links (spec.md §4.1.1). No validation of key
// presence in the item store is performed.
func (c *CacheMap) SetQueryResult(hash string, keys []ckey.Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dropQueryResultLocked(hash)

	stored := make([]ckey.Key, len(keys))
	copy(stored, keys)
	c.queryResults[hash] = stored

	for _, k := range stored {
		ks := k.String()
		if c.reverseIndex[ks] == nil {
			c.reverseIndex[ks] = make(map[string]bool)
		}
		c.reverseIndex[ks][hash] = true
	}
}

// GetQueryResult returns the member keys recorded for hash.
func (c *CacheMap) GetQueryResult(hash string) ([]ckey.Key, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys, ok := c.queryResults[hash]
	if !ok {
		return nil, false
	}
	out := make([]ckey.Key, len(keys))
	copy(out, keys)
	return out, true
}

// HasQueryResult reports whether hash has a recorded entry.
func (c *CacheMap) HasQueryResult(hash string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.queryResults[hash]
	return ok
}

// DeleteQueryResult removes hash's entry and its reverse-index links.
func (c *CacheMap) DeleteQueryResult(hash string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dropQueryResultLocked(hash)
}

// dropQueryResultLocked removes hash's query-result entry and, for
// every key it referenced, the reverse-index link back to hash. Caller
// must hold c.mu.
func (c *CacheMap) dropQueryResultLocked(hash string) {
	keys, ok := c.queryResults[hash]
	if !ok {
		return
	}
	for _, k := range keys {
		ks := k.String()
		if set, ok := c.reverseIndex[ks]; ok {
			delete(set, hash)
			if len(set) == 0 {
				delete(c.reverseIndex, ks)
			}
		}
	}
	delete(c.queryResults, hash)
}

// invalidateQueryResultsForKeyLocked drops every query-result entry that
// lists keyStr as a member -- the whole entry, never a filtered subset,
// per spec.md §4.1.1's "conservative over precise" invalidation rule.
// Caller must hold c.mu.
func (c *CacheMap) invalidateQueryResultsForKeyLocked(keyStr string) {
	hashes := c.reverseIndex[keyStr]
	if len(hashes) == 0 {
		return
	}
	for h := range hashes {
		c.dropQueryResultLocked(h)
	}
}

// InvalidateLocation removes every item whose key has loc as a location
// prefix, and every query result touching one of those items.
func (c *CacheMap) InvalidateLocation(loc ckey.LocKeyArray) {
	c.mu.Lock()
	var toRemove []string
	for _, ks := range c.order {
		item, ok := c.items[ks]
		if ok && ckey.HasLocationPrefix(item.ItemKey(), loc) {
			toRemove = append(toRemove, ks)
		}
	}
	for _, ks := range toRemove {
		delete(c.items, ks)
		c.removeFromOrderLocked(ks)
		c.invalidateQueryResultsForKeyLocked(ks)
	}
	c.mu.Unlock()

	for _, ks := range toRemove {
		c.metadataProvider.DeleteMetadata(ks)
		c.ttl.Remove(ks)
		c.evictionMgr.OnRemove(ks)
	}
}

// InvalidateItemKeys removes exactly the given keys (absent keys are
// no-ops) and every query result touching any of them.
func (c *CacheMap) InvalidateItemKeys(keys []ckey.Key) {
	strs := make([]string, 0, len(keys))
	c.mu.Lock()
	for _, k := range keys {
		ks := k.String()
		if _, ok := c.items[ks]; !ok {
			continue
		}
		delete(c.items, ks)
		c.removeFromOrderLocked(ks)
		c.invalidateQueryResultsForKeyLocked(ks)
		strs = append(strs, ks)
	}
	c.mu.Unlock()

	for _, ks := range strs {
		c.metadataProvider.DeleteMetadata(ks)
		c.ttl.Remove(ks)
		c.evictionMgr.OnRemove(ks)
	}
}

// Clear empties the CacheMap entirely: items, metadata, TTLs, and the
// query-result index.
func (c *CacheMap) Clear() {
	c.mu.Lock()
	keys := make([]string, 0, len(c.items))
	for ks := range c.items {
		keys = append(keys, ks)
	}
	c.items = make(map[string]citem.Item)
	c.order = nil
	c.queryResults = make(map[string][]ckey.Key)
	c.reverseIndex = make(map[string]map[string]bool)
	c.mu.Unlock()

	c.metadataProvider.ClearMetadata()
	c.ttl.Clear()
	for _, ks := range keys {
		c.evictionMgr.OnRemove(ks)
	}
}

// validate enforces spec.md §3.2's kta rule: an item's key kind must
// equal this CacheMap's primary kind, the key argument must match the
// item's own key, and a ComKey's location chain must match the
// declared kind chain exactly.
func (c *CacheMap) validate(key ckey.Key, item citem.Item) error {
	itemKey := item.ItemKey()
	if itemKey.Kt() != c.primaryKind {
		return fmt.Errorf("%w: item key kind %q does not match cachemap primary kind %q", cerr.ErrValidation, itemKey.Kt(), c.primaryKind)
	}
	if !ckey.Equal(key, itemKey) {
		return fmt.Errorf("%w: key argument does not match item.ItemKey()", cerr.ErrValidation)
	}

	expected := c.kta[1:]
	if ck, ok := key.(ckey.ComKey); ok {
		if len(ck.Loc) != len(expected) {
			return fmt.Errorf("%w: location chain length %d does not match expected %d", cerr.ErrValidation, len(ck.Loc), len(expected))
		}
		for i, lk := range ck.Loc {
			if lk.Kind != expected[i] {
				return fmt.Errorf("%w: location kind at level %d is %q, expected %q", cerr.ErrValidation, i, lk.Kind, expected[i])
			}
		}
	} else if len(expected) != 0 {
		return fmt.Errorf("%w: cachemap requires a ComKey with %d location level(s)", cerr.ErrValidation, len(expected))
	}
	return nil
}

func matchesPredicate(item citem.Item, pred Predicate) bool {
	if len(pred.Filters) == 0 {
		return true
	}
	data, err := json.Marshal(item)
	if err != nil {
		return false
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return false
	}
	for k, want := range pred.Filters {
		got, present := fields[k]
		if !present {
			return false
		}
		if fmt.Sprintf("%v", got) != fmt.Sprintf("%v", want) {
			return false
		}
	}
	return true
}

func estimateSize(item citem.Item) int64 {
	data, err := json.Marshal(item)
	if err != nil {
		return 32
	}
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return 32
	}
	return sizeof.Estimate(v)
}
