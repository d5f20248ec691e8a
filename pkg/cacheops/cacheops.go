// Package cacheops implements the read-through operations (spec.md
// §4.5): get/retrieve/all/find/findOne over a CacheMap backed by a
// remote fallback, generalizing Krishna8167-tempuscache/cache.go's
// Get/Set control flow (lazy expiration check, stats update, single
// lock discipline) into an orchestrator that also owns remote
// fallback, query-result caching, and event publication.
package cacheops

import (
	"context"
	"fmt"
	"sync"

	"github.com/krishna8167/cachecore/internal/cerr"
	"github.com/krishna8167/cachecore/internal/config"
	"github.com/krishna8167/cachecore/pkg/cachemap"
	"github.com/krishna8167/cachecore/pkg/citem"
	"github.com/krishna8167/cachecore/pkg/ckey"
	"github.com/krishna8167/cachecore/pkg/eviction"
	"github.com/krishna8167/cachecore/pkg/events"
	"github.com/krishna8167/cachecore/pkg/metadata"
	"github.com/krishna8167/cachecore/pkg/queryhash"
	"github.com/krishna8167/cachecore/pkg/remote"
	"github.com/krishna8167/cachecore/pkg/ttlmgr"
	"go.uber.org/zap"
)

// Stats is a snapshot of the cache's runtime counters, in the teacher's
// Stats style (stats.go's Hits/Misses/Evictions), extended with the
// query-result index's own hit/miss pair.
type Stats struct {
	Hits           uint64
	Misses         uint64
	Evictions      uint64
	TTLExpirations uint64
	QueryHits      uint64
	QueryMisses    uint64
}

// Cache is the read-through orchestrator built on top of a CacheMap and
// a remote.API fallback.
type Cache struct {
	kta    []ckey.Kind
	remote remote.API
	cm     *cachemap.CacheMap
	ttl    *ttlmgr.Manager

	ttlMillis int64
	bypass    bool

	events *events.Emitter
	logger *zap.Logger
	clock  func() int64

	statsMu sync.Mutex
	stats   Stats
}

// Option configures a Cache at construction, following the teacher's
// functional-options pattern (options.go's Option func(*Cache)),
// generalized from one option to several.
type Option func(*Cache)

// WithLogger overrides the default no-op zap logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Cache) { c.logger = l }
}

// WithClock overrides the wall clock, for deterministic tests.
func WithClock(now func() int64) Option {
	return func(c *Cache) { c.clock = now }
}

// WithEventEmitter overrides the default internally-constructed
// emitter, e.g. to share one emitter across several Cache instances.
func WithEventEmitter(e *events.Emitter) Option {
	return func(c *Cache) { c.events = e }
}

// New builds a Cache from validated Settings and a remote fallback.
// BoundsFailure is returned if settings name an unknown eviction
// policy; config.Load already validates everything else.
func New(settings config.Settings, remoteAPI remote.API, opts ...Option) (*Cache, error) {
	clock := defaultClock

	c := &Cache{
		remote:    remoteAPI,
		ttlMillis: settings.TTLMillis,
		bypass:    settings.BypassCache,
		events:    events.New(0),
		logger:    zap.NewNop(),
		clock:     clock,
	}
	for _, opt := range opts {
		opt(c)
	}

	strategy, err := eviction.New(settings.EvictionPolicy, settings.EvictionConfig, c.clock)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cerr.ErrBounds, err)
	}

	provider := metadata.NewMapProvider(metadata.Limits{MaxItems: settings.MaxItems, MaxSizeBytes: settings.MaxSizeBytes})
	mgr := eviction.NewManager(strategy, provider)
	ttl := ttlmgr.New(c.clock)

	kta := append([]ckey.Kind{settings.CacheType}, settings.LocationKinds...)
	c.kta = kta
	c.ttl = ttl
	c.cm = cachemap.New(kta, provider, mgr, ttl, c.clock)
	c.cm.SetHooks(c.onItemEvicted, c.onItemExpired)

	return c, nil
}

func (c *Cache) onItemEvicted(string) {
	c.statsMu.Lock()
	c.stats.Evictions++
	c.statsMu.Unlock()
}

func (c *Cache) onItemExpired(string) {
	c.statsMu.Lock()
	c.stats.TTLExpirations++
	c.statsMu.Unlock()
}

func defaultClock() int64 { return nowMillis() }

// Stats returns a snapshot of the cache's runtime counters.
func (c *Cache) Stats() Stats {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	return c.stats
}

// Subscribe registers handler for events matching filter (spec.md §6).
func (c *Cache) Subscribe(filter events.Filter, handler events.Handler) *events.Subscription {
	return c.events.Subscribe(filter, handler)
}

// Get is the read-through variant: a miss falls through to the remote.
func (c *Cache) Get(ctx context.Context, key ckey.Key) (citem.Item, error) {
	return c.getOrRetrieve(ctx, key, true)
}

// Retrieve is the non-mutating variant: a miss does not call the
// remote and surfaces NotFound immediately.
func (c *Cache) Retrieve(ctx context.Context, key ckey.Key) (citem.Item, error) {
	return c.getOrRetrieve(ctx, key, false)
}

func (c *Cache) getOrRetrieve(ctx context.Context, key ckey.Key, allowRemote bool) (citem.Item, error) {
	if c.bypass {
		item, err := c.remote.Get(ctx, key)
		if err != nil {
			return nil, c.wrapRemoteErr(err)
		}
		return item, nil
	}

	if item, ok := c.cm.Get(key); ok {
		c.recordHit()
		c.events.Publish(events.Event{Type: events.ItemRetrieved, Key: key})
		return item, nil
	}
	c.recordMiss()

	if !allowRemote {
		return nil, cerr.ErrNotFound
	}

	item, err := c.remote.Get(ctx, key)
	if err != nil {
		return nil, c.wrapRemoteErr(err)
	}
	if err := c.cm.Set(key, item, c.ttlMillis); err != nil {
		return nil, err
	}
	c.events.Publish(events.Event{Type: events.ItemRetrieved, Key: key})
	return item, nil
}

// Query is the query shape All accepts, including the in-memory
// predicate for its opportunistic queryIn shortcut (spec.md §4.5 step
// 4); FindOne takes its filters as a separate argument. Params is the
// opaque value handed to the remote and the query fingerprint; Filters
// is its in-memory-evaluable subset. An empty Filters matches every
// cached item under the given locations, so the shortcut then answers
// with all of them whenever any are cached.
type Query struct {
	Params  interface{}
	Filters map[string]interface{}
	Limit   int
}

// All resolves query against the cache, falling through to the remote
// on a miss or an incomplete cached result (spec.md §4.5).
func (c *Cache) All(ctx context.Context, query Query, locations ckey.LocKeyArray) ([]citem.Item, error) {
	if c.bypass {
		items, err := c.remote.All(ctx, query.Params, locations)
		if err != nil {
			return nil, c.wrapRemoteErr(err)
		}
		return items, nil
	}

	h := queryhash.Hash("all", string(c.primaryKind()), query.Params, locations)

	if items, ok := c.tryCachedQuery(h); ok {
		c.recordQueryHit()
		c.events.Publish(events.Event{Type: events.ItemsQueried, QueryHash: h, Location: locations})
		return items, nil
	}
	c.recordQueryMiss()

	if shortcut := c.cm.QueryIn(cachemap.Predicate{Filters: query.Filters, Limit: query.Limit}, locations); len(shortcut) > 0 {
		c.cm.SetQueryResult(h, itemKeys(shortcut))
		c.events.Publish(events.Event{Type: events.ItemsQueried, QueryHash: h, Location: locations})
		return shortcut, nil
	}

	items, err := c.remote.All(ctx, query.Params, locations)
	if err != nil {
		return c.handleCollectionNotFound(h, err)
	}

	for _, item := range items {
		if err := c.cm.Set(item.ItemKey(), item, c.ttlMillis); err != nil {
			return nil, err
		}
	}
	c.cm.SetQueryResult(h, itemKeys(items))
	c.events.Publish(events.Event{Type: events.ItemsQueried, QueryHash: h, Location: locations})
	return items, nil
}

// Find is identical to All except the fingerprint is scoped by finder
// name, and there is no in-memory queryIn shortcut since finders are
// opaque to the cache.
func (c *Cache) Find(ctx context.Context, finder string, params interface{}, locations ckey.LocKeyArray) ([]citem.Item, error) {
	if c.bypass {
		items, err := c.remote.Find(ctx, finder, params, locations)
		if err != nil {
			return nil, c.wrapRemoteErr(err)
		}
		return items, nil
	}

	h := queryhash.Hash("find", finder, params, locations)

	if items, ok := c.tryCachedQuery(h); ok {
		c.recordQueryHit()
		c.events.Publish(events.Event{Type: events.ItemsQueried, QueryHash: h, Location: locations})
		return items, nil
	}
	c.recordQueryMiss()

	items, err := c.remote.Find(ctx, finder, params, locations)
	if err != nil {
		return c.handleCollectionNotFound(h, err)
	}

	for _, item := range items {
		if err := c.cm.Set(item.ItemKey(), item, c.ttlMillis); err != nil {
			return nil, err
		}
	}
	c.cm.SetQueryResult(h, itemKeys(items))
	c.events.Publish(events.Event{Type: events.ItemsQueried, QueryHash: h, Location: locations})
	return items, nil
}

// FindOne resolves a single item, trying the in-memory queryIn
// shortcut before falling through to the remote. A remote NotFound is
// cached as an empty query result (so a retry does not re-hit the
// remote) but is still surfaced to the caller as cerr.ErrNotFound,
// since there is no item to return.
func (c *Cache) FindOne(ctx context.Context, finder string, params interface{}, filters map[string]interface{}, locations ckey.LocKeyArray) (citem.Item, error) {
	if c.bypass {
		item, err := c.remote.FindOne(ctx, finder, params, locations)
		if err != nil {
			return nil, c.wrapRemoteErr(err)
		}
		return item, nil
	}

	h := queryhash.Hash("findOne", finder, params, locations)

	if items, ok := c.tryCachedQuery(h); ok {
		c.recordQueryHit()
		c.events.Publish(events.Event{Type: events.ItemsQueried, QueryHash: h, Location: locations})
		if len(items) == 0 {
			return nil, cerr.ErrNotFound
		}
		return items[0], nil
	}
	c.recordQueryMiss()

	if shortcut := c.cm.QueryIn(cachemap.Predicate{Filters: filters, Limit: 1}, locations); len(shortcut) > 0 {
		item := shortcut[0]
		c.cm.SetQueryResult(h, []ckey.Key{item.ItemKey()})
		c.events.Publish(events.Event{Type: events.ItemsQueried, QueryHash: h, Location: locations})
		return item, nil
	}

	item, err := c.remote.FindOne(ctx, finder, params, locations)
	if err != nil {
		if remote.IsNotFound(err) {
			c.cm.SetQueryResult(h, nil)
			c.ttl.Set(h, c.ttlMillis)
			return nil, cerr.ErrNotFound
		}
		return nil, c.wrapRemoteErr(err)
	}

	if err := c.cm.Set(item.ItemKey(), item, c.ttlMillis); err != nil {
		return nil, err
	}
	c.cm.SetQueryResult(h, []ckey.Key{item.ItemKey()})
	c.events.Publish(events.Event{Type: events.ItemsQueried, QueryHash: h, Location: locations})
	return item, nil
}

// InvalidateLocation drops every cached item (and query result) under
// loc, passing through to nothing on the remote side (spec.md §4.5.1).
func (c *Cache) InvalidateLocation(loc ckey.LocKeyArray) {
	c.cm.InvalidateLocation(loc)
	c.events.Publish(events.Event{Type: events.LocationInvalidated, Location: loc})
}

// InvalidateItemKeys drops exactly the given keys and any query result
// touching them.
func (c *Cache) InvalidateItemKeys(keys []ckey.Key) {
	c.cm.InvalidateItemKeys(keys)
}

// Clear empties the cache entirely.
func (c *Cache) Clear() {
	c.cm.Clear()
	c.events.Publish(events.Event{Type: events.CacheCleared})
}

// tryCachedQuery resolves a cached query-result entry into items,
// honoring the state machine in spec.md §4.5.1: an entry whose TTL
// (set only for empty results, per the Open Question decision) has
// passed, or whose member keys are not all still present, is dropped
// and treated as Absent.
func (c *Cache) tryCachedQuery(h string) ([]citem.Item, bool) {
	keys, ok := c.cm.GetQueryResult(h)
	if !ok {
		return nil, false
	}
	if c.ttl.IsExpired(h) {
		c.cm.DeleteQueryResult(h)
		c.ttl.Remove(h)
		return nil, false
	}
	if len(keys) == 0 {
		return []citem.Item{}, true
	}

	items := make([]citem.Item, 0, len(keys))
	for _, k := range keys {
		item, ok := c.cm.Get(k)
		if !ok {
			c.cm.DeleteQueryResult(h)
			return nil, false
		}
		items = append(items, item)
	}
	return items, true
}

// handleCollectionNotFound implements the "NotFoundError caches an
// empty result" branch shared by All and Find.
func (c *Cache) handleCollectionNotFound(h string, err error) ([]citem.Item, error) {
	if remote.IsNotFound(err) {
		c.cm.SetQueryResult(h, nil)
		c.ttl.Set(h, c.ttlMillis)
		return []citem.Item{}, nil
	}
	return nil, c.wrapRemoteErr(err)
}

func (c *Cache) wrapRemoteErr(err error) error {
	if remote.IsNotFound(err) {
		return fmt.Errorf("%w: %v", cerr.ErrNotFound, err)
	}
	c.logger.Warn("remote call failed", zap.Error(err))
	return fmt.Errorf("%w: %v", cerr.ErrRemote, err)
}

func (c *Cache) primaryKind() ckey.Kind { return c.kta[0] }

func (c *Cache) recordHit() {
	c.statsMu.Lock()
	c.stats.Hits++
	c.statsMu.Unlock()
}

func (c *Cache) recordMiss() {
	c.statsMu.Lock()
	c.stats.Misses++
	c.statsMu.Unlock()
}

func (c *Cache) recordQueryHit() {
	c.statsMu.Lock()
	c.stats.QueryHits++
	c.statsMu.Unlock()
}

func (c *Cache) recordQueryMiss() {
	c.statsMu.Lock()
	c.stats.QueryMisses++
	c.statsMu.Unlock()
}

func itemKeys(items []citem.Item) []ckey.Key {
	out := make([]ckey.Key, len(items))
	for i, it := range items {
		out[i] = it.ItemKey()
	}
	return out
}
