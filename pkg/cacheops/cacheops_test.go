package cacheops

import (
	"context"
	"testing"

	"github.com/krishna8167/cachecore/internal/cerr"
	"github.com/krishna8167/cachecore/internal/config"
	"github.com/krishna8167/cachecore/pkg/citem"
	"github.com/krishna8167/cachecore/pkg/ckey"
	"github.com/krishna8167/cachecore/pkg/eviction"
	"github.com/krishna8167/cachecore/pkg/remote"
	"github.com/stretchr/testify/require"
)

type fakeItem struct {
	Key    ckey.Key `json:"-"`
	Status string   `json:"status"`
}

func (i fakeItem) ItemKey() ckey.Key        { return i.Key }
func (i fakeItem) ItemEvents() citem.Events { return citem.Events{} }

// fakeRemote implements remote.API against an in-memory map, for tests
// that need a deterministic remote fallback without a network.
type fakeRemote struct {
	byKey map[string]citem.Item
	all   []citem.Item
	calls int
}

func newFakeRemote() *fakeRemote { return &fakeRemote{byKey: make(map[string]citem.Item)} }

func (r *fakeRemote) Get(ctx context.Context, key ckey.Key) (remote.Item, error) {
	r.calls++
	item, ok := r.byKey[key.String()]
	if !ok {
		return nil, &remote.NotFoundError{Query: key}
	}
	return item, nil
}

func (r *fakeRemote) All(ctx context.Context, query remote.Query, locations ckey.LocKeyArray) ([]remote.Item, error) {
	r.calls++
	if len(r.all) == 0 {
		return nil, &remote.NotFoundError{Query: query}
	}
	out := make([]remote.Item, len(r.all))
	for i, it := range r.all {
		out[i] = it
	}
	return out, nil
}

func (r *fakeRemote) One(ctx context.Context, query remote.Query, locations ckey.LocKeyArray) (remote.Item, error) {
	return nil, &remote.NotFoundError{Query: query}
}
func (r *fakeRemote) Find(ctx context.Context, finder string, params remote.Query, locations ckey.LocKeyArray) ([]remote.Item, error) {
	return r.All(ctx, params, locations)
}
func (r *fakeRemote) FindOne(ctx context.Context, finder string, params remote.Query, locations ckey.LocKeyArray) (remote.Item, error) {
	if len(r.all) == 0 {
		return nil, &remote.NotFoundError{Query: params}
	}
	return r.all[0], nil
}
func (r *fakeRemote) Create(ctx context.Context, item remote.Item) (remote.Item, error) { return item, nil }
func (r *fakeRemote) Update(ctx context.Context, key ckey.Key, item remote.Item) (remote.Item, error) {
	return item, nil
}
func (r *fakeRemote) Remove(ctx context.Context, key ckey.Key) error { return nil }
func (r *fakeRemote) Facet(ctx context.Context, name string, params remote.Query, locations ckey.LocKeyArray) (interface{}, error) {
	return nil, nil
}
func (r *fakeRemote) Action(ctx context.Context, key ckey.Key, name string, params remote.Query) (interface{}, error) {
	return nil, nil
}

func newTestCache(t *testing.T, r *fakeRemote) *Cache {
	t.Helper()
	settings := config.Settings{
		CacheType:      "order",
		EvictionPolicy: eviction.PolicyLRU,
		TTLMillis:      0,
	}
	c, err := New(settings, r)
	require.NoError(t, err)
	return c
}

func TestGetFallsThroughToRemoteOnMiss(t *testing.T) {
	r := newFakeRemote()
	key := ckey.PriKey{Kind: "order", ID: "1"}
	r.byKey[key.String()] = fakeItem{Key: key, Status: "open"}

	c := newTestCache(t, r)
	item, err := c.Get(context.Background(), key)
	require.NoError(t, err)
	require.Equal(t, "open", item.(fakeItem).Status)
	require.Equal(t, 1, r.calls)

	item2, err := c.Get(context.Background(), key)
	require.NoError(t, err)
	require.Equal(t, "open", item2.(fakeItem).Status)
	require.Equal(t, 1, r.calls, "second Get must be served from cache, not the remote")

	stats := c.Stats()
	require.Equal(t, uint64(1), stats.Hits)
	require.Equal(t, uint64(1), stats.Misses)
}

func TestRetrieveDoesNotCallRemoteOnMiss(t *testing.T) {
	r := newFakeRemote()
	c := newTestCache(t, r)

	_, err := c.Retrieve(context.Background(), ckey.PriKey{Kind: "order", ID: "1"})
	require.ErrorIs(t, err, cerr.ErrNotFound)
	require.Equal(t, 0, r.calls)
}

func TestAllCachesEmptyResultOnNotFound(t *testing.T) {
	r := newFakeRemote()
	c := newTestCache(t, r)

	items, err := c.All(context.Background(), Query{Params: "everything"}, nil)
	require.NoError(t, err)
	require.Empty(t, items)
	require.Equal(t, 1, r.calls)

	items2, err := c.All(context.Background(), Query{Params: "everything"}, nil)
	require.NoError(t, err)
	require.Empty(t, items2)
	require.Equal(t, 1, r.calls, "a cached empty result must not re-hit the remote")
}

func TestAllPopulatesCacheFromRemote(t *testing.T) {
	r := newFakeRemote()
	k1 := ckey.PriKey{Kind: "order", ID: "1"}
	k2 := ckey.PriKey{Kind: "order", ID: "2"}
	r.all = []citem.Item{fakeItem{Key: k1, Status: "open"}, fakeItem{Key: k2, Status: "closed"}}

	c := newTestCache(t, r)
	items, err := c.All(context.Background(), Query{Params: "everything"}, nil)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, 1, r.calls)

	items2, err := c.All(context.Background(), Query{Params: "everything"}, nil)
	require.NoError(t, err)
	require.Len(t, items2, 2)
	require.Equal(t, 1, r.calls, "a fully-resolvable cached query result must not re-hit the remote")
}

func TestFindCachesResultAcrossRepeatedCalls(t *testing.T) {
	r := newFakeRemote()
	k1 := ckey.PriKey{Kind: "order", ID: "1"}
	k2 := ckey.PriKey{Kind: "order", ID: "2"}
	r.all = []citem.Item{fakeItem{Key: k1, Status: "open"}, fakeItem{Key: k2, Status: "closed"}}

	c := newTestCache(t, r)
	items, err := c.Find(context.Background(), "byTenant", "tenant-1", nil)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, 1, r.calls)

	items2, err := c.Find(context.Background(), "byTenant", "tenant-1", nil)
	require.NoError(t, err)
	require.Len(t, items2, 2)
	require.Equal(t, 1, r.calls, "an identical Find must be served from the cached query result, not the remote")
}

// TestFindReHitsRemoteWhenAMemberKeyIsInvalidated proves Find cannot fall
// back to the queryIn shortcut the way All does: once a member key's
// removal drops the whole cached query result, Find has no opaque-finder
// predicate to re-evaluate in memory, so it must re-hit the remote.
func TestFindReHitsRemoteWhenAMemberKeyIsInvalidated(t *testing.T) {
	r := newFakeRemote()
	k1 := ckey.PriKey{Kind: "order", ID: "1"}
	k2 := ckey.PriKey{Kind: "order", ID: "2"}
	r.all = []citem.Item{fakeItem{Key: k1, Status: "open"}, fakeItem{Key: k2, Status: "closed"}}

	c := newTestCache(t, r)
	items, err := c.Find(context.Background(), "byTenant", "tenant-1", nil)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, 1, r.calls)

	c.InvalidateItemKeys([]ckey.Key{k1})

	items2, err := c.Find(context.Background(), "byTenant", "tenant-1", nil)
	require.NoError(t, err)
	require.Len(t, items2, 2)
	require.Equal(t, 2, r.calls, "Find has no queryIn shortcut, so an invalidated member key must force a remote round-trip")
}

func TestAllDropsCachedResultWhenAMemberKeyIsInvalidated(t *testing.T) {
	r := newFakeRemote()
	k1 := ckey.PriKey{Kind: "order", ID: "1"}
	k2 := ckey.PriKey{Kind: "order", ID: "2"}
	r.all = []citem.Item{fakeItem{Key: k1, Status: "open"}, fakeItem{Key: k2, Status: "closed"}}

	c := newTestCache(t, r)
	items, err := c.All(context.Background(), Query{Params: "everything"}, nil)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, 1, r.calls)

	c.InvalidateItemKeys([]ckey.Key{k1})

	// The in-memory queryIn shortcut now answers from the one surviving
	// item rather than re-hitting the remote -- the documented
	// best-effort/subset tradeoff (spec.md §4.5 step 4).
	items2, err := c.All(context.Background(), Query{Params: "everything"}, nil)
	require.NoError(t, err)
	require.Len(t, items2, 1)
	require.Equal(t, k2.String(), items2[0].ItemKey().String())
	require.Equal(t, 1, r.calls, "the queryIn shortcut must satisfy this call without a second remote round-trip")
}
