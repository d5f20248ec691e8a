package cachemap

import (
	"testing"

	"github.com/krishna8167/cachecore/pkg/citem"
	"github.com/krishna8167/cachecore/pkg/ckey"
	"github.com/krishna8167/cachecore/pkg/eviction"
	"github.com/krishna8167/cachecore/pkg/metadata"
	"github.com/krishna8167/cachecore/pkg/ttlmgr"
	"github.com/stretchr/testify/require"
)

type testItem struct {
	Key    ckey.Key `json:"-"`
	Status string   `json:"status"`
}

func (i testItem) ItemKey() ckey.Key        { return i.Key }
func (i testItem) ItemEvents() citem.Events { return citem.Events{} }

func newTestMap(t *testing.T, kta []ckey.Kind, maxItems int) *CacheMap {
	t.Helper()
	provider := metadata.NewMapProvider(metadata.Limits{MaxItems: maxItems})
	strategy := eviction.NewFIFO()
	mgr := eviction.NewManager(strategy, provider)
	ttl := ttlmgr.New(nil)
	return New(kta, provider, mgr, ttl, nil)
}

func TestSetGetRoundTrip(t *testing.T) {
	cm := newTestMap(t, []ckey.Kind{"order"}, 10)
	key := ckey.PriKey{Kind: "order", ID: "1"}
	item := testItem{Key: key, Status: "open"}

	require.NoError(t, cm.Set(key, item, 0))

	got, ok := cm.Get(key)
	require.True(t, ok)
	require.Equal(t, "open", got.(testItem).Status)
}

func TestSetRejectsKindMismatch(t *testing.T) {
	cm := newTestMap(t, []ckey.Kind{"order"}, 10)
	wrongKey := ckey.PriKey{Kind: "order", ID: "1"}
	item := testItem{Key: ckey.PriKey{Kind: "invoice", ID: "1"}, Status: "open"}

	err := cm.Set(wrongKey, item, 0)
	require.Error(t, err)
}

func TestSetRejectsLocationChainMismatch(t *testing.T) {
	cm := newTestMap(t, []ckey.Kind{"order", "tenant"}, 10)
	key := ckey.PriKey{Kind: "order", ID: "1"} // bare PriKey, but kta requires one location level
	item := testItem{Key: key, Status: "open"}

	err := cm.Set(key, item, 0)
	require.Error(t, err)
}

func TestOverwritePreservesAddedAt(t *testing.T) {
	provider := metadata.NewMapProvider(metadata.Limits{MaxItems: 10})
	strategy := eviction.NewFIFO()
	mgr := eviction.NewManager(strategy, provider)
	ttl := ttlmgr.New(nil)

	var clock int64 = 100
	cm := New([]ckey.Kind{"order"}, provider, mgr, ttl, func() int64 { return clock })

	key := ckey.PriKey{Kind: "order", ID: "1"}
	require.NoError(t, cm.Set(key, testItem{Key: key, Status: "open"}, 0))

	clock = 200
	require.NoError(t, cm.Set(key, testItem{Key: key, Status: "closed"}, 0))

	m, ok := provider.GetMetadata(key.String())
	require.True(t, ok)
	require.Equal(t, int64(100), m.AddedAt, "overwrite must not reset addedAt")
	require.Equal(t, int64(200), m.LastAccessedAt, "overwrite must refresh lastAccessedAt")
}

func TestDeleteInvalidatesQueryResults(t *testing.T) {
	cm := newTestMap(t, []ckey.Kind{"order"}, 10)
	k1 := ckey.PriKey{Kind: "order", ID: "1"}
	k2 := ckey.PriKey{Kind: "order", ID: "2"}
	require.NoError(t, cm.Set(k1, testItem{Key: k1, Status: "open"}, 0))
	require.NoError(t, cm.Set(k2, testItem{Key: k2, Status: "open"}, 0))

	cm.SetQueryResult("hash-1", []ckey.Key{k1, k2})
	require.True(t, cm.HasQueryResult("hash-1"))

	cm.Delete(k1)

	require.False(t, cm.HasQueryResult("hash-1"), "a query result touching a removed key must be dropped entirely, not filtered")
	_, ok := cm.Get(k2)
	require.True(t, ok, "k2 itself is untouched by k1's removal")
}

func TestTTLExpiryRemovesOnRead(t *testing.T) {
	provider := metadata.NewMapProvider(metadata.Limits{})
	strategy := eviction.NewFIFO()
	mgr := eviction.NewManager(strategy, provider)

	var clock int64
	ttl := ttlmgr.New(func() int64 { return clock })
	cm := New([]ckey.Kind{"order"}, provider, mgr, ttl, func() int64 { return clock })

	key := ckey.PriKey{Kind: "order", ID: "1"}
	require.NoError(t, cm.Set(key, testItem{Key: key, Status: "open"}, 10))

	clock += 20
	_, ok := cm.Get(key)
	require.False(t, ok, "item past its TTL must not be returned")
	require.False(t, cm.IncludesKey(key))
}

func TestAllInFiltersByLocationPrefix(t *testing.T) {
	cm := newTestMap(t, []ckey.Kind{"line", "order"}, 10)
	k1 := ckey.ComKey{Kind: "line", ID: "1", Loc: ckey.LocKeyArray{{Kind: "order", ID: "A"}}}
	k2 := ckey.ComKey{Kind: "line", ID: "2", Loc: ckey.LocKeyArray{{Kind: "order", ID: "B"}}}
	require.NoError(t, cm.Set(k1, testItem{Key: k1, Status: "open"}, 0))
	require.NoError(t, cm.Set(k2, testItem{Key: k2, Status: "open"}, 0))

	items := cm.AllIn(ckey.LocKeyArray{{Kind: "order", ID: "A"}})
	require.Len(t, items, 1)
	require.Equal(t, k1.String(), items[0].ItemKey().String())
}

func TestInvalidateLocationRemovesScopedItemsOnly(t *testing.T) {
	cm := newTestMap(t, []ckey.Kind{"line", "order"}, 10)
	k1 := ckey.ComKey{Kind: "line", ID: "1", Loc: ckey.LocKeyArray{{Kind: "order", ID: "A"}}}
	k2 := ckey.ComKey{Kind: "line", ID: "2", Loc: ckey.LocKeyArray{{Kind: "order", ID: "B"}}}
	require.NoError(t, cm.Set(k1, testItem{Key: k1, Status: "open"}, 0))
	require.NoError(t, cm.Set(k2, testItem{Key: k2, Status: "open"}, 0))

	cm.InvalidateLocation(ckey.LocKeyArray{{Kind: "order", ID: "A"}})

	require.False(t, cm.IncludesKey(k1))
	require.True(t, cm.IncludesKey(k2))
}

func TestQueryInMatchesFilters(t *testing.T) {
	cm := newTestMap(t, []ckey.Kind{"order"}, 10)
	open := ckey.PriKey{Kind: "order", ID: "1"}
	closed := ckey.PriKey{Kind: "order", ID: "2"}
	require.NoError(t, cm.Set(open, testItem{Key: open, Status: "open"}, 0))
	require.NoError(t, cm.Set(closed, testItem{Key: closed, Status: "closed"}, 0))

	results := cm.QueryIn(Predicate{Filters: map[string]interface{}{"status": "open"}}, nil)
	require.Len(t, results, 1)
	require.Equal(t, open.String(), results[0].ItemKey().String())
}

func TestClearRemovesEverything(t *testing.T) {
	cm := newTestMap(t, []ckey.Kind{"order"}, 10)
	key := ckey.PriKey{Kind: "order", ID: "1"}
	require.NoError(t, cm.Set(key, testItem{Key: key, Status: "open"}, 0))
	cm.SetQueryResult("hash-1", []ckey.Key{key})

	cm.Clear()

	require.False(t, cm.IncludesKey(key))
	require.False(t, cm.HasQueryResult("hash-1"))
	require.Empty(t, cm.Keys())
}
