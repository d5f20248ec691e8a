// cachedemo wires an in-memory remote fake to a cacheops.Cache and
// exercises a get-miss/get-hit/ttl-expiry cycle, in the spirit of
// tempuscache/main.go's func main demo.
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/krishna8167/cachecore/internal/config"
	"github.com/krishna8167/cachecore/pkg/cacheops"
	"github.com/krishna8167/cachecore/pkg/citem"
	"github.com/krishna8167/cachecore/pkg/ckey"
	"github.com/krishna8167/cachecore/pkg/eviction"
	"github.com/krishna8167/cachecore/pkg/events"
	"github.com/krishna8167/cachecore/pkg/remote"
	"go.uber.org/zap"
)

// order is the demo payload type: a concrete struct implementing
// citem.Item by embedding its own key and lifecycle timestamps.
type order struct {
	Key    ckey.PriKey
	Status string
	Events citem.Events
}

func (o order) ItemKey() ckey.Key        { return o.Key }
func (o order) ItemEvents() citem.Events { return o.Events }

// memoryRemote is a toy remote.API backed by a plain map, standing in
// for the HTTP/gRPC item service a real deployment would fall through
// to.
type memoryRemote struct {
	orders map[string]order
}

func (m *memoryRemote) Get(ctx context.Context, key ckey.Key) (remote.Item, error) {
	o, ok := m.orders[key.String()]
	if !ok {
		return nil, &remote.NotFoundError{Query: key}
	}
	return o, nil
}

func (m *memoryRemote) All(ctx context.Context, query remote.Query, locations ckey.LocKeyArray) ([]remote.Item, error) {
	out := make([]remote.Item, 0, len(m.orders))
	for _, o := range m.orders {
		out = append(out, o)
	}
	if len(out) == 0 {
		return nil, &remote.NotFoundError{Query: query}
	}
	return out, nil
}

func (m *memoryRemote) One(ctx context.Context, query remote.Query, locations ckey.LocKeyArray) (remote.Item, error) {
	return nil, &remote.NotFoundError{Query: query}
}

func (m *memoryRemote) Find(ctx context.Context, finder string, params remote.Query, locations ckey.LocKeyArray) ([]remote.Item, error) {
	return m.All(ctx, params, locations)
}

func (m *memoryRemote) FindOne(ctx context.Context, finder string, params remote.Query, locations ckey.LocKeyArray) (remote.Item, error) {
	for _, o := range m.orders {
		return o, nil
	}
	return nil, &remote.NotFoundError{Query: params}
}

func (m *memoryRemote) Create(ctx context.Context, item remote.Item) (remote.Item, error) {
	o := item.(order)
	m.orders[o.ItemKey().String()] = o
	return o, nil
}

func (m *memoryRemote) Update(ctx context.Context, key ckey.Key, item remote.Item) (remote.Item, error) {
	return m.Create(ctx, item)
}

func (m *memoryRemote) Remove(ctx context.Context, key ckey.Key) error {
	delete(m.orders, key.String())
	return nil
}

func (m *memoryRemote) Facet(ctx context.Context, name string, params remote.Query, locations ckey.LocKeyArray) (interface{}, error) {
	return len(m.orders), nil
}

func (m *memoryRemote) Action(ctx context.Context, key ckey.Key, name string, params remote.Query) (interface{}, error) {
	return nil, nil
}

func main() {
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	backend := &memoryRemote{orders: map[string]order{}}
	key := ckey.PriKey{Kind: "order", ID: "1"}
	backend.orders[key.String()] = order{Key: key, Status: "open"}

	settings := config.Settings{
		CacheType:      "order",
		MaxItems:       100,
		EvictionPolicy: eviction.PolicyLRU,
		TTLMillis:      2000,
	}

	cache, err := cacheops.New(settings, backend, cacheops.WithLogger(logger))
	if err != nil {
		logger.Fatal("failed to construct cache", zap.Error(err))
	}

	cache.Subscribe(events.Filter{Types: []events.Type{events.ItemRetrieved}}, func(ev events.Event) {
		logger.Info("item retrieved", zap.String("key", ev.Key.String()))
	})

	ctx := context.Background()

	item, err := cache.Get(ctx, key)
	if err != nil {
		logger.Fatal("unexpected miss on seeded order", zap.Error(err))
	}
	fmt.Printf("first Get (remote fallback): %+v\n", item)

	item, err = cache.Get(ctx, key)
	if err != nil {
		logger.Fatal("unexpected miss on cached order", zap.Error(err))
	}
	fmt.Printf("second Get (served from cache): %+v\n", item)

	fmt.Printf("stats after two gets: %+v\n", cache.Stats())

	time.Sleep(2100 * time.Millisecond)
	if _, err := cache.Retrieve(ctx, key); err != nil {
		fmt.Println("order expired out of the cache as expected")
	}
}
