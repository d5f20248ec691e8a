// Package events implements the cache's event emitter (spec.md §6): the
// typed events the read-through operations publish, and a subscription
// model with key/location/query-shape filters and optional debounce.
//
// The emitter is in-process only (no cross-process delivery — that is
// explicitly out of this system's scope); it is built from the plain
// publish/subscribe + time.AfterFunc debounce idiom the pack's service
// repos use for in-process fan-out, scaled down from
// tomtom215-cartographus's watermill-based bus.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/krishna8167/cachecore/pkg/ckey"
	"golang.org/x/time/rate"
)

// Type names one of the seven event kinds the core publishes.
type Type string

const (
	ItemCreated         Type = "item_created"
	ItemUpdated         Type = "item_updated"
	ItemRemoved         Type = "item_removed"
	ItemRetrieved       Type = "item_retrieved"
	ItemsQueried        Type = "items_queried"
	LocationInvalidated Type = "location_invalidated"
	CacheCleared        Type = "cache_cleared"
)

// Event is one published occurrence.
type Event struct {
	ID        string
	Type      Type
	Key       ckey.Key      // set for item_* events
	Location  ckey.LocKeyArray // set for location_invalidated
	QueryHash string        // set for items_queried
	At        time.Time
}

// Filter narrows which events a subscription receives. A zero-value
// field is not checked. All set fields must match (logical AND).
type Filter struct {
	Types     []Type
	Key       ckey.Key
	Location  ckey.LocKeyArray
	QueryHash string
}

func (f Filter) matches(ev Event) bool {
	if len(f.Types) > 0 {
		ok := false
		for _, t := range f.Types {
			if t == ev.Type {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if f.Key != nil {
		if ev.Key == nil || !ckey.Equal(f.Key, ev.Key) {
			return false
		}
	}
	if len(f.Location) > 0 {
		if ev.Key == nil || !ckey.HasLocationPrefix(ev.Key, f.Location) {
			return false
		}
	}
	if f.QueryHash != "" && f.QueryHash != ev.QueryHash {
		return false
	}
	return true
}

// Handler receives matching events. OnError, if set, receives any panic
// recovered from a Handler invocation (a listener's failure must not
// interrupt the emitter, spec.md §5/§7).
type Handler func(Event)

// Subscription is returned by Subscribe/SubscribeDebounced; call
// Unsubscribe to stop receiving events. Unsubscribing cancels any
// pending debounce timer.
type Subscription struct {
	emitter *Emitter
	id      string
}

func (s *Subscription) Unsubscribe() {
	s.emitter.unsubscribe(s.id)
}

type subscriber struct {
	id      string
	filter  Filter
	handler Handler
	onError func(error)

	debounce time.Duration
	mu       sync.Mutex
	timer    *time.Timer
	pending  *Event
}

// Emitter publishes events to filtered, optionally-debounced
// subscribers. A listener that panics never interrupts the emitting
// operation: the panic is recovered and forwarded to the subscriber's
// OnError hook if set, else dropped (spec.md §5).
type Emitter struct {
	mu          sync.RWMutex
	subscribers map[string]*subscriber
	limiter     *rate.Limiter
}

// New builds an Emitter. burstLimit caps the steady-state rate (events
// per second) of high-frequency, non-debounced event types such as
// item_retrieved; 0 disables limiting.
func New(burstLimit rate.Limit) *Emitter {
	var limiter *rate.Limiter
	if burstLimit > 0 {
		limiter = rate.NewLimiter(burstLimit, int(burstLimit)+1)
	}
	return &Emitter{subscribers: make(map[string]*subscriber), limiter: limiter}
}
