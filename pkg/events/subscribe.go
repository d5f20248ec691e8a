package events

import "time"

// Subscribe registers handler for events matching filter. handler runs
// synchronously on the emitting goroutine.
func (e *Emitter) Subscribe(filter Filter, handler Handler) *Subscription {
	return e.subscribe(filter, handler, nil, 0)
}

// SubscribeWithErrorHandler is Subscribe, additionally routing a
// recovered listener panic to onError instead of dropping it silently.
func (e *Emitter) SubscribeWithErrorHandler(filter Filter, handler Handler, onError func(error)) *Subscription {
	return e.subscribe(filter, handler, onError, 0)
}

// SubscribeDebounced collapses a burst of matching events into a single
// delivery of the last event once quiet has elapsed with no further
// matching events.
func (e *Emitter) SubscribeDebounced(filter Filter, quiet time.Duration, handler Handler) *Subscription {
	return e.subscribe(filter, handler, nil, quiet)
}

func (e *Emitter) subscribe(filter Filter, handler Handler, onError func(error), debounce time.Duration) *Subscription {
	sub := &subscriber{
		id:       newID(),
		filter:   filter,
		handler:  handler,
		onError:  onError,
		debounce: debounce,
	}

	e.mu.Lock()
	e.subscribers[sub.id] = sub
	e.mu.Unlock()

	return &Subscription{emitter: e, id: sub.id}
}

func (e *Emitter) unsubscribe(id string) {
	e.mu.Lock()
	sub, ok := e.subscribers[id]
	delete(e.subscribers, id)
	e.mu.Unlock()

	if !ok {
		return
	}
	sub.mu.Lock()
	if sub.timer != nil {
		sub.timer.Stop()
	}
	sub.mu.Unlock()
}

// Publish delivers ev synchronously to every matching subscriber. A
// subscriber's handler panicking is recovered and forwarded to its
// OnError hook (or dropped, if none was set) rather than propagating to
// the caller of Publish (spec.md §5, ListenerFailure in §7).
func (e *Emitter) Publish(ev Event) {
	if ev.ID == "" {
		ev.ID = newID()
	}
	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	if e.limiter != nil && !isDebounceExempt(ev.Type) {
		if !e.limiter.Allow() {
			return
		}
	}

	e.mu.RLock()
	matching := make([]*subscriber, 0, len(e.subscribers))
	for _, sub := range e.subscribers {
		if sub.filter.matches(ev) {
			matching = append(matching, sub)
		}
	}
	e.mu.RUnlock()

	for _, sub := range matching {
		if sub.debounce > 0 {
			sub.scheduleDebounced(ev)
			continue
		}
		deliver(sub, ev)
	}
}

// isDebounceExempt reports whether ev.Type is never subject to the
// emitter's global rate limiter, because it is a structural event that
// must never be dropped (as opposed to high-frequency read signals like
// item_retrieved).
func isDebounceExempt(t Type) bool {
	switch t {
	case ItemCreated, ItemUpdated, ItemRemoved, LocationInvalidated, CacheCleared:
		return true
	default:
		return false
	}
}

func (s *subscriber) scheduleDebounced(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := ev
	s.pending = &e
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, func() {
		s.mu.Lock()
		pending := s.pending
		s.pending = nil
		s.mu.Unlock()
		if pending != nil {
			deliver(s, *pending)
		}
	})
}

func deliver(sub *subscriber, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			if sub.onError != nil {
				sub.onError(panicToError(r))
			}
		}
	}()
	sub.handler(ev)
}

func newID() string { return uuidNew() }
