package eviction

import (
	"container/list"
	"sync"

	"github.com/krishna8167/cachecore/pkg/metadata"
)

// TwoQConfig configures 2Q's admission share and hot-queue eviction
// scoring (spec.md §4.3).
type TwoQConfig struct {
	// A1Fraction is A1's share of total capacity, e.g. 0.25 for 25%.
	A1Fraction float64
	// PromotionThreshold: when positive, an A1 item is promoted to Am
	// only once the number of hits it has received while in A1 reaches
	// this value. Zero promotes on the first hit after admission (the
	// item's second touch).
	PromotionThreshold float64
	// FrequencyWeightedAmEviction selects Am's frequency-weighted LRU
	// scoring (score = age_minutes / max(1, freq), lowest wins) instead
	// of plain LRU.
	FrequencyWeightedAmEviction bool
}

func (c TwoQConfig) normalized() TwoQConfig {
	if c.A1Fraction <= 0 || c.A1Fraction >= 1 {
		c.A1Fraction = 0.25
	}
	if c.PromotionThreshold < 0 {
		c.PromotionThreshold = 0
	}
	return c
}

// TwoQ implements the 2Q policy: a short recent queue (A1) with a
// not-recently-used ghost queue (A1out), and a hot queue (Am) an item is
// promoted into on its second hit (or once it crosses
// PromotionThreshold). Eviction prefers A1; Am is evicted only when A1
// is empty (spec.md §4.3).
//
// A1Fraction bounds the *target* size communicated for reference and
// used by callers sizing evictionConfig; this implementation does not
// self-evict A1 down to that quota independently of the manager's
// global bounds check, since the Strategy contract only triggers
// eviction from Manager.BeforeInsert. In practice A1 still drains
// quickly because it is always preferred over Am once bounds are
// exceeded.
type TwoQ struct {
	mu  sync.Mutex
	cfg TwoQConfig
	now func() int64

	a1, a1out, am *list.List
	inA1, inA1out, inAm map[string]*list.Element
	freq map[string]float64
}

func NewTwoQ(cfg TwoQConfig, now func() int64) *TwoQ {
	if now == nil {
		now = defaultClock
	}
	return &TwoQ{
		cfg: cfg.normalized(),
		now: now,
		a1:  list.New(), a1out: list.New(), am: list.New(),
		inA1: map[string]*list.Element{}, inA1out: map[string]*list.Element{}, inAm: map[string]*list.Element{},
		freq: map[string]float64{},
	}
}

func (s *TwoQ) Name() string { return "2q" }

func (s *TwoQ) capacity(limits metadata.Limits) int {
	if limits.MaxItems > 0 {
		return limits.MaxItems
	}
	c := s.a1.Len() + s.am.Len() + 1
	if c < 1 {
		c = 1
	}
	return c
}

func (s *TwoQ) SelectForEviction(provider metadata.Provider, ctx Context) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	itemCount := ctx.CurrentSize.ItemCount + 1
	sizeBytes := ctx.CurrentSize.SizeBytes + ctx.NewItemSize
	if !ctx.exceedsBounds(itemCount, sizeBytes) {
		return nil
	}

	var victims []string
	for ctx.exceedsBounds(itemCount, sizeBytes) {
		var key string
		var ok bool
		if s.a1.Len() > 0 {
			key, ok = s.popBack(s.a1, s.inA1)
			if ok {
				s.pushGhost(key, s.capacity(ctx.Limits))
			}
		} else if s.am.Len() > 0 {
			key, ok = s.evictFromAm(provider)
		} else {
			break
		}
		if !ok {
			break
		}
		m, _ := provider.GetMetadata(key)
		victims = append(victims, key)
		itemCount--
		sizeBytes -= m.EstimatedSize
	}
	return victims
}

func (s *TwoQ) evictFromAm(provider metadata.Provider) (string, bool) {
	if !s.cfg.FrequencyWeightedAmEviction {
		return s.popBack(s.am, s.inAm)
	}

	var worstKey string
	var worstScore = -1.0
	var worstEl *list.Element
	now := s.now()
	for el := s.am.Back(); el != nil; el = el.Prev() {
		key := el.Value.(string)
		m, _ := provider.GetMetadata(key)
		ageMinutes := float64(now-m.AddedAt) / 60000.0
		if ageMinutes < 0 {
			ageMinutes = 0
		}
		f := s.freq[key]
		if f < 1 {
			f = 1
		}
		score := ageMinutes / f
		if score > worstScore {
			worstScore = score
			worstKey = key
			worstEl = el
		}
	}
	if worstEl == nil {
		return "", false
	}
	s.am.Remove(worstEl)
	delete(s.inAm, worstKey)
	delete(s.freq, worstKey)
	return worstKey, true
}

func (s *TwoQ) OnItemAdded(key string, sizeBytes int64, provider metadata.Provider) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.inA1out[key]; ok {
		s.a1out.Remove(el)
		delete(s.inA1out, key)
		s.inAm[key] = s.am.PushFront(key)
		s.freq[key] = 1
		return
	}
	if _, ok := s.inA1[key]; ok {
		return
	}
	if _, ok := s.inAm[key]; ok {
		return
	}
	s.inA1[key] = s.a1.PushFront(key)
}

func (s *TwoQ) OnItemAccessed(key string, provider metadata.Provider) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.inA1[key]; ok {
		s.freq[key]++
		if s.cfg.PromotionThreshold > 0 && s.freq[key] < s.cfg.PromotionThreshold {
			return
		}
		s.a1.Remove(el)
		delete(s.inA1, key)
		s.inAm[key] = s.am.PushFront(key)
		return
	}
	if el, ok := s.inAm[key]; ok {
		s.am.MoveToFront(el)
		s.freq[key]++
	}
}

func (s *TwoQ) OnItemRemoved(key string, provider metadata.Provider) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.inA1[key]; ok {
		s.a1.Remove(el)
		delete(s.inA1, key)
	}
	if el, ok := s.inAm[key]; ok {
		s.am.Remove(el)
		delete(s.inAm, key)
	}
	delete(s.freq, key)
}

func (s *TwoQ) popBack(l *list.List, index map[string]*list.Element) (string, bool) {
	back := l.Back()
	if back == nil {
		return "", false
	}
	key := back.Value.(string)
	l.Remove(back)
	delete(index, key)
	return key, true
}

func (s *TwoQ) pushGhost(key string, capacity int) {
	s.inA1out[key] = s.a1out.PushFront(key)
	for s.a1out.Len() > capacity {
		back := s.a1out.Back()
		if back == nil {
			break
		}
		delete(s.inA1out, back.Value.(string))
		s.a1out.Remove(back)
	}
}
