package eviction

import (
	"container/list"
	"sync"

	"github.com/krishna8167/cachecore/pkg/metadata"
)

// ARC is an Adaptive Replacement Cache: an adaptive split between a
// recency list (T1) and a frequency list (T2), each backed by a ghost
// list of recently evicted keys (B1, B2) used to adapt the target size p
// toward whichever list is seeing re-references (spec.md §4.3).
//
// Simplification from the textbook algorithm: SelectForEviction is a
// pure function of metadata.Provider and Context per this package's
// Strategy contract, so it is never told which key is about to be
// admitted. The textbook REPLACE(x) step consults that key to break a
// tie at |T1| == p against a B2 ghost hit; here the tie is broken purely
// by which of T1/T2 currently exceeds its target share, which coincides
// with the textbook rule except in that single boundary case. The
// consequence is confined to which ghost list receives the victim in
// that exact tie, not to correctness of the recency/frequency split
// itself.
type ARC struct {
	mu sync.Mutex

	p int // target size of T1

	t1 *list.List // recency: live keys, MRU at Front
	t2 *list.List // frequency: live keys, MRU at Front
	b1 *list.List // ghost: keys recently evicted from T1
	b2 *list.List // ghost: keys recently evicted from T2

	inT1, inT2, inB1, inB2 map[string]*list.Element
}

func NewARC() *ARC {
	return &ARC{
		t1: list.New(), t2: list.New(), b1: list.New(), b2: list.New(),
		inT1: map[string]*list.Element{}, inT2: map[string]*list.Element{},
		inB1: map[string]*list.Element{}, inB2: map[string]*list.Element{},
	}
}

func (s *ARC) Name() string { return "arc" }

func (s *ARC) capacity(limits metadata.Limits) int {
	if limits.MaxItems > 0 {
		return limits.MaxItems
	}
	c := s.t1.Len() + s.t2.Len() + 1
	if c < 1 {
		c = 1
	}
	return c
}

func (s *ARC) SelectForEviction(provider metadata.Provider, ctx Context) []string {
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
		if s.t1.Len() > 0 && (s.t1.Len() > s.p || s.t2.Len() == 0) {
			key, ok = s.popBack(s.t1, s.inT1)
			if ok {
				s.pushGhost(s.b1, s.inB1, key, s.capacity(ctx.Limits))
			}
		} else if s.t2.Len() > 0 {
			key, ok = s.popBack(s.t2, s.inT2)
			if ok {
				s.pushGhost(s.b2, s.inB2, key, s.capacity(ctx.Limits))
			}
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

func (s *ARC) OnItemAdded(key string, sizeBytes int64, provider metadata.Provider) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.inB1[key]; ok {
		s.adapt(+1, s.b1.Len(), s.b2.Len())
		s.b1.Remove(el)
		delete(s.inB1, key)
		s.inT2[key] = s.t2.PushFront(key)
		return
	}
	if el, ok := s.inB2[key]; ok {
		s.adapt(-1, s.b1.Len(), s.b2.Len())
		s.b2.Remove(el)
		delete(s.inB2, key)
		s.inT2[key] = s.t2.PushFront(key)
		return
	}
	if _, ok := s.inT1[key]; ok {
		return
	}
	if _, ok := s.inT2[key]; ok {
		return
	}
	s.inT1[key] = s.t1.PushFront(key)
}

func (s *ARC) adapt(dir int, b1Len, b2Len int) {
	var delta int
	if dir > 0 {
		delta = 1
		if b1Len > 0 && b2Len > b1Len {
			delta = b2Len / b1Len
		}
		s.p += delta
	} else {
		delta = 1
		if b2Len > 0 && b1Len > b2Len {
			delta = b1Len / b2Len
		}
		s.p -= delta
	}
	if s.p < 0 {
		s.p = 0
	}
}

func (s *ARC) OnItemAccessed(key string, provider metadata.Provider) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.inT1[key]; ok {
		s.t1.Remove(el)
		delete(s.inT1, key)
		s.inT2[key] = s.t2.PushFront(key)
		return
	}
	if el, ok := s.inT2[key]; ok {
		s.t2.MoveToFront(el)
	}
}

func (s *ARC) OnItemRemoved(key string, provider metadata.Provider) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.inT1[key]; ok {
		s.t1.Remove(el)
		delete(s.inT1, key)
	}
	if el, ok := s.inT2[key]; ok {
		s.t2.Remove(el)
		delete(s.inT2, key)
	}
}

func (s *ARC) popBack(l *list.List, index map[string]*list.Element) (string, bool) {
	back := l.Back()
	if back == nil {
		return "", false
	}
	key := back.Value.(string)
	l.Remove(back)
	delete(index, key)
	return key, true
}

func (s *ARC) pushGhost(l *list.List, index map[string]*list.Element, key string, capacity int) {
	index[key] = l.PushFront(key)
	for l.Len() > capacity {
		back := l.Back()
		if back == nil {
			break
		}
		delete(index, back.Value.(string))
		l.Remove(back)
	}
}
