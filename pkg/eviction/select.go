package eviction

import (
	"sort"

	"github.com/krishna8167/cachecore/pkg/metadata"
)

// selectByPriority is the shared greedy-eviction loop every scan-based
// strategy (LRU, MRU, FIFO, LFU) builds on: rank every key by
// priority ascending (lowest priority evicted first), then remove keys
// in that order until the projected size satisfies ctx's bounds.
//
// Ties are broken by key string so that identical metadata always
// yields the same victim order, per spec.md §4.3's determinism
// requirement.
func selectByPriority(provider metadata.Provider, ctx Context, priority func(metadata.Metadata) float64) []string {
	all := provider.GetAllMetadata()

	itemCount := ctx.CurrentSize.ItemCount + 1
	sizeBytes := ctx.CurrentSize.SizeBytes + ctx.NewItemSize

	if !ctx.exceedsBounds(itemCount, sizeBytes) {
		return nil
	}

	type ranked struct {
		key string
		p   float64
		sz  int64
	}
	candidates := make([]ranked, 0, len(all))
	for k, m := range all {
		candidates = append(candidates, ranked{key: k, p: priority(m), sz: m.EstimatedSize})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].p != candidates[j].p {
			return candidates[i].p < candidates[j].p
		}
		return candidates[i].key < candidates[j].key
	})

	var victims []string
	for _, c := range candidates {
		if !ctx.exceedsBounds(itemCount, sizeBytes) {
			break
		}
		victims = append(victims, c.key)
		itemCount--
		sizeBytes -= c.sz
	}
	return victims
}
