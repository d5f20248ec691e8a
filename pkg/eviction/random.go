package eviction

import (
	"math/rand"

	"github.com/krishna8167/cachecore/pkg/metadata"
)

// Random evicts a uniformly random item. Selection is reshuffled on
// every call, so — unlike the other strategies — repeated calls with
// identical metadata are not required to return the same victim; only
// the sampling distribution is required to be uniform (spec.md §8,
// scenario 8).
type Random struct {
	rng *rand.Rand
}

// NewRandom builds a Random strategy. A nil rng is replaced by a new
// source seeded from the package-level generator; tests that need
// reproducibility should inject a seeded one.
func NewRandom(rng *rand.Rand) *Random {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &Random{rng: rng}
}

func (s *Random) Name() string { return "random" }

func (s *Random) SelectForEviction(provider metadata.Provider, ctx Context) []string {
	all := provider.GetAllMetadata()

	itemCount := ctx.CurrentSize.ItemCount + 1
	sizeBytes := ctx.CurrentSize.SizeBytes + ctx.NewItemSize
	if !ctx.exceedsBounds(itemCount, sizeBytes) {
		return nil
	}

	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	s.rng.Shuffle(len(keys), func(i, j int) { keys[i], keys[j] = keys[j], keys[i] })

	var victims []string
	for _, k := range keys {
		if !ctx.exceedsBounds(itemCount, sizeBytes) {
			break
		}
		victims = append(victims, k)
		itemCount--
		sizeBytes -= all[k].EstimatedSize
	}
	return victims
}

func (s *Random) OnItemAdded(key string, sizeBytes int64, provider metadata.Provider) {}
func (s *Random) OnItemAccessed(key string, provider metadata.Provider)               {}
func (s *Random) OnItemRemoved(key string, provider metadata.Provider)                {}
