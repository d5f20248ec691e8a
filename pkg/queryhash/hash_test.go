package queryhash

import (
	"testing"
	"time"

	"github.com/krishna8167/cachecore/pkg/ckey"
	"github.com/stretchr/testify/require"
)

func TestHashStableUnderKeyPermutation(t *testing.T) {
	a := Hash("find", "f", map[string]interface{}{"a": 1, "b": 2}, nil)
	b := Hash("find", "f", map[string]interface{}{"b": 2, "a": 1}, nil)
	require.Equal(t, a, b)
}

func TestHashStableUnderEquivalentDates(t *testing.T) {
	d1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	d2 := d1.In(time.FixedZone("X", 0))

	a := Hash("find", "f", map[string]interface{}{"at": d1}, nil)
	b := Hash("find", "f", map[string]interface{}{"at": d2}, nil)
	require.Equal(t, a, b)
}

func TestHashDiffersForDifferentShapes(t *testing.T) {
	a := Hash("all", "", map[string]interface{}{"v": 1}, nil)
	b := Hash("find", "finder1", map[string]interface{}{"v": 1}, nil)
	require.NotEqual(t, a, b)
}

func TestHashScopedByLocation(t *testing.T) {
	loc := ckey.LocKeyArray{{Kind: "container", ID: "c1"}}
	a := Hash("all", "", nil, nil)
	b := Hash("all", "", nil, loc)
	require.NotEqual(t, a, b)
}
