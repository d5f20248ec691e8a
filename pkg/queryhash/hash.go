// Package queryhash derives the stable fingerprint (spec.md §3.3) the
// query-result cache keys its entries by: a deterministic string from
// (operation, finderNameOrQueryShape, params, locations) after recursive
// normalisation, so that logically-equivalent queries collide and
// structurally different ones do not.
package queryhash

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/krishna8167/cachecore/pkg/ckey"
)

// Hash derives the QueryHash for one operation. params is typically a
// map[string]interface{} of filter/finder arguments; locations scopes
// the query to a location chain. params and locations are normalised
// (object keys sorted, dates canonicalised to ISO-8601, arrays kept in
// order, scalars coerced) before hashing, so permuting a map's key order
// or using an equivalent Date representation does not change the
// result (spec.md §8, invariant 6).
func Hash(operation string, name string, params interface{}, locations ckey.LocKeyArray) string {
	var b strings.Builder
	b.WriteString(operation)
	b.WriteByte('|')
	b.WriteString(name)
	b.WriteByte('|')
	writeNormalized(&b, params)
	b.WriteByte('|')
	b.WriteString(ckey.LocationString(locations))

	sum := xxhash.Sum64String(b.String())
	return strconv.FormatUint(sum, 16)
}

// writeNormalized renders v into b using a canonical, deterministic
// encoding: map keys sorted, slices kept in order, time.Time values
// rendered as RFC3339 (the "canonicalised to ISO-8601" rule), and
// scalars written with Go's default formatting (stable across calls).
func writeNormalized(b *strings.Builder, v interface{}) {
	switch t := v.(type) {
	case nil:
		b.WriteString("null")
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(k)
			b.WriteByte(':')
			writeNormalized(b, t[k])
		}
		b.WriteByte('}')
	case []interface{}:
		b.WriteByte('[')
		for i, elem := range t {
			if i > 0 {
				b.WriteByte(',')
			}
			writeNormalized(b, elem)
		}
		b.WriteByte(']')
	case time.Time:
		b.WriteString(t.UTC().Format(time.RFC3339Nano))
	default:
		fmt.Fprintf(b, "%v", t)
	}
}
