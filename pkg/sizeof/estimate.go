// Package sizeof provides the deterministic byte-size estimator and the
// SI/IEC size-string parser the cache's bounds accounting is built on
// (spec.md §4.2). No library in the retrieval pack offers either of
// these for arbitrary JSON-shaped Go values, so both are hand-rolled
// against the standard library.
package sizeof

// Estimate produces a deterministic byte estimate for a JSON-shaped
// value (the output of json.Unmarshal into interface{}, or an
// equivalent Go value built of the same primitive shapes).
//
// Rules (spec.md §4.2):
//
//	nil:            8
//	bool:           4
//	number:         8
//	string:         2 * number of runes in s
//	[]interface{}:  24 + sum(Estimate(elem))
//	map[string]any: 16 + sum(2*len(key) + Estimate(value))
//	other:          32
//
// Cyclic object graphs are detected and estimated as a flat 64-byte
// fallback rather than recursing forever.
func Estimate(v interface{}) int64 {
	return estimate(v, make(map[interface{}]bool))
}

func estimate(v interface{}, seen map[interface{}]bool) int64 {
	if v == nil {
		return 8
	}
	switch t := v.(type) {
	case bool:
		return 4
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return 8
	case string:
		return 2 * int64(len([]rune(t)))
	case []interface{}:
		if seen[pointerKey(t)] {
			return 64
		}
		seen = markSeen(seen, t)
		var total int64 = 24
		for _, elem := range t {
			total += estimate(elem, seen)
		}
		return total
	case map[string]interface{}:
		if seen[pointerKey(t)] {
			return 64
		}
		seen = markSeen(seen, t)
		var total int64 = 16
		for k, val := range t {
			total += 2*int64(len(k)) + estimate(val, seen)
		}
		return total
	default:
		return 32
	}
}

// pointerKey derives a stable identity for cycle detection. Go has no
// portable pointer-identity hash for arbitrary slice/map headers via a
// plain interface{} comparison (slices and maps are not comparable), so
// the data pointer is recovered through reflect.Value.Pointer (see
// ptrOf) and used as the comparable identity instead.
func pointerKey(v interface{}) interface{} {
	return ptrOf(v)
}

func markSeen(seen map[interface{}]bool, v interface{}) map[interface{}]bool {
	next := make(map[interface{}]bool, len(seen)+1)
	for k := range seen {
		next[k] = true
	}
	next[pointerKey(v)] = true
	return next
}
