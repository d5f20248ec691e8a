package eviction

import "time"

// defaultClock returns the current monotonic wall-clock in milliseconds,
// matching the units spec.md §3.5 specifies for addedAt/lastAccessedAt.
func defaultClock() int64 {
	return time.Now().UnixMilli()
}
