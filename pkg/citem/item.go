// Package citem defines the minimal item shape the cache core needs
// (spec.md §3.2): a key used to place the item in a CacheMap, and an
// events sub-record of lifecycle timestamps. Everything else about an
// item is opaque application payload the caller already has typed.
package citem

import (
	"time"

	"github.com/krishna8167/cachecore/pkg/ckey"
)

// Events carries the three lifecycle timestamps spec.md §3.2 requires
// every item to report. A zero time.Time means "not recorded".
type Events struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt time.Time
}

// Item is implemented by every value cachecore stores or returns.
type Item interface {
	ItemKey() ckey.Key
	ItemEvents() Events
}
