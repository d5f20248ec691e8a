// Package ckey implements the hierarchical key model item caches are keyed
// by: a primary key optionally nested inside a chain of location keys.
//
// Keys are value types. Two keys compare equal iff their kinds and ids
// match after normalisation (see normalize.go); every key also has a
// deterministic string form used as the internal map key throughout the
// rest of cachecore.
package ckey

import (
	"fmt"
	"strings"
)

// Kind names the type of entity a key identifies, e.g. "order" or
// "container". Kinds are compared case-sensitively.
type Kind string

// LocKey names a single link in a location chain: the kind of container
// and its id within that kind.
type LocKey struct {
	Kind Kind
	ID   string
}

// LocKeyArray is an ordered, possibly-empty prefix of a location chain.
// An empty array denotes "no location constraint".
type LocKeyArray []LocKey

// PriKey is a bare primary key: a kind and an id, with no location.
type PriKey struct {
	Kind Kind
	ID   string
}

// ComKey is a PriKey nested inside an ordered chain of LocKeys, naming
// successively enclosing containers.
type ComKey struct {
	Kind Kind
	ID   string
	Loc  LocKeyArray
}

// Key is implemented by PriKey and ComKey. It is the type operations and
// CacheMap accept wherever spec.md says "key".
type Key interface {
	// Kt returns the key's primary kind.
	Kt() Kind
	// Pk returns the key's primary id.
	Pk() string
	// Locations returns the key's location chain, empty for a PriKey.
	Locations() LocKeyArray
	// String returns the deterministic, normalised string form used as
	// the internal map key.
	String() string
}

func (k PriKey) Kt() Kind             { return k.Kind }
func (k PriKey) Pk() string           { return normalizeID(k.ID) }
func (k PriKey) Locations() LocKeyArray { return nil }

func (k PriKey) String() string {
	return fmt.Sprintf("pk:%s:%s", k.Kind, normalizeID(k.ID))
}

func (k ComKey) Kt() Kind             { return k.Kind }
func (k ComKey) Pk() string           { return normalizeID(k.ID) }
func (k ComKey) Locations() LocKeyArray { return k.Loc }

func (k ComKey) String() string {
	var b strings.Builder
	b.WriteString("ck:")
	b.WriteString(string(k.Kind))
	b.WriteByte(':')
	b.WriteString(normalizeID(k.ID))
	for _, lk := range k.Loc {
		b.WriteByte('>')
		b.WriteString(string(lk.Kind))
		b.WriteByte(':')
		b.WriteString(normalizeID(lk.ID))
	}
	return b.String()
}

// Equal reports whether two keys denote the same entity after
// normalisation.
func Equal(a, b Key) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.String() == b.String()
}

// HasLocationPrefix reports whether key's location chain has prefix as a
// prefix. An empty prefix matches every key, including bare PriKeys.
func HasLocationPrefix(k Key, prefix LocKeyArray) bool {
	if len(prefix) == 0 {
		return true
	}
	loc := k.Locations()
	if len(loc) < len(prefix) {
		return false
	}
	for i, lk := range prefix {
		if loc[i].Kind != lk.Kind || normalizeID(loc[i].ID) != normalizeID(lk.ID) {
			return false
		}
	}
	return true
}

// LocationString renders a LocKeyArray the same way ComKey.String renders
// its chain, for use as a sub-key in location-scoped indexes.
func LocationString(loc LocKeyArray) string {
	var b strings.Builder
	for _, lk := range loc {
		b.WriteByte('>')
		b.WriteString(string(lk.Kind))
		b.WriteByte(':')
		b.WriteString(normalizeID(lk.ID))
	}
	return b.String()
}
