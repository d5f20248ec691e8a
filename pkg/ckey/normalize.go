package ckey

import "strings"

// normalizeID canonicalises an id before it becomes part of a key's
// string form.
//
// Open question decision (SPEC_FULL.md §E.2): a numeric-looking id (from
// a number-typed field upstream, rendered as a string by the caller) and
// its string-typed counterpart must denote the same entity. Since ckey's
// keys are string-typed end to end, the only normalisation needed to make
// "123" and "123" (one produced by fmt.Sprint(123), one typed directly)
// collide is trimming incidental whitespace — there is no int/string
// duality left to resolve once both sides are strings. This direction
// (string-canonical, not numeric-canonical) is stable for the process
// lifetime, which is all §4.1.2 requires.
func normalizeID(id string) string {
	return strings.TrimSpace(id)
}
