// Package cerr defines the error kinds surfaced uniformly across
// read-through operations (spec.md §7). They are plain sentinel values
// rather than a tagged struct hierarchy (contrast
// smartramana-developer-mesh/pkg/common/errors/errors.go's ErrorType
// constants) because cachecore only needs errors.Is-style
// classification, not an HTTP status mapping or a JSON error envelope.
package cerr

import "errors"

var (
	// ErrNotFound: a single-item lookup found nothing. Propagated to the
	// caller; cache unchanged.
	ErrNotFound = errors.New("cachecore: not found")

	// ErrValidation: an item's key did not match its CacheMap's kta.
	// Hard error; cache unchanged.
	ErrValidation = errors.New("cachecore: validation failure")

	// ErrBounds: construction-time configuration was invalid (empty
	// cacheType, negative maxItems or maxSizeBytes, unparseable size or
	// ttl string, unknown eviction policy). A maxItems of 0 is accepted
	// and means the item count is unbounded.
	ErrBounds = errors.New("cachecore: bounds/configuration failure")

	// ErrRemote: a remote call failed for a reason other than
	// NotFound. Partial writes already committed remain.
	ErrRemote = errors.New("cachecore: remote failure")

	// ErrMetadataMissing: treated as "not cached"; callers should fall
	// through to the remote rather than treat this as fatal.
	ErrMetadataMissing = errors.New("cachecore: metadata missing")

	// ErrListener: an event listener failed; isolated from the
	// emitting operation's return value.
	ErrListener = errors.New("cachecore: listener failure")
)
