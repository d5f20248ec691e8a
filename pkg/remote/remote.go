// Package remote declares the contract the read-through operations
// consume (spec.md §6). The remote item API itself — HTTP client, gRPC
// stub, whatever transport a concrete deployment uses — is out of
// scope; only the interface and its distinguished NotFoundError live
// here.
package remote

import (
	"context"
	"errors"
	"fmt"

	"github.com/krishna8167/cachecore/pkg/citem"
	"github.com/krishna8167/cachecore/pkg/ckey"
)

// Item is the shape a remote-returned payload must satisfy.
type Item = citem.Item

// Query is an opaque, application-defined filter shape passed through to
// the remote and used verbatim (after normalisation) as part of a
// QueryHash.
type Query = interface{}

// API is the remote item API the read-through operations fall back to
// on a cache miss (spec.md §6).
type API interface {
	All(ctx context.Context, query Query, locations ckey.LocKeyArray) ([]Item, error)
	One(ctx context.Context, query Query, locations ckey.LocKeyArray) (Item, error)
	Get(ctx context.Context, key ckey.Key) (Item, error)
	Find(ctx context.Context, finder string, params Query, locations ckey.LocKeyArray) ([]Item, error)
	FindOne(ctx context.Context, finder string, params Query, locations ckey.LocKeyArray) (Item, error)

	Create(ctx context.Context, item Item) (Item, error)
	Update(ctx context.Context, key ckey.Key, item Item) (Item, error)
	Remove(ctx context.Context, key ckey.Key) error
	Facet(ctx context.Context, name string, params Query, locations ckey.LocKeyArray) (interface{}, error)
	Action(ctx context.Context, key ckey.Key, name string, params Query) (interface{}, error)
}

// NotFoundError is the distinguished failure All/Find use to tell "the
// remote has no such item/collection" apart from a transport failure
// (spec.md §6, §7).
type NotFoundError struct {
	Query interface{}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("remote: not found: %v", e.Query)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
