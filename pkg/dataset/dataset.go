// Package dataset implements the external collaborator §1 scopes out
// of the core: the object and pivot I/O layer that loads a dataset
// from disk (or memory) for the builder to consume. The core never
// imports this package; cmd/annidx wires the two together.
package dataset

import (
	"context"

	"github.com/annidx/annidx"
)

// ObjectStore is the interface the core's external collaborators
// implement: enough to load an object by id, enumerate the dataset
// size, and hand back a pivot pool, without the core ever touching a
// byte of persisted storage itself.
type ObjectStore interface {
	// Len reports how many objects are currently stored.
	Len(ctx context.Context) (int, error)
	// Object returns the stored object for id.
	Object(ctx context.Context, id uint32) (*annidx.Object, error)
	// All returns every stored object, in id order, for a full build.
	All(ctx context.Context) ([]*annidx.Object, error)
	// Pivots returns the subset of objects flagged as pivots, or all
	// objects if none were explicitly flagged — the caller's
	// PivotSelection pass samples from whichever pool this returns.
	Pivots(ctx context.Context) ([]*annidx.Object, error)
}
