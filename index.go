package annidx

import (
	"context"
	"io"
)

// DeleteStrategy selects how HnswBuilder patches neighbor lists after a
// delete. NAPP does not support delete at all (ErrUnsupported).
type DeleteStrategy int

const (
	// DeleteDropOnly removes the deleted id from every neighbor list
	// that referenced it, without replacement.
	DeleteDropOnly DeleteStrategy = iota
	// DeleteNeighborsOnly replaces the deleted id with the closest
	// surviving object among the neighbor's neighbors-of-neighbors.
	DeleteNeighborsOnly
)

// ScoredResult is one (distance, object) pair returned by a query.
type ScoredResult[T Number] struct {
	ObjectID uint32
	Distance T
}

// Index is the embedder-facing contract every search-structure family
// in this module implements.
type Index[T Number] interface {
	// Build discards any existing state and constructs the index over
	// objects using params.
	Build(ctx context.Context, objects []*Object, params ParamBag) error

	// AddBatch inserts objects into an already-built index.
	AddBatch(ctx context.Context, objects []*Object) error

	// DeleteBatch removes ids using strategy. Returns ErrUnsupported if
	// the family does not support delete.
	DeleteBatch(ctx context.Context, ids []uint32, strategy DeleteStrategy) error

	// SearchKNN returns the k closest objects to query.
	SearchKNN(query *Object, k int, params ParamBag) ([]ScoredResult[T], error)

	// SearchRange returns every object within radius of query. Returns
	// ErrUnsupported if the family does not support range search.
	SearchRange(query *Object, radius T, params ParamBag) ([]ScoredResult[T], error)

	// Save serializes the index to w.
	Save(w io.Writer) error

	// Load restores the index from r. objects must be the same dataset
	// (by id and distance function) used to Build the saved index. Load
	// returns ErrDataMutation for the mismatches a family checks for;
	// which checks are made differs by family.
	Load(r io.Reader, objects []*Object) error
}
