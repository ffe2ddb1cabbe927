// Package napp implements the Neighborhood-APProximation inverted
// index: a per-object closest-pivot signature combined with a
// t-overlap filter over chunked postings, intersected at query time by
// one of four interchangeable algorithms.
//
// Grounded on the teacher's pkg/index/ivf.go (liliang-cn/sqvect) for
// the overall "partition the dataset, build per-partition posting
// structures, merge at query time" shape — IVF's single coarse
// quantizer is generalized here into NAPP's num_pivot-sized landmark
// set and its single inverted list per centroid into chunked postings
// per pivot.
package napp

import (
	"sync"

	"github.com/annidx/annidx"
	"github.com/annidx/annidx/internal/logging"
	"github.com/annidx/annidx/pkg/pivot"
)

// chunk is one contiguous slice of the dataset's per-pivot postings.
type chunk struct {
	startID int
	size    int
	// postings[p] holds the chunk-local ids (offsets into
	// [startID,startID+size)) whose signature contains pivot p, sorted
	// ascending.
	postings [][]uint32
}

// Index is the NAPP implementation of annidx.Index[T]. Delete is not
// supported (§7 UnsupportedOperation); Build/AddBatch grow the
// chunk list, never rewrite an existing chunk.
type Index[T annidx.Number] struct {
	space annidx.Space[T]
	cfg   Config

	mu      sync.RWMutex
	pivots  *pivot.Set
	objects []*annidx.Object
	chunks  []*chunk
	log     logging.Logger
}

// New creates an empty NAPP index over space and cfg. Pass a non-nil
// pivots to use a pre-selected landmark set (e.g. loaded from a pivot
// file); pass nil to have Build select pivots uniformly at random from
// the first batch of objects.
func New[T annidx.Number](space annidx.Space[T], cfg Config, pivots *pivot.Set) *Index[T] {
	return &Index[T]{space: space, cfg: cfg, pivots: pivots, log: logging.Nop()}
}

// SetLogger installs a structured logger for build/search diagnostics.
func (idx *Index[T]) SetLogger(l logging.Logger) { idx.log = l }

// NumPivot reports the size of the currently installed pivot set
// (0 before the first Build).
func (idx *Index[T]) NumPivot() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if idx.pivots == nil {
		return 0
	}
	return idx.pivots.Len()
}

func (idx *Index[T]) objectAt(id uint32) *annidx.Object {
	return idx.objects[id]
}

// Stats reports build-time introspection: object and pivot counts, the
// chunk count, and the average posting length per pivot per chunk,
// mirroring the teacher's IVFIndex.Stats().
func (idx *Index[T]) Stats() map[string]any {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	numPivot := 0
	if idx.pivots != nil {
		numPivot = idx.pivots.Len()
	}
	avgPostingLen := 0.0
	if len(idx.chunks) > 0 && numPivot > 0 {
		total := 0
		for _, c := range idx.chunks {
			for _, p := range c.postings {
				total += len(p)
			}
		}
		avgPostingLen = float64(total) / float64(len(idx.chunks)*numPivot)
	}
	return map[string]any{
		"objectCount":        len(idx.objects),
		"pivotCount":         numPivot,
		"chunkCount":         len(idx.chunks),
		"avgPostingPerPivot": avgPostingLen,
	}
}

var _ annidx.Index[float32] = (*Index[float32])(nil)
