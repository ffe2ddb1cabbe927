// Package flatindex provides a sequential-scan annidx.Index used as
// the exact-recall oracle HNSW and NAPP are measured against in
// testing: every query is a full pass over the dataset with no
// approximation.
//
// Grounded on the teacher's FlatIndex (liliang-cn/sqvect,
// pkg/index/flat.go): same brute-force role, rebuilt over
// annidx.Object/Space instead of a raw []float32 map. Every query
// scores all live objects and sorts them in full by distance.
package flatindex

import (
	"context"
	"encoding/binary"
	"io"
	"sort"
	"sync"

	"github.com/annidx/annidx"
	"github.com/annidx/annidx/internal/encoding"
)

// Index is the brute-force exact-search oracle.
type Index[T annidx.Number] struct {
	space annidx.Space[T]

	mu      sync.RWMutex
	objects []*annidx.Object
}

// New creates an empty flat index over space.
func New[T annidx.Number](space annidx.Space[T]) *Index[T] {
	return &Index[T]{space: space}
}

// Build discards any existing state and loads objects.
func (idx *Index[T]) Build(ctx context.Context, objects []*annidx.Object, params annidx.ParamBag) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.objects = nil
	return idx.addLocked(objects)
}

// AddBatch appends objects to the dataset.
func (idx *Index[T]) AddBatch(ctx context.Context, objects []*annidx.Object) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.addLocked(objects)
}

func (idx *Index[T]) addLocked(objects []*annidx.Object) error {
	for _, o := range objects {
		if int(o.ID) >= len(idx.objects) {
			grown := make([]*annidx.Object, o.ID+1)
			copy(grown, idx.objects)
			idx.objects = grown
		}
		idx.objects[o.ID] = o
	}
	return nil
}

// DeleteBatch removes ids by nil-ing their slot; a nil slot is skipped
// by every subsequent scan.
func (idx *Index[T]) DeleteBatch(ctx context.Context, ids []uint32, strategy annidx.DeleteStrategy) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for _, id := range ids {
		if int(id) < len(idx.objects) {
			idx.objects[id] = nil
		}
	}
	return nil
}

// SearchKNN scans every live object and returns the k closest to query.
func (idx *Index[T]) SearchKNN(query *annidx.Object, k int, params annidx.ParamBag) ([]annidx.ScoredResult[T], error) {
	if k == 0 {
		return nil, nil
	}
	scored := idx.scan(query)
	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k], nil
}

// SearchRange returns every live object within radius of query.
func (idx *Index[T]) SearchRange(query *annidx.Object, radius T, params annidx.ParamBag) ([]annidx.ScoredResult[T], error) {
	scored := idx.scan(query)
	out := scored[:0]
	for _, s := range scored {
		if s.Distance <= radius {
			out = append(out, s)
		}
	}
	return out, nil
}

func (idx *Index[T]) scan(query *annidx.Object) []annidx.ScoredResult[T] {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make([]annidx.ScoredResult[T], 0, len(idx.objects))
	for _, o := range idx.objects {
		if o == nil {
			continue
		}
		out = append(out, annidx.ScoredResult[T]{ObjectID: o.ID, Distance: idx.space.QueryDistance(query, o)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	return out
}

// Save writes every live object's id and vector, length-prefixed. The
// flat index has no persistence format in the specification since it
// is a testing oracle, not a shipped index family; this format exists
// only so flatindex satisfies annidx.Index for use in round-trip test
// harnesses that exercise every family identically.
func (idx *Index[T]) Save(w io.Writer) error {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	live := make([]*annidx.Object, 0, len(idx.objects))
	for _, o := range idx.objects {
		if o != nil {
			live = append(live, o)
		}
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(live))); err != nil {
		return annidx.WrapError("flatindex.Save", err)
	}
	for _, o := range live {
		if err := binary.Write(w, binary.LittleEndian, o.ID); err != nil {
			return annidx.WrapError("flatindex.Save", err)
		}
		enc, err := encoding.EncodeVector(o.Vector)
		if err != nil {
			return annidx.WrapError("flatindex.Save", err)
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(len(enc))); err != nil {
			return annidx.WrapError("flatindex.Save", err)
		}
		if _, err := w.Write(enc); err != nil {
			return annidx.WrapError("flatindex.Save", err)
		}
	}
	return nil
}

// Load restores the index from Save's layout. The objects parameter is
// accepted for interface symmetry with HNSW/NAPP but unused: the flat
// index is self-contained, carrying its own object payloads.
func (idx *Index[T]) Load(r io.Reader, objects []*annidx.Object) error {
	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return annidx.WrapError("flatindex.Load", annidx.ErrCorruption)
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.objects = nil
	for i := uint32(0); i < count; i++ {
		var id uint32
		if err := binary.Read(r, binary.LittleEndian, &id); err != nil {
			return annidx.WrapError("flatindex.Load", annidx.ErrCorruption)
		}
		var encLen uint32
		if err := binary.Read(r, binary.LittleEndian, &encLen); err != nil {
			return annidx.WrapError("flatindex.Load", annidx.ErrCorruption)
		}
		buf := make([]byte, encLen)
		if _, err := io.ReadFull(r, buf); err != nil {
			return annidx.WrapError("flatindex.Load", annidx.ErrCorruption)
		}
		vec, err := encoding.DecodeVector(buf)
		if err != nil {
			return annidx.WrapError("flatindex.Load", annidx.ErrCorruption)
		}
		if err := idx.addLocked([]*annidx.Object{{ID: id, Vector: vec}}); err != nil {
			return annidx.WrapError("flatindex.Load", err)
		}
	}
	return nil
}

var _ annidx.Index[float32] = (*Index[float32])(nil)
