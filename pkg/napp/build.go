package napp

import (
	"context"
	"math/rand"

	"github.com/annidx/annidx"
	"github.com/annidx/annidx/internal/workerpool"
	"github.com/annidx/annidx/pkg/pivot"
)

// Build discards any existing state and builds the index over objects:
// selects a pivot set if one was not supplied at construction, then
// builds chunked postings over the whole dataset. A non-empty params
// replaces the Config given to New (unset keys take DefaultConfig
// values); an empty params keeps the Config given to New.
func (idx *Index[T]) Build(ctx context.Context, objects []*annidx.Object, params annidx.ParamBag) error {
	cfg := idx.cfg
	if len(params) > 0 {
		var err error
		if cfg, err = FromParamBag(params); err != nil {
			return err
		}
	}
	idx.mu.Lock()
	idx.cfg = cfg
	idx.objects = nil
	idx.chunks = nil
	idx.mu.Unlock()

	if idx.pivots == nil || idx.pivots.Len() == 0 {
		if cfg.NumPivot > len(objects) {
			return annidx.ParameterErrorf("napp.Build", "numPivot (%d) exceeds dataset size (%d)", cfg.NumPivot, len(objects))
		}
		rng := rand.New(rand.NewSource(1))
		idx.pivots = pivot.SelectRandom(objects, cfg.NumPivot, rng)
	}

	return idx.AddBatch(ctx, objects)
}

// AddBatch appends objects to the dataset and builds new chunks over
// just the appended range, leaving existing chunks untouched — the
// append-only posting-list model §9's "smart-pointer posting lists"
// note describes.
func (idx *Index[T]) AddBatch(ctx context.Context, objects []*annidx.Object) error {
	if len(objects) == 0 {
		return nil
	}
	if idx.pivots == nil {
		return annidx.WrapError("napp.AddBatch", annidx.ParameterErrorf("napp.AddBatch", "no pivot set installed; call Build first"))
	}

	idx.mu.Lock()
	startID := len(idx.objects)
	for _, o := range objects {
		if int(o.ID) >= len(idx.objects) {
			grown := make([]*annidx.Object, o.ID+1)
			copy(grown, idx.objects)
			idx.objects = grown
		}
		idx.objects[o.ID] = o
	}
	endID := len(idx.objects)
	idx.mu.Unlock()

	chunkSize := idx.cfg.ChunkIndexSize
	if chunkSize <= 0 {
		chunkSize = DefaultConfig().ChunkIndexSize
	}
	var newChunks []*chunk
	for cStart := startID; cStart < endID; cStart += chunkSize {
		cEnd := min(cStart+chunkSize, endID)
		newChunks = append(newChunks, &chunk{startID: cStart, size: cEnd - cStart})
	}

	err := workerpool.ParallelFor(ctx, 0, len(newChunks), idx.cfg.IndexThreadQty, func(ctx context.Context, i int, workerID int) error {
		return idx.buildChunk(newChunks[i])
	})
	if err != nil {
		return annidx.WrapError("napp.AddBatch", err)
	}

	idx.mu.Lock()
	idx.chunks = append(idx.chunks, newChunks...)
	idx.mu.Unlock()
	return nil
}

// buildChunk computes every object's signature in the chunk's range
// and fills postings[pivot] with the chunk-local ids whose signature
// contains that pivot, per §4.7's per-chunk storage layout.
func (idx *Index[T]) buildChunk(c *chunk) error {
	numPivot := idx.pivots.Len()
	c.postings = make([][]uint32, numPivot)
	for localID := 0; localID < c.size; localID++ {
		obj := idx.objectAt(uint32(c.startID + localID))
		sig := pivot.Signature(obj, idx.pivots, idx.cfg.NumPrefix, idx.space)
		for _, p := range sig {
			c.postings[p] = append(c.postings[p], uint32(localID))
		}
	}
	return nil
}
