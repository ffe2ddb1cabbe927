package hnsw

import (
	"bytes"
	"context"
	"testing"

	"github.com/annidx/annidx"
	"github.com/annidx/annidx/pkg/space"
)

func toyObjects() []*annidx.Object {
	// Four well-separated points in 4-D so brute-force nearest neighbor
	// is unambiguous for any of them.
	return []*annidx.Object{
		{ID: 0, Vector: []float32{0, 0, 0, 0}},
		{ID: 1, Vector: []float32{1, 0, 0, 0}},
		{ID: 2, Vector: []float32{0, 1, 0, 0}},
		{ID: 3, Vector: []float32{10, 10, 10, 10}},
	}
}

func TestBuildAndSearchFindsNearestNeighbor(t *testing.T) {
	objects := toyObjects()
	idx := New[float32](space.NewL2(), DefaultConfig())
	idx.SetSeed(1)
	if err := idx.Build(context.Background(), objects, nil); err != nil {
		t.Fatalf("Build: %v", err)
	}

	query := &annidx.Object{Vector: []float32{0.1, 0, 0, 0}}
	results, err := idx.SearchKNN(query, 1, nil)
	if err != nil {
		t.Fatalf("SearchKNN: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	if results[0].ObjectID != 0 {
		t.Fatalf("nearest neighbor = %d, want 0", results[0].ObjectID)
	}
}

func TestSearchKNNZeroReturnsNil(t *testing.T) {
	idx := New[float32](space.NewL2(), DefaultConfig())
	if err := idx.Build(context.Background(), toyObjects(), nil); err != nil {
		t.Fatalf("Build: %v", err)
	}
	results, err := idx.SearchKNN(&annidx.Object{Vector: []float32{0, 0, 0, 0}}, 0, nil)
	if err != nil || results != nil {
		t.Fatalf("SearchKNN(k=0) = %v, %v, want nil, nil", results, err)
	}
}

func TestSearchKNNPromotesEfBelowK(t *testing.T) {
	idx := New[float32](space.NewL2(), DefaultConfig())
	if err := idx.Build(context.Background(), toyObjects(), nil); err != nil {
		t.Fatalf("Build: %v", err)
	}
	// ef smaller than k must not truncate the result below k.
	results, err := idx.SearchKNN(&annidx.Object{Vector: []float32{0, 0, 0, 0}}, 4, annidx.ParamBag{"ef": 1})
	if err != nil {
		t.Fatalf("SearchKNN: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("len(results) = %d, want 4", len(results))
	}
}

func TestSearchRangeUnsupported(t *testing.T) {
	idx := New[float32](space.NewL2(), DefaultConfig())
	_, err := idx.SearchRange(&annidx.Object{Vector: []float32{0, 0, 0, 0}}, 1, nil)
	if err == nil {
		t.Fatalf("SearchRange should be unsupported on HNSW")
	}
}

func TestV1MergeAlgoAgreesWithOldOnToyExample(t *testing.T) {
	objects := toyObjects()
	idx := New[float32](space.NewL2(), DefaultConfig())
	idx.SetSeed(2)
	if err := idx.Build(context.Background(), objects, nil); err != nil {
		t.Fatalf("Build: %v", err)
	}
	query := &annidx.Object{Vector: []float32{0, 0, 0, 0}}

	old, err := idx.SearchKNN(query, 2, annidx.ParamBag{"algoType": "old"})
	if err != nil {
		t.Fatalf("SearchKNN(old): %v", err)
	}
	v1, err := idx.SearchKNN(query, 2, annidx.ParamBag{"algoType": "v1merge"})
	if err != nil {
		t.Fatalf("SearchKNN(v1merge): %v", err)
	}
	if len(old) != len(v1) {
		t.Fatalf("result count mismatch: old=%d v1merge=%d", len(old), len(v1))
	}
	if old[0].ObjectID != v1[0].ObjectID {
		t.Fatalf("nearest neighbor mismatch between algorithms: old=%d v1merge=%d", old[0].ObjectID, v1[0].ObjectID)
	}
}

func TestDeleteBatchRemovesFromResults(t *testing.T) {
	objects := toyObjects()
	idx := New[float32](space.NewL2(), DefaultConfig())
	idx.SetSeed(3)
	if err := idx.Build(context.Background(), objects, nil); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := idx.DeleteBatch(context.Background(), []uint32{0}, annidx.DeleteNeighborsOnly); err != nil {
		t.Fatalf("DeleteBatch: %v", err)
	}
	results, err := idx.SearchKNN(&annidx.Object{Vector: []float32{0, 0, 0, 0}}, 4, nil)
	if err != nil {
		t.Fatalf("SearchKNN: %v", err)
	}
	for _, r := range results {
		if r.ObjectID == 0 {
			t.Fatalf("deleted object 0 still reachable from search")
		}
	}
}

func TestSaveLoadRoundTripPreservesSearch(t *testing.T) {
	objects := toyObjects()
	idx := New[float32](space.NewL2(), DefaultConfig())
	idx.SetSeed(4)
	if err := idx.Build(context.Background(), objects, nil); err != nil {
		t.Fatalf("Build: %v", err)
	}

	var buf bytes.Buffer
	if err := idx.Save(&buf); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded := New[float32](space.NewL2(), DefaultConfig())
	if err := loaded.Load(&buf, objects); err != nil {
		t.Fatalf("Load: %v", err)
	}

	query := &annidx.Object{Vector: []float32{0.1, 0, 0, 0}}
	before, err := idx.SearchKNN(query, 2, nil)
	if err != nil {
		t.Fatalf("SearchKNN before: %v", err)
	}
	after, err := loaded.SearchKNN(query, 2, nil)
	if err != nil {
		t.Fatalf("SearchKNN after: %v", err)
	}
	if len(before) != len(after) {
		t.Fatalf("result count changed across save/load: %d vs %d", len(before), len(after))
	}
	for i := range before {
		if before[i].ObjectID != after[i].ObjectID {
			t.Fatalf("result[%d] changed across save/load: %d vs %d", i, before[i].ObjectID, after[i].ObjectID)
		}
	}
}

func TestStatsReportsNodeAndEdgeCounts(t *testing.T) {
	objects := toyObjects()
	idx := New[float32](space.NewL2(), DefaultConfig())
	idx.SetSeed(6)
	if err := idx.Build(context.Background(), objects, nil); err != nil {
		t.Fatalf("Build: %v", err)
	}
	stats := idx.Stats()
	if stats["nodeCount"] != len(objects) {
		t.Fatalf("stats[nodeCount] = %v, want %d", stats["nodeCount"], len(objects))
	}
	if stats["entryPoint"].(int) < 0 {
		t.Fatalf("stats[entryPoint] = %v, want >= 0 on a non-empty graph", stats["entryPoint"])
	}
}

func TestLoadRejectsObjectCountMismatch(t *testing.T) {
	objects := toyObjects()
	idx := New[float32](space.NewL2(), DefaultConfig())
	if err := idx.Build(context.Background(), objects, nil); err != nil {
		t.Fatalf("Build: %v", err)
	}
	var buf bytes.Buffer
	if err := idx.Save(&buf); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded := New[float32](space.NewL2(), DefaultConfig())
	if err := loaded.Load(&buf, objects[:2]); err == nil {
		t.Fatalf("Load should reject a mismatched object count")
	}
}

func TestConcurrentBuildKeepsMostObjectsSearchable(t *testing.T) {
	n := 200
	objects := make([]*annidx.Object, n)
	for i := 0; i < n; i++ {
		objects[i] = &annidx.Object{ID: uint32(i), Vector: []float32{float32(i), float32(i % 7)}}
	}
	cfg := DefaultConfig()
	cfg.IndexThreadQty = 4
	idx := New[float32](space.NewL2(), cfg)
	idx.SetSeed(5)
	if err := idx.Build(context.Background(), objects, nil); err != nil {
		t.Fatalf("Build: %v", err)
	}

	seen := make(map[uint32]bool, n)
	for i := 0; i < n; i++ {
		results, err := idx.SearchKNN(objects[i], 1, annidx.ParamBag{"ef": 50})
		if err != nil {
			t.Fatalf("SearchKNN: %v", err)
		}
		if len(results) == 1 {
			seen[results[0].ObjectID] = true
		}
	}
	if len(seen) < n/2 {
		t.Fatalf("concurrent build left too few objects reachable: %d/%d", len(seen), n)
	}
}
