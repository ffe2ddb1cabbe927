package napp

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/annidx/annidx"
	"github.com/annidx/annidx/pkg/space"
)

func TestFastScanCountWorkedExample(t *testing.T) {
	postings := [][]uint32{
		{1, 3, 5, 7},
		{1, 2, 5, 9},
		{3, 5, 7, 8},
	}
	got := FastScanCount(postings, 2)
	want := []uint32{1, 3, 5, 7}
	if len(got) != len(want) {
		t.Fatalf("FastScanCount = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("FastScanCount = %v, want %v", got, want)
		}
	}
}

func TestFastScanCountRangeBlocking(t *testing.T) {
	// Force a tiny block range so values straddle multiple blocks.
	postings := [][]uint32{
		{0, 40000, 40001},
		{0, 40000, 50000},
	}
	got := FastScanCountRange(postings, 2, 16)
	want := []uint32{0, 40000}
	if len(got) != len(want) {
		t.Fatalf("FastScanCountRange = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("FastScanCountRange = %v, want %v", got, want)
		}
	}
}

func TestFastScanCountEmptyThreshold(t *testing.T) {
	if out := FastScanCount(nil, 1); out != nil {
		t.Fatalf("FastScanCount(nil,...) = %v, want nil", out)
	}
	if out := FastScanCount([][]uint32{{1, 2}}, 0); out != nil {
		t.Fatalf("FastScanCount(...,0) = %v, want nil", out)
	}
}

// clusteredObjects builds numClusters well-separated blobs of size
// perCluster, so a correct NAPP build/search recovers same-cluster
// neighbors almost every time.
func clusteredObjects(numClusters, perCluster int) []*annidx.Object {
	var out []*annidx.Object
	id := uint32(0)
	for c := 0; c < numClusters; c++ {
		center := float32(c * 100)
		for i := 0; i < perCluster; i++ {
			jitter := float32(i%3) - 1
			out = append(out, &annidx.Object{ID: id, Vector: []float32{center + jitter, center - jitter}})
			id++
		}
	}
	return out
}

func TestBuildAndSearchKNNFindsSameCluster(t *testing.T) {
	objects := clusteredObjects(16, 20) // 320 objects, 16 clusters
	idx := New[float32](space.NewL2(), DefaultConfig(), nil)

	params := annidx.ParamBag{"numPivot": 64, "numPrefix": 8, "chunkIndexSize": 64}
	if err := idx.Build(context.Background(), objects, params); err != nil {
		t.Fatalf("Build: %v", err)
	}

	query := objects[0]
	results, err := idx.SearchKNN(query, 5, annidx.ParamBag{"minTimes": 1})
	if err != nil {
		t.Fatalf("SearchKNN: %v", err)
	}
	if len(results) == 0 {
		t.Fatalf("SearchKNN returned no results")
	}

	sameCluster := 0
	for _, r := range results {
		if r.ObjectID < 20 {
			sameCluster++
		}
	}
	if sameCluster == 0 {
		t.Fatalf("expected at least one same-cluster neighbor among %d results", len(results))
	}
}

func TestSearchKNNZeroK(t *testing.T) {
	idx := New[float32](space.NewL2(), DefaultConfig(), nil)
	objects := clusteredObjects(2, 5)
	if err := idx.Build(context.Background(), objects, annidx.ParamBag{"numPivot": 4, "numPrefix": 2}); err != nil {
		t.Fatalf("Build: %v", err)
	}
	results, err := idx.SearchKNN(objects[0], 0, nil)
	if err != nil || results != nil {
		t.Fatalf("SearchKNN(k=0) = %v, %v, want nil, nil", results, err)
	}
}

func TestDeleteBatchUnsupported(t *testing.T) {
	idx := New[float32](space.NewL2(), DefaultConfig(), nil)
	err := idx.DeleteBatch(context.Background(), []uint32{0}, annidx.DeleteDropOnly)
	if err == nil {
		t.Fatalf("DeleteBatch should return an error")
	}
	if !errors.Is(err, annidx.ErrUnsupported) {
		t.Fatalf("DeleteBatch error = %v, want wrapping ErrUnsupported", err)
	}
}

func TestStatsReportsObjectAndPivotCounts(t *testing.T) {
	objects := clusteredObjects(4, 10)
	idx := New[float32](space.NewL2(), DefaultConfig(), nil)
	if err := idx.Build(context.Background(), objects, annidx.ParamBag{"numPivot": 8, "numPrefix": 4}); err != nil {
		t.Fatalf("Build: %v", err)
	}
	stats := idx.Stats()
	if stats["objectCount"] != len(objects) {
		t.Fatalf("stats[objectCount] = %v, want %d", stats["objectCount"], len(objects))
	}
	if stats["pivotCount"] != 8 {
		t.Fatalf("stats[pivotCount] = %v, want 8", stats["pivotCount"])
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	objects := clusteredObjects(4, 10)
	idx := New[float32](space.NewL2(), DefaultConfig(), nil)
	if err := idx.Build(context.Background(), objects, annidx.ParamBag{"numPivot": 8, "numPrefix": 4, "chunkIndexSize": 16}); err != nil {
		t.Fatalf("Build: %v", err)
	}

	var buf bytes.Buffer
	if err := idx.Save(&buf); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded := New[float32](space.NewL2(), DefaultConfig(), nil)
	if err := loaded.Load(&buf, objects); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.NumPivot() != idx.NumPivot() {
		t.Fatalf("loaded NumPivot = %d, want %d", loaded.NumPivot(), idx.NumPivot())
	}

	before, err := idx.SearchKNN(objects[0], 3, annidx.ParamBag{"minTimes": 1})
	if err != nil {
		t.Fatalf("SearchKNN before: %v", err)
	}
	after, err := loaded.SearchKNN(objects[0], 3, annidx.ParamBag{"minTimes": 1})
	if err != nil {
		t.Fatalf("SearchKNN after: %v", err)
	}
	if len(before) != len(after) {
		t.Fatalf("result count changed across save/load: %d vs %d", len(before), len(after))
	}
}
