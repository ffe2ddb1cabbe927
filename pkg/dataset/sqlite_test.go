package dataset

import (
	"context"
	"testing"

	"github.com/annidx/annidx"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLiteStore(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("OpenSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStorePutAndObjectRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	want := &annidx.Object{ID: 7, Vector: []float32{1.5, 2.5, 3.5}}
	if err := s.Put(ctx, want, false); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.Object(ctx, 7)
	if err != nil {
		t.Fatalf("Object: %v", err)
	}
	if got.ID != want.ID || len(got.Vector) != len(want.Vector) {
		t.Fatalf("Object() = %+v, want %+v", got, want)
	}
	for i := range want.Vector {
		if got.Vector[i] != want.Vector[i] {
			t.Fatalf("Vector[%d] = %v, want %v", i, got.Vector[i], want.Vector[i])
		}
	}
}

func TestSQLiteStorePutUpsertsOnConflict(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	s.Put(ctx, &annidx.Object{ID: 1, Vector: []float32{1}}, false)
	s.Put(ctx, &annidx.Object{ID: 1, Vector: []float32{2}}, false)

	n, err := s.Len(ctx)
	if err != nil || n != 1 {
		t.Fatalf("Len() = %d, %v, want 1, nil", n, err)
	}
	got, err := s.Object(ctx, 1)
	if err != nil {
		t.Fatalf("Object: %v", err)
	}
	if got.Vector[0] != 2 {
		t.Fatalf("Vector[0] = %v, want 2 (upserted)", got.Vector[0])
	}
}

func TestSQLiteStoreObjectMissingReturnsError(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.Object(context.Background(), 42); err == nil {
		t.Fatalf("Object(missing) should return an error")
	}
}

func TestSQLiteStoreAllSortedByID(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	s.Put(ctx, &annidx.Object{ID: 3, Vector: []float32{0}}, false)
	s.Put(ctx, &annidx.Object{ID: 1, Vector: []float32{0}}, false)
	s.Put(ctx, &annidx.Object{ID: 2, Vector: []float32{0}}, false)

	all, err := s.All(ctx)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	want := []uint32{1, 2, 3}
	for i, id := range want {
		if all[i].ID != id {
			t.Fatalf("All()[%d].ID = %d, want %d", i, all[i].ID, id)
		}
	}
}

func TestSQLiteStorePivotsFallsBackToAllWhenNoneFlagged(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	s.Put(ctx, &annidx.Object{ID: 0, Vector: []float32{0}}, false)
	s.Put(ctx, &annidx.Object{ID: 1, Vector: []float32{0}}, false)

	pivots, err := s.Pivots(ctx)
	if err != nil {
		t.Fatalf("Pivots: %v", err)
	}
	if len(pivots) != 2 {
		t.Fatalf("Pivots() with none flagged = %d, want all 2", len(pivots))
	}
}

func TestSQLiteStorePivotsReturnsOnlyFlagged(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	s.Put(ctx, &annidx.Object{ID: 0, Vector: []float32{0}}, false)
	s.Put(ctx, &annidx.Object{ID: 1, Vector: []float32{0}}, true)

	pivots, err := s.Pivots(ctx)
	if err != nil {
		t.Fatalf("Pivots: %v", err)
	}
	if len(pivots) != 1 || pivots[0].ID != 1 {
		t.Fatalf("Pivots() = %v, want [object 1]", pivots)
	}
}

func TestParseLabelFallsBackToZeroUUIDOnGarbage(t *testing.T) {
	if got := parseLabel("not-a-uuid"); got.String() == "not-a-uuid" {
		t.Fatalf("parseLabel should not echo invalid input back unchanged")
	}
}

var _ ObjectStore = (*SQLiteStore)(nil)
