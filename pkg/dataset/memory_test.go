package dataset

import (
	"context"
	"errors"
	"testing"

	"github.com/annidx/annidx"
)

func TestInMemoryPutAndObject(t *testing.T) {
	ctx := context.Background()
	m := NewInMemory()
	m.Put(&annidx.Object{ID: 1, Vector: []float32{1, 2}})

	o, err := m.Object(ctx, 1)
	if err != nil {
		t.Fatalf("Object: %v", err)
	}
	if o.ID != 1 {
		t.Fatalf("Object.ID = %d, want 1", o.ID)
	}
}

func TestInMemoryObjectMissingReturnsParameterError(t *testing.T) {
	m := NewInMemory()
	_, err := m.Object(context.Background(), 99)
	if !errors.Is(err, annidx.ErrParameter) {
		t.Fatalf("Object(missing) error = %v, want ErrParameter", err)
	}
}

func TestInMemoryAllSortedByID(t *testing.T) {
	ctx := context.Background()
	m := NewInMemory()
	m.Put(&annidx.Object{ID: 3, Vector: []float32{0}})
	m.Put(&annidx.Object{ID: 1, Vector: []float32{0}})
	m.Put(&annidx.Object{ID: 2, Vector: []float32{0}})

	all, err := m.All(ctx)
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

func TestInMemoryLen(t *testing.T) {
	m := NewInMemory()
	m.Put(&annidx.Object{ID: 0})
	m.Put(&annidx.Object{ID: 1})
	n, err := m.Len(context.Background())
	if err != nil || n != 2 {
		t.Fatalf("Len() = %d, %v, want 2, nil", n, err)
	}
}

func TestInMemoryPivotsFallsBackToAllWhenNoneFlagged(t *testing.T) {
	ctx := context.Background()
	m := NewInMemory()
	m.Put(&annidx.Object{ID: 0})
	m.Put(&annidx.Object{ID: 1})

	pivots, err := m.Pivots(ctx)
	if err != nil {
		t.Fatalf("Pivots: %v", err)
	}
	if len(pivots) != 2 {
		t.Fatalf("Pivots() with none flagged = %d objects, want all 2", len(pivots))
	}
}

func TestInMemoryPivotsReturnsOnlyFlagged(t *testing.T) {
	ctx := context.Background()
	m := NewInMemory()
	m.Put(&annidx.Object{ID: 0})
	m.Put(&annidx.Object{ID: 1})
	m.Put(&annidx.Object{ID: 2})
	m.MarkPivot(1)

	pivots, err := m.Pivots(ctx)
	if err != nil {
		t.Fatalf("Pivots: %v", err)
	}
	if len(pivots) != 1 || pivots[0].ID != 1 {
		t.Fatalf("Pivots() = %v, want [object 1]", pivots)
	}
}
