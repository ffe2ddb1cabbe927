package bheap

import "testing"

func TestKeyedHeapMinOrder(t *testing.T) {
	h := NewKeyedHeap[string](Min, 4)
	h.Push(5, "five")
	h.Push(1, "one")
	h.Push(3, "three")

	k, v, ok := h.Top()
	if !ok || k != 1 || v != "one" {
		t.Fatalf("Top() = %v, %v, %v, want 1, one, true", k, v, ok)
	}

	var popped []float32
	for h.Len() > 0 {
		k, _, _ := h.Pop()
		popped = append(popped, k)
	}
	want := []float32{1, 3, 5}
	for i, k := range want {
		if popped[i] != k {
			t.Fatalf("Pop order = %v, want %v", popped, want)
		}
	}
}

func TestKeyedHeapMaxOrder(t *testing.T) {
	h := NewKeyedHeap[int](Max, 4)
	for _, k := range []float32{2, 8, 4, 1} {
		h.Push(k, int(k))
	}
	if top := h.TopKey(); top != 8 {
		t.Fatalf("TopKey() = %v, want 8", top)
	}
}

func TestKeyedHeapReplaceTop(t *testing.T) {
	h := NewKeyedHeap[int](Max, 4)
	h.Push(10, 10)
	h.Push(5, 5)
	h.Push(7, 7)
	h.ReplaceTop(1, 1) // replaces the max (10) with 1
	if top := h.TopKey(); top != 7 {
		t.Fatalf("TopKey() after ReplaceTop = %v, want 7", top)
	}
	if h.Len() != 3 {
		t.Fatalf("Len() after ReplaceTop = %d, want 3 (no growth)", h.Len())
	}
}

func TestSortedInsertArrayOrderedInsertion(t *testing.T) {
	a := NewSortedInsertArray[int](3)
	a.PushOrReplace(5, 5)
	a.PushOrReplace(1, 1)
	a.PushOrReplace(3, 3)

	want := []float32{1, 3, 5}
	for i, k := range want {
		if a.At(i).Key != k {
			t.Fatalf("At(%d).Key = %v, want %v", i, a.At(i).Key, k)
		}
	}
}

func TestSortedInsertArrayDropsWorstOnOverflow(t *testing.T) {
	a := NewSortedInsertArray[int](2)
	a.PushOrReplace(5, 5)
	a.PushOrReplace(1, 1)
	a.PushOrReplace(3, 3) // should displace 5, not 1

	if a.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", a.Len())
	}
	worst, ok := a.WorstKey()
	if !ok || worst != 3 {
		t.Fatalf("WorstKey() = %v, %v, want 3, true", worst, ok)
	}
}

func TestSortedInsertArrayMergeWithSorted(t *testing.T) {
	a := NewSortedInsertArray[int](5)
	a.PushOrReplace(2, 2)
	a.PushOrReplace(4, 4)

	a.MergeWithSorted([]Item[int]{{Key: 1, Val: 1}, {Key: 3, Val: 3}, {Key: 5, Val: 5}})

	want := []float32{1, 2, 3, 4, 5}
	if a.Len() != len(want) {
		t.Fatalf("Len() = %d, want %d", a.Len(), len(want))
	}
	for i, k := range want {
		if a.At(i).Key != k {
			t.Fatalf("At(%d).Key = %v, want %v", i, a.At(i).Key, k)
		}
	}
}
