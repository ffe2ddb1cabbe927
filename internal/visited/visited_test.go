package visited

import "testing"

func TestSetVisitMarksOnce(t *testing.T) {
	s := newSet(4)
	if s.Visit(2) {
		t.Fatalf("first Visit(2) reported already visited")
	}
	if !s.Visit(2) {
		t.Fatalf("second Visit(2) should report already visited")
	}
	if !s.Visited(2) {
		t.Fatalf("Visited(2) should be true")
	}
	if s.Visited(0) {
		t.Fatalf("Visited(0) should be false")
	}
}

func TestSetGrowsForLargeID(t *testing.T) {
	s := newSet(2)
	if s.Visit(10) {
		t.Fatalf("Visit(10) on a small set reported already visited")
	}
	if !s.Visited(10) {
		t.Fatalf("Visited(10) should be true after growth")
	}
}

func TestSetReleaseResetsGeneration(t *testing.T) {
	s := newSet(4)
	s.Visit(1)
	s.Release()
	if s.Visited(1) {
		t.Fatalf("Visited(1) should be false after Release")
	}
	if s.Visit(1) {
		t.Fatalf("Visit(1) after Release should report not-already-visited")
	}
}

func TestSetReleaseHandlesGenerationWraparound(t *testing.T) {
	s := newSet(4)
	s.Visit(3)
	s.generation = ^uint32(0) // one Release away from wrapping to 0
	s.Release()
	if s.generation != 1 {
		t.Fatalf("generation after wraparound = %d, want 1", s.generation)
	}
	if s.Visited(3) {
		t.Fatalf("Visited(3) should be false after wraparound reset")
	}
}

func TestPoolGetPutRoundTrip(t *testing.T) {
	p := NewPool(8)
	s := p.Get()
	s.Visit(5)
	p.Put(s)

	s2 := p.Get()
	if s2.Visited(5) {
		t.Fatalf("Set from pool should start with a clean generation")
	}
}

func TestPoolGrowExpandsFutureSets(t *testing.T) {
	p := NewPool(2)
	p.Grow(100)
	s := p.Get()
	if len(s.marks) < 100 {
		t.Fatalf("len(marks) = %d, want >= 100 after Grow", len(s.marks))
	}
}
