// Package visited implements the generational visited-set pool shared
// by HnswSearch, HnswBuilder, and NappSearch: a per-thread array of N
// uint32 cells plus a generation counter, avoiding both per-query bitset
// allocation and the cache cost of a hash set when the visited set is
// dense.
//
// Grounded on the teacher's structs.VisitedPool (dmarro89-hnsw-go,
// hnsw/structs/visitedpool.go), which pools map[int]struct{} values
// via sync.Pool; here the pooled value is a generational uint32 array
// instead of a map, per the stated rationale in the specification.
package visited

import "sync"

// Set is one thread's reusable visited marker array.
type Set struct {
	marks      []uint32
	generation uint32
}

func newSet(n int) *Set {
	return &Set{marks: make([]uint32, n), generation: 1}
}

// Visit marks id visited for the current generation and reports whether
// it was already visited.
func (s *Set) Visit(id uint32) (alreadyVisited bool) {
	if int(id) >= len(s.marks) {
		grown := make([]uint32, id+1)
		copy(grown, s.marks)
		s.marks = grown
	}
	if s.marks[id] == s.generation {
		return true
	}
	s.marks[id] = s.generation
	return false
}

// Visited reports whether id was marked in the current generation,
// without marking it.
func (s *Set) Visited(id uint32) bool {
	return int(id) < len(s.marks) && s.marks[id] == s.generation
}

// Release advances the generation so every cell reads as unvisited
// again. On wraparound it falls back to zeroing the backing array —
// cheap, since the array is bounded by the dataset size.
func (s *Set) Release() {
	s.generation++
	if s.generation == 0 {
		for i := range s.marks {
			s.marks[i] = 0
		}
		s.generation = 1
	}
}

// Pool hands out per-thread Sets sized for a dataset of n objects, one
// per concurrent caller, returned to the pool on scope exit.
type Pool struct {
	n    int
	pool sync.Pool
}

// NewPool creates a Pool whose Sets are sized for a dataset of n
// objects.
func NewPool(n int) *Pool {
	p := &Pool{n: n}
	p.pool.New = func() any { return newSet(p.n) }
	return p
}

// Get returns a Set from the pool, growing it to at least n cells if
// the dataset has grown since the Set was last used.
func (p *Pool) Get() *Set {
	s := p.pool.Get().(*Set)
	if len(s.marks) < p.n {
		grown := make([]uint32, p.n)
		copy(grown, s.marks)
		s.marks = grown
	}
	return s
}

// Put releases s, advancing its generation so the next Get starts clean,
// and returns it to the pool.
func (p *Pool) Put(s *Set) {
	s.Release()
	p.pool.Put(s)
}

// Grow updates the dataset size new Sets (and Sets grown on Get) will
// be sized for, called after AddBatch grows the index.
func (p *Pool) Grow(n int) {
	if n > p.n {
		p.n = n
	}
}
