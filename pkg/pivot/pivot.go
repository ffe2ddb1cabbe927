// Package pivot selects and scores the landmark set NAPP builds its
// inverted index against: a fixed-size subset of objects chosen either
// by uniform random sampling or by a max-variance greedy pass, plus the
// distance-computation helper that turns a pivot set into a per-object
// signature.
//
// Grounded on the teacher's pkg/index/ivf.go centroid-selection pass
// (liliang-cn/sqvect): that file's k-means-lite "pick well-separated
// seeds" loop is adapted here into MaxVariance, since NAPP wants
// landmarks that are mutually far apart rather than cluster centroids.
package pivot

import (
	"math/rand"
	"sort"

	"github.com/annidx/annidx"
)

// Set is an immutable collection of pivot objects. Once built it is
// never mutated — every NAPP chunk computes distances against the same
// Set for the lifetime of the index.
type Set struct {
	objects []*annidx.Object
}

// NewSet wraps a pre-selected slice of pivot objects (e.g. loaded from
// a pivot file) without copying.
func NewSet(objects []*annidx.Object) *Set {
	return &Set{objects: objects}
}

// Len returns the number of pivots.
func (s *Set) Len() int { return len(s.objects) }

// Object returns the pivot at position i.
func (s *Set) Object(i int) *annidx.Object { return s.objects[i] }

// SelectRandom draws numPivot distinct objects uniformly at random from
// pool, using rng (pass rand.New(rand.NewSource(seed)) for
// reproducibility). Mirrors the default NAPP pivot strategy: uniform
// sampling with no structure assumed about the dataset.
func SelectRandom(pool []*annidx.Object, numPivot int, rng *rand.Rand) *Set {
	if numPivot >= len(pool) {
		out := make([]*annidx.Object, len(pool))
		copy(out, pool)
		return &Set{objects: out}
	}
	perm := rng.Perm(len(pool))[:numPivot]
	out := make([]*annidx.Object, numPivot)
	for i, idx := range perm {
		out[i] = pool[idx]
	}
	return &Set{objects: out}
}

// SelectMaxVariance greedily grows a pivot set that stays mutually far
// apart: start from a random seed, then repeatedly add the pool object
// that maximizes its minimum distance to every pivot chosen so far.
// This trades SelectRandom's O(numPivot) cost for O(numPivot·|pool|)
// in exchange for landmarks that partition the space more evenly,
// which tends to shorten NAPP signatures' overlap with unrelated
// clusters.
func SelectMaxVariance[T annidx.Number](pool []*annidx.Object, numPivot int, space annidx.Space[T], rng *rand.Rand) *Set {
	if numPivot >= len(pool) {
		out := make([]*annidx.Object, len(pool))
		copy(out, pool)
		return &Set{objects: out}
	}
	chosen := make([]*annidx.Object, 0, numPivot)
	chosenIdx := make(map[int]bool, numPivot)

	first := rng.Intn(len(pool))
	chosen = append(chosen, pool[first])
	chosenIdx[first] = true

	minDist := make([]float64, len(pool))
	for i, o := range pool {
		if chosenIdx[i] {
			minDist[i] = -1
			continue
		}
		minDist[i] = float64(space.IndexDistance(o, pool[first]))
	}

	for len(chosen) < numPivot {
		best, bestDist := -1, -1.0
		for i, d := range minDist {
			if chosenIdx[i] {
				continue
			}
			if d > bestDist {
				best, bestDist = i, d
			}
		}
		if best < 0 {
			break
		}
		chosen = append(chosen, pool[best])
		chosenIdx[best] = true
		minDist[best] = -1
		for i, o := range pool {
			if chosenIdx[i] {
				continue
			}
			d := float64(space.IndexDistance(o, pool[best]))
			if d < minDist[i] {
				minDist[i] = d
			}
		}
	}
	return &Set{objects: chosen}
}

// pivotDist pairs a pivot's index within a Set with its distance to
// some object, for sorting into a signature.
type pivotDist struct {
	pivotID int
	dist    float64
}

// Signature computes o's closest-numPrefix pivot ids from set, sorted
// ascending by distance to o with ties broken by pivot id — the exact
// tie-break the build-time invariant requires so that signatures are
// reproducible regardless of sort stability.
func Signature[T annidx.Number](o *annidx.Object, set *Set, numPrefix int, space annidx.Space[T]) []int {
	if numPrefix > set.Len() {
		numPrefix = set.Len()
	}
	all := make([]pivotDist, set.Len())
	for i := 0; i < set.Len(); i++ {
		all[i] = pivotDist{pivotID: i, dist: float64(space.IndexDistance(o, set.Object(i)))}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].dist != all[j].dist {
			return all[i].dist < all[j].dist
		}
		return all[i].pivotID < all[j].pivotID
	})
	out := make([]int, numPrefix)
	for i := 0; i < numPrefix; i++ {
		out[i] = all[i].pivotID
	}
	return out
}

// QuerySignature is Signature's query-time counterpart, using
// QueryDistance instead of IndexDistance — the two may differ for
// asymmetric spaces.
func QuerySignature[T annidx.Number](q *annidx.Object, set *Set, numPrefixSearch int, space annidx.Space[T]) []int {
	if numPrefixSearch > set.Len() {
		numPrefixSearch = set.Len()
	}
	all := make([]pivotDist, set.Len())
	for i := 0; i < set.Len(); i++ {
		all[i] = pivotDist{pivotID: i, dist: float64(space.QueryDistance(q, set.Object(i)))}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].dist != all[j].dist {
			return all[i].dist < all[j].dist
		}
		return all[i].pivotID < all[j].pivotID
	})
	out := make([]int, numPrefixSearch)
	for i := 0; i < numPrefixSearch; i++ {
		out[i] = all[i].pivotID
	}
	return out
}
