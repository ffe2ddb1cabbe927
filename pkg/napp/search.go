// Query-time search: per-chunk t-overlap filtering via one of four
// interchangeable intersection algorithms (§4.8), followed by optional
// full-distance re-ranking into the caller's result set.
package napp

import (
	"container/heap"
	"context"
	"sort"

	"github.com/annidx/annidx"
	"github.com/annidx/annidx/pkg/pivot"
)

// SearchKNN returns up to k nearest neighbors of query. k=0 returns an
// empty result without touching any chunk.
func (idx *Index[T]) SearchKNN(query *annidx.Object, k int, params annidx.ParamBag) ([]annidx.ScoredResult[T], error) {
	if k == 0 {
		return nil, nil
	}
	idx.mu.RLock()
	numPivot := 0
	if idx.pivots != nil {
		numPivot = idx.pivots.Len()
	}
	buildPrefix := idx.cfg.NumPrefix
	idx.mu.RUnlock()

	sp, err := SearchParamsFromBag(params, buildPrefix, numPivot)
	if err != nil {
		return nil, err
	}

	candidates, err := idx.candidateIDs(query, sp)
	if err != nil {
		return nil, err
	}

	if sp.SkipChecking {
		if len(candidates) > k {
			candidates = candidates[:k]
		}
		out := make([]annidx.ScoredResult[T], len(candidates))
		for i, id := range candidates {
			out[i] = annidx.ScoredResult[T]{ObjectID: id}
		}
		return out, nil
	}

	scored := idx.rerank(query, candidates)
	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k], nil
}

// SearchRange returns every candidate within radius of query, after
// full-distance verification (SkipChecking has no effect here since a
// radius query requires the true distance to test membership).
func (idx *Index[T]) SearchRange(query *annidx.Object, radius T, params annidx.ParamBag) ([]annidx.ScoredResult[T], error) {
	idx.mu.RLock()
	numPivot := 0
	if idx.pivots != nil {
		numPivot = idx.pivots.Len()
	}
	buildPrefix := idx.cfg.NumPrefix
	idx.mu.RUnlock()

	sp, err := SearchParamsFromBag(params, buildPrefix, numPivot)
	if err != nil {
		return nil, err
	}
	candidates, err := idx.candidateIDs(query, sp)
	if err != nil {
		return nil, err
	}
	scored := idx.rerank(query, candidates)
	out := scored[:0]
	for _, s := range scored {
		if s.Distance <= radius {
			out = append(out, s)
		}
	}
	return out, nil
}

// DeleteBatch is not supported on NAPP (§7 UnsupportedOperation).
func (idx *Index[T]) DeleteBatch(ctx context.Context, ids []uint32, strategy annidx.DeleteStrategy) error {
	return annidx.WrapError("napp.DeleteBatch", annidx.ErrUnsupported)
}

func (idx *Index[T]) rerank(query *annidx.Object, candidates []uint32) []annidx.ScoredResult[T] {
	out := make([]annidx.ScoredResult[T], len(candidates))
	for i, id := range candidates {
		out[i] = annidx.ScoredResult[T]{ObjectID: id, Distance: idx.space.QueryDistance(query, idx.objectAt(id))}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	return out
}

// candidateIDs computes the query signature and intersects it against
// every chunk independently, returning global object ids.
func (idx *Index[T]) candidateIDs(query *annidx.Object, sp SearchParams) ([]uint32, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	sig := pivot.QuerySignature(query, idx.pivots, sp.NumPrefixSearch, idx.space)

	var out []uint32
	for _, c := range idx.chunks {
		postings := make([][]uint32, 0, len(sig))
		for _, p := range sig {
			if p < len(c.postings) && len(c.postings[p]) > 0 {
				postings = append(postings, c.postings[p])
			}
		}
		if len(postings) == 0 {
			continue
		}
		var local []uint32
		switch sp.InvProcAlg {
		case AlgMerge:
			local = intersectMerge(postings, sp.MinTimes)
		case AlgPriorityQueue:
			local = intersectPriorityQueue(postings, sp.MinTimes)
		case AlgWAND:
			local = intersectWAND(postings, sp.MinTimes)
		default:
			local = FastScanCount(postings, sp.MinTimes)
		}
		for _, localID := range local {
			out = append(out, uint32(c.startID)+localID)
		}
	}
	return out, nil
}

// intersectMerge counts every id's occurrences across postings in a
// map and keeps those reaching t, returned in ascending order — the
// variant that wins when lists are very short.
func intersectMerge(postings [][]uint32, t int) []uint32 {
	counts := make(map[uint32]int)
	for _, p := range postings {
		for _, id := range p {
			counts[id]++
		}
	}
	var out []uint32
	for id, c := range counts {
		if c >= t {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// pqItem is one posting-list cursor in the priority-queue variants.
type pqItem struct {
	id        uint32
	postingAt int
}

type cursorHeap []pqItem

func (h cursorHeap) Len() int            { return len(h) }
func (h cursorHeap) Less(i, j int) bool  { return h[i].id < h[j].id }
func (h cursorHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *cursorHeap) Push(x interface{}) { *h = append(*h, x.(pqItem)) }
func (h *cursorHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// intersectPriorityQueue keeps one cursor per posting in a min-heap
// keyed by current id, advancing ties together and counting matches —
// the variant that wins for very short or skewed posting sizes.
func intersectPriorityQueue(postings [][]uint32, t int) []uint32 {
	cursors := make([]int, len(postings))
	h := make(cursorHeap, 0, len(postings))
	for i, p := range postings {
		if len(p) > 0 {
			heap.Push(&h, pqItem{id: p[0], postingAt: i})
		}
	}

	var out []uint32
	for h.Len() > 0 {
		cur := h[0].id
		count := 0
		for h.Len() > 0 && h[0].id == cur {
			item := heap.Pop(&h).(pqItem)
			count++
			cursors[item.postingAt]++
			if cursors[item.postingAt] < len(postings[item.postingAt]) {
				heap.Push(&h, pqItem{id: postings[item.postingAt][cursors[item.postingAt]], postingAt: item.postingAt})
			}
		}
		if count >= t {
			out = append(out, cur)
		}
	}
	return out
}

// intersectWAND is PriorityQueue with an early stop in place of a
// block-max skip: since every posting here is a flat sorted array with
// no stored per-block upper bound, the only sound skip available is on
// cursor count — when fewer
// than t postings remain active at all, no further candidate can
// reach the threshold, so WAND stops early instead of draining every
// cursor to exhaustion the way PriorityQueue does.
func intersectWAND(postings [][]uint32, t int) []uint32 {
	cursors := make([]int, len(postings))
	active := len(postings)
	h := make(cursorHeap, 0, len(postings))
	for i, p := range postings {
		if len(p) > 0 {
			heap.Push(&h, pqItem{id: p[0], postingAt: i})
		}
	}

	var out []uint32
	for h.Len() > 0 && active >= t {
		cur := h[0].id
		count := 0
		for h.Len() > 0 && h[0].id == cur {
			item := heap.Pop(&h).(pqItem)
			count++
			cursors[item.postingAt]++
			if cursors[item.postingAt] < len(postings[item.postingAt]) {
				heap.Push(&h, pqItem{id: postings[item.postingAt][cursors[item.postingAt]], postingAt: item.postingAt})
			} else {
				active--
			}
		}
		if count >= t {
			out = append(out, cur)
		}
	}
	return out
}
