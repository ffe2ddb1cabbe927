// Query-time search: greedy upper-layer descent into an ef-bounded
// best-first search at layer 0, in both the two-heap ("old") and
// SortedInsertArray-walkable ("v1merge") variants of §4.6.
package hnsw

import (
	"github.com/annidx/annidx"
	"github.com/annidx/annidx/internal/bheap"
	"github.com/annidx/annidx/internal/visited"
)

// SearchKNN returns up to k nearest neighbors of query. k=0 returns an
// empty result without touching the graph (invariant 8). efSearch below
// k is silently promoted to k (invariant 10).
func (idx *Index[T]) SearchKNN(query *annidx.Object, k int, params annidx.ParamBag) ([]annidx.ScoredResult[T], error) {
	if k == 0 {
		return nil, nil
	}
	sp, err := SearchParamsFromBag(params)
	if err != nil {
		return nil, err
	}
	if sp.EfSearch < k {
		sp.EfSearch = k
	}

	entry, maxLevel := idx.graph.EntryPoint()
	if entry < 0 {
		return nil, nil
	}

	current := entry
	if maxLevel > 0 {
		current = greedyDescend(idx, query, entry, maxLevel, 0, idx.queryDistance)
	}

	var candidates []candidate
	vis := idx.visited.Get()
	switch sp.AlgoType {
	case AlgoV1Merge:
		candidates = idx.layerSearchV1Merge(query, current, sp.EfSearch, vis)
	default:
		candidates = layerSearch(idx, query, current, 0, sp.EfSearch, vis, idx.queryDistance)
	}
	idx.visited.Put(vis)

	if k > len(candidates) {
		k = len(candidates)
	}
	out := make([]annidx.ScoredResult[T], k)
	for i := 0; i < k; i++ {
		out[i] = annidx.ScoredResult[T]{
			ObjectID: idx.graph.NodeObjectID(candidates[i].nodeID),
			Distance: T(candidates[i].dist),
		}
	}
	return out, nil
}

// SearchRange is not supported on HNSW (§7 UnsupportedOperation).
func (idx *Index[T]) SearchRange(query *annidx.Object, radius T, params annidx.ParamBag) ([]annidx.ScoredResult[T], error) {
	return nil, annidx.WrapError("hnsw.SearchRange", annidx.ErrUnsupported)
}

// layerSearchV1Merge is the v1merge search variant: a single
// SortedInsertArray acts as both frontier and result buffer, walked in
// ascending order via each Item's Used flag instead of a separate
// min-heap pop, per §4.3's SortedInsertArray contract.
func (idx *Index[T]) layerSearchV1Merge(query *annidx.Object, entry int, ef int, vis *visited.Set) []candidate {
	arr := bheap.NewSortedInsertArray[int](ef)
	entryDist := float64(idx.queryDistance(query, idx.objectAt(idx.graph.NodeObjectID(entry))))
	arr.PushOrReplace(float32(entryDist), entry)
	vis.Visit(idx.graph.NodeObjectID(entry))

	for {
		pos := -1
		for i := 0; i < arr.Len(); i++ {
			if !arr.At(i).Used {
				pos = i
				break
			}
		}
		if pos < 0 {
			break
		}
		item := arr.At(pos)
		item.Used = true
		cDist := float64(item.Key)
		cNode := item.Val

		if arr.Len() >= ef {
			if worst, ok := arr.WorstKey(); ok && cDist > float64(worst) {
				break
			}
		}

		for _, nbObjID := range idx.graph.neighborsSnapshot(cNode, 0) {
			if vis.Visit(nbObjID) {
				continue
			}
			nbNodeID, ok := idx.graph.NodeIDFor(nbObjID)
			if !ok || idx.graph.isDeleted(nbNodeID) {
				continue
			}
			nd := float64(idx.queryDistance(query, idx.objectAt(nbObjID)))
			if arr.Len() < ef {
				arr.PushOrReplace(float32(nd), nbNodeID)
			} else if worst, ok := arr.WorstKey(); ok && nd < float64(worst) {
				arr.PushOrReplace(float32(nd), nbNodeID)
			}
		}
	}

	out := make([]candidate, arr.Len())
	for i := 0; i < arr.Len(); i++ {
		out[i] = candidate{dist: float64(arr.At(i).Key), nodeID: arr.At(i).Val}
	}
	return out
}
