package hnsw

import (
	"github.com/annidx/annidx"
	"github.com/annidx/annidx/internal/bheap"
	"github.com/annidx/annidx/internal/visited"
	"github.com/annidx/annidx/pkg/kernel"
)

// greedyDescend runs the 1-best greedy walk from entry at fromLevel
// down to toLevel+1 inclusive, returning the node id that is the best
// seed for toLevel. Shared between insertion (§4.5 step 2) and search
// (§4.6 step 2) — both walk upper layers identically.
func greedyDescend[T annidx.Number](idx *Index[T], target *annidx.Object, entry int, fromLevel, toLevel int, dist func(a, b *annidx.Object) T) int {
	current := entry
	currentDist := dist(target, idx.objectAt(idx.graph.NodeObjectID(current)))
	for level := fromLevel; level > toLevel; level-- {
		improved := true
		for improved {
			improved = false
			neighbors := idx.graph.neighborsSnapshot(current, level)
			for _, nbObjID := range neighbors {
				kernel.PrefetchHint(idx.objectAt(nbObjID).Vector)
			}
			for _, nbObjID := range neighbors {
				nbNodeID, ok := idx.graph.NodeIDFor(nbObjID)
				if !ok {
					continue
				}
				d := dist(target, idx.objectAt(nbObjID))
				if d < currentDist {
					currentDist = d
					current = nbNodeID
					improved = true
				}
			}
		}
	}
	return current
}

// candidate pairs a node id with its distance to the query/insertion
// target, the unit both the frontier and result heaps are keyed by.
type candidate struct {
	dist   float64
	nodeID int
}

// layerSearch runs the ef-bounded best-first search at a single layer
// seeded from entry, per §4.6 step 3 / §4.5 step 3. dist computes the
// distance from the fixed target to any object. Returns up to ef
// candidates sorted by ascending distance.
func layerSearch[T annidx.Number](idx *Index[T], target *annidx.Object, entry int, level, ef int, vis *visited.Set, dist func(a, b *annidx.Object) T) []candidate {
	frontier := bheap.NewKeyedHeap[int](bheap.Min, ef+1)
	result := bheap.NewKeyedHeap[int](bheap.Max, ef+1)

	entryDist := float64(dist(target, idx.objectAt(idx.graph.NodeObjectID(entry))))
	frontier.Push(float32(entryDist), entry)
	result.Push(float32(entryDist), entry)
	vis.Visit(idx.graph.NodeObjectID(entry))

	for frontier.Len() > 0 {
		cDist, cNode, _ := frontier.Pop()
		if result.Len() >= ef {
			worst, _, _ := result.Top()
			if cDist > worst {
				break
			}
		}

		neighbors := idx.graph.neighborsSnapshot(cNode, level)
		for _, nbObjID := range neighbors {
			kernel.PrefetchHint(idx.objectAt(nbObjID).Vector)
		}
		for _, nbObjID := range neighbors {
			if vis.Visit(nbObjID) {
				continue
			}
			nbNodeID, ok := idx.graph.NodeIDFor(nbObjID)
			if !ok || idx.graph.isDeleted(nbNodeID) {
				continue
			}
			nd := float64(dist(target, idx.objectAt(nbObjID)))
			if result.Len() < ef {
				frontier.Push(float32(nd), nbNodeID)
				result.Push(float32(nd), nbNodeID)
			} else if worst, _, _ := result.Top(); float32(nd) < worst {
				frontier.Push(float32(nd), nbNodeID)
				result.ReplaceTop(float32(nd), nbNodeID)
			}
		}
	}

	out := make([]candidate, 0, result.Len())
	for result.Len() > 0 {
		d, n, _ := result.Pop()
		out = append(out, candidate{dist: float64(d), nodeID: n})
	}
	// result pops worst-first (max-heap); reverse to ascending.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
