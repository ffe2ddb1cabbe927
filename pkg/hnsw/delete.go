// Delete-patch: mark-and-rewrite removal, followed by a density
// compaction pass once the graph's live fraction drops below 2/3, per
// §4.5 "Delete-patch". DeleteBatch takes a whole-graph lock for its
// duration — deletes are not meant to run at the insertion hot path's
// concurrency, only between query/insert batches per §5's ordering
// guarantees.
package hnsw

import (
	"context"
	"sort"

	"github.com/annidx/annidx"
)

// markDeleted flips a node's deleted flag under its own lock.
func (g *Graph) markDeleted(nodeID int) {
	nd := g.nodes[nodeID]
	nd.mu.Lock()
	nd.deleted = true
	nd.mu.Unlock()
}

// removeID deletes objID from nodeID's level-l neighbor list, returning
// true if it was present.
func (g *Graph) removeID(nodeID, level int, objID uint32) bool {
	nd := g.nodes[nodeID]
	nd.mu.Lock()
	defer nd.mu.Unlock()
	if level > nd.level {
		return false
	}
	list := nd.neighbors[level]
	for i, id := range list {
		if id == objID {
			nd.neighbors[level] = append(list[:i], list[i+1:]...)
			return true
		}
	}
	return false
}

// DeleteBatch removes ids from the graph according to strategy, per
// §4.5's drop-only / neighborsOnly patching rules, then runs density
// compaction if the live fraction falls below 2/3.
func (idx *Index[T]) DeleteBatch(ctx context.Context, ids []uint32, strategy annidx.DeleteStrategy) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	deletedObjIDs := make(map[uint32]bool, len(ids))
	deletedNodes := make(map[int]bool, len(ids))
	for _, id := range ids {
		nodeID, ok := idx.graph.NodeIDFor(id)
		if !ok {
			continue
		}
		deletedObjIDs[id] = true
		deletedNodes[nodeID] = true
	}
	if len(deletedNodes) == 0 {
		return nil
	}

	for nodeID := range deletedNodes {
		level := idx.graph.NodeLevel(nodeID)
		for l := 0; l <= level; l++ {
			neighbors := idx.graph.neighborsSnapshot(nodeID, l)
			for _, nbObjID := range neighbors {
				nbNodeID, ok := idx.graph.NodeIDFor(nbObjID)
				if !ok || deletedNodes[nbNodeID] {
					continue
				}
				idx.graph.removeID(nbNodeID, l, idx.graph.NodeObjectID(nodeID))
				if strategy == annidx.DeleteNeighborsOnly {
					idx.patchReplacement(nbNodeID, l, deletedObjIDs)
				}
			}
		}
		idx.graph.markDeleted(nodeID)
	}

	// Neighbor lists are only best-effort symmetric (§4.4): a node
	// pruned independently after the fact may retain a stale edge into
	// a node that long since dropped the reverse link. A full sweep
	// guarantees invariant 2's "no deleted id in any neighbor list"
	// regardless of which direction went stale.
	idx.scrubDeletedReferences(deletedObjIDs, deletedNodes)

	idx.repairEntryPoint(deletedNodes)
	idx.maybeCompact()
	return nil
}

func (idx *Index[T]) scrubDeletedReferences(deletedObjIDs map[uint32]bool, deletedNodes map[int]bool) {
	idx.graph.mu.RLock()
	n := len(idx.graph.nodes)
	idx.graph.mu.RUnlock()
	for nodeID := 0; nodeID < n; nodeID++ {
		if deletedNodes[nodeID] {
			continue
		}
		level := idx.graph.NodeLevel(nodeID)
		for l := 0; l <= level; l++ {
			for _, objID := range idx.graph.neighborsSnapshot(nodeID, l) {
				if deletedObjIDs[objID] {
					idx.graph.removeID(nodeID, l, objID)
				}
			}
		}
	}
}

// patchReplacement implements the neighborsOnly strategy: among the
// level-l neighbors of nodeID's current neighbors, find the closest
// non-deleted object that is not already in nodeID's level-l list, and
// append it as the deleted neighbor's replacement, up to that level's
// cap. Objects outside that two-hop neighborhood are not considered.
func (idx *Index[T]) patchReplacement(nodeID, level int, deletedObjIDs map[uint32]bool) {
	current := idx.graph.neighborsSnapshot(nodeID, level)
	cap := capForLevel(level, idx.cfg)
	if len(current) >= cap {
		return
	}
	present := make(map[uint32]bool, len(current))
	for _, id := range current {
		present[id] = true
	}
	selfObjID := idx.graph.NodeObjectID(nodeID)
	selfObj := idx.objectAt(selfObjID)
	present[selfObjID] = true

	type scored struct {
		objID uint32
		dist  float64
	}
	var pool []scored
	for _, nbObjID := range current {
		nbNodeID, ok := idx.graph.NodeIDFor(nbObjID)
		if !ok {
			continue
		}
		for _, cand := range idx.graph.neighborsSnapshot(nbNodeID, min(level, idx.graph.NodeLevel(nbNodeID))) {
			if present[cand] || deletedObjIDs[cand] {
				continue
			}
			present[cand] = true
			pool = append(pool, scored{objID: cand, dist: float64(idx.indexDistance(selfObj, idx.objectAt(cand)))})
		}
	}
	if len(pool) == 0 {
		return
	}
	sort.Slice(pool, func(i, j int) bool { return pool[i].dist < pool[j].dist })
	idx.graph.appendBackLink(nodeID, level, pool[0].objID)
}

// repairEntryPoint promotes the highest-level surviving node to entry
// point if the current one was just deleted.
func (idx *Index[T]) repairEntryPoint(deletedNodes map[int]bool) {
	idx.graph.mu.Lock()
	defer idx.graph.mu.Unlock()
	if idx.graph.entryPoint < 0 || !deletedNodes[idx.graph.entryPoint] {
		return
	}
	best, bestLevel := -1, -1
	for id, nd := range idx.graph.nodes {
		if nd.deleted {
			continue
		}
		if nd.level > bestLevel {
			best, bestLevel = id, nd.level
		}
	}
	idx.graph.entryPoint = best
	if best < 0 {
		idx.graph.maxLevel = 0
	} else {
		idx.graph.maxLevel = bestLevel
	}
}

// maybeCompact drops deleted nodes from the arena and renumbers arena
// node ids to [0,N') once the live fraction drops below 2/3. Object ids
// are unchanged, so the visited sets, which are indexed by object id,
// keep their size.
func (idx *Index[T]) maybeCompact() {
	idx.graph.mu.Lock()
	total := len(idx.graph.nodes)
	live := 0
	for _, nd := range idx.graph.nodes {
		if !nd.deleted {
			live++
		}
	}
	idx.graph.mu.Unlock()
	if total == 0 || float64(live)/float64(total) >= 2.0/3.0 {
		return
	}

	idx.graph.mu.Lock()
	defer idx.graph.mu.Unlock()
	newNodes := make([]*node, 0, live)
	newObjectToNode := make(map[uint32]int, live)
	for _, nd := range idx.graph.nodes {
		if nd.deleted {
			continue
		}
		newNodes = append(newNodes, nd)
		newObjectToNode[nd.objectID] = len(newNodes) - 1
	}
	if idx.graph.entryPoint >= 0 && !idx.graph.nodes[idx.graph.entryPoint].deleted {
		idx.graph.entryPoint = newObjectToNode[idx.graph.nodes[idx.graph.entryPoint].objectID]
	}
	idx.graph.nodes = newNodes
	idx.graph.objectToNode = newObjectToNode
}
