// Builder logic: level draw, incremental insertion, and the
// neighbor-selection heuristic, grounded on the teacher's HNSW insert
// path (liliang-cn/sqvect, pkg/index/hnsw.go Insert/searchLayer)
// generalized to the multi-layer, per-node-locked arena of §4.4-4.5.
package hnsw

import (
	"context"
	"sort"

	"github.com/annidx/annidx"
	"github.com/annidx/annidx/internal/workerpool"
)

func capForLevel(level int, cfg Config) int {
	if level == 0 {
		return cfg.MaxM0
	}
	return cfg.M
}

// Build inserts every object in objects, seeding the entry point
// serially with the first object before fanning the rest out across
// cfg.IndexThreadQty workers via an atomic counter, per §4.5 "Parallel
// build". Any existing graph is discarded first. A non-empty params
// replaces the Config given to New (unset keys take DefaultConfig
// values); an empty params keeps the Config given to New.
func (idx *Index[T]) Build(ctx context.Context, objects []*annidx.Object, params annidx.ParamBag) error {
	cfg := idx.cfg
	if len(params) > 0 {
		var err error
		if cfg, err = FromParamBag(params); err != nil {
			return err
		}
	}
	idx.mu.Lock()
	idx.objects = nil
	idx.mu.Unlock()
	idx.graph = NewGraph()
	idx.visited = nil
	idx.cfg = cfg
	idx.mL = levelMultiplier(cfg.M)
	if p, ok := idx.space.(annidx.ProxySpace[T]); ok && cfg.UseProxyDistance {
		idx.proxy = p
	}
	return idx.AddBatch(ctx, objects)
}

// AddBatch inserts objects into an already-built (or empty) index. The
// first object is inserted on the calling goroutine when the graph is
// currently empty, to seed the entry point before any concurrency
// starts; the rest run through workerpool.ParallelFor.
func (idx *Index[T]) AddBatch(ctx context.Context, objects []*annidx.Object) error {
	if len(objects) == 0 {
		return nil
	}
	start := 0
	if entry, _ := idx.graph.EntryPoint(); entry < 0 {
		if err := idx.insertOne(objects[0]); err != nil {
			return annidx.WrapError("hnsw.AddBatch", err)
		}
		start = 1
	}
	if start >= len(objects) {
		return nil
	}
	err := workerpool.ParallelFor(ctx, start, len(objects), idx.cfg.IndexThreadQty, func(ctx context.Context, i int, workerID int) error {
		return idx.insertOne(objects[i])
	})
	if err != nil {
		return annidx.WrapError("hnsw.AddBatch", err)
	}
	if idx.cfg.Post == PostNeighborRepair {
		idx.repairNeighbors()
	}
	return nil
}

func (idx *Index[T]) insertOne(obj *annidx.Object) error {
	idx.mu.Lock()
	if int(obj.ID) >= len(idx.objects) {
		grown := make([]*annidx.Object, obj.ID+1)
		copy(grown, idx.objects)
		idx.objects = grown
	}
	idx.objects[obj.ID] = obj
	n := len(idx.objects)
	idx.mu.Unlock()
	idx.ensureVisitedPool(n)

	level := idx.nextLevel()
	nodeID := idx.graph.addNode(obj.ID, level)

	entry, maxLevel := idx.graph.EntryPoint()
	if entry < 0 {
		idx.graph.maybePromote(nodeID, level)
		return nil
	}

	current := entry
	if level < maxLevel {
		current = greedyDescend(idx, obj, entry, maxLevel, level, idx.indexDistance)
	}

	top := min(level, maxLevel)
	for l := top; l >= 0; l-- {
		vis := idx.visited.Get()
		candidates := layerSearch(idx, obj, current, l, idx.cfg.EfConstruction, vis, idx.indexDistance)
		idx.visited.Put(vis)
		if len(candidates) == 0 {
			continue
		}
		current = candidates[0].nodeID

		kept := idx.selectNeighbors(obj, candidates, capForLevel(l, idx.cfg))
		neighborIDs := make([]uint32, len(kept))
		for i, c := range kept {
			neighborIDs[i] = idx.graph.NodeObjectID(c.nodeID)
		}
		idx.graph.setNeighbors(nodeID, l, neighborIDs)

		for _, c := range kept {
			newLen := idx.graph.appendBackLink(c.nodeID, l, obj.ID)
			cap := capForLevel(l, idx.cfg)
			if newLen > cap {
				idx.pruneNeighbor(c.nodeID, l, cap)
			}
		}
	}

	idx.graph.maybePromote(nodeID, level)
	return nil
}

// selectNeighbors runs the Delaunay type-1 heuristic (or the
// configured alternative) over candidates, already sorted ascending by
// distance to target, returning at most m of them.
func (idx *Index[T]) selectNeighbors(target *annidx.Object, candidates []candidate, m int) []candidate {
	switch idx.cfg.DelaunayType {
	case DelaunayTakeTopM:
		if len(candidates) > m {
			return candidates[:m]
		}
		return candidates
	case DelaunayMiniGreedy:
		// Open question in the source literature; falls back to the
		// type-1 heuristic until the exact criterion is reproduced.
		return idx.selectNeighborsHeuristic(target, candidates, m)
	default:
		return idx.selectNeighborsHeuristic(target, candidates, m)
	}
}

func (idx *Index[T]) selectNeighborsHeuristic(target *annidx.Object, candidates []candidate, m int) []candidate {
	kept := make([]candidate, 0, m)
	for _, c := range candidates {
		if len(kept) >= m {
			break
		}
		cObj := idx.objectAt(idx.graph.NodeObjectID(c.nodeID))
		good := true
		for _, k := range kept {
			kObj := idx.objectAt(idx.graph.NodeObjectID(k.nodeID))
			dck := float64(idx.indexDistance(cObj, kObj))
			if c.dist >= dck {
				good = false
				break
			}
		}
		if good {
			kept = append(kept, c)
		}
	}
	return kept
}

// pruneNeighbor re-runs neighbor selection on node nodeID's own
// level-l list once it exceeds cap, ranking candidates by distance to
// nodeID itself rather than to the object that triggered the
// back-link, per §4.5 step 5.
func (idx *Index[T]) pruneNeighbor(nodeID, level, cap int) {
	selfObjID := idx.graph.NodeObjectID(nodeID)
	selfObj := idx.objectAt(selfObjID)

	list := idx.graph.neighborsSnapshot(nodeID, level)
	cands := make([]candidate, 0, len(list))
	for _, objID := range list {
		nid, ok := idx.graph.NodeIDFor(objID)
		if !ok {
			continue
		}
		d := float64(idx.indexDistance(selfObj, idx.objectAt(objID)))
		cands = append(cands, candidate{dist: d, nodeID: nid})
	}
	sort.Slice(cands, func(i, j int) bool { return cands[i].dist < cands[j].dist })

	kept := idx.selectNeighborsHeuristic(selfObj, cands, cap)
	out := make([]uint32, len(kept))
	for i, c := range kept {
		out[i] = idx.graph.NodeObjectID(c.nodeID)
	}
	idx.graph.setNeighbors(nodeID, level, out)
}

// repairNeighbors implements the post=1 post-processing pass: for
// every live node and level, re-run neighbor selection against a
// widened candidate pool gathered from its current neighbors'
// neighbors, healing links dropped by the construction-time
// best-effort back-linking. Grounded on NMSLIB's hnsw.cc post-build
// repair pass referenced by the optimized-index format's `post`
// parameter.
func (idx *Index[T]) repairNeighbors() {
	idx.mu.RLock()
	n := len(idx.objects)
	idx.mu.RUnlock()
	for objID := 0; objID < n; objID++ {
		nodeID, ok := idx.graph.NodeIDFor(uint32(objID))
		if !ok || idx.graph.isDeleted(nodeID) {
			continue
		}
		level := idx.graph.NodeLevel(nodeID)
		selfObj := idx.objectAt(uint32(objID))
		for l := 0; l <= level; l++ {
			seen := map[uint32]bool{uint32(objID): true}
			cands := make([]candidate, 0)
			for _, nbObjID := range idx.graph.neighborsSnapshot(nodeID, l) {
				if seen[nbObjID] {
					continue
				}
				seen[nbObjID] = true
				nid, ok := idx.graph.NodeIDFor(nbObjID)
				if !ok {
					continue
				}
				cands = append(cands, candidate{dist: float64(idx.indexDistance(selfObj, idx.objectAt(nbObjID))), nodeID: nid})
				for _, nb2 := range idx.graph.neighborsSnapshot(nid, min(l, idx.graph.NodeLevel(nid))) {
					if seen[nb2] {
						continue
					}
					seen[nb2] = true
					nid2, ok := idx.graph.NodeIDFor(nb2)
					if !ok {
						continue
					}
					cands = append(cands, candidate{dist: float64(idx.indexDistance(selfObj, idx.objectAt(nb2))), nodeID: nid2})
				}
			}
			sort.Slice(cands, func(i, j int) bool { return cands[i].dist < cands[j].dist })
			kept := idx.selectNeighborsHeuristic(selfObj, cands, capForLevel(l, idx.cfg))
			if len(kept) == 0 {
				continue
			}
			out := make([]uint32, len(kept))
			for i, c := range kept {
				out[i] = idx.graph.NodeObjectID(c.nodeID)
			}
			idx.graph.setNeighbors(nodeID, l, out)
		}
	}
}
