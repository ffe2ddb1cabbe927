// Package annidx provides approximate nearest-neighbor (ANN) search
// indices over generic, possibly non-metric, distance spaces.
//
// annidx does not ship a distance function of its own. Callers supply a
// Space implementation (squared-L2, cosine, Hamming, or a custom
// domain-specific metric) and a dataset of opaque Objects; the index
// families in pkg/hnsw and pkg/napp answer k-nearest-neighbor queries
// (and, in pkg/napp, range queries) against that space without an
// exhaustive scan.
//
// # Index families
//
// pkg/hnsw implements the Hierarchical Navigable Small World graph: a
// multi-layer proximity graph with greedy upper-layer routing and an
// ef-bounded best-first search at layer 0.
//
// pkg/napp implements the Neighborhood-APProximation inverted index: an
// inverted file over each object's closest pivots, combined with a
// t-overlap filter and a ScanCount-style list intersection.
//
// pkg/flatindex implements sequential scan, used as the exact-search
// oracle for recall measurement and as a baseline Index.
//
// # Quick start
//
//	sp := space.NewL2()
//	idx := hnsw.New[float32](sp, hnsw.DefaultConfig())
//	if err := idx.Build(ctx, objects, nil); err != nil {
//	    log.Fatal(err)
//	}
//	results, err := idx.SearchKNN(query, 10, annidx.ParamBag{"ef": 64})
package annidx
