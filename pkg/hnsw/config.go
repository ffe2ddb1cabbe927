package hnsw

import (
	"github.com/annidx/annidx"
)

// DelaunayType selects the neighbor-selection heuristic run during
// build. Type 2 ("mini-greedy") is an open question in the source
// material this package follows; selectNeighbors (builder.go) runs
// type 1's heuristic for it.
type DelaunayType int

const (
	DelaunayTakeTopM  DelaunayType = 0
	DelaunayHeuristic DelaunayType = 1
	DelaunayMiniGreedy DelaunayType = 2
)

// PostPass selects the post-build repair pass.
type PostPass int

const (
	PostNone          PostPass = 0
	PostNeighborRepair PostPass = 1
)

// AlgoType selects the layer-0 search variant.
type AlgoType int

const (
	AlgoOld     AlgoType = iota // two-heap frontier/result search
	AlgoV1Merge                 // SortedInsertArray walkable-frontier search
)

// Config holds HNSW's build-time parameters.
type Config struct {
	M               int
	MaxM0           int
	EfConstruction  int
	DelaunayType    DelaunayType
	Post            PostPass
	IndexThreadQty  int
	UseProxyDistance bool
}

// DefaultConfig returns the paper's default build parameters.
func DefaultConfig() Config {
	return Config{
		M:              16,
		MaxM0:          32,
		EfConstruction: 200,
		DelaunayType:   DelaunayHeuristic,
		Post:           PostNone,
		IndexThreadQty: 1,
	}
}

// FromParamBag reads HNSW's build parameters out of a ParamBag,
// falling back to DefaultConfig for anything unset.
func FromParamBag(p annidx.ParamBag) (Config, error) {
	cfg := DefaultConfig()
	var err error
	if cfg.M, err = p.Int("M", cfg.M); err != nil {
		return cfg, err
	}
	if cfg.MaxM0, err = p.Int("maxM0", 2*cfg.M); err != nil {
		return cfg, err
	}
	if cfg.EfConstruction, err = p.Int("efConstruction", cfg.EfConstruction); err != nil {
		return cfg, err
	}
	delaunay, err := p.Int("delaunay_type", int(cfg.DelaunayType))
	if err != nil {
		return cfg, err
	}
	cfg.DelaunayType = DelaunayType(delaunay)
	post, err := p.Int("post", int(cfg.Post))
	if err != nil {
		return cfg, err
	}
	cfg.Post = PostPass(post)
	if cfg.IndexThreadQty, err = p.Int("indexThreadQty", cfg.IndexThreadQty); err != nil {
		return cfg, err
	}
	if cfg.UseProxyDistance, err = p.Bool("useProxyDistance", false); err != nil {
		return cfg, err
	}
	if cfg.M <= 0 {
		return cfg, annidx.ParameterErrorf("hnsw.FromParamBag", "M must be positive, got %d", cfg.M)
	}
	return cfg, nil
}

// SearchParams holds HNSW's query-time parameters.
type SearchParams struct {
	EfSearch int
	AlgoType AlgoType
}

// DefaultSearchParams returns the paper's default query parameters.
func DefaultSearchParams() SearchParams {
	return SearchParams{EfSearch: 100, AlgoType: AlgoOld}
}

// SearchParamsFromBag reads HNSW's query parameters out of a ParamBag.
func SearchParamsFromBag(p annidx.ParamBag) (SearchParams, error) {
	sp := DefaultSearchParams()
	var err error
	// "ef" and "efSearch" are the same knob (§6); prefer whichever key
	// the caller actually set rather than trying one and swallowing a
	// miss, since ParamBag.Int never errors on an absent key.
	if _, hasEf := p["ef"]; hasEf {
		if sp.EfSearch, err = p.Int("ef", sp.EfSearch); err != nil {
			return sp, err
		}
	} else if _, hasEfSearch := p["efSearch"]; hasEfSearch {
		if sp.EfSearch, err = p.Int("efSearch", sp.EfSearch); err != nil {
			return sp, err
		}
	}
	algo, err := p.String("algoType", "old")
	if err != nil {
		return sp, err
	}
	switch algo {
	case "old":
		sp.AlgoType = AlgoOld
	case "v1merge":
		sp.AlgoType = AlgoV1Merge
	default:
		return sp, annidx.ParameterErrorf("hnsw.SearchParamsFromBag", "unknown algoType %q", algo)
	}
	return sp, nil
}
