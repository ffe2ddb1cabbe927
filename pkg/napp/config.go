package napp

import (
	"github.com/annidx/annidx"
)

// InvProcAlg selects NAPP's chunk-local posting-intersection algorithm.
type InvProcAlg int

const (
	AlgScanCount InvProcAlg = iota
	AlgMerge
	AlgPriorityQueue
	AlgWAND
)

// Config holds NAPP's build-time parameters.
type Config struct {
	NumPivot       int
	NumPrefix      int
	ChunkIndexSize int
	IndexThreadQty int
}

// DefaultConfig returns §6's documented defaults.
func DefaultConfig() Config {
	return Config{
		NumPivot:       512,
		NumPrefix:      32,
		ChunkIndexSize: 16384,
		IndexThreadQty: 1,
	}
}

// FromParamBag reads NAPP's build parameters out of a ParamBag.
func FromParamBag(p annidx.ParamBag) (Config, error) {
	cfg := DefaultConfig()
	var err error
	if cfg.NumPivot, err = p.Int("numPivot", cfg.NumPivot); err != nil {
		return cfg, err
	}
	if cfg.NumPrefix, err = p.Int("numPrefix", cfg.NumPrefix); err != nil {
		return cfg, err
	}
	if cfg.ChunkIndexSize, err = p.Int("chunkIndexSize", cfg.ChunkIndexSize); err != nil {
		return cfg, err
	}
	if cfg.IndexThreadQty, err = p.Int("indexThreadQty", cfg.IndexThreadQty); err != nil {
		return cfg, err
	}
	if cfg.NumPrefix > cfg.NumPivot {
		return cfg, annidx.ParameterErrorf("napp.FromParamBag", "numPrefix (%d) > numPivot (%d)", cfg.NumPrefix, cfg.NumPivot)
	}
	return cfg, nil
}

// SearchParams holds NAPP's query-time parameters.
type SearchParams struct {
	NumPrefixSearch int
	MinTimes        int
	InvProcAlg      InvProcAlg
	SkipChecking    bool
}

// SearchParamsFromBag reads NAPP's query parameters out of a ParamBag,
// defaulting NumPrefixSearch to the build-time numPrefix when unset.
func SearchParamsFromBag(p annidx.ParamBag, buildNumPrefix, numPivot int) (SearchParams, error) {
	sp := SearchParams{NumPrefixSearch: buildNumPrefix, MinTimes: 2, InvProcAlg: AlgScanCount}
	var err error
	if sp.NumPrefixSearch, err = p.Int("numPrefixSearch", sp.NumPrefixSearch); err != nil {
		return sp, err
	}
	if sp.MinTimes, err = p.Int("minTimes", sp.MinTimes); err != nil {
		return sp, err
	}
	if sp.SkipChecking, err = p.Bool("skipChecking", false); err != nil {
		return sp, err
	}
	alg, err := p.String("invProcAlg", "scan")
	if err != nil {
		return sp, err
	}
	switch alg {
	case "scan":
		sp.InvProcAlg = AlgScanCount
	case "merge":
		sp.InvProcAlg = AlgMerge
	case "priorQueue":
		sp.InvProcAlg = AlgPriorityQueue
	case "wand":
		sp.InvProcAlg = AlgWAND
	default:
		return sp, annidx.ParameterErrorf("napp.SearchParamsFromBag", "unknown invProcAlg %q", alg)
	}
	if sp.NumPrefixSearch > numPivot {
		return sp, annidx.ParameterErrorf("napp.SearchParamsFromBag", "numPrefixSearch (%d) > numPivot (%d)", sp.NumPrefixSearch, numPivot)
	}
	return sp, nil
}
