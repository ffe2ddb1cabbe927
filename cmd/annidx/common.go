package main

import (
	"context"
	"fmt"

	"github.com/annidx/annidx"
	"github.com/annidx/annidx/internal/logging"
	"github.com/annidx/annidx/pkg/dataset"
	"github.com/annidx/annidx/pkg/hnsw"
	"github.com/annidx/annidx/pkg/napp"
	"github.com/annidx/annidx/pkg/space"
)

func newLogger() logging.Logger {
	level := logging.LevelInfo
	if verbose {
		level = logging.LevelDebug
	}
	return logging.NewStd(level)
}

func openStore(ctx context.Context) (*dataset.SQLiteStore, error) {
	return dataset.OpenSQLiteStore(ctx, dbPath)
}

// newIndex builds an empty index of the configured family over L2
// space, the default every CLI subcommand falls back to absent a
// --space flag (left for a future iteration; the core's Space
// capability is otherwise fully embedder-pluggable).
func newIndex(log logging.Logger) (annidx.Index[float32], error) {
	sp := space.NewL2()
	switch family {
	case "hnsw":
		idx := hnsw.New[float32](sp, hnsw.DefaultConfig())
		idx.SetLogger(log)
		return idx, nil
	case "napp":
		idx := napp.New[float32](sp, napp.DefaultConfig(), nil)
		idx.SetLogger(log)
		return idx, nil
	default:
		return nil, fmt.Errorf("unknown family %q (want hnsw or napp)", family)
	}
}
