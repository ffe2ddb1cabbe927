package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/annidx/annidx"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build an index over the SQLite object store and persist it",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		log := newLogger()

		store, err := openStore(ctx)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer store.Close()

		objects, err := store.All(ctx)
		if err != nil {
			return fmt.Errorf("load objects: %w", err)
		}
		if len(objects) == 0 {
			return fmt.Errorf("no objects in %s", dbPath)
		}

		idx, err := newIndex(log)
		if err != nil {
			return err
		}

		params, err := buildParamsFromFlags(cmd)
		if err != nil {
			return err
		}

		if err := idx.Build(ctx, objects, params); err != nil {
			return fmt.Errorf("build %s index: %w", family, err)
		}

		f, err := os.Create(indexPath)
		if err != nil {
			return fmt.Errorf("create %s: %w", indexPath, err)
		}
		defer f.Close()
		if err := idx.Save(f); err != nil {
			return fmt.Errorf("save index: %w", err)
		}

		fmt.Printf("built %s index over %d objects, saved to %s\n", family, len(objects), indexPath)
		return nil
	},
}

// buildParamsFromFlags turns the handful of tuning flags shared by both
// families into the ParamBag each family's FromParamBag expects.
func buildParamsFromFlags(cmd *cobra.Command) (annidx.ParamBag, error) {
	p := annidx.ParamBag{}
	if v, _ := cmd.Flags().GetInt("M"); v > 0 {
		p["M"] = v
	}
	if v, _ := cmd.Flags().GetInt("ef-construction"); v > 0 {
		p["efConstruction"] = v
	}
	if v, _ := cmd.Flags().GetInt("num-pivot"); v > 0 {
		p["numPivot"] = v
	}
	if v, _ := cmd.Flags().GetInt("num-prefix"); v > 0 {
		p["numPrefix"] = v
	}
	if v, _ := cmd.Flags().GetInt("threads"); v > 0 {
		p["indexThreadQty"] = v
	}
	return p, nil
}

func init() {
	buildCmd.Flags().Int("M", 0, "HNSW: max neighbors per node (0 = default)")
	buildCmd.Flags().Int("ef-construction", 0, "HNSW: construction-time beam width (0 = default)")
	buildCmd.Flags().Int("num-pivot", 0, "NAPP: number of pivots (0 = default)")
	buildCmd.Flags().Int("num-prefix", 0, "NAPP: pivots kept per object signature (0 = default)")
	buildCmd.Flags().Int("threads", 0, "build-time worker count (0 = default)")
}
