package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/annidx/annidx"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Load a persisted index and run a single k-NN query against it",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		log := newLogger()

		vectorStr, _ := cmd.Flags().GetString("vector")
		if vectorStr == "" {
			return fmt.Errorf("--vector is required")
		}
		vector, err := parseVector(vectorStr)
		if err != nil {
			return err
		}
		k, _ := cmd.Flags().GetInt("k")
		ef, _ := cmd.Flags().GetInt("ef")

		store, err := openStore(ctx)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer store.Close()

		objects, err := store.All(ctx)
		if err != nil {
			return fmt.Errorf("load objects: %w", err)
		}

		idx, err := newIndex(log)
		if err != nil {
			return err
		}

		f, err := os.Open(indexPath)
		if err != nil {
			return fmt.Errorf("open %s: %w", indexPath, err)
		}
		defer f.Close()
		if err := idx.Load(f, objects); err != nil {
			return fmt.Errorf("load index: %w", err)
		}

		query := &annidx.Object{Vector: vector}
		params := searchParamsFromFlags(ef)

		results, err := idx.SearchKNN(query, k, params)
		if err != nil {
			return fmt.Errorf("search: %w", err)
		}

		for i, r := range results {
			fmt.Printf("%d. id=%d distance=%v\n", i+1, r.ObjectID, r.Distance)
		}
		return nil
	},
}

func parseVector(s string) ([]float32, error) {
	parts := strings.Split(s, ",")
	out := make([]float32, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, fmt.Errorf("invalid vector component %q: %w", p, err)
		}
		out = append(out, float32(v))
	}
	return out, nil
}

func searchParamsFromFlags(ef int) annidx.ParamBag {
	p := annidx.ParamBag{}
	if ef > 0 {
		p["ef"] = ef
		p["numPrefixSearch"] = ef
	}
	return p
}

func init() {
	queryCmd.Flags().String("vector", "", "query vector, comma-separated floats")
	queryCmd.Flags().Int("k", 10, "number of neighbors to return")
	queryCmd.Flags().Int("ef", 0, "search-time beam width / pivot prefix (0 = family default)")
}
