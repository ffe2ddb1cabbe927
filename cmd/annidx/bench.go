package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/annidx/annidx"
	"github.com/annidx/annidx/pkg/flatindex"
	"github.com/annidx/annidx/pkg/space"
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Benchmark recall@k of the configured family against the flat oracle",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		log := newLogger()

		k, _ := cmd.Flags().GetInt("k")
		numQueries, _ := cmd.Flags().GetInt("queries")

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
		if err := idx.Build(ctx, objects, annidx.ParamBag{}); err != nil {
			return fmt.Errorf("build %s index: %w", family, err)
		}

		oracle := flatindex.New[float32](space.NewL2())
		if err := oracle.Build(ctx, objects, nil); err != nil {
			return fmt.Errorf("build oracle: %w", err)
		}

		if numQueries > len(objects) {
			numQueries = len(objects)
		}
		stride := len(objects) / numQueries
		if stride == 0 {
			stride = 1
		}

		var totalHits, totalWant int
		for i := 0; i < numQueries; i++ {
			q := objects[(i*stride)%len(objects)]

			want, err := oracle.SearchKNN(q, k, nil)
			if err != nil {
				return fmt.Errorf("oracle search: %w", err)
			}
			got, err := idx.SearchKNN(q, k, annidx.ParamBag{})
			if err != nil {
				return fmt.Errorf("%s search: %w", family, err)
			}

			wantIDs := make(map[uint32]bool, len(want))
			for _, r := range want {
				wantIDs[r.ObjectID] = true
			}
			hits := 0
			for _, r := range got {
				if wantIDs[r.ObjectID] {
					hits++
				}
			}
			totalHits += hits
			totalWant += len(want)
		}

		recall := 0.0
		if totalWant > 0 {
			recall = float64(totalHits) / float64(totalWant)
		}
		fmt.Printf("%s recall@%d over %d queries: %.4f (%d/%d)\n", family, k, numQueries, recall, totalHits, totalWant)
		return nil
	},
}

func init() {
	benchCmd.Flags().Int("k", 10, "neighbors per query")
	benchCmd.Flags().Int("queries", 50, "number of sample queries drawn from the dataset")
}
