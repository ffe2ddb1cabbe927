package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Load a persisted index and print a summary",
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

		info, err := os.Stat(indexPath)
		if err != nil {
			return fmt.Errorf("stat %s: %w", indexPath, err)
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

		fmt.Printf("family: %s\n", family)
		fmt.Printf("index file: %s (%d bytes)\n", indexPath, info.Size())
		fmt.Printf("dataset objects: %d\n", len(objects))

		if statser, ok := idx.(interface{ Stats() map[string]any }); ok {
			for k, v := range statser.Stats() {
				fmt.Printf("stats.%s: %v\n", k, v)
			}
		}

		if len(objects) > 0 {
			canary, err := idx.SearchKNN(objects[0], 1, nil)
			if err != nil {
				fmt.Printf("canary query: unsupported or failed: %v\n", err)
			} else if len(canary) > 0 {
				fmt.Printf("canary query: object %d nearest self-distance=%v\n", objects[0].ID, canary[0].Distance)
			}
		}
		return nil
	},
}
