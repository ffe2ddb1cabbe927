package main

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load a persisted index and re-save it, verifying the round trip",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		log := newLogger()

		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = indexPath + ".roundtrip"
		}

		store, err := openStore(ctx)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer store.Close()

		objects, err := store.All(ctx)
		if err != nil {
			return fmt.Errorf("load objects: %w", err)
		}

		original, err := os.ReadFile(indexPath)
		if err != nil {
			return fmt.Errorf("read %s: %w", indexPath, err)
		}

		idx, err := newIndex(log)
		if err != nil {
			return err
		}
		if err := idx.Load(bytes.NewReader(original), objects); err != nil {
			return fmt.Errorf("load index: %w", err)
		}

		var buf bytes.Buffer
		if err := idx.Save(&buf); err != nil {
			return fmt.Errorf("re-save index: %w", err)
		}

		if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}

		if bytes.Equal(original, buf.Bytes()) {
			fmt.Printf("round trip OK: %s matches %s byte for byte (%d bytes)\n", out, indexPath, buf.Len())
		} else {
			fmt.Printf("round trip produced a different encoding: %s (%d bytes) vs %s (%d bytes)\n",
				out, buf.Len(), indexPath, len(original))
		}
		return nil
	},
}

func init() {
	loadCmd.Flags().String("out", "", "path to write the re-saved index (default <index>.roundtrip)")
}
