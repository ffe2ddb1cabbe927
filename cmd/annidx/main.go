// Command annidx is the CLI runner: build an index over a SQLite
// dataset, run a query against it, benchmark recall against the flat
// oracle, or dump/load a saved index. Out of the core's scope by
// design (§1's external collaborators); grounded on the teacher's
// cobra-based cmd/sqvect (liliang-cn/sqvect, cmd/sqvect/main.go).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	dbPath    string
	indexPath string
	family    string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "annidx",
	Short: "Build and query approximate nearest-neighbor indices",
	Long:  "annidx builds, queries, benchmarks, and persists HNSW and NAPP indices over a SQLite-backed object store.",
}

func main() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "annidx.db", "path to the SQLite object store")
	rootCmd.PersistentFlags().StringVar(&indexPath, "index", "annidx.idx", "path to the persisted index file")
	rootCmd.PersistentFlags().StringVar(&family, "family", "hnsw", "index family: hnsw or napp")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(buildCmd, queryCmd, benchCmd, dumpCmd, loadCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "annidx:", err)
		os.Exit(1)
	}
}
