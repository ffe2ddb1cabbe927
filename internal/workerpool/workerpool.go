// Package workerpool partitions [0,N) across a fixed number of workers
// using an atomic counter, the Go analog of the original's ParallelFor
// (original_source, similarity_search/include/thread_pool.h): each
// worker repeatedly fetch-adds the shared counter to claim the next id
// until the range is exhausted, and the first worker error aborts the
// rest and is returned to the caller — errgroup.WithContext gives us
// both "re-throw the first exception" and early cancellation for free.
package workerpool

import (
	"context"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Fn is the per-id unit of work. workerID identifies which of the
// numWorkers goroutines is calling, for thread-local scratch lookup
// (e.g. a visited.Pool keyed by worker id).
type Fn func(ctx context.Context, id int, workerID int) error

// ParallelFor runs fn(id, workerID) for every id in [start, end), using
// numWorkers goroutines. numWorkers <= 0 defaults to GOMAXPROCS. A
// numWorkers of 1 runs fn inline on the calling goroutine, matching the
// original's fast path and keeping single-threaded callers free of
// goroutine-scheduling nondeterminism.
func ParallelFor(ctx context.Context, start, end, numWorkers int, fn Fn) error {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	if numWorkers == 1 || end-start <= 1 {
		for id := start; id < end; id++ {
			if err := fn(ctx, id, 0); err != nil {
				return err
			}
		}
		return nil
	}

	var cursor atomic.Int64
	cursor.Store(int64(start))

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < numWorkers; w++ {
		workerID := w
		g.Go(func() error {
			for {
				id := int(cursor.Add(1)) - 1
				if id >= end {
					return nil
				}
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				if err := fn(gctx, id, workerID); err != nil {
					return err
				}
			}
		})
	}
	return g.Wait()
}
