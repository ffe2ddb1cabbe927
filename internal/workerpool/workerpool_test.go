package workerpool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestParallelForVisitsEveryID(t *testing.T) {
	const n = 500
	var seen [n]int32
	err := ParallelFor(context.Background(), 0, n, 4, func(ctx context.Context, id, workerID int) error {
		atomic.AddInt32(&seen[id], 1)
		return nil
	})
	if err != nil {
		t.Fatalf("ParallelFor: %v", err)
	}
	for i, c := range seen {
		if c != 1 {
			t.Fatalf("id %d visited %d times, want 1", i, c)
		}
	}
}

func TestParallelForSingleWorkerRunsInline(t *testing.T) {
	var order []int
	err := ParallelFor(context.Background(), 0, 5, 1, func(ctx context.Context, id, workerID int) error {
		order = append(order, id)
		return nil
	})
	if err != nil {
		t.Fatalf("ParallelFor: %v", err)
	}
	want := []int{0, 1, 2, 3, 4}
	for i, id := range want {
		if order[i] != id {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestParallelForPropagatesFirstError(t *testing.T) {
	boom := errors.New("boom")
	err := ParallelFor(context.Background(), 0, 50, 4, func(ctx context.Context, id, workerID int) error {
		if id == 10 {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("ParallelFor error = %v, want %v", err, boom)
	}
}

func TestParallelForEmptyRangeIsNoop(t *testing.T) {
	called := false
	err := ParallelFor(context.Background(), 5, 5, 4, func(ctx context.Context, id, workerID int) error {
		called = true
		return nil
	})
	if err != nil || called {
		t.Fatalf("ParallelFor on empty range should not call fn, err=%v called=%v", err, called)
	}
}

func TestParallelForDistributesAcrossWorkers(t *testing.T) {
	var mu sync.Mutex
	workersUsed := map[int]bool{}
	err := ParallelFor(context.Background(), 0, 1000, 8, func(ctx context.Context, id, workerID int) error {
		mu.Lock()
		workersUsed[workerID] = true
		mu.Unlock()
		return nil
	})
	if err != nil {
		t.Fatalf("ParallelFor: %v", err)
	}
	if len(workersUsed) < 2 {
		t.Fatalf("expected work spread across multiple workers, got %v", workersUsed)
	}
}
