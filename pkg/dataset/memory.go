package dataset

import (
	"context"
	"sort"
	"sync"

	"github.com/annidx/annidx"
)

// InMemory is the simplest ObjectStore: a map guarded by a mutex, for
// tests, benchmarks, and small embedded deployments that never touch
// disk.
type InMemory struct {
	mu      sync.RWMutex
	objects map[uint32]*annidx.Object
	pivots  map[uint32]bool
}

// NewInMemory creates an empty in-memory object store.
func NewInMemory() *InMemory {
	return &InMemory{objects: make(map[uint32]*annidx.Object)}
}

// Put inserts or overwrites an object.
func (m *InMemory) Put(o *annidx.Object) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[o.ID] = o
}

// MarkPivot flags an already-inserted object as a pivot landmark.
func (m *InMemory) MarkPivot(id uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pivots == nil {
		m.pivots = make(map[uint32]bool)
	}
	m.pivots[id] = true
}

func (m *InMemory) Len(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects), nil
}

func (m *InMemory) Object(ctx context.Context, id uint32) (*annidx.Object, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.objects[id]
	if !ok {
		return nil, annidx.WrapError("dataset.InMemory.Object", annidx.ErrParameter)
	}
	return o, nil
}

func (m *InMemory) All(ctx context.Context) ([]*annidx.Object, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*annidx.Object, 0, len(m.objects))
	for _, o := range m.objects {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *InMemory) Pivots(ctx context.Context) ([]*annidx.Object, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.pivots) == 0 {
		return m.All(ctx)
	}
	out := make([]*annidx.Object, 0, len(m.pivots))
	for id := range m.pivots {
		out = append(out, m.objects[id])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

var _ ObjectStore = (*InMemory)(nil)
