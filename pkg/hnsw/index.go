package hnsw

import (
	"math/rand"
	"sync"

	"github.com/annidx/annidx"
	"github.com/annidx/annidx/internal/logging"
	"github.com/annidx/annidx/internal/visited"
)

// Index is the HNSW implementation of annidx.Index[T]: a graph plus
// the dense object arena it was built over.
type Index[T annidx.Number] struct {
	space annidx.Space[T]
	proxy annidx.ProxySpace[T] // optional, consulted only during build

	cfg Config
	mL  float64

	mu      sync.RWMutex
	objects []*annidx.Object // dense by object id [0,N)
	graph   *Graph

	rng        *rand.Rand
	rngMu      sync.Mutex
	visited    *visited.Pool
	log        logging.Logger
	builderOnce sync.Once
}

// New creates an empty HNSW index over space, configured by cfg. When
// cfg.UseProxyDistance is set and space implements annidx.ProxySpace,
// construction uses its ProxyDistance.
func New[T annidx.Number](space annidx.Space[T], cfg Config) *Index[T] {
	idx := &Index[T]{
		space: space,
		cfg:   cfg,
		mL:    levelMultiplier(cfg.M),
		graph: NewGraph(),
		rng:   rand.New(rand.NewSource(1)),
		log:   logging.Nop(),
	}
	if p, ok := space.(annidx.ProxySpace[T]); ok && cfg.UseProxyDistance {
		idx.proxy = p
	}
	return idx
}

// SetLogger installs a structured logger for build/search diagnostics.
func (idx *Index[T]) SetLogger(l logging.Logger) { idx.log = l }

// SetSeed reseeds the level-draw RNG, for deterministic test scenarios.
func (idx *Index[T]) SetSeed(seed int64) {
	idx.rngMu.Lock()
	defer idx.rngMu.Unlock()
	idx.rng = rand.New(rand.NewSource(seed))
}

func (idx *Index[T]) nextLevel() int {
	idx.rngMu.Lock()
	u := idx.rng.Float64()
	idx.rngMu.Unlock()
	// drawLevel wants U in (0,1]; Float64 returns [0,1).
	return drawLevel(1-u, idx.mL)
}

// indexDistance is the construction-time distance: the space's
// proxy_distance when enabled and available, else its index_distance.
func (idx *Index[T]) indexDistance(a, b *annidx.Object) T {
	if idx.proxy != nil {
		return idx.proxy.ProxyDistance(a, b)
	}
	return idx.space.IndexDistance(a, b)
}

func (idx *Index[T]) queryDistance(q, b *annidx.Object) T {
	return idx.space.QueryDistance(q, b)
}

// objectAt returns the stored object for an external object id. Caller
// must hold at least a read lock on idx.mu.
func (idx *Index[T]) objectAt(id uint32) *annidx.Object {
	return idx.objects[id]
}

func (idx *Index[T]) ensureVisitedPool(n int) {
	if idx.visited == nil {
		idx.visited = visited.NewPool(n)
		return
	}
	idx.visited.Grow(n)
}

// Stats reports build-time introspection: live node and edge counts, a
// per-level population histogram, and the current entry point, mirroring
// the summary the original source prints at the end of a build.
func (idx *Index[T]) Stats() map[string]any {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	entry, maxLevel := idx.graph.EntryPoint()
	nodeCount, edgeCount, levelHistogram := idx.graph.stats()
	return map[string]any{
		"nodeCount":      nodeCount,
		"edgeCount":      edgeCount,
		"maxLevel":       maxLevel,
		"entryPoint":     entry,
		"levelHistogram": levelHistogram,
	}
}

var _ annidx.Index[float32] = (*Index[float32])(nil)
