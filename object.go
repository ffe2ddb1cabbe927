package annidx

import "github.com/google/uuid"

// Object is an opaque vector tagged with a stable, dense integer id and
// an optional external label. The core never interprets Vector itself —
// it only ever asks a Space to compare two Objects.
type Object struct {
	// ID is the stable, dense [0,N) index used by every index family.
	ID uint32

	// Label is an optional external identifier (e.g. a caller-supplied
	// document id). The zero UUID means "unset".
	Label uuid.UUID

	// Vector holds the object's coordinates. Distance kernels in
	// pkg/kernel operate directly on this slice; a Space may ignore it
	// entirely and keep its own side-table instead (e.g. a BM25 space
	// over token postings), in which case ID is the only thing that
	// matters to the core.
	Vector []float32
}

// Number is the set of scalar types a distance may be expressed in.
type Number interface {
	~float32 | ~float64 | ~int32
}

// Space is the capability the core consumes to compare Objects. It is
// never required to be symmetric or to satisfy the triangle inequality.
type Space[T Number] interface {
	// IndexDistance is used while building an index (inserting o into
	// the graph, assigning o to a pivot's posting list).
	IndexDistance(a, b *Object) T

	// QueryDistance is used while answering a query; it may legitimately
	// differ from IndexDistance (e.g. an asymmetric KL/Bregman space).
	QueryDistance(q, b *Object) T
}

// ProxySpace is an optional capability: a cheap lower-bound surrogate
// for IndexDistance, consulted only during graph construction when the
// caller opts in (HnswBuilder.Config.UseProxyDistance).
type ProxySpace[T Number] interface {
	Space[T]
	ProxyDistance(a, b *Object) T
}
