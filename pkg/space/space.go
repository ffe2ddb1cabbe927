// Package space provides the concrete distance-space capabilities the
// core consumes through annidx.Space: squared-L2, cosine, inner
// product, and bit-Hamming, all built on pkg/kernel, plus a
// quantization-backed ProxySpace wrapper for HNSW's optional
// proxy_distance.
//
// Grounded on the teacher's index.EuclideanDistance / CosineDistance /
// DotProductDistance (liliang-cn/sqvect, pkg/index/hnsw.go) — kept as
// free functions there, promoted here to the Space capability the
// specification requires, and rerouted through pkg/kernel's unrolled
// accumulators instead of a single-lane loop.
package space

import (
	"math"

	"github.com/annidx/annidx"
	"github.com/annidx/annidx/pkg/kernel"
	"github.com/annidx/annidx/pkg/quantization"
)

// L2 is squared-Euclidean distance over Object.Vector. Symmetric:
// IndexDistance and QueryDistance coincide.
type L2 struct{}

// NewL2 returns a squared-L2 distance space.
func NewL2() L2 { return L2{} }

func (L2) IndexDistance(a, b *annidx.Object) float32 { return kernel.SquaredL2(a.Vector, b.Vector) }
func (L2) QueryDistance(q, b *annidx.Object) float32 { return kernel.SquaredL2(q.Vector, b.Vector) }

// Cosine is 1-minus-cosine-similarity distance over Object.Vector.
type Cosine struct{}

// NewCosine returns a cosine distance space.
func NewCosine() Cosine { return Cosine{} }

func (Cosine) IndexDistance(a, b *annidx.Object) float32 {
	return kernel.CosineDistance(a.Vector, b.Vector)
}
func (Cosine) QueryDistance(q, b *annidx.Object) float32 {
	return kernel.CosineDistance(q.Vector, b.Vector)
}

// InnerProduct is negative dot-product distance: smaller is closer,
// matching the other Space implementations' convention.
type InnerProduct struct{}

// NewInnerProduct returns an inner-product distance space.
func NewInnerProduct() InnerProduct { return InnerProduct{} }

func (InnerProduct) IndexDistance(a, b *annidx.Object) float32 {
	return kernel.InnerProductDistance(a.Vector, b.Vector)
}
func (InnerProduct) QueryDistance(q, b *annidx.Object) float32 {
	return kernel.InnerProductDistance(q.Vector, b.Vector)
}

// Hamming treats Object.Vector as a bit-packed payload: every float32
// element's bit pattern is reinterpreted as a 32-bit word and compared
// by popcount of the XOR, so callers can reuse the same Object type for
// binary sketches without a second vector field.
type Hamming struct{}

// NewHamming returns a bit-Hamming distance space.
func NewHamming() Hamming { return Hamming{} }

func (Hamming) IndexDistance(a, b *annidx.Object) float32 {
	return float32(kernel.BitHamming(asWords(a.Vector), asWords(b.Vector)))
}
func (Hamming) QueryDistance(q, b *annidx.Object) float32 {
	return float32(kernel.BitHamming(asWords(q.Vector), asWords(b.Vector)))
}

func asWords(v []float32) []uint32 {
	words := make([]uint32, len(v))
	for i, f := range v {
		words[i] = math.Float32bits(f)
	}
	return words
}

// QuantizedProxy wraps a Space with a cheap ProxyDistance computed over
// a trained quantization.ScalarQuantizer's decoded vectors, used only
// by HnswBuilder when Config.UseProxyDistance is set.
type QuantizedProxy struct {
	annidx.Space[float32]
	q *quantization.ScalarQuantizer
}

// NewQuantizedProxy wraps base with a proxy distance backed by a
// scalar quantizer trained on sample.
func NewQuantizedProxy(base annidx.Space[float32], dimension, nbits int, sample [][]float32) (*QuantizedProxy, error) {
	q, err := quantization.NewScalarQuantizer(dimension, nbits)
	if err != nil {
		return nil, err
	}
	if err := q.Train(sample); err != nil {
		return nil, err
	}
	return &QuantizedProxy{Space: base, q: q}, nil
}

// ProxyDistance decodes both operands through the quantizer and
// computes squared-L2 in the quantized domain — cheaper only because
// callers are expected to cache the decoded vectors across an
// insertion's many proxy-distance calls; this default recomputes them
// each call and is meant as a correctness reference, not the fast path.
func (p *QuantizedProxy) ProxyDistance(a, b *annidx.Object) float32 {
	da, errA := p.q.Encode(a.Vector)
	db, errB := p.q.Encode(b.Vector)
	if errA != nil || errB != nil {
		return p.Space.IndexDistance(a, b)
	}
	va, errA := p.q.Decode(da)
	vb, errB := p.q.Decode(db)
	if errA != nil || errB != nil {
		return p.Space.IndexDistance(a, b)
	}
	return kernel.SquaredL2(va, vb)
}
