// Package quantization provides the scalar quantizer HNSW's optional
// proxy_distance is built on: a cheap, lossy per-dimension encoding
// whose squared-L2 distance in the quantized domain lower-bounds (in
// expectation) the true squared-L2 distance, making it suitable only as
// a construction-time accelerator, never as the final re-ranking
// distance.
//
// Adapted from the teacher's ScalarQuantizer
// (liliang-cn/sqvect, pkg/quantization/scalar_quantization.go), trimmed
// to the scalar (non-binary, non-LSH-projected) case.
package quantization

import (
	"errors"
	"fmt"
)

// ScalarQuantizer maps each dimension of a float32 vector into an
// NBits-wide code, linearly scaled between that dimension's observed
// min and max.
type ScalarQuantizer struct {
	Dimension int
	Min       []float32
	Max       []float32
	NBits     int
	Trained   bool
}

// NewScalarQuantizer creates an untrained quantizer for vectors of the
// given dimension, encoding each component in nbits bits (1-8).
func NewScalarQuantizer(dimension, nbits int) (*ScalarQuantizer, error) {
	if nbits < 1 || nbits > 8 {
		return nil, fmt.Errorf("quantization: nbits must be in [1,8], got %d", nbits)
	}
	if dimension <= 0 {
		return nil, fmt.Errorf("quantization: dimension must be positive, got %d", dimension)
	}
	return &ScalarQuantizer{
		Dimension: dimension,
		NBits:     nbits,
		Min:       make([]float32, dimension),
		Max:       make([]float32, dimension),
	}, nil
}

// Train learns the per-dimension [min,max] ranges from a sample of
// vectors — typically the pivot set or a random subsample of the
// dataset, never the full dataset on large builds.
func (sq *ScalarQuantizer) Train(vectors [][]float32) error {
	if len(vectors) == 0 {
		return errors.New("quantization: no training vectors")
	}
	for d := 0; d < sq.Dimension; d++ {
		sq.Min[d] = vectors[0][d]
		sq.Max[d] = vectors[0][d]
	}
	for _, vec := range vectors {
		if len(vec) != sq.Dimension {
			return fmt.Errorf("quantization: vector dimension %d != %d", len(vec), sq.Dimension)
		}
		for d := 0; d < sq.Dimension; d++ {
			if vec[d] < sq.Min[d] {
				sq.Min[d] = vec[d]
			}
			if vec[d] > sq.Max[d] {
				sq.Max[d] = vec[d]
			}
		}
	}
	for d := 0; d < sq.Dimension; d++ {
		if sq.Max[d] == sq.Min[d] {
			sq.Max[d] += 1e-6
		}
	}
	sq.Trained = true
	return nil
}

// Encode quantizes vector to a packed-bits byte slice.
func (sq *ScalarQuantizer) Encode(vector []float32) ([]byte, error) {
	if !sq.Trained {
		return nil, errors.New("quantization: not trained")
	}
	if len(vector) != sq.Dimension {
		return nil, fmt.Errorf("quantization: vector dimension %d != %d", len(vector), sq.Dimension)
	}
	maxVal := float32(int(1)<<uint(sq.NBits) - 1)
	bytesNeeded := (sq.Dimension*sq.NBits + 7) / 8
	encoded := make([]byte, bytesNeeded)

	bitOffset := 0
	for d := 0; d < sq.Dimension; d++ {
		normalized := (vector[d] - sq.Min[d]) / (sq.Max[d] - sq.Min[d])
		if normalized < 0 {
			normalized = 0
		} else if normalized > 1 {
			normalized = 1
		}
		quantized := uint32(normalized * maxVal)
		for b := 0; b < sq.NBits; b++ {
			if quantized&(1<<uint(b)) != 0 {
				encoded[bitOffset/8] |= 1 << uint(bitOffset%8)
			}
			bitOffset++
		}
	}
	return encoded, nil
}

// Decode reconstructs an approximate vector from quantized bytes.
func (sq *ScalarQuantizer) Decode(encoded []byte) ([]float32, error) {
	if !sq.Trained {
		return nil, errors.New("quantization: not trained")
	}
	maxVal := float32(int(1)<<uint(sq.NBits) - 1)
	vector := make([]float32, sq.Dimension)

	bitOffset := 0
	for d := 0; d < sq.Dimension; d++ {
		quantized := uint32(0)
		for b := 0; b < sq.NBits; b++ {
			byteIdx := bitOffset / 8
			if byteIdx >= len(encoded) {
				return nil, errors.New("quantization: encoded data too short")
			}
			if encoded[byteIdx]&(1<<uint(bitOffset%8)) != 0 {
				quantized |= 1 << uint(b)
			}
			bitOffset++
		}
		normalized := float32(quantized) / maxVal
		vector[d] = normalized*(sq.Max[d]-sq.Min[d]) + sq.Min[d]
	}
	return vector, nil
}

// CompressionRatio reports the ratio of original (32 bits/dimension) to
// quantized size.
func (sq *ScalarQuantizer) CompressionRatio() float32 {
	return float32(sq.Dimension*32) / float32(sq.Dimension*sq.NBits)
}
