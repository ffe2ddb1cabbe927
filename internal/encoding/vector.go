// Package encoding provides the little-endian scalar/vector codecs the
// HNSW optimized binary layout and the NAPP textual layout both build on.
package encoding

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrInvalidVector is returned when vector bytes are malformed.
var ErrInvalidVector = errors.New("encoding: invalid vector")

// EncodeVector writes a length-prefixed little-endian float32 vector.
func EncodeVector(vector []float32) ([]byte, error) {
	if vector == nil {
		return nil, ErrInvalidVector
	}
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, uint32(len(vector))); err != nil {
		return nil, fmt.Errorf("encode vector length: %w", err)
	}
	if err := binary.Write(buf, binary.LittleEndian, vector); err != nil {
		return nil, fmt.Errorf("encode vector values: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeVector reverses EncodeVector.
func DecodeVector(data []byte) ([]float32, error) {
	if len(data) < 4 {
		return nil, ErrInvalidVector
	}
	r := bytes.NewReader(data)
	var length uint32
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		return nil, fmt.Errorf("decode vector length: %w", err)
	}
	if int(length) < 0 || r.Len() < int(length)*4 {
		return nil, ErrInvalidVector
	}
	if length == 0 {
		return []float32{}, nil
	}
	vec := make([]float32, length)
	if err := binary.Read(r, binary.LittleEndian, vec); err != nil {
		return nil, fmt.Errorf("decode vector values: %w", err)
	}
	return vec, nil
}

// PutUint32Slice writes a raw, unprefixed slice of little-endian uint32s
// (used for neighbor id arrays and NAPP postings).
func PutUint32Slice(buf *bytes.Buffer, ids []uint32) error {
	return binary.Write(buf, binary.LittleEndian, ids)
}

// ReadUint32Slice reads n little-endian uint32s.
func ReadUint32Slice(r *bytes.Reader, n uint32) ([]uint32, error) {
	out := make([]uint32, n)
	if err := binary.Read(r, binary.LittleEndian, out); err != nil {
		return nil, fmt.Errorf("read uint32 slice: %w", err)
	}
	return out, nil
}
