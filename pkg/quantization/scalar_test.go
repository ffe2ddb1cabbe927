package quantization

import "testing"

func TestNewScalarQuantizerValidatesArgs(t *testing.T) {
	if _, err := NewScalarQuantizer(4, 0); err == nil {
		t.Fatalf("nbits=0 should be rejected")
	}
	if _, err := NewScalarQuantizer(4, 9); err == nil {
		t.Fatalf("nbits=9 should be rejected")
	}
	if _, err := NewScalarQuantizer(0, 4); err == nil {
		t.Fatalf("dimension=0 should be rejected")
	}
	if _, err := NewScalarQuantizer(4, 8); err != nil {
		t.Fatalf("valid args rejected: %v", err)
	}
}

func TestEncodeDecodeBeforeTrainFails(t *testing.T) {
	sq, err := NewScalarQuantizer(3, 8)
	if err != nil {
		t.Fatalf("NewScalarQuantizer: %v", err)
	}
	if _, err := sq.Encode([]float32{1, 2, 3}); err == nil {
		t.Fatalf("Encode before Train should fail")
	}
	if _, err := sq.Decode([]byte{1, 2, 3}); err == nil {
		t.Fatalf("Decode before Train should fail")
	}
}

func TestTrainRejectsEmptyOrMismatchedVectors(t *testing.T) {
	sq, _ := NewScalarQuantizer(3, 8)
	if err := sq.Train(nil); err == nil {
		t.Fatalf("Train(nil) should fail")
	}
	if err := sq.Train([][]float32{{1, 2}}); err == nil {
		t.Fatalf("Train with wrong dimension should fail")
	}
}

func TestEncodeDecodeRoundTripApproximatesOriginal(t *testing.T) {
	sq, err := NewScalarQuantizer(3, 8)
	if err != nil {
		t.Fatalf("NewScalarQuantizer: %v", err)
	}
	training := [][]float32{
		{0, -10, 100},
		{10, 10, 200},
		{5, 0, 150},
	}
	if err := sq.Train(training); err != nil {
		t.Fatalf("Train: %v", err)
	}

	original := []float32{5, 0, 150}
	encoded, err := sq.Encode(original)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := sq.Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	for i, v := range decoded {
		d := v - original[i]
		if d < 0 {
			d = -d
		}
		// 8-bit quantization over a span of at most 100 units: error bound
		// is span/255, generously rounded up here.
		if d > 1.0 {
			t.Fatalf("decoded[%d] = %v, too far from original %v", i, v, original[i])
		}
	}
}

func TestEncodeRejectsWrongDimension(t *testing.T) {
	sq, _ := NewScalarQuantizer(3, 4)
	sq.Train([][]float32{{0, 0, 0}, {1, 1, 1}})
	if _, err := sq.Encode([]float32{1, 2}); err == nil {
		t.Fatalf("Encode with wrong dimension should fail")
	}
}

func TestDecodeRejectsTruncatedInput(t *testing.T) {
	sq, _ := NewScalarQuantizer(8, 8)
	sq.Train([][]float32{{0, 0, 0, 0, 0, 0, 0, 0}, {1, 1, 1, 1, 1, 1, 1, 1}})
	if _, err := sq.Decode([]byte{1}); err == nil {
		t.Fatalf("Decode with truncated input should fail")
	}
}

func TestCompressionRatio(t *testing.T) {
	sq, _ := NewScalarQuantizer(10, 8)
	if got := sq.CompressionRatio(); got != 4 {
		t.Fatalf("CompressionRatio = %v, want 4", got)
	}
}
