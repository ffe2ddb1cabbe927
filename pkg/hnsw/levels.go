package hnsw

import "math"

// drawLevel samples floor(-ln(U) * mult) for U in (0,1], the
// exponential-decay level assignment every HNSW implementation uses so
// that upper layers thin out geometrically.
func drawLevel(u float64, mult float64) int {
	if u <= 0 {
		u = math.SmallestNonzeroFloat64
	}
	return int(math.Floor(-math.Log(u) * mult))
}

// levelMultiplier returns mL = 1/ln(M).
func levelMultiplier(m int) float64 {
	return 1.0 / math.Log(float64(m))
}
