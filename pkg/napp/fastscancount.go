// FastScanCount is the standalone threshold-counting primitive NappSearch
// builds its ScanCount intersection algorithm on: given sorted integer
// posting lists, return every value appearing in at least t of them.
//
// Grounded on NMSLIB's fastscancount (original_source,
// similarity_search/include/fastscancount.h): cache-blocks by a fixed
// range so the counter array stays L1/L2-resident regardless of the
// value domain's overall size, resetting it between blocks instead of
// allocating one counter array sized to the whole domain.
package napp

// DefaultRange is FastScanCount's cache-blocking window.
const DefaultRange = 32768

// FastScanCount returns, in ascending order, every value that appears
// in at least t of postings. Each posting list must already be sorted
// ascending; FastScanCount does not sort them.
func FastScanCount(postings [][]uint32, t int) []uint32 {
	return FastScanCountRange(postings, t, DefaultRange)
}

// FastScanCountRange is FastScanCount parameterized by the
// cache-blocking window, exposed for testing the blocking behavior
// independent of the default.
func FastScanCountRange(postings [][]uint32, t int, blockRange int) []uint32 {
	if t <= 0 || len(postings) == 0 {
		return nil
	}
	maxVal := uint32(0)
	for _, p := range postings {
		if n := len(p); n > 0 && p[n-1] > maxVal {
			maxVal = p[n-1]
		}
	}
	cursors := make([]int, len(postings))
	counters := make([]uint8, blockRange)
	var out []uint32

	for blockStart := uint32(0); blockStart <= maxVal; blockStart += uint32(blockRange) {
		blockEnd := blockStart + uint32(blockRange)
		for i := range counters {
			counters[i] = 0
		}
		for pi, p := range postings {
			c := cursors[pi]
			for c < len(p) && p[c] < blockEnd {
				if p[c] >= blockStart {
					idx := p[c] - blockStart
					if counters[idx] < 255 {
						counters[idx]++
					}
				}
				c++
			}
			cursors[pi] = c
		}
		for i, cnt := range counters {
			if int(cnt) >= t {
				out = append(out, blockStart+uint32(i))
			}
		}
	}
	return out
}
