package kernel

// PrefetchHint touches the first element of v. Go has no portable
// intrinsic for an explicit cache-line prefetch instruction short of
// assembly per architecture (see DESIGN.md); this is the closest
// portable approximation — it forces the runtime to fault the backing
// page/cache line in before the caller's real distance computation
// begins, which is the same role §4.6's prefetch contract plays for the
// HNSW neighbor-list walk and the VisitedPool cell check.
func PrefetchHint(v []float32) {
	if len(v) > 0 {
		_ = v[0]
	}
}

// PrefetchHintBytes is the byte-slice form of PrefetchHint.
func PrefetchHintBytes(b []byte) {
	if len(b) > 0 {
		_ = b[0]
	}
}
