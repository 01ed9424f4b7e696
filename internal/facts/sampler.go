package facts

// PickWeighted draws an index from the discrete distribution given by the
// weights. r must be uniform in [0, 1); weights must be non-negative with a
// positive sum. Each bucket occupies a slice of the total proportional to its
// weight; the scan subtracts bucket weights from the scaled draw until it
// lands inside one.
func PickWeighted(weights []float64, r float64) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return -1
	}
	x := r * total
	for i, w := range weights {
		if x < w {
			return i
		}
		x -= w
	}
	// Rounding can push x marginally past the last bucket; fall back to the
	// last one with positive weight.
	for i := len(weights) - 1; i >= 0; i-- {
		if weights[i] > 0 {
			return i
		}
	}
	return -1
}
