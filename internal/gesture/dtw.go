package gesture

import "math"

// DTWDistance calculates the Dynamic Time Warping distance between two
// sequences of feature vectors. Returns infinity if either sequence is empty.
// The distance is normalized by the longer sequence length, and each frame
// distance is the RMS difference per coordinate so vectors of different
// widths produce comparable scores.
func DTWDistance(seq1, seq2 [][]float64) float64 {
	n := len(seq1)
	m := len(seq2)

	if n == 0 || m == 0 {
		return math.Inf(1)
	}

	// Two rolling rows of the (n+1) x (m+1) cost matrix.
	prev := make([]float64, m+1)
	curr := make([]float64, m+1)
	for j := range prev {
		prev[j] = math.Inf(1)
	}
	prev[0] = 0

	for i := 1; i <= n; i++ {
		curr[0] = math.Inf(1)
		for j := 1; j <= m; j++ {
			cost := frameDistance(seq1[i-1], seq2[j-1])
			curr[j] = cost + min(prev[j], curr[j-1], prev[j-1])
		}
		prev, curr = curr, prev
	}

	return prev[m] / float64(max(n, m))
}

// frameDistance is the root mean square difference between two vectors.
// Extra coordinates in the longer vector are compared against zero.
func frameDistance(a, b []float64) float64 {
	n := max(len(a), len(b))
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		var x, y float64
		if i < len(a) {
			x = a[i]
		}
		if i < len(b) {
			y = b[i]
		}
		d := x - y
		sum += d * d
	}
	return math.Sqrt(sum / float64(n))
}

// isZero reports whether every frame in seq is all zeros.
func isZero(seq [][]float64) bool {
	for _, f := range seq {
		for _, v := range f {
			if v != 0 {
				return false
			}
		}
	}
	return true
}
