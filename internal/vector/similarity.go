package vector

import "math"

// CosineSimilarity returns dot(a,b)/(|a||b|) in [-1, 1]. Vectors of different length,
// empty vectors and zero-magnitude vectors have no defined similarity and score -Inf,
// which sorts them below every real score.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.Inf(-1)
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return math.Inf(-1)
	}
	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	if math.IsNaN(sim) {
		return math.Inf(-1)
	}
	// Rounding can push parallel vectors just past 1.
	return math.Max(-1, math.Min(1, sim))
}

// Scorable reports whether s is a real similarity that may be ranked.
func Scorable(s float64) bool {
	return !math.IsInf(s, 0) && !math.IsNaN(s)
}
