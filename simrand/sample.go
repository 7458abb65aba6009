package simrand

import "math/rand"

// WeightedIndex picks an index into weights with probability proportional
// to each entry's weight. Ties (and the all-zero-but-one case) resolve to
// the lowest index with positive weight among equal maxima by construction
// of the cumulative scan. Returns -1 if every weight is <= 0 (producer-
// selection underflow — callers treat this as a fatal configuration error).
func WeightedIndex(r *rand.Rand, weights []float64) int {
	var total float64
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return -1
	}
	draw := r.Float64() * total
	var cum float64
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		cum += w
		if draw < cum {
			return i
		}
	}
	// Floating-point rounding: fall back to the last positive-weight index.
	for i := len(weights) - 1; i >= 0; i-- {
		if weights[i] > 0 {
			return i
		}
	}
	return -1
}

// Exponential draws a sample from an exponential distribution with the
// given rate (events per second). Used by PoW and PoSpace to model
// memoryless block-discovery races.
func Exponential(r *rand.Rand, rate float64) float64 {
	return r.ExpFloat64() / rate
}
