package simrand

import (
	"math/rand"
	"testing"
)

func TestWeightedIndexAllZeroReturnsUnderflow(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	if got := WeightedIndex(r, []float64{0, 0, 0}); got != -1 {
		t.Errorf("got %d want -1", got)
	}
}

func TestWeightedIndexSingleNonZeroAlwaysWins(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		if got := WeightedIndex(r, []float64{0, 5, 0}); got != 1 {
			t.Fatalf("got %d want 1", got)
		}
	}
}

func TestWeightedIndexProportional(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	counts := map[int]int{}
	for i := 0; i < 5000; i++ {
		counts[WeightedIndex(r, []float64{1, 9})]++
	}
	if counts[1] <= counts[0] {
		t.Errorf("index 1 (weight 9) should win far more often than index 0 (weight 1): %v", counts)
	}
}

func TestExponentialMeanScalesWithRate(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	var sum float64
	const n = 10000
	for i := 0; i < n; i++ {
		sum += Exponential(r, 2)
	}
	mean := sum / n
	// Mean of Exponential(rate=2) is 0.5; allow generous tolerance for a
	// finite sample.
	if mean < 0.4 || mean > 0.6 {
		t.Errorf("sample mean %v too far from expected 0.5", mean)
	}
}
