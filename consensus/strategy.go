// Package consensus samples the next block producer and inter-block delay
// under one of three disciplines. All three share a single capability,
// modeled as a tagged variant rather than a class hierarchy (spec §9):
// Strategy.NextBlock(rng, producers, difficulty) -> (producerID, delay).
package consensus

import (
	"math/rand"

	"github.com/chainsim/simulator/core"
	"github.com/chainsim/simulator/simrand"
)

// Strategy chooses the next block's producer and inter-block delay.
type Strategy interface {
	// NextBlock samples (producerID, delaySeconds) given the current
	// producer set and difficulty. producerID is -1 if every producer has
	// non-positive capacity (producer-selection underflow, spec §7 — a
	// fatal configuration error the caller must check for).
	NextBlock(r *rand.Rand, producers []core.Producer, difficulty float64) (producerID int, delaySeconds float64)
	// Kind names the discipline, for Witness tagging.
	Kind() string
}

// Type names the supported consensus disciplines.
type Type string

const (
	PoW     Type = "pow"
	PoS     Type = "pos"
	PoSpace Type = "pospace"
)

// Config parameterises strategy construction.
type Config struct {
	Type          Type
	BlockTime     float64 // target mean seconds between blocks (PoS, PoSpace)
	JitterFrac    float64 // PoS only: +/- fraction of BlockTime, 0 = deterministic
}

// New builds the Strategy named by cfg.Type.
func New(cfg Config) Strategy {
	switch cfg.Type {
	case PoS:
		return &pos{blockTime: cfg.BlockTime, jitterFrac: cfg.JitterFrac}
	case PoSpace:
		return &poSpace{targetBlockTime: cfg.BlockTime}
	default:
		return &pow{}
	}
}

// weightedCapacity returns each producer's capacity, lowest-id-first, for
// WeightedIndex's implicit lowest-id tie-break on equal weights.
func weightedCapacity(producers []core.Producer) []float64 {
	w := make([]float64, len(producers))
	for i, p := range producers {
		w[i] = p.Capacity
	}
	return w
}

func selectProducer(r *rand.Rand, producers []core.Producer) int {
	idx := simrand.WeightedIndex(r, weightedCapacity(producers))
	if idx < 0 {
		return -1
	}
	return producers[idx].ID
}
