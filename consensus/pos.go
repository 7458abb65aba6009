package consensus

import (
	"math/rand"

	"github.com/chainsim/simulator/core"
)

// pos fixes the delay to the configured block time (with optional small
// jitter; zero jitter is deterministic) and chooses the producer by
// stake-weighted sampling (spec §4.2).
type pos struct {
	blockTime  float64
	jitterFrac float64
}

func (pos) Kind() string { return "pos" }

func (p pos) NextBlock(r *rand.Rand, producers []core.Producer, _ float64) (int, float64) {
	delay := p.blockTime
	if p.jitterFrac > 0 {
		// Uniform jitter in [-jitterFrac, +jitterFrac] of blockTime.
		delay += p.blockTime * p.jitterFrac * (2*r.Float64() - 1)
		if delay < 0 {
			delay = 0
		}
	}
	return selectProducer(r, producers), delay
}
