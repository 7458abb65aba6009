package consensus

import (
	"math/rand"

	"github.com/chainsim/simulator/core"
	"github.com/chainsim/simulator/simrand"
)

// poSpace models a Chia-style VDF abstraction: delay is exponential with
// rate proportional to total allocated space / target block time, and the
// producer is chosen by space-weighted sampling (spec §4.2).
type poSpace struct {
	targetBlockTime float64
}

func (poSpace) Kind() string { return "pospace" }

func (p poSpace) NextBlock(r *rand.Rand, producers []core.Producer, _ float64) (int, float64) {
	total := core.TotalCapacity(producers)
	if total <= 0 || p.targetBlockTime <= 0 {
		return -1, 0
	}
	rate := total / p.targetBlockTime
	delay := simrand.Exponential(r, rate)
	return selectProducer(r, producers), delay
}
