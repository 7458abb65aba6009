package consensus

import (
	"math/rand"

	"github.com/chainsim/simulator/core"
	"github.com/chainsim/simulator/simrand"
)

// pow models independent Poisson mining processes racing for the next
// block: delay is exponential with rate H/difficulty (mean = difficulty/H),
// and the producer is chosen by hashrate-weighted sampling (spec §4.2).
type pow struct{}

func (pow) Kind() string { return "pow" }

func (pow) NextBlock(r *rand.Rand, producers []core.Producer, difficulty float64) (int, float64) {
	total := core.TotalCapacity(producers)
	if total <= 0 || difficulty <= 0 {
		return -1, 0
	}
	delay := simrand.Exponential(r, total/difficulty)
	return selectProducer(r, producers), delay
}
