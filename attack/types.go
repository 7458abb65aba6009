// Package attack layers adversarial scenarios onto the simulation engine
// through a single hook point (spec §4.7, §9): every freshly-mined
// candidate block is offered to the active Strategy before it is
// committed, and the Strategy decides what actually gets appended to the
// canonical chain. At most one Strategy is active per run.
package attack

import (
	"math/rand"

	"github.com/chainsim/simulator/core"
)

// BlockContext describes a freshly-sampled block candidate, not yet
// appended to the chain, offered to the active Strategy.
type BlockContext struct {
	Block       *core.Block
	IsAttacker  bool
	ChainHeight int64
	Now         float64
	Rng         *rand.Rand
}

// Decision tells the coordinator what to commit as a result of OnBlock.
// Commit lists blocks to append, in order, this step; it may be empty
// (the candidate is withheld) or contain more than one block (a withheld
// fork being released all at once).
type Decision struct {
	Commit []*core.Block
}

// Strategy is the uniform adversary capability. Implementations keep their
// own private state (a withheld fork, an armed race, a topology override)
// and report it through Metrics for the coordinator's final summary.
type Strategy interface {
	OnBlock(ctx BlockContext) Decision
	// PendingDepth reports how many blocks the strategy is currently
	// holding back from the canonical chain, so the coordinator can
	// compute the height of a block the adversary produces on top of its
	// withheld ones. Honest blocks always extend the canonical tip.
	PendingDepth() int
	Metrics() map[string]any
}
