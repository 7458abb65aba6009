package core

import "fmt"

// RetargetPoint records the difficulty in effect after a retarget, for the
// "per-retarget difficulty history" metrics export (spec §6).
type RetargetPoint struct {
	Height     int64   `json:"height"`
	Difficulty float64 `json:"difficulty"`
}

// Economics holds the reward-schedule and difficulty-retarget parameters.
// A zero HalvingInterval, or MaxHalvings explicitly set to zero, both mean
// "constant reward" per spec §4.5. A nil MaxHalvings means "unlimited
// halvings" — historically this was implemented as "zero halvings", which
// spec.md calls out as a bug this design explicitly fixes: MaxHalvings is a
// *pointer* so "absent" and "zero" are distinguishable.
type Economics struct {
	InitialReward    float64
	HalvingInterval  int64 // 0 → constant reward
	MaxHalvings      *int64
	RetargetInterval int64   // 0 → difficulty fixed
	TargetWindow     float64 // target seconds for one retarget_interval worth of blocks
}

// Reward returns the block reward for height under e.
func (e Economics) Reward(height int64) float64 {
	if e.HalvingInterval <= 0 {
		return e.InitialReward
	}
	halvings := height / e.HalvingInterval
	if e.MaxHalvings != nil && *e.MaxHalvings == 0 {
		return e.InitialReward
	}
	if e.MaxHalvings != nil && halvings >= *e.MaxHalvings {
		return 0
	}
	reward := e.InitialReward
	for i := int64(0); i < halvings; i++ {
		reward /= 2
	}
	return reward
}

// ChainState is the canonical chain: an ordered, densely-filled sequence of
// blocks plus the current difficulty/reward regime. Owned exclusively by
// the coordinator (spec §5).
type ChainState struct {
	Economics Economics

	blocks             []*Block
	difficulty         float64
	blocksSinceRetarget int64
	lastRetargetTime    float64
	history            []RetargetPoint
}

// NewChainState creates an empty chain with the given economics and
// starting difficulty.
func NewChainState(econ Economics, initialDifficulty float64) *ChainState {
	return &ChainState{
		Economics:  econ,
		difficulty: initialDifficulty,
		history:    []RetargetPoint{{Height: 0, Difficulty: initialDifficulty}},
	}
}

// Difficulty returns the difficulty that applies to the next block.
func (c *ChainState) Difficulty() float64 { return c.difficulty }

// Height returns the height of the tip, or -1 for an empty chain.
func (c *ChainState) Height() int64 {
	if len(c.blocks) == 0 {
		return -1
	}
	return c.blocks[len(c.blocks)-1].Height
}

// Tip returns the current tip block, or nil for an empty chain.
func (c *ChainState) Tip() *Block {
	if len(c.blocks) == 0 {
		return nil
	}
	return c.blocks[len(c.blocks)-1]
}

// Blocks returns the full chain, oldest first. Callers must not mutate it.
func (c *ChainState) Blocks() []*Block { return c.blocks }

// History returns the append-only difficulty-retarget history.
func (c *ChainState) History() []RetargetPoint { return c.history }

// NextReward returns the reward the next block (at Height()+1) would earn.
func (c *ChainState) NextReward() float64 {
	return c.Economics.Reward(c.Height() + 1)
}

// Append validates and commits block to the chain, retargeting difficulty
// if due. Returns an error (an internal invariant violation, never a user-
// facing one — callers are expected to have built block correctly) if
// height continuity is broken.
func (c *ChainState) Append(block *Block) error {
	wantHeight := c.Height() + 1
	if block.Height != wantHeight {
		return fmt.Errorf("core: chain height invariant violated: got block height %d, want %d", block.Height, wantHeight)
	}
	c.blocks = append(c.blocks, block)
	c.blocksSinceRetarget++

	if c.Economics.RetargetInterval > 0 && c.blocksSinceRetarget >= c.Economics.RetargetInterval {
		c.retarget(block)
	}
	return nil
}

// retarget recomputes difficulty from the elapsed window since the last
// retarget, clamped to [/4, x4] per spec §4.5.
func (c *ChainState) retarget(block *Block) {
	actualWindow := block.Timestamp - c.lastRetargetTime
	if actualWindow <= 0 {
		actualWindow = c.Economics.TargetWindow
	}
	ratio := c.Economics.TargetWindow / actualWindow
	next := c.difficulty * ratio

	min := c.difficulty / 4
	max := c.difficulty * 4
	if next < min {
		next = min
	}
	if next > max {
		next = max
	}

	c.difficulty = next
	c.blocksSinceRetarget = 0
	c.lastRetargetTime = block.Timestamp
	c.history = append(c.history, RetargetPoint{Height: block.Height, Difficulty: next})
}

// TotalIssuance sums the reward of every block in the chain.
func (c *ChainState) TotalIssuance() float64 {
	var total float64
	for _, b := range c.blocks {
		total += b.Reward
	}
	return total
}

// ChainSnapshot is the JSON-serializable subset of ChainState used by
// storage.SimulationState.
type ChainSnapshot struct {
	Blocks              []*Block        `json:"blocks"`
	Difficulty          float64         `json:"difficulty"`
	BlocksSinceRetarget int64           `json:"blocks_since_retarget"`
	LastRetargetTime    float64         `json:"last_retarget_time"`
	History             []RetargetPoint `json:"history"`
}

// Snapshot captures the full chain state for checkpointing.
func (c *ChainState) Snapshot() ChainSnapshot {
	return ChainSnapshot{
		Blocks:              append([]*Block(nil), c.blocks...),
		Difficulty:          c.difficulty,
		BlocksSinceRetarget: c.blocksSinceRetarget,
		LastRetargetTime:    c.lastRetargetTime,
		History:             append([]RetargetPoint(nil), c.history...),
	}
}

// RestoreFrom rebuilds chain state from a ChainSnapshot produced by a prior
// call to Snapshot (after a JSON round trip, in the checkpoint/resume case).
func (c *ChainState) RestoreFrom(s ChainSnapshot) {
	c.blocks = s.Blocks
	c.difficulty = s.Difficulty
	c.blocksSinceRetarget = s.BlocksSinceRetarget
	c.lastRetargetTime = s.LastRetargetTime
	c.history = s.History
}
