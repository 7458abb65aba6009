// Package metrics accumulates the aggregate statistics the coordinator
// prints and (optionally) exports: block timing, throughput, issuance,
// per-producer shares, propagation cost, and propagation loss.
package metrics

import "github.com/chainsim/simulator/core"

// Accumulator collects running totals as the coordinator processes events.
type Accumulator struct {
	blocks           int64
	txIncluded       int64
	lastBlockTime    float64
	haveLastBlock    bool
	interBlockSum    float64
	producerBlocks   map[int]int64

	propagationHopSum   int64
	propagationHopCount int64
	lossEvents          int64
}

// NewAccumulator returns an empty Accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{producerBlocks: make(map[int]int64)}
}

// RecordBlock updates block-level totals for a newly-committed block.
func (a *Accumulator) RecordBlock(b *core.Block) {
	a.blocks++
	a.txIncluded += int64(b.TxCount)
	a.producerBlocks[b.ProducerID]++
	if a.haveLastBlock {
		a.interBlockSum += b.Timestamp - a.lastBlockTime
	}
	a.lastBlockTime = b.Timestamp
	a.haveLastBlock = true
}

// RecordPropagation records one block's propagation outcome: reached of
// total nodes saw it, across hopSum total BFS hops (used for the mean
// propagation-hops metric), counting any unreached node as a loss.
func (a *Accumulator) RecordPropagation(reached, total, hopSum int) {
	a.propagationHopSum += int64(hopSum)
	a.propagationHopCount++
	if reached < total {
		a.lossEvents += int64(total - reached)
	}
}

// MeanBlockTime returns the mean inter-block time over recorded blocks.
func (a *Accumulator) MeanBlockTime() float64 {
	if a.blocks <= 1 {
		return 0
	}
	return a.interBlockSum / float64(a.blocks-1)
}

// MeanPropagationHops returns the mean BFS hop count across all produced blocks.
func (a *Accumulator) MeanPropagationHops() float64 {
	if a.propagationHopCount == 0 {
		return 0
	}
	return float64(a.propagationHopSum) / float64(a.propagationHopCount)
}

// ProducerShares returns each producer's fraction of accepted blocks.
func (a *Accumulator) ProducerShares() map[int]float64 {
	out := make(map[int]float64, len(a.producerBlocks))
	if a.blocks == 0 {
		return out
	}
	for id, n := range a.producerBlocks {
		out[id] = float64(n) / float64(a.blocks)
	}
	return out
}

// Blocks returns the total number of committed blocks recorded.
func (a *Accumulator) Blocks() int64 { return a.blocks }

// TxIncluded returns the total number of transactions included in blocks.
func (a *Accumulator) TxIncluded() int64 { return a.txIncluded }

// PropagationLoss returns the cumulative count of (block, node) pairs that
// never received a block, recorded non-fatally per spec §7.
func (a *Accumulator) PropagationLoss() int64 { return a.lossEvents }

// Snapshot is the JSON-serializable accumulator state, for checkpointing.
type Snapshot struct {
	Blocks              int64           `json:"blocks"`
	TxIncluded          int64           `json:"tx_included"`
	LastBlockTime       float64         `json:"last_block_time"`
	HaveLastBlock       bool            `json:"have_last_block"`
	InterBlockSum       float64         `json:"inter_block_sum"`
	ProducerBlocks      map[int]int64   `json:"producer_blocks"`
	PropagationHopSum   int64           `json:"propagation_hop_sum"`
	PropagationHopCount int64           `json:"propagation_hop_count"`
	LossEvents          int64           `json:"loss_events"`
}

// Snapshot captures the accumulator's state.
func (a *Accumulator) Snapshot() Snapshot {
	producers := make(map[int]int64, len(a.producerBlocks))
	for k, v := range a.producerBlocks {
		producers[k] = v
	}
	return Snapshot{
		Blocks:              a.blocks,
		TxIncluded:          a.txIncluded,
		LastBlockTime:       a.lastBlockTime,
		HaveLastBlock:       a.haveLastBlock,
		InterBlockSum:       a.interBlockSum,
		ProducerBlocks:      producers,
		PropagationHopSum:   a.propagationHopSum,
		PropagationHopCount: a.propagationHopCount,
		LossEvents:          a.lossEvents,
	}
}

// Restore replaces the accumulator's state with a prior Snapshot.
func (a *Accumulator) Restore(s Snapshot) {
	a.blocks = s.Blocks
	a.txIncluded = s.TxIncluded
	a.lastBlockTime = s.LastBlockTime
	a.haveLastBlock = s.HaveLastBlock
	a.interBlockSum = s.InterBlockSum
	a.producerBlocks = s.ProducerBlocks
	if a.producerBlocks == nil {
		a.producerBlocks = make(map[int]int64)
	}
	a.propagationHopSum = s.PropagationHopSum
	a.propagationHopCount = s.PropagationHopCount
	a.lossEvents = s.LossEvents
}
