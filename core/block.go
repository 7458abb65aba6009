// Package core holds the simulator's data model: blocks, transactions,
// producers, the mempool, and the chain-state/economics that govern
// difficulty and reward. Blocks and transactions here are symbolic records
// — there is no real cryptography, no verifiable hash or signature, by
// design (see spec §1).
package core

// Witness carries consensus-specific, purely informational production
// evidence: a hashrate share for PoW, a stake share for PoS, a space share
// for PoSpace. It is never verified — it exists for metrics and traces.
type Witness struct {
	Kind  string  `json:"kind"`  // "pow" | "pos" | "pospace"
	Share float64 `json:"share"` // producer's capacity share at production time
}

// Block is an immutable, symbolic block record.
type Block struct {
	Height       int64   `json:"height"`
	ProducerID   int     `json:"producer_id"`
	ParentHeight int64   `json:"parent_height"`
	Timestamp    float64 `json:"timestamp"` // simulated seconds
	TxCount      int     `json:"tx_count"`
	Reward       float64 `json:"reward"`
	Difficulty   float64 `json:"difficulty"`
	Witness      Witness `json:"witness"`

	// TxIDs are the mempool transactions this block included, in the order
	// they were drained. Kept separately from the full Transaction records
	// so a block stays small regardless of tx contents.
	TxIDs []int64 `json:"tx_ids"`
}

// NewBlock assembles a block from already-drained transactions. It does not
// touch the mempool or chain state; callers are responsible for sequencing.
func NewBlock(height int64, producerID int, parentHeight int64, timestamp float64, txs []*Transaction, reward, difficulty float64, witness Witness) *Block {
	ids := make([]int64, len(txs))
	for i, tx := range txs {
		ids[i] = tx.ID
	}
	return &Block{
		Height:       height,
		ProducerID:   producerID,
		ParentHeight: parentHeight,
		Timestamp:    timestamp,
		TxCount:      len(txs),
		Reward:       reward,
		Difficulty:   difficulty,
		Witness:      witness,
		TxIDs:        ids,
	}
}
