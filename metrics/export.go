package metrics

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/chainsim/simulator/core"
)

// ExportRecord is the structured metrics export format of spec §6: run
// metadata, aggregate totals, per-producer shares, attack-specific
// statistics (nil when no attack was active), and the full difficulty
// retarget history.
type ExportRecord struct {
	Seed              int64              `json:"seed"`
	Chain             string             `json:"chain"`
	DurationSimTime   float64            `json:"duration_sim_time"`
	Blocks            int64              `json:"blocks"`
	Transactions      int64              `json:"transactions"`
	CoinsIssued       float64            `json:"coins_issued"`
	MeanBlockTime     float64            `json:"mean_block_time"`
	MeanPropHops      float64            `json:"mean_propagation_hops"`
	PropagationLoss   int64              `json:"propagation_loss"`
	ProducerShares    map[int]float64    `json:"producer_shares"`
	Attack            map[string]any     `json:"attack,omitempty"`
	DifficultyHistory []core.RetargetPoint `json:"difficulty_history"`
}

// Build assembles an ExportRecord from the accumulator and chain state.
func (a *Accumulator) Build(seed int64, chainName string, duration float64, chain *core.ChainState, attack map[string]any) ExportRecord {
	return ExportRecord{
		Seed:              seed,
		Chain:             chainName,
		DurationSimTime:   duration,
		Blocks:            a.Blocks(),
		Transactions:      a.TxIncluded(),
		CoinsIssued:       chain.TotalIssuance(),
		MeanBlockTime:     a.MeanBlockTime(),
		MeanPropHops:      a.MeanPropagationHops(),
		PropagationLoss:   a.PropagationLoss(),
		ProducerShares:    a.ProducerShares(),
		Attack:            attack,
		DifficultyHistory: chain.History(),
	}
}

// WriteFile writes r as formatted JSON to path.
func WriteFile(path string, r ExportRecord) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metrics: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}
