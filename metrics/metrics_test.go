package metrics

import (
	"testing"

	"github.com/chainsim/simulator/core"
)

func TestRecordBlockTallies(t *testing.T) {
	a := NewAccumulator()
	a.RecordBlock(core.NewBlock(0, 1, -1, 0, nil, 10, 1, core.Witness{}))
	a.RecordBlock(core.NewBlock(1, 1, 0, 10, []*core.Transaction{core.NewTransaction(1, 0, 10)}, 10, 1, core.Witness{}))

	if a.Blocks() != 2 {
		t.Errorf("blocks: got %d want 2", a.Blocks())
	}
	if a.TxIncluded() != 1 {
		t.Errorf("tx included: got %d want 1", a.TxIncluded())
	}
	if got := a.MeanBlockTime(); got != 10 {
		t.Errorf("mean block time: got %v want 10", got)
	}
}

func TestMeanBlockTimeZeroForSingleBlock(t *testing.T) {
	a := NewAccumulator()
	a.RecordBlock(core.NewBlock(0, 0, -1, 0, nil, 1, 1, core.Witness{}))
	if got := a.MeanBlockTime(); got != 0 {
		t.Errorf("got %v want 0", got)
	}
}

func TestProducerShares(t *testing.T) {
	a := NewAccumulator()
	a.RecordBlock(core.NewBlock(0, 0, -1, 0, nil, 1, 1, core.Witness{}))
	a.RecordBlock(core.NewBlock(1, 0, 0, 1, nil, 1, 1, core.Witness{}))
	a.RecordBlock(core.NewBlock(2, 1, 1, 2, nil, 1, 1, core.Witness{}))

	shares := a.ProducerShares()
	if shares[0] != 2.0/3 {
		t.Errorf("producer 0 share: got %v want 0.666...", shares[0])
	}
	if shares[1] != 1.0/3 {
		t.Errorf("producer 1 share: got %v want 0.333...", shares[1])
	}
}

func TestRecordPropagationLoss(t *testing.T) {
	a := NewAccumulator()
	a.RecordPropagation(8, 10, 20)
	if a.PropagationLoss() != 2 {
		t.Errorf("loss: got %d want 2", a.PropagationLoss())
	}
	if got := a.MeanPropagationHops(); got != 20 {
		t.Errorf("mean hops: got %v want 20", got)
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	a := NewAccumulator()
	a.RecordBlock(core.NewBlock(0, 3, -1, 0, nil, 1, 1, core.Witness{}))
	a.RecordBlock(core.NewBlock(1, 3, 0, 5, nil, 1, 1, core.Witness{}))
	a.RecordPropagation(9, 10, 15)

	snap := a.Snapshot()
	restored := NewAccumulator()
	restored.Restore(snap)

	if restored.Blocks() != a.Blocks() {
		t.Errorf("blocks: got %d want %d", restored.Blocks(), a.Blocks())
	}
	if restored.PropagationLoss() != a.PropagationLoss() {
		t.Errorf("loss: got %d want %d", restored.PropagationLoss(), a.PropagationLoss())
	}
	if restored.MeanBlockTime() != a.MeanBlockTime() {
		t.Errorf("mean block time: got %v want %v", restored.MeanBlockTime(), a.MeanBlockTime())
	}
	shares := restored.ProducerShares()
	if shares[3] != 1 {
		t.Errorf("producer shares after restore: got %v", shares)
	}
}
