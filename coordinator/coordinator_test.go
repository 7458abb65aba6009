package coordinator

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/chainsim/simulator/config"
	"github.com/chainsim/simulator/events"
	"github.com/chainsim/simulator/storage"
)

func smallConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Network.Nodes = 5
	cfg.Network.Neighbors = 2
	cfg.Mining.Miners = 3
	cfg.Mining.Hashrate = []float64{1, 1, 1}
	cfg.Mining.BlockTime = 10
	cfg.Transactions.Wallets = 5
	cfg.Transactions.TransactionsPerWallet = 3
	cfg.Transactions.Interval = 5
	cfg.Simulation.Blocks = 20
	cfg.Simulation.PrintInterval = 5
	cfg.Simulation.Seed = "integration-test"
	return cfg
}

func TestNewAndRunProducesConfiguredBlockCount(t *testing.T) {
	cfg := smallConfig()
	co, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	summary, err := co.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Blocks != cfg.Simulation.Blocks {
		t.Errorf("blocks: got %d want %d", summary.Blocks, cfg.Simulation.Blocks)
	}
	if summary.Chain.Height() != cfg.Simulation.Blocks-1 {
		t.Errorf("chain height: got %d want %d", summary.Chain.Height(), cfg.Simulation.Blocks-1)
	}
	if summary.EventsProcessed <= 0 {
		t.Error("expected a positive number of processed events")
	}
}

func TestRunIsDeterministicForAGivenSeed(t *testing.T) {
	cfg := smallConfig()

	co1, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s1, err := co1.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	co2, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s2, err := co2.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if s1.EndTime != s2.EndTime {
		t.Errorf("end time: got %v and %v, want equal for the same seed", s1.EndTime, s2.EndTime)
	}
	if s1.Chain.TotalIssuance() != s2.Chain.TotalIssuance() {
		t.Errorf("issuance: got %v and %v, want equal for the same seed", s1.Chain.TotalIssuance(), s2.Chain.TotalIssuance())
	}
}

func TestCheckpointSaveAndResumeContinuesRun(t *testing.T) {
	cfg := smallConfig()
	cfg.Simulation.Blocks = 10
	cfg.CheckpointPath = filepath.Join(t.TempDir(), "checkpoint.json")

	co, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := co.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	state, err := storage.LoadCheckpoint(cfg.CheckpointPath)
	if err != nil {
		t.Fatalf("LoadCheckpoint: %v", err)
	}
	checkpointedHeight := state.Chain.Blocks[len(state.Chain.Blocks)-1].Height

	resumeCfg := smallConfig()
	resumeCfg.Simulation.Blocks = 20
	resumed, err := Resume(resumeCfg, state)
	if err != nil {
		t.Fatalf("Resume: %v", err)
	}
	summary, err := resumed.Run()
	if err != nil {
		t.Fatalf("Run after resume: %v", err)
	}
	if summary.Blocks != resumeCfg.Simulation.Blocks {
		t.Errorf("blocks after resume: got %d want %d", summary.Blocks, resumeCfg.Simulation.Blocks)
	}
	if summary.Chain.Height() <= checkpointedHeight {
		t.Error("resumed chain height did not advance past the checkpointed height")
	}
}

// With the unbiased default gamma=0.5, roughly half of all delta==1 races
// resolve in the honest producer's favor — this exercises the case where an
// honest block must be committed alone while the attacker still holds a
// private lead, across many seeds to make the race land both ways.
func TestSelfishAttackRunNeverCrashesOnDeltaOneHonestWin(t *testing.T) {
	for seed := 1; seed <= 30; seed++ {
		cfg := smallConfig()
		cfg.Simulation.Blocks = 300
		cfg.Simulation.Seed = fmt.Sprintf("selfish-%d", seed)
		cfg.Attack.Name = "selfish"
		cfg.Attack.Options = map[string]any{"attacker_hashrate": 0.4, "gamma": 0.5}

		co, err := New(cfg)
		if err != nil {
			t.Fatalf("seed %d: New: %v", seed, err)
		}
		summary, err := co.Run()
		if err != nil {
			t.Fatalf("seed %d: Run: %v", seed, err)
		}
		if summary.Blocks != cfg.Simulation.Blocks {
			t.Errorf("seed %d: blocks: got %d want %d", seed, summary.Blocks, cfg.Simulation.Blocks)
		}
	}
}

func TestEmitterReceivesBlockProducedEvents(t *testing.T) {
	cfg := smallConfig()
	co, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	seen := 0
	co.Emitter().Subscribe(events.TypeBlockProduced, func(ev events.Event) {
		seen++
	})
	if _, err := co.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if int64(seen) != cfg.Simulation.Blocks {
		t.Errorf("block_produced events: got %d want %d", seen, cfg.Simulation.Blocks)
	}
}
