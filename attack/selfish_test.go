package attack

import (
	"math/rand"
	"testing"

	"github.com/chainsim/simulator/core"
)

func block(height int64) *core.Block {
	return core.NewBlock(height, 0, height-1, float64(height), nil, 1, 1, core.Witness{})
}

func TestSelfishDeltaZeroAdoptsHonestBlock(t *testing.T) {
	s := NewSelfish(SelfishConfig{Gamma: 0.5})
	b := block(1)
	d := s.OnBlock(BlockContext{Block: b, IsAttacker: false, Rng: rand.New(rand.NewSource(1))})
	if len(d.Commit) != 1 || d.Commit[0] != b {
		t.Fatalf("delta=0: got %+v, want honest block committed outright", d)
	}
	if s.PendingDepth() != 0 {
		t.Errorf("pending depth: got %d want 0", s.PendingDepth())
	}
}

func TestSelfishAttackerBlockWithholds(t *testing.T) {
	s := NewSelfish(SelfishConfig{Gamma: 0.5})
	b := block(1)
	d := s.OnBlock(BlockContext{Block: b, IsAttacker: true})
	if len(d.Commit) != 0 {
		t.Errorf("attacker block should be withheld, got %+v", d)
	}
	if s.PendingDepth() != 1 {
		t.Errorf("pending depth: got %d want 1", s.PendingDepth())
	}
}

func TestSelfishDeltaTwoAlwaysWinsOutright(t *testing.T) {
	s := NewSelfish(SelfishConfig{Gamma: 0.5})
	s.OnBlock(BlockContext{Block: block(1), IsAttacker: true})
	s.OnBlock(BlockContext{Block: block(2), IsAttacker: true})
	if s.PendingDepth() != 2 {
		t.Fatalf("pending depth before race: got %d want 2", s.PendingDepth())
	}

	d := s.OnBlock(BlockContext{Block: block(1), IsAttacker: false, Rng: rand.New(rand.NewSource(1))})
	if len(d.Commit) != 2 {
		t.Fatalf("delta=2: expected both withheld blocks released, got %+v", d)
	}
	if s.PendingDepth() != 0 {
		t.Errorf("pending depth after release: got %d want 0", s.PendingDepth())
	}
}

func TestSelfishDeltaOneRaceOutcomeDependsOnGamma(t *testing.T) {
	// Gamma=1 always resolves the race in the attacker's favor.
	s := NewSelfish(SelfishConfig{Gamma: 1})
	s.OnBlock(BlockContext{Block: block(1), IsAttacker: true})
	d := s.OnBlock(BlockContext{Block: block(1), IsAttacker: false, Rng: rand.New(rand.NewSource(1))})
	if len(d.Commit) != 1 {
		t.Fatalf("gamma=1 race: expected the attacker's single block released, got %+v", d)
	}

	// Gamma effectively 0 (just above 0 so NewSelfish doesn't reset it to the
	// 0.5 default) always resolves the race in honesty's favor.
	s2 := NewSelfish(SelfishConfig{Gamma: 0.0000001})
	s2.OnBlock(BlockContext{Block: block(1), IsAttacker: true})
	honest := block(1)
	d2 := s2.OnBlock(BlockContext{Block: honest, IsAttacker: false, Rng: rand.New(rand.NewSource(1))})
	if len(d2.Commit) != 1 || d2.Commit[0] != honest {
		t.Fatalf("gamma~0 race: expected the honest block committed, got %+v", d2)
	}
}

func TestSelfishDeltaThreeReleasesOneBlockAtATime(t *testing.T) {
	s := NewSelfish(SelfishConfig{Gamma: 0.5})
	for h := int64(1); h <= 3; h++ {
		s.OnBlock(BlockContext{Block: block(h), IsAttacker: true})
	}
	if s.PendingDepth() != 3 {
		t.Fatalf("pending depth: got %d want 3", s.PendingDepth())
	}
	d := s.OnBlock(BlockContext{Block: block(1), IsAttacker: false})
	if len(d.Commit) != 1 {
		t.Fatalf("delta>=3: expected exactly one block released, got %+v", d)
	}
	if s.PendingDepth() != 2 {
		t.Errorf("pending depth after partial release: got %d want 2", s.PendingDepth())
	}
}

func TestSelfishMetricsTracksRaces(t *testing.T) {
	s := NewSelfish(SelfishConfig{Gamma: 1})
	s.OnBlock(BlockContext{Block: block(1), IsAttacker: true})
	s.OnBlock(BlockContext{Block: block(1), IsAttacker: false, Rng: rand.New(rand.NewSource(1))})

	m := s.Metrics()
	if m["races"].(int) != 1 {
		t.Errorf("races: got %v want 1", m["races"])
	}
	if m["race_win_fraction"].(float64) != 1 {
		t.Errorf("race_win_fraction: got %v want 1", m["race_win_fraction"])
	}
}
