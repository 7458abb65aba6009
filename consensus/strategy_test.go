package consensus

import (
	"math/rand"
	"testing"

	"github.com/chainsim/simulator/core"
)

func TestNewSelectsDiscipline(t *testing.T) {
	cases := []struct {
		typ  Type
		kind string
	}{
		{PoW, "pow"},
		{PoS, "pos"},
		{PoSpace, "pospace"},
		{"", "pow"}, // unrecognized type defaults to pow
	}
	for _, c := range cases {
		s := New(Config{Type: c.typ, BlockTime: 10})
		if s.Kind() != c.kind {
			t.Errorf("New(Type=%q).Kind(): got %q want %q", c.typ, s.Kind(), c.kind)
		}
	}
}

func TestPoWUnderflowOnZeroCapacity(t *testing.T) {
	s := New(Config{Type: PoW})
	r := rand.New(rand.NewSource(1))
	producers := []core.Producer{{ID: 0, Capacity: 0}, {ID: 1, Capacity: 0}}
	id, _ := s.NextBlock(r, producers, 1)
	if id != -1 {
		t.Errorf("expected producer-selection underflow (-1), got %d", id)
	}
}

func TestPoWProducerSelectionWeighted(t *testing.T) {
	s := New(Config{Type: PoW})
	r := rand.New(rand.NewSource(1))
	producers := []core.Producer{{ID: 0, Capacity: 1}, {ID: 1, Capacity: 99}}

	counts := map[int]int{}
	for i := 0; i < 2000; i++ {
		id, delay := s.NextBlock(r, producers, 1)
		if id < 0 {
			t.Fatalf("unexpected underflow at iteration %d", i)
		}
		if delay < 0 {
			t.Errorf("delay must be non-negative, got %v", delay)
		}
		counts[id]++
	}
	if counts[1] <= counts[0] {
		t.Errorf("producer 1 (99%% capacity) should win far more often: counts=%v", counts)
	}
}

func TestPoSFixedDelayWithoutJitter(t *testing.T) {
	s := New(Config{Type: PoS, BlockTime: 12})
	r := rand.New(rand.NewSource(1))
	producers := []core.Producer{{ID: 0, Capacity: 1}}
	_, delay := s.NextBlock(r, producers, 0)
	if delay != 12 {
		t.Errorf("got delay %v want 12", delay)
	}
}
