package attack

import (
	"math/rand"
	"testing"

	"github.com/chainsim/simulator/network"
	"github.com/chainsim/simulator/scheduler"
)

func TestEclipseApplyIsolatesVictims(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	topo := network.Build(10, 3, func(n int) []int { return r.Perm(n) })

	e := NewEclipse(EclipseConfig{Victims: []int{0, 1}, AttackerPeers: []int{5}})
	e.Apply(topo)

	if !topo.Nodes[0].Eclipsed || !topo.Nodes[1].Eclipsed {
		t.Fatal("expected victims 0 and 1 to be eclipsed")
	}
	if topo.Nodes[2].Eclipsed {
		t.Error("node 2 was not a configured victim and should not be eclipsed")
	}
}

func TestEclipseOnBlockNeverWithholds(t *testing.T) {
	e := NewEclipse(EclipseConfig{})
	b := block(1)
	d := e.OnBlock(BlockContext{Block: b})
	if len(d.Commit) != 1 || d.Commit[0] != b {
		t.Errorf("eclipse must never alter block commitment, got %+v", d)
	}
	if e.PendingDepth() != 0 {
		t.Errorf("pending depth: got %d want 0", e.PendingDepth())
	}
}

func TestEclipseVictimNeverReceivesHonestBFSDelivery(t *testing.T) {
	r := rand.New(rand.NewSource(4))
	topo := network.Build(10, 3, func(n int) []int { return r.Perm(n) })

	e := NewEclipse(EclipseConfig{Victims: []int{0}})
	e.Apply(topo)

	sched := scheduler.New()
	origin := 1 // any honest node other than the victim
	network.Produce(topo, sched, origin, 1, 0)
	for sched.Len() > 0 {
		ev, _ := sched.Pop()
		arr := ev.Payload.(network.Arrival)
		network.Deliver(topo, sched, arr.To, arr.Height, sched.CurrentTime(), arr.Hops)
	}

	reached, total := network.Reached(topo, 1)
	if reached != total-1 {
		t.Errorf("reached %d/%d nodes, want all but the eclipsed victim", reached, total)
	}
	if topo.Nodes[0].LastKnownHeight != -1 {
		t.Errorf("eclipsed victim's LastKnownHeight: got %d want -1 (never reached)", topo.Nodes[0].LastKnownHeight)
	}
}

func TestEclipseMetricsReportsVictims(t *testing.T) {
	e := NewEclipse(EclipseConfig{Victims: []int{0}})
	m := e.Metrics()
	if m["attack"] != "eclipse" {
		t.Errorf("attack: got %v want eclipse", m["attack"])
	}
	victims := m["victims"].([]int)
	if len(victims) != 1 || victims[0] != 0 {
		t.Errorf("victims: got %v want [0]", victims)
	}
}
