package network

import "github.com/chainsim/simulator/scheduler"

// Arrival is the PropagationArrival event payload: a block at Height
// reaching node To, having traveled Hops edges from the original producer.
type Arrival struct {
	To     int
	Height int64
	Hops   int
}

// Produce begins propagation of a newly produced block from its producer's
// node at simulated time now. It is equivalent to delivering hop 0 of the
// BFS directly at the origin, then letting Deliver fan out from there.
func Produce(t *Topology, sched *scheduler.Scheduler, origin int, height int64, now float64) {
	Deliver(t, sched, origin, height, now, 0)
}

// Deliver applies a block arrival at node `to`. If the arrival advances that
// node's tip (first-to-arrive wins, per spec's longest-chain / earliest-
// arrival tie-break), it updates LastKnownHeight and schedules
// PropagationArrival events for the node's un-notified peers one hop out.
// Returns true if the arrival advanced the node's tip (used by the
// coordinator to count accepted hops for the propagation metrics; the BFS
// fan-out itself is scheduled here).
func Deliver(t *Topology, sched *scheduler.Scheduler, to int, height int64, now float64, hops int) bool {
	node := t.Nodes[to]
	if height <= node.LastKnownHeight {
		return false
	}
	node.LastKnownHeight = height

	for _, peer := range node.peers() {
		if t.Nodes[peer].LastKnownHeight >= height {
			continue // already knows at least as much; improve efficiency by not relaying
		}
		delay := 0.0
		if t.EdgeDelay != nil {
			delay = t.EdgeDelay(to, peer)
		}
		sched.Schedule(scheduler.PropagationArrival, now+delay, Arrival{
			To:     peer,
			Height: height,
			Hops:   hops + 1,
		})
	}
	return true
}

// Reached reports how many of the topology's nodes have seen at least
// height, and the total node count — used for propagation-loss metrics.
func Reached(t *Topology, height int64) (reached, total int) {
	total = len(t.Nodes)
	for _, n := range t.Nodes {
		if n.LastKnownHeight >= height {
			reached++
		}
	}
	return reached, total
}
