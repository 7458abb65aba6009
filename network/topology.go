// Package network models the peer topology blocks propagate across and the
// breadth-first propagation algorithm itself. There is no real networking
// here — no bytes, no sockets, no wall-clock waits — only a static
// adjacency graph and arrival bookkeeping (spec §4.3).
package network

import "sort"

// Node is a participant in the gossip topology.
type Node struct {
	ID               int
	Adjacency        []int // peer node IDs, symmetrized at construction
	LastKnownHeight  int64
	Eclipsed         bool
	ForcedPeers      []int // non-nil only for eclipse victims; replaces Adjacency in BFS
}

// peers returns the adjacency BFS should actually use: ForcedPeers when the
// node is eclipsed, its normal Adjacency otherwise.
func (n *Node) peers() []int {
	if n.Eclipsed {
		return n.ForcedPeers
	}
	return n.Adjacency
}

// Topology is the static graph of Nodes plus the per-edge delay model.
type Topology struct {
	Nodes []*Node
	// EdgeDelay, when non-nil, returns the one-time delay assigned to the
	// edge between a and b (symmetric). A nil EdgeDelay means the legacy
	// default: instantaneous delivery (spec §9's restored-but-still-
	// optional propagation_delay hook).
	EdgeDelay func(a, b int) float64
}

// Build constructs an undirected graph of n nodes, each connected to
// approximately k distinct peers chosen uniformly without replacement, then
// symmetrized, with any resulting isolated node patched up by connecting it
// to its nearest-by-id neighbors (spec §4.3).
func Build(n, k int, pick func(n int) []int) *Topology {
	nodes := make([]*Node, n)
	for i := range nodes {
		nodes[i] = &Node{ID: i, LastKnownHeight: -1}
	}
	adjSet := make([]map[int]bool, n)
	for i := range adjSet {
		adjSet[i] = make(map[int]bool, k*2)
	}

	for i := 0; i < n; i++ {
		for _, peer := range pick(n) {
			if peer == i || adjSet[i][peer] {
				continue
			}
			adjSet[i][peer] = true
			adjSet[peer][i] = true
			if len(adjSet[i]) >= k {
				break
			}
		}
	}

	// Patch isolated nodes by connecting to nearest-by-id neighbors.
	for i := 0; i < n; i++ {
		if len(adjSet[i]) > 0 {
			continue
		}
		for d := 1; d < n && len(adjSet[i]) == 0; d++ {
			for _, j := range []int{i - d, i + d} {
				if j < 0 || j >= n || j == i {
					continue
				}
				adjSet[i][j] = true
				adjSet[j][i] = true
				break
			}
		}
	}

	for i, set := range adjSet {
		peers := make([]int, 0, len(set))
		for p := range set {
			peers = append(peers, p)
		}
		sort.Ints(peers)
		nodes[i].Adjacency = peers
	}

	return &Topology{Nodes: nodes}
}

// Eclipse replaces victim's adjacency with the given attacker-controlled
// peer set for the duration it stays in effect (spec §4.7). It also strips
// victim's ID from every honest neighbor's own Adjacency, so the honest
// graph's BFS genuinely skips the victim rather than just having the victim
// skip it one-sidedly — an honest neighbor that still listed the victim as
// a peer would otherwise keep delivering blocks to it directly. Call
// Restore to reverse it when a configured window expires.
func (t *Topology) Eclipse(victim int, attackerPeers []int) {
	n := t.Nodes[victim]
	n.Eclipsed = true
	n.ForcedPeers = attackerPeers
	for _, peerID := range n.Adjacency {
		peer := t.Nodes[peerID]
		peer.Adjacency = removeSorted(peer.Adjacency, victim)
	}
}

// Restore reverts a node to its honest adjacency, re-adding its ID back
// into every honest neighbor's Adjacency that Eclipse had stripped it from.
func (t *Topology) Restore(victim int) {
	n := t.Nodes[victim]
	n.Eclipsed = false
	n.ForcedPeers = nil
	for _, peerID := range n.Adjacency {
		peer := t.Nodes[peerID]
		peer.Adjacency = insertSorted(peer.Adjacency, victim)
	}
}

// removeSorted returns a sorted int slice with v removed, without mutating s.
func removeSorted(s []int, v int) []int {
	out := make([]int, 0, len(s))
	for _, x := range s {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}

// insertSorted returns a sorted int slice with v inserted (a no-op if
// already present), without mutating s.
func insertSorted(s []int, v int) []int {
	i := sort.SearchInts(s, v)
	if i < len(s) && s[i] == v {
		return s
	}
	out := make([]int, len(s)+1)
	copy(out, s[:i])
	out[i] = v
	copy(out[i+1:], s[i:])
	return out
}
