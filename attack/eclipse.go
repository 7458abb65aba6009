package attack

import (
	"strconv"

	"github.com/chainsim/simulator/core"
	"github.com/chainsim/simulator/network"
)

func init() {
	Register("eclipse", func(cfg map[string]any) (Strategy, error) {
		return NewEclipse(EclipseConfig{
			Victims:       intsOpt(cfg, "victims"),
			AttackerPeers: intsOpt(cfg, "attacker_peers"),
		}), nil
	})
}

// EclipseConfig parameterises the Heilman-et-al. isolation attack.
type EclipseConfig struct {
	Victims       []int // node IDs whose adjacency is replaced
	AttackerPeers []int // attacker-controlled peer IDs victims are wired to; empty = fully isolated
}

// Eclipse replaces victim nodes' adjacency so the honest propagation BFS
// never reaches them (spec §4.7). It never changes which blocks commit —
// its whole effect is topology, applied once via Apply.
type Eclipse struct {
	cfg      EclipseConfig
	topology *network.Topology
}

// NewEclipse creates an Eclipse strategy.
func NewEclipse(cfg EclipseConfig) *Eclipse {
	return &Eclipse{cfg: cfg}
}

// Apply isolates the configured victims within t. Call once during setup,
// before the simulation starts producing blocks.
func (e *Eclipse) Apply(t *network.Topology) {
	e.topology = t
	for _, v := range e.cfg.Victims {
		if v < 0 || v >= len(t.Nodes) {
			continue
		}
		t.Eclipse(v, e.cfg.AttackerPeers)
	}
}

func (e *Eclipse) PendingDepth() int { return 0 }

func (e *Eclipse) OnBlock(ctx BlockContext) Decision {
	return Decision{Commit: []*core.Block{ctx.Block}}
}

func (e *Eclipse) Metrics() map[string]any {
	perVictim := make(map[string]any, len(e.cfg.Victims))
	if e.topology != nil {
		var chainHeight int64 = -1
		for _, n := range e.topology.Nodes {
			if n.LastKnownHeight > chainHeight {
				chainHeight = n.LastKnownHeight
			}
		}
		for _, v := range e.cfg.Victims {
			if v < 0 || v >= len(e.topology.Nodes) {
				continue
			}
			seen := e.topology.Nodes[v].LastKnownHeight + 1 // heights are 0-indexed
			if seen < 0 {
				seen = 0
			}
			var frac float64
			if chainHeight >= 0 {
				frac = float64(seen) / float64(chainHeight+1)
			}
			perVictim[strconv.Itoa(v)] = frac
		}
	}
	return map[string]any{
		"attack":             "eclipse",
		"victims":            e.cfg.Victims,
		"honest_blocks_seen": perVictim,
	}
}
