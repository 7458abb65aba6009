package attack

import "github.com/chainsim/simulator/core"

func init() {
	Register("double-spend", func(cfg map[string]any) (Strategy, error) {
		return NewDoubleSpend(DoubleSpendConfig{
			Confirmations: intOpt(cfg, "confirmations", 6),
			ArmTime:       floatOpt(cfg, "arm_time", 0),
		}), nil
	})
}

// DoubleSpendConfig parameterises the Nakamoto 51% double-spend race.
type DoubleSpendConfig struct {
	Confirmations int     // target confirmation depth k
	ArmTime       float64 // simulated time the attacker arms the race
}

// DoubleSpend models the classic 51%-hashrate race (spec §4.7): at arm
// time the attacker records the target transaction at the current chain
// height and starts mining a private fork from that same parent. The
// chain is never actually altered here — every block still commits
// normally — the race is evaluated analytically against the otherwise
// unmodified honest chain, which is equivalent for a symbolic simulator
// with no real transaction semantics to roll back.
type DoubleSpend struct {
	cfg DoubleSpendConfig

	armed      bool
	armHeight  int64
	privateLen int
	honestLen  int
	resolved   bool

	attempts  int
	successes int
	depthSum  int
}

// NewDoubleSpend creates a DoubleSpend strategy. Call Arm once the
// configured arm time elapses.
func NewDoubleSpend(cfg DoubleSpendConfig) *DoubleSpend {
	if cfg.Confirmations <= 0 {
		cfg.Confirmations = 1
	}
	return &DoubleSpend{cfg: cfg}
}

// Arm starts the race at the given chain height (the target transaction's
// parent block).
func (d *DoubleSpend) Arm(atHeight int64) {
	d.armed = true
	d.resolved = false
	d.armHeight = atHeight
	d.privateLen = 0
	d.honestLen = 0
	d.attempts++
}

func (d *DoubleSpend) PendingDepth() int { return 0 }

// OnBlock tracks the private fork's length against the honest chain's own
// extension — the two branches race independently from armHeight, so only
// honest-producer blocks count toward honestLen and only attacker-producer
// blocks count toward privateLen (spec §4.7). The attacker wins once its
// fork is both past the confirmation depth and strictly longer than the
// honest fork; the honest side wins once it reaches the confirmation depth
// without having been overtaken.
func (d *DoubleSpend) OnBlock(ctx BlockContext) Decision {
	commit := Decision{Commit: []*core.Block{ctx.Block}}
	if !d.armed || d.resolved {
		return commit
	}

	if ctx.IsAttacker {
		d.privateLen++
	} else {
		d.honestLen++
	}

	k := int64(d.cfg.Confirmations)
	switch {
	case int64(d.privateLen) >= k+1 && d.privateLen > d.honestLen:
		d.resolved = true
		d.successes++
		d.depthSum += d.privateLen
	case int64(d.honestLen) >= k && d.privateLen <= d.honestLen:
		d.resolved = true
		d.depthSum += d.privateLen
	}
	return commit
}

func (d *DoubleSpend) Metrics() map[string]any {
	var meanDepth float64
	if d.attempts > 0 {
		meanDepth = float64(d.depthSum) / float64(d.attempts)
	}
	var successRate float64
	if d.attempts > 0 {
		successRate = float64(d.successes) / float64(d.attempts)
	}
	return map[string]any{
		"attack":         "double-spend",
		"confirmations":  d.cfg.Confirmations,
		"attempts":       d.attempts,
		"successes":      d.successes,
		"success_rate":   successRate,
		"mean_end_depth": meanDepth,
	}
}
