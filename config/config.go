// Package config holds the simulator's configuration schema, JSON
// load/save, validation, and the CLI-flag overlay that lets command-line
// options override file values field-by-field (spec §6).
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// NetworkConfig sizes the gossip topology.
type NetworkConfig struct {
	Nodes     int `json:"nodes"`
	Neighbors int `json:"neighbors"`
}

// ConsensusConfig names the active discipline.
type ConsensusConfig struct {
	Type string `json:"type"` // "pow" | "pos" | "pospace"
}

// MiningConfig parameterises producers and block assembly. Capacity is
// read from whichever of Hashrate/Stake/Space is non-empty for the active
// consensus type; all three share the same "positive float per producer"
// shape (spec §3's Producer.capacity).
type MiningConfig struct {
	Miners           int       `json:"miners"`
	Hashrate         []float64 `json:"hashrate,omitempty"`
	Stake            []float64 `json:"stake,omitempty"`
	Space            []float64 `json:"space,omitempty"`
	BlockTime        float64   `json:"blocktime"`
	BlockSize        int       `json:"blocksize"`
	Difficulty       float64   `json:"difficulty"`
	RetargetInterval int64     `json:"retarget_interval"`
}

// EconomicsConfig parameterises the reward schedule.
type EconomicsConfig struct {
	InitialReward   float64 `json:"initial_reward"`
	HalvingInterval int64   `json:"halving_interval"`
	// MaxHalvings is a pointer so "absent" (unlimited halvings) and
	// "explicitly zero" (constant reward) are distinguishable, fixing the
	// historical bug spec.md §9 calls out where the two collapsed.
	MaxHalvings *int64 `json:"max_halvings"`
}

// TransactionsConfig parameterises wallet/mempool load.
type TransactionsConfig struct {
	Wallets               int     `json:"wallets"`
	TransactionsPerWallet int     `json:"transactions_per_wallet"`
	Interval              float64 `json:"interval"`
}

// SimulationConfig bounds and instruments a run.
type SimulationConfig struct {
	Blocks        int64   `json:"blocks"`
	Years         float64 `json:"years"`
	PrintInterval int64   `json:"print_interval"`
	Debug         bool    `json:"debug"`
	Seed          string  `json:"seed"`
}

// AttackConfig parameterises the optional adversary module. Name is empty
// when no attack is active. Options is a free-form bag decoded by the
// named attack.Strategy constructor (attack.Register).
type AttackConfig struct {
	Name    string         `json:"name,omitempty"`
	Options map[string]any `json:"options,omitempty"`
}

// Config holds the full simulation configuration.
type Config struct {
	Chain        string             `json:"chain"` // "btc" | "bch" | "ltc" | "doge" | "eth2" | "chia" | "custom"
	Network      NetworkConfig      `json:"network"`
	Consensus    ConsensusConfig    `json:"consensus"`
	Mining       MiningConfig       `json:"mining"`
	Economics    EconomicsConfig    `json:"economics"`
	Transactions TransactionsConfig `json:"transactions"`
	Simulation   SimulationConfig   `json:"simulation"`
	Attack       AttackConfig       `json:"attack"`

	ExportMetricsPath string `json:"export_metrics_path,omitempty"`
	CheckpointPath    string `json:"checkpoint_path,omitempty"`
	ResumePath        string `json:"resume_path,omitempty"`
}

// DefaultConfig returns a small single-producer-set PoW development config,
// following the teacher's "DefaultConfig is a runnable zero-arg config"
// convention.
func DefaultConfig() *Config {
	return &Config{
		Chain:     "custom",
		Network:   NetworkConfig{Nodes: 10, Neighbors: 3},
		Consensus: ConsensusConfig{Type: "pow"},
		Mining: MiningConfig{
			Miners:           4,
			Hashrate:         []float64{1, 1, 1, 1},
			BlockTime:        600,
			BlockSize:        2000,
			Difficulty:       1,
			RetargetInterval: 2016,
		},
		Economics: EconomicsConfig{
			InitialReward:   50,
			HalvingInterval: 210000,
		},
		Transactions: TransactionsConfig{
			Wallets:               100,
			TransactionsPerWallet: 10,
			Interval:              60,
		},
		Simulation: SimulationConfig{
			Blocks:        1000,
			PrintInterval: 100,
			Seed:          "1",
		},
	}
}

// Load reads a JSON config file from path, applies a named chain preset
// (spec §5's chain table — skipped fields default from DefaultConfig, set
// fields in the file win, except the preset's own fields, which ApplyPreset
// overwrites), and validates.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	if err := ApplyPreset(cfg); err != nil {
		return nil, fmt.Errorf("config: apply chain preset: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation: %w", err)
	}
	return cfg, nil
}

// Save writes cfg to path as formatted JSON, following the teacher's
// config.Save shape. Unlike storage.SaveCheckpoint this is not written
// atomically: config files are operator-authored and rewritten rarely, not
// torn mid-simulation, so the extra temp-file machinery buys nothing here.
func Save(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// Validate checks every field the CLI/config schema requires (spec §6):
// miners>0, capacity>0, blocktime>0, blocksize>0, nodes>0, neighbors<nodes,
// attacker-hashrate in [0,1], confirmations>=1, victim-nodes<nodes.
func (c *Config) Validate() error {
	if c.Network.Nodes <= 0 {
		return fmt.Errorf("network.nodes must be > 0, got %d", c.Network.Nodes)
	}
	if c.Network.Neighbors < 0 {
		return fmt.Errorf("network.neighbors must be >= 0, got %d", c.Network.Neighbors)
	}
	if c.Network.Neighbors >= c.Network.Nodes {
		return fmt.Errorf("network.neighbors (%d) must be < network.nodes (%d)", c.Network.Neighbors, c.Network.Nodes)
	}

	switch c.Consensus.Type {
	case "pow", "pos", "pospace":
	default:
		return fmt.Errorf("consensus.type must be one of pow, pos, pospace, got %q", c.Consensus.Type)
	}

	if c.Mining.Miners <= 0 {
		return fmt.Errorf("mining.miners must be > 0, got %d", c.Mining.Miners)
	}
	capacities := c.resolveCapacities()
	if len(capacities) != c.Mining.Miners {
		return fmt.Errorf("mining capacity list has %d entries, want %d (mining.miners)", len(capacities), c.Mining.Miners)
	}
	var anyPositive bool
	for i, v := range capacities {
		if v < 0 {
			return fmt.Errorf("mining capacity[%d] must be >= 0, got %v", i, v)
		}
		if v > 0 {
			anyPositive = true
		}
	}
	if !anyPositive {
		return fmt.Errorf("mining capacities are all zero: producer-selection underflow")
	}
	if c.Mining.BlockTime <= 0 {
		return fmt.Errorf("mining.blocktime must be > 0, got %v", c.Mining.BlockTime)
	}
	if c.Mining.BlockSize <= 0 {
		return fmt.Errorf("mining.blocksize must be > 0, got %d", c.Mining.BlockSize)
	}
	if c.Mining.RetargetInterval < 0 {
		return fmt.Errorf("mining.retarget_interval must be >= 0, got %d", c.Mining.RetargetInterval)
	}

	if c.Economics.InitialReward < 0 {
		return fmt.Errorf("economics.initial_reward must be >= 0, got %v", c.Economics.InitialReward)
	}
	if c.Economics.HalvingInterval < 0 {
		return fmt.Errorf("economics.halving_interval must be >= 0, got %d", c.Economics.HalvingInterval)
	}
	if c.Economics.MaxHalvings != nil && *c.Economics.MaxHalvings < 0 {
		return fmt.Errorf("economics.max_halvings must be >= 0 when set, got %d", *c.Economics.MaxHalvings)
	}

	if c.Transactions.Wallets < 0 {
		return fmt.Errorf("transactions.wallets must be >= 0, got %d", c.Transactions.Wallets)
	}
	if c.Transactions.TransactionsPerWallet < 0 {
		return fmt.Errorf("transactions.transactions_per_wallet must be >= 0, got %d", c.Transactions.TransactionsPerWallet)
	}
	if c.Transactions.Interval <= 0 {
		return fmt.Errorf("transactions.interval must be > 0, got %v", c.Transactions.Interval)
	}

	if c.Simulation.Blocks <= 0 && c.Simulation.Years <= 0 {
		return fmt.Errorf("simulation requires blocks > 0 or years > 0")
	}
	if c.Simulation.PrintInterval <= 0 {
		return fmt.Errorf("simulation.print_interval must be > 0, got %d", c.Simulation.PrintInterval)
	}

	switch c.Attack.Name {
	case "", "selfish":
	case "double-spend":
		if k, ok := c.Attack.Options["confirmations"]; ok {
			if n, ok := asFloat(k); !ok || n < 1 {
				return fmt.Errorf("attack.options.confirmations must be >= 1, got %v", k)
			}
		}
	case "eclipse":
		victims, _ := c.Attack.Options["victims"].([]any)
		if len(victims) >= c.Network.Nodes {
			return fmt.Errorf("attack.options.victims (%d) must be < network.nodes (%d)", len(victims), c.Network.Nodes)
		}
	default:
		return fmt.Errorf("attack.name must be one of selfish, double-spend, eclipse, or empty, got %q", c.Attack.Name)
	}
	if h, ok := c.Attack.Options["attacker_hashrate"]; ok {
		if n, ok := asFloat(h); !ok || n < 0 || n > 1 {
			return fmt.Errorf("attack.options.attacker_hashrate must be in [0,1], got %v", h)
		}
	}

	return nil
}

// ResolveCapacities returns the per-producer capacity list for whichever of
// Hashrate/Stake/Space the active consensus type uses, for building the
// coordinator's core.Producer set.
func (c *Config) ResolveCapacities() []float64 {
	return c.resolveCapacities()
}

// resolveCapacities returns the per-producer capacity list for whichever of
// Hashrate/Stake/Space the active consensus type uses.
func (c *Config) resolveCapacities() []float64 {
	switch c.Consensus.Type {
	case "pos":
		return c.Mining.Stake
	case "pospace":
		return c.Mining.Space
	default:
		return c.Mining.Hashrate
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}
