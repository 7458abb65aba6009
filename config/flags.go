package config

import "flag"

// Flags holds every CLI option spec.md §6 recognizes, bound to a flag.FlagSet
// the same way the teacher's cmd/node/main.go wires flag.StringVar/IntVar
// into local variables. CLI values override config-file values field by
// field (spec §6): Apply only touches a Config field when FlagSet.Visit
// reports the operator actually passed that flag, so an unset flag never
// clobbers a value loaded from --config.
type Flags struct {
	fs *flag.FlagSet
	set map[string]bool

	Chain        string
	Blocks       int64
	Years        float64
	BlockTime    float64
	Miners       int
	Hashrate     float64
	Nodes        int
	Neighbors    int
	BlockSize    int
	Wallets      int
	TxPerWallet  int
	Interval     float64
	Seed         string
	PrintInterval int64
	Debug        bool

	Attack           string
	AttackerHashrate float64
	Confirmations    int
	VictimNodes      int

	ExportMetrics string
	Checkpoint    string
	Resume        string

	ConfigPath string
}

// RegisterFlags registers every recognized flag on fs and returns the
// bound Flags struct. Call fs.Parse, then Flags.Apply(cfg).
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{fs: fs}

	fs.StringVar(&f.ConfigPath, "config", "", "path to a JSON config file")
	fs.StringVar(&f.Chain, "chain", "custom", "chain preset: btc|bch|ltc|doge|eth2|chia|custom")
	fs.Int64Var(&f.Blocks, "blocks", 0, "number of blocks to simulate")
	fs.Float64Var(&f.Years, "years", 0, "simulated years to run")
	fs.Float64Var(&f.BlockTime, "blocktime", 0, "target seconds between blocks")
	fs.IntVar(&f.Miners, "miners", 0, "number of producers")
	fs.Float64Var(&f.Hashrate, "hashrate", 0, "per-producer capacity, applied uniformly across all producers")
	fs.IntVar(&f.Nodes, "nodes", 0, "number of gossip-topology nodes")
	fs.IntVar(&f.Neighbors, "neighbors", 0, "peer fan-out per node")
	fs.IntVar(&f.BlockSize, "blocksize", 0, "max transactions per block")
	fs.IntVar(&f.Wallets, "wallets", 0, "number of transaction-emitting wallets")
	fs.IntVar(&f.TxPerWallet, "transactions-per-wallet", 0, "transaction budget per wallet")
	fs.Float64Var(&f.Interval, "interval", 0, "seconds between a wallet's transaction emissions")
	fs.StringVar(&f.Seed, "seed", "", "RNG seed (numeric or passphrase)")
	fs.Int64Var(&f.PrintInterval, "print-interval", 0, "blocks between summary prints")
	fs.BoolVar(&f.Debug, "debug", false, "enable debug-level trace logging")

	fs.StringVar(&f.Attack, "attack", "", "attack strategy: selfish|double-spend|eclipse")
	fs.Float64Var(&f.AttackerHashrate, "attacker-hashrate", 0, "fraction of capacity controlled by the attacker, 0..1")
	fs.IntVar(&f.Confirmations, "confirmations", 0, "double-spend target confirmation depth")
	fs.IntVar(&f.VictimNodes, "victim-nodes", 0, "number of eclipse-attack victim nodes")

	fs.StringVar(&f.ExportMetrics, "export-metrics", "", "path to write the structured metrics export")
	fs.StringVar(&f.Checkpoint, "checkpoint", "", "path to write periodic checkpoints")
	fs.StringVar(&f.Resume, "resume", "", "path to a checkpoint to resume from")

	return f
}

// Apply overlays only the flags the operator actually passed onto cfg.
func (f *Flags) Apply(cfg *Config) {
	f.set = make(map[string]bool)
	f.fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })

	if f.set["chain"] {
		cfg.Chain = f.Chain
	}
	if f.set["blocks"] {
		cfg.Simulation.Blocks = f.Blocks
	}
	if f.set["years"] {
		cfg.Simulation.Years = f.Years
	}
	if f.set["blocktime"] {
		cfg.Mining.BlockTime = f.BlockTime
	}
	if f.set["miners"] {
		cfg.Mining.Miners = f.Miners
	}
	if f.set["hashrate"] {
		capacities := make([]float64, f.effectiveMiners(cfg))
		for i := range capacities {
			capacities[i] = f.Hashrate
		}
		switch cfg.Consensus.Type {
		case "pos":
			cfg.Mining.Stake = capacities
		case "pospace":
			cfg.Mining.Space = capacities
		default:
			cfg.Mining.Hashrate = capacities
		}
	}
	if f.set["nodes"] {
		cfg.Network.Nodes = f.Nodes
	}
	if f.set["neighbors"] {
		cfg.Network.Neighbors = f.Neighbors
	}
	if f.set["blocksize"] {
		cfg.Mining.BlockSize = f.BlockSize
	}
	if f.set["wallets"] {
		cfg.Transactions.Wallets = f.Wallets
	}
	if f.set["transactions-per-wallet"] {
		cfg.Transactions.TransactionsPerWallet = f.TxPerWallet
	}
	if f.set["interval"] {
		cfg.Transactions.Interval = f.Interval
	}
	if f.set["seed"] {
		cfg.Simulation.Seed = f.Seed
	}
	if f.set["print-interval"] {
		cfg.Simulation.PrintInterval = f.PrintInterval
	}
	if f.set["debug"] {
		cfg.Simulation.Debug = f.Debug
	}

	if f.set["attack"] {
		cfg.Attack.Name = f.Attack
	}
	if cfg.Attack.Options == nil && (f.set["attack"] || f.set["attacker-hashrate"] || f.set["confirmations"] || f.set["victim-nodes"]) {
		cfg.Attack.Options = map[string]any{}
	}
	if f.set["attacker-hashrate"] {
		cfg.Attack.Options["attacker_hashrate"] = f.AttackerHashrate
	}
	if f.set["confirmations"] {
		cfg.Attack.Options["confirmations"] = float64(f.Confirmations)
	}
	if f.set["victim-nodes"] {
		victims := make([]any, f.VictimNodes)
		for i := range victims {
			victims[i] = i
		}
		cfg.Attack.Options["victims"] = victims
	}

	if f.set["export-metrics"] {
		cfg.ExportMetricsPath = f.ExportMetrics
	}
	if f.set["checkpoint"] {
		cfg.CheckpointPath = f.Checkpoint
	}
	if f.set["resume"] {
		cfg.ResumePath = f.Resume
	}
}

func (f *Flags) effectiveMiners(cfg *Config) int {
	if f.set["miners"] {
		return f.Miners
	}
	return cfg.Mining.Miners
}
