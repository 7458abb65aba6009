package config

import "fmt"

// preset is a named chain's economic/consensus defaults, in the style of
// the corpus's chaincfg-family packages (each network a named function or
// table entry returning its parameter set). Unlike a real chaincfg.Params
// (genesis hash, checkpoints, net magic) this preset only covers what the
// simulator models: consensus type, block time, and issuance schedule.
type preset struct {
	ConsensusType   string
	BlockTime       float64
	InitialReward   float64
	HalvingInterval int64
	MaxHalvings     *int64
}

func ptr(n int64) *int64 { return &n }

// presets is the named chain table (spec §5, "--chain {btc|bch|ltc|doge|
// eth2|chia|custom}"). "custom" is deliberately absent: it means "use the
// explicit mining/economics config as given," not "apply a preset."
var presets = map[string]preset{
	"btc": {
		ConsensusType:   "pow",
		BlockTime:       600,
		InitialReward:   50,
		HalvingInterval: 210000,
	},
	"bch": {
		ConsensusType:   "pow",
		BlockTime:       600,
		InitialReward:   50,
		HalvingInterval: 210000,
	},
	"ltc": {
		ConsensusType:   "pow",
		BlockTime:       150,
		InitialReward:   50,
		HalvingInterval: 840000,
	},
	"doge": {
		ConsensusType:   "pow",
		BlockTime:       60,
		InitialReward:   10000,
		HalvingInterval: 100000,
		MaxHalvings:     ptr(0), // doge's reward has been flat since block 600000
	},
	"eth2": {
		ConsensusType:   "pos",
		BlockTime:       12,
		InitialReward:   0.03,
		HalvingInterval: 0, // no halving schedule under PoS issuance
	},
	"chia": {
		ConsensusType:   "pospace",
		BlockTime:       18.75,
		InitialReward:   2,
		HalvingInterval: 1680000,
	},
}

// ApplyPreset overwrites cfg's consensus type, block time, initial reward,
// halving interval and max halvings with the named preset's values. Whatever
// cfg held in those five fields before, including values read from a config
// file, is replaced; every other field is left as it is. An empty or
// "custom" chain leaves cfg unchanged.
func ApplyPreset(cfg *Config) error {
	if cfg.Chain == "" || cfg.Chain == "custom" {
		return nil
	}
	p, ok := presets[cfg.Chain]
	if !ok {
		return fmt.Errorf("unknown chain preset %q", cfg.Chain)
	}
	cfg.Consensus.Type = p.ConsensusType
	cfg.Mining.BlockTime = p.BlockTime
	cfg.Economics.InitialReward = p.InitialReward
	cfg.Economics.HalvingInterval = p.HalvingInterval
	cfg.Economics.MaxHalvings = p.MaxHalvings
	return nil
}

// PresetNames returns the recognized --chain values, excluding "custom".
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	return names
}
