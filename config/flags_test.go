package config

import (
	"flag"
	"testing"
)

func TestApplyOnlyOverridesExplicitlySetFlags(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	flags := RegisterFlags(fs)
	if err := fs.Parse([]string{"-blocks", "500"}); err != nil {
		t.Fatalf("parse: %v", err)
	}

	cfg := DefaultConfig()
	cfg.Mining.BlockTime = 123 // a value Load would have set from a config file
	flags.Apply(cfg)

	if cfg.Simulation.Blocks != 500 {
		t.Errorf("blocks: got %d want 500", cfg.Simulation.Blocks)
	}
	if cfg.Mining.BlockTime != 123 {
		t.Errorf("blocktime should be untouched since -blocktime was not passed, got %v", cfg.Mining.BlockTime)
	}
}

func TestApplyHashrateFillsUniformCapacity(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	flags := RegisterFlags(fs)
	if err := fs.Parse([]string{"-miners", "3", "-hashrate", "2.5"}); err != nil {
		t.Fatalf("parse: %v", err)
	}

	cfg := DefaultConfig()
	flags.Apply(cfg)

	if cfg.Mining.Miners != 3 {
		t.Errorf("miners: got %d want 3", cfg.Mining.Miners)
	}
	if len(cfg.Mining.Hashrate) != 3 {
		t.Fatalf("hashrate length: got %d want 3", len(cfg.Mining.Hashrate))
	}
	for i, v := range cfg.Mining.Hashrate {
		if v != 2.5 {
			t.Errorf("hashrate[%d]: got %v want 2.5", i, v)
		}
	}
}

func TestApplyAttackSetsOptionsMap(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	flags := RegisterFlags(fs)
	if err := fs.Parse([]string{"-attack", "selfish", "-attacker-hashrate", "0.4"}); err != nil {
		t.Fatalf("parse: %v", err)
	}

	cfg := DefaultConfig()
	flags.Apply(cfg)

	if cfg.Attack.Name != "selfish" {
		t.Errorf("attack name: got %q want selfish", cfg.Attack.Name)
	}
	if cfg.Attack.Options["attacker_hashrate"] != 0.4 {
		t.Errorf("attacker_hashrate: got %v want 0.4", cfg.Attack.Options["attacker_hashrate"])
	}
}

func TestApplyVictimNodesBuildsIndexList(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	flags := RegisterFlags(fs)
	if err := fs.Parse([]string{"-victim-nodes", "3"}); err != nil {
		t.Fatalf("parse: %v", err)
	}

	cfg := DefaultConfig()
	flags.Apply(cfg)

	victims, ok := cfg.Attack.Options["victims"].([]any)
	if !ok || len(victims) != 3 {
		t.Fatalf("victims: got %v", cfg.Attack.Options["victims"])
	}
	for i, v := range victims {
		if v.(int) != i {
			t.Errorf("victims[%d]: got %v want %d", i, v, i)
		}
	}
}

func TestApplyNoFlagsLeavesConfigUntouched(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	flags := RegisterFlags(fs)
	if err := fs.Parse(nil); err != nil {
		t.Fatalf("parse: %v", err)
	}

	cfg := DefaultConfig()
	before := *cfg
	flags.Apply(cfg)
	if cfg.Simulation.Blocks != before.Simulation.Blocks {
		t.Error("no flags passed should leave config untouched")
	}
}
