// Command chainsim runs a discrete-event simulation of a blockchain
// network's block production, propagation, and transaction flow.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/chainsim/simulator/config"
	"github.com/chainsim/simulator/coordinator"
	"github.com/chainsim/simulator/events"
	"github.com/chainsim/simulator/metrics"
	"github.com/chainsim/simulator/simrand"
	"github.com/chainsim/simulator/storage"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code: 0 on success, 1 on a configuration
// error, 2 on a runtime error (spec §7).
func run() int {
	fs := flag.NewFlagSet("chainsim", flag.ContinueOnError)
	flags := config.RegisterFlags(fs)
	if err := fs.Parse(os.Args[1:]); err != nil {
		return 1
	}

	cfg, err := loadConfig(flags.ConfigPath)
	if err != nil {
		log.Printf("config: %v", err)
		return 1
	}
	// A --chain preset is applied before the other flags, so an explicit
	// flag such as --blocktime still overrides the preset's value.
	if flags.Chain != "custom" {
		cfg.Chain = flags.Chain
		if err := config.ApplyPreset(cfg); err != nil {
			log.Printf("config: %v", err)
			return 1
		}
	}
	flags.Apply(cfg)
	if err := cfg.Validate(); err != nil {
		log.Printf("config: %v", err)
		return 1
	}

	var co *coordinator.Coordinator
	if cfg.ResumePath != "" {
		state, err := storage.LoadCheckpoint(cfg.ResumePath)
		if err != nil {
			log.Printf("resume: %v", err)
			return 1
		}
		co, err = coordinator.Resume(cfg, state)
		if err != nil {
			log.Printf("resume: %v", err)
			return 2
		}
		log.Printf("[chainsim] resumed from %s at t=%.1f", cfg.ResumePath, state.CurrentTime)
	} else {
		co, err = coordinator.New(cfg)
		if err != nil {
			log.Printf("setup: %v", err)
			return 2
		}
	}

	subscribeConsole(co.Emitter(), cfg)

	summary, err := co.Run()
	if err != nil {
		log.Printf("run: %v", err)
		return 2
	}

	fmt.Printf("blocks=%d events=%d sim_time=%.1f mean_block_time=%.3f mean_prop_hops=%.2f prop_loss=%d tx_included=%d issuance=%.4f\n",
		summary.Blocks, summary.EventsProcessed, summary.EndTime,
		summary.Metrics.MeanBlockTime(), summary.Metrics.MeanPropagationHops(),
		summary.Metrics.PropagationLoss(), summary.Metrics.TxIncluded(),
		summary.Chain.TotalIssuance())

	if cfg.ExportMetricsPath != "" {
		seed := simrand.DeriveSeed(cfg.Simulation.Seed)
		record := summary.Metrics.Build(seed, cfg.Chain, summary.EndTime, summary.Chain, summary.AttackMetrics)
		if err := metrics.WriteFile(cfg.ExportMetricsPath, record); err != nil {
			log.Printf("export-metrics: %v", err)
			return 2
		}
	}
	return 0
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.DefaultConfig(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Printf("config file not found at %s, using defaults", path)
			return config.DefaultConfig(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// subscribeConsole wires milestone console logging; it only prints when
// debug tracing is off, since the coordinator's own tracer already covers
// every block in debug mode.
func subscribeConsole(e *events.Emitter, cfg *config.Config) {
	if cfg.Simulation.Debug {
		return
	}
	e.Subscribe(events.TypeHalving, func(ev events.Event) {
		log.Printf("[chainsim] halving at height %d, reward now %.6f", ev.Height, ev.Data["reward"])
	})
	e.Subscribe(events.TypeAttackStep, func(ev events.Event) {
		log.Printf("[chainsim] attack step at height %d: %v", ev.Height, ev.Data["action"])
	})
}
