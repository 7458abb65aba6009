// Package storage holds the two persistence concerns the simulator needs:
// deterministic checkpoint/resume (this file) and an optional append-only
// block archive (ledger.go) for long runs.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chainsim/simulator/core"
	"github.com/chainsim/simulator/metrics"
	"github.com/chainsim/simulator/wallet"
)

// SchemaVersion is bumped whenever SimulationState's shape changes in a way
// that breaks old checkpoints. A mismatch is fatal (spec §7): this simulator
// refuses to silently drift a resumed run against a checkpoint it cannot be
// sure it understands.
const SchemaVersion = 1

// SimulationState is the structured record spec.md §6 calls the checkpoint
// format: schema version, seed, RNG position, current time, chain summary,
// mempool contents, wallets, per-node last-known-height, metrics
// accumulator, and the attack strategy's metrics. No configuration snapshot
// is stored: ConfigHash is carried in the record but the coordinator leaves
// it empty, and resuming takes its configuration from the caller. The
// scheduler's pending-event queue is
// deliberately not included — per spec §9's design note, deterministic
// events (the next block candidate, the next tx-emit per
// wallet) are re-derived from Chain and Wallets on resume rather than
// serialized verbatim, since Event.Payload is opaque any and not every
// payload shape round-trips through JSON.
type SimulationState struct {
	SchemaVersion int    `json:"schema_version"`
	ConfigHash    string `json:"config_hash"`

	Seed    int64 `json:"seed"`
	RNGDraw int64 `json:"rng_draws"`

	CurrentTime float64 `json:"current_time"`

	Chain   core.ChainSnapshot `json:"chain"`
	Mempool []*core.Transaction `json:"mempool"`
	Wallets []*wallet.Wallet    `json:"wallets"`

	NodeHeights map[int]int64 `json:"node_heights"`

	Metrics metrics.Snapshot `json:"metrics"`

	Attack map[string]any `json:"attack,omitempty"`
}

// SaveCheckpoint serializes state to path atomically: it writes to a
// sibling temp file and renames over the destination, so a crash mid-write
// never leaves a torn checkpoint behind (spec §4.8).
func SaveCheckpoint(path string, state SimulationState) error {
	state.SchemaVersion = SchemaVersion
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: marshal checkpoint: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".checkpoint-*.tmp")
	if err != nil {
		return fmt.Errorf("storage: create checkpoint temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("storage: write checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("storage: close checkpoint: %w", err)
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("storage: chmod checkpoint: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("storage: rename checkpoint into place: %w", err)
	}
	return nil
}

// LoadCheckpoint reads and validates a checkpoint written by SaveCheckpoint.
// A schema version mismatch is reported as an error rather than tolerated
// (spec §7: "checkpoint schema mismatch: fatal; refuse to resume rather
// than silently drift").
func LoadCheckpoint(path string) (SimulationState, error) {
	var state SimulationState
	data, err := os.ReadFile(path)
	if err != nil {
		return state, fmt.Errorf("storage: read checkpoint: %w", err)
	}
	if err := json.Unmarshal(data, &state); err != nil {
		return state, fmt.Errorf("storage: parse checkpoint: %w", err)
	}
	if state.SchemaVersion != SchemaVersion {
		return state, fmt.Errorf("storage: checkpoint schema version %d does not match expected %d: refusing to resume", state.SchemaVersion, SchemaVersion)
	}
	return state, nil
}
