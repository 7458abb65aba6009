// Package wallet models the transaction-emitting side of the simulation:
// wallets with a finite transaction budget that schedule their next emission
// at a configured interval, feeding the mempool via TxEmit events.
package wallet

// Wallet tracks how many more transactions a source may emit and when it
// will emit its next one.
type Wallet struct {
	ID           int     `json:"id"`
	RemainingTxs int     `json:"remaining_txs"`
	NextEmitAt   float64 `json:"next_emit_at"`
}

// New creates a wallet with the given transaction budget, scheduled to
// emit its first transaction at firstEmit.
func New(id, budget int, firstEmit float64) *Wallet {
	return &Wallet{ID: id, RemainingTxs: budget, NextEmitAt: firstEmit}
}

// Exhausted reports whether the wallet has no transactions left to emit.
func (w *Wallet) Exhausted() bool {
	return w.RemainingTxs <= 0
}

// Emit consumes one unit of budget and advances NextEmitAt by interval.
// Callers must check Exhausted first; Emit does not clamp.
func (w *Wallet) Emit(interval float64) {
	w.RemainingTxs--
	w.NextEmitAt += interval
}
