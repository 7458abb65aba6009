package core

// Mempool is an insertion-ordered, FIFO queue of pending transactions.
// It is owned exclusively by the coordinator (spec §5); consensus and
// attack code only ever see transactions once they're drained into a block.
type Mempool struct {
	txs   map[int64]*Transaction
	order []int64 // FIFO order; head is order[0]
	head  int     // index of the first live entry in order, avoids O(n) shift
}

// NewMempool returns an empty mempool.
func NewMempool() *Mempool {
	return &Mempool{txs: make(map[int64]*Transaction)}
}

// Enqueue adds tx to the tail of the queue. O(1) amortized.
func (m *Mempool) Enqueue(tx *Transaction) {
	m.txs[tx.ID] = tx
	m.order = append(m.order, tx.ID)
}

// Drain removes up to n transactions from the head of the queue and
// returns them in FIFO order. Returns an empty (non-nil) slice if the
// mempool has nothing pending — block production with zero transactions
// is a normal, non-fatal outcome (spec §7).
func (m *Mempool) Drain(n int) []*Transaction {
	out := make([]*Transaction, 0, n)
	for len(out) < n && m.head < len(m.order) {
		id := m.order[m.head]
		m.head++
		tx, ok := m.txs[id]
		if !ok {
			continue // already removed out of band; skip
		}
		delete(m.txs, id)
		out = append(out, tx)
	}
	m.compact()
	return out
}

// compact drops the consumed prefix of order once it grows large relative
// to the live queue, bounding memory for long runs.
func (m *Mempool) compact() {
	if m.head > 0 && m.head*2 > len(m.order) {
		m.order = append([]int64(nil), m.order[m.head:]...)
		m.head = 0
	}
}

// Size reports the number of pending transactions.
func (m *Mempool) Size() int {
	return len(m.txs)
}

// Pending returns a snapshot of pending transactions in FIFO order, without
// removing them. Used for checkpointing.
func (m *Mempool) Pending() []*Transaction {
	out := make([]*Transaction, 0, len(m.txs))
	for _, id := range m.order[m.head:] {
		if tx, ok := m.txs[id]; ok {
			out = append(out, tx)
		}
	}
	return out
}

// Restore replaces the mempool contents with txs, in the order given.
// Used when resuming from a checkpoint.
func (m *Mempool) Restore(txs []*Transaction) {
	m.txs = make(map[int64]*Transaction, len(txs))
	m.order = make([]int64, 0, len(txs))
	m.head = 0
	for _, tx := range txs {
		m.Enqueue(tx)
	}
}
