package storage

import (
	"path/filepath"
	"testing"

	"github.com/chainsim/simulator/core"
)

func openTestLedger(t *testing.T) *LevelLedger {
	t.Helper()
	db, err := NewLevelDB(filepath.Join(t.TempDir(), "chain"))
	if err != nil {
		t.Fatalf("NewLevelDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewLevelLedger(db)
}

func TestLevelLedgerAppendAndGet(t *testing.T) {
	ledger := openTestLedger(t)
	b := core.NewBlock(7, 2, 6, 123.5, nil, 50, 1.5, core.Witness{Kind: "pow", Share: 0.1})

	if err := ledger.Append(b); err != nil {
		t.Fatalf("Append: %v", err)
	}
	got, err := ledger.Get(7)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Height != b.Height || got.ProducerID != b.ProducerID || got.Reward != b.Reward {
		t.Errorf("got %+v, want %+v", got, b)
	}
}

func TestLevelLedgerGetMissingReturnsErrNotFound(t *testing.T) {
	ledger := openTestLedger(t)
	_, err := ledger.Get(42)
	if err != ErrNotFound {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestLevelDBBatchWrite(t *testing.T) {
	db, err := NewLevelDB(filepath.Join(t.TempDir(), "chain"))
	if err != nil {
		t.Fatalf("NewLevelDB: %v", err)
	}
	defer db.Close()

	batch := db.NewBatch()
	batch.Set([]byte("a"), []byte("1"))
	batch.Set([]byte("b"), []byte("2"))
	if err := batch.Write(); err != nil {
		t.Fatalf("batch write: %v", err)
	}

	v, err := db.Get([]byte("a"))
	if err != nil || string(v) != "1" {
		t.Errorf("got %q, %v", v, err)
	}
}
