package storage

import (
	"encoding/json"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/chainsim/simulator/core"
)

// LevelDB implements DB on top of goleveldb, exactly as the node this
// simulator descends from persisted its block store.
type LevelDB struct {
	db *leveldb.DB
}

// NewLevelDB opens (or creates) a LevelDB database at path.
func NewLevelDB(path string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("storage: open leveldb %q: %w", path, err)
	}
	return &LevelDB{db: db}, nil
}

func (l *LevelDB) Get(key []byte) ([]byte, error) {
	val, err := l.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, ErrNotFound
	}
	return val, err
}

func (l *LevelDB) Set(key, value []byte) error {
	return l.db.Put(key, value, nil)
}

func (l *LevelDB) Delete(key []byte) error {
	return l.db.Delete(key, nil)
}

func (l *LevelDB) NewIterator(prefix []byte) Iterator {
	return l.db.NewIterator(util.BytesPrefix(prefix), nil)
}

func (l *LevelDB) NewBatch() Batch {
	return &levelBatch{db: l.db, batch: new(leveldb.Batch)}
}

func (l *LevelDB) Close() error {
	return l.db.Close()
}

type levelBatch struct {
	db    *leveldb.DB
	batch *leveldb.Batch
}

func (b *levelBatch) Set(key, value []byte) { b.batch.Put(key, value) }
func (b *levelBatch) Delete(key []byte)     { b.batch.Delete(key) }
func (b *levelBatch) Write() error          { return b.db.Write(b.batch, nil) }
func (b *levelBatch) Reset()                { b.batch.Reset() }

// LevelLedger is an optional append-only archive of produced blocks, keyed
// by height, for runs long enough that keeping every block in memory (as
// core.ChainState does for the duration of a run) is undesirable. The
// coordinator drives the simulation off core.ChainState and does not write
// to a LevelLedger: blocks are archived only by code that calls Append.
type LevelLedger struct {
	db *LevelDB
}

// NewLevelLedger wraps a LevelDB instance as a block archive.
func NewLevelLedger(db *LevelDB) *LevelLedger {
	return &LevelLedger{db: db}
}

func heightKey(height int64) []byte {
	return []byte(fmt.Sprintf("block:%020d", height))
}

// Append archives block under its height. O(1), never read back during the
// simulation itself — only by offline inspection of the archive.
func (l *LevelLedger) Append(block *core.Block) error {
	data, err := json.Marshal(block)
	if err != nil {
		return fmt.Errorf("storage: marshal block %d: %w", block.Height, err)
	}
	return l.db.Set(heightKey(block.Height), data)
}

// Get retrieves the archived block at height, or ErrNotFound.
func (l *LevelLedger) Get(height int64) (*core.Block, error) {
	data, err := l.db.Get(heightKey(height))
	if err != nil {
		return nil, err
	}
	var b core.Block
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("storage: unmarshal block %d: %w", height, err)
	}
	return &b, nil
}

// Close releases the underlying database handle.
func (l *LevelLedger) Close() error { return l.db.Close() }
