// Package kb is the triple store behind the question answering pipeline.
//
// Facts are dictionary encoded and kept in three BadgerDB indices (SPO, OPS,
// PSO). Every index entry carries the insertion sequence of its fact so that
// Match can return facts in the order they were first inserted.
package kb

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"

	"github.com/duynguyendang/geoqa/pkg/kb/dict"
	"github.com/duynguyendang/geoqa/pkg/kb/keys"
	"github.com/duynguyendang/geoqa/pkg/kb/store"
)

// maxBatchFacts bounds the facts written per Badger transaction.
const maxBatchFacts = 1000

// Store is a set of facts. Writers are serialized; readers work on Badger
// snapshots and never block each other.
type Store struct {
	db     *badger.DB
	dict   dict.Dictionary
	config *store.Config

	mu  sync.Mutex // serializes writers and guards seq
	seq uint64

	numFacts atomic.Uint64
	closed   atomic.Bool
}

// Open creates a store from cfg. A nil cfg means store.DefaultConfig().
func Open(cfg *store.Config) (*Store, error) {
	if cfg == nil {
		cfg = store.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	db, err := store.OpenBadgerDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}

	encoder, err := dict.NewEncoder(db, cfg.LRUCacheSize)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create dictionary: %w", err)
	}

	s := &Store{db: db, dict: encoder, config: cfg}
	if err := s.loadCounters(); err != nil {
		db.Close()
		return nil, err
	}

	slog.Debug("fact store opened", "inMemory", cfg.InMemory, "facts", s.numFacts.Load())
	return s, nil
}

func (s *Store) loadCounters() error {
	return s.withReadTxn(func(txn *badger.Txn) error {
		facts, err := readCounter(txn, keys.KeyFactCount)
		if err != nil {
			return fmt.Errorf("failed to load fact count: %w", err)
		}
		seq, err := readCounter(txn, keys.KeySequence)
		if err != nil {
			return fmt.Errorf("failed to load sequence: %w", err)
		}
		s.numFacts.Store(facts)
		s.seq = seq
		return nil
	})
}

func readCounter(txn *badger.Txn, key []byte) (uint64, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var n uint64
	err = item.Value(func(val []byte) error {
		n = keys.DecodeSeq(val)
		return nil
	})
	return n, err
}

// Insert adds a fact. It reports whether the fact was new; inserting a
// fact that is already present is a no-op.
func (s *Store) Insert(f Fact) (bool, error) {
	n, err := s.InsertBatch([]Fact{f})
	return n == 1, err
}

// InsertBatch adds facts in order and returns how many were new. The batch
// is validated up front; an invalid fact rejects the whole batch.
func (s *Store) InsertBatch(facts []Fact) (int, error) {
	if s.closed.Load() {
		return 0, ErrClosed
	}
	for i, f := range facts {
		if err := f.Validate(); err != nil {
			return 0, fmt.Errorf("fact %d: %w", i, err)
		}
	}

	added := 0
	for start := 0; start < len(facts); start += maxBatchFacts {
		end := min(start+maxBatchFacts, len(facts))
		n, err := s.insertChunk(facts[start:end])
		added += n
		if err != nil {
			return added, err
		}
	}
	return added, nil
}

func (s *Store) insertChunk(facts []Fact) (int, error) {
	terms := make([]string, 0, 3*len(facts))
	for _, f := range facts {
		terms = append(terms, f.Subject.dictKey(), f.Predicate.dictKey(), f.Object.dictKey())
	}
	ids, err := s.dict.GetIDs(terms)
	if err != nil {
		return 0, fmt.Errorf("failed to encode terms: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.seq
	added := 0
	err = s.withWriteTxn(func(txn *badger.Txn) error {
		for i := range facts {
			sID, pID, oID := ids[3*i], ids[3*i+1], ids[3*i+2]
			spo := keys.EncodeSPOKey(sID, pID, oID)

			// Pending writes of this txn are visible here, so duplicates
			// inside one batch are caught too.
			_, err := txn.Get(spo)
			if err == nil {
				continue
			}
			if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}

			seq++
			val := keys.EncodeSeq(seq)
			for _, k := range [][]byte{spo, keys.EncodeOPSKey(sID, pID, oID), keys.EncodePSOKey(sID, pID, oID)} {
				if err := txn.Set(k, val); err != nil {
					return err
				}
			}
			added++
		}
		if added == 0 {
			return nil
		}
		if err := txn.Set(keys.KeySequence, keys.EncodeSeq(seq)); err != nil {
			return err
		}
		return txn.Set(keys.KeyFactCount, keys.EncodeSeq(s.numFacts.Load()+uint64(added)))
	})
	if err != nil {
		return 0, fmt.Errorf("failed to write facts: %w", err)
	}

	s.seq = seq
	s.numFacts.Add(uint64(added))
	return added, nil
}

// Count returns the number of facts in the store.
func (s *Store) Count() uint64 {
	return s.numFacts.Load()
}

// Close releases the dictionary and the database.
func (s *Store) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	var errs []error
	if err := s.dict.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.db.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
