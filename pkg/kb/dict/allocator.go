package dict

import (
	"encoding/binary"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

const (
	// DefaultBlockSize is the number of IDs reserved per counter update.
	DefaultBlockSize = 4096

	globalCounterKey = "__dict_global_counter"
)

// RangeAllocator hands out IDs from blocks reserved in BadgerDB.
// IDs start at 1; 0 is never allocated and means "unbound" to callers.
type RangeAllocator struct {
	db        *badger.DB
	blockSize uint64

	mu        sync.Mutex
	globalMax uint64 // highest ID reserved in the DB
	next      uint64 // next ID to hand out
}

// NewRangeAllocator creates an allocator, resuming from the persisted counter.
func NewRangeAllocator(db *badger.DB, blockSize uint64) (*RangeAllocator, error) {
	if blockSize == 0 {
		blockSize = DefaultBlockSize
	}
	r := &RangeAllocator{db: db, blockSize: blockSize}
	if err := r.load(); err != nil {
		return nil, err
	}
	r.next = r.globalMax + 1
	return r, nil
}

// Allocate allocates a single ID.
func (r *RangeAllocator) Allocate() (uint64, error) {
	return r.AllocateBatch(1)
}

// AllocateBatch allocates n consecutive IDs and returns the first.
func (r *RangeAllocator) AllocateBatch(n uint64) (uint64, error) {
	if n == 0 {
		n = 1
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	start := r.next
	end := start + n - 1
	if end > r.globalMax {
		reserve := r.globalMax + r.blockSize
		if end > reserve {
			reserve = end
		}
		if err := r.save(reserve); err != nil {
			return 0, err
		}
		r.globalMax = reserve
	}
	r.next = end + 1
	return start, nil
}

// CurrentID returns the highest ID handed out so far.
func (r *RangeAllocator) CurrentID() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.next - 1
}

func (r *RangeAllocator) load() error {
	return r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(globalCounterKey))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) >= 8 {
				r.globalMax = binary.BigEndian.Uint64(val)
			}
			return nil
		})
	})
}

func (r *RangeAllocator) save(max uint64) error {
	return r.db.Update(func(txn *badger.Txn) error {
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, max)
		return txn.Set([]byte(globalCounterKey), buf)
	})
}
