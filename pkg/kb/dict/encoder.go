package dict

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

var (
	ErrNotFound = errors.New("key not found in dictionary")
)

// Key prefixes for dictionary storage in BadgerDB
const (
	dictForwardPrefix = byte(0x80) // key -> ID
	dictReversePrefix = byte(0x81) // ID -> key
)

// Encoder implements bi-directional key <-> uint64 mapping stored in BadgerDB
// with LRU caches in front of both directions.
type Encoder struct {
	db        *badger.DB
	forward   *expirable.LRU[string, uint64]
	reverse   *expirable.LRU[uint64, string]
	allocator *RangeAllocator
}

// NewEncoder creates a dictionary encoder over db.
func NewEncoder(db *badger.DB, cacheSize int) (*Encoder, error) {
	allocator, err := NewRangeAllocator(db, DefaultBlockSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create range allocator: %w", err)
	}
	if cacheSize <= 0 {
		cacheSize = 1024
	}

	return &Encoder{
		db:        db,
		forward:   expirable.NewLRU[string, uint64](cacheSize, nil, 0),
		reverse:   expirable.NewLRU[uint64, string](cacheSize, nil, 0),
		allocator: allocator,
	}, nil
}

func (e *Encoder) remember(key string, id uint64) {
	e.forward.Add(key, id)
	e.reverse.Add(id, key)
}

// lookup reads a forward mapping inside txn. Missing keys yield ErrNotFound.
func lookup(txn *badger.Txn, key string) (uint64, error) {
	item, err := txn.Get(forwardKey(key))
	if err == badger.ErrKeyNotFound {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	var id uint64
	err = item.Value(func(val []byte) error {
		id = binary.BigEndian.Uint64(val)
		return nil
	})
	return id, err
}

// GetOrCreateID gets the ID for a key, creating a new ID if it doesn't exist.
func (e *Encoder) GetOrCreateID(key string) (uint64, error) {
	ids, err := e.GetIDs([]string{key})
	if err != nil {
		return 0, err
	}
	return ids[0], nil
}

// GetIDs resolves keys in one read transaction and persists the misses
// with a single write batch.
func (e *Encoder) GetIDs(keys []string) ([]uint64, error) {
	results := make([]uint64, len(keys))

	var misses []int
	for i, key := range keys {
		if id, ok := e.forward.Get(key); ok {
			results[i] = id
			continue
		}
		misses = append(misses, i)
	}
	if len(misses) == 0 {
		return results, nil
	}

	var toCreate []int
	err := e.db.View(func(txn *badger.Txn) error {
		for _, i := range misses {
			id, err := lookup(txn, keys[i])
			if errors.Is(err, ErrNotFound) {
				toCreate = append(toCreate, i)
				continue
			}
			if err != nil {
				return err
			}
			results[i] = id
			e.remember(keys[i], id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(toCreate) == 0 {
		return results, nil
	}

	// The same key may appear twice in one call.
	created := make(map[string]uint64, len(toCreate))
	var fresh []int
	for _, i := range toCreate {
		if _, dup := created[keys[i]]; !dup {
			created[keys[i]] = 0
			fresh = append(fresh, i)
		}
	}

	startID, err := e.allocator.AllocateBatch(uint64(len(fresh)))
	if err != nil {
		return nil, fmt.Errorf("failed to allocate batch: %w", err)
	}
	slog.Debug("dictionary allocating new IDs", "count", len(fresh), "start", startID)

	batch := e.db.NewWriteBatch()
	defer batch.Cancel()
	for n, i := range fresh {
		id := startID + uint64(n)
		created[keys[i]] = id

		idBytes := make([]byte, 8)
		binary.BigEndian.PutUint64(idBytes, id)
		if err := batch.Set(forwardKey(keys[i]), idBytes); err != nil {
			return nil, err
		}
		if err := batch.Set(reverseKey(id), []byte(keys[i])); err != nil {
			return nil, err
		}
	}
	if err := batch.Flush(); err != nil {
		return nil, err
	}

	for _, i := range toCreate {
		results[i] = created[keys[i]]
		e.remember(keys[i], results[i])
	}
	return results, nil
}

// GetID gets the ID for a key without creating one.
// Returns ErrNotFound if the key doesn't exist.
func (e *Encoder) GetID(key string) (uint64, error) {
	if id, ok := e.forward.Get(key); ok {
		return id, nil
	}
	var id uint64
	err := e.db.View(func(txn *badger.Txn) error {
		var err error
		id, err = lookup(txn, key)
		return err
	})
	if err != nil {
		return 0, err
	}
	e.remember(key, id)
	return id, nil
}

// GetString gets the key for an ID.
// Returns ErrNotFound if the ID doesn't exist.
func (e *Encoder) GetString(id uint64) (string, error) {
	if s, ok := e.reverse.Get(id); ok {
		return s, nil
	}
	var s string
	err := e.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(reverseKey(id))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			s = string(val)
			return nil
		})
	})
	if err != nil {
		return "", err
	}
	e.remember(s, id)
	return s, nil
}

// forwardKey formats [0x80 | len(2) | key].
func forwardKey(s string) []byte {
	key := make([]byte, 3+len(s))
	key[0] = dictForwardPrefix
	binary.BigEndian.PutUint16(key[1:3], uint16(len(s)))
	copy(key[3:], s)
	return key
}

// reverseKey formats [0x81 | id(8)].
func reverseKey(id uint64) []byte {
	key := make([]byte, 9)
	key[0] = dictReversePrefix
	binary.BigEndian.PutUint64(key[1:9], id)
	return key
}

// Close releases resources.
func (e *Encoder) Close() error {
	stats := e.Stats()
	slog.Debug("dictionary closed",
		"forwardCacheLen", stats["forward_cache_len"],
		"nextID", stats["next_id"],
	)
	return nil
}

// Stats returns statistics about the encoder.
func (e *Encoder) Stats() map[string]any {
	return map[string]any{
		"forward_cache_len": e.forward.Len(),
		"reverse_cache_len": e.reverse.Len(),
		"next_id":           e.allocator.CurrentID() + 1,
	}
}
